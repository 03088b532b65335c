package heuristic

import (
	"errors"
	"log/slog"

	"github.com/fluentverification/wayfarer/crn"
)

// Prioritizer scores states for the primitive best-first search. Lower
// scores are explored first.
type Prioritizer struct {
	Network *crn.Network
	// UseFlowAngle adds angle(flow, distance)/180 to penalize states whose
	// reachable flow points away from the target.
	UseFlowAngle bool
	// UseDepriority weights species distances by the network's depriority
	// weights before taking the norm.
	UseDepriority bool
	Weights       FlowWeights
	Logger        *slog.Logger
}

// NewPrioritizer returns a distance-only prioritizer with default weights.
func NewPrioritizer(net *crn.Network) *Prioritizer {
	return &Prioritizer{
		Network:       net,
		UseDepriority: true,
		Weights:       DefaultFlowWeights(),
		Logger:        net.Logger(),
	}
}

// Priority returns the base distance plus the optional angle penalty. When
// the angle is undefined (no enabled transitions, or the state sits on the
// target) the angle term is skipped.
func (p *Prioritizer) Priority(s crn.State) float64 {
	boundary := p.Network.Boundary()
	var base float64
	if p.UseDepriority {
		base = WeightedDistance(s, boundary, p.Network.Depriority())
	} else {
		base = Distance(s, boundary)
	}
	if !p.UseFlowAngle {
		return base
	}

	flow := FlowVector(s, p.Network, p.Weights)
	angle, err := Angle(flow, SignedDistanceVector(s, boundary))
	if errors.Is(err, ErrDegenerateVector) {
		if p.Logger != nil {
			p.Logger.Debug("skipping flow angle", "state", s.String(), "reason", err)
		}
		return base
	}
	return base + angle/180
}
