package crn

import (
	"fmt"
	"log/slog"
	"math"
)

// Network is an immutable reaction network with its target region.
type Network struct {
	species     []string
	transitions []*Transition
	boundary    Boundary
	initial     State
	depriority  []float64
	logger      *slog.Logger
}

// Option configures a Network at construction.
type Option func(*Network)

// WithLogger sets the logger used for lookup warnings.
func WithLogger(l *slog.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithDepriority overrides the per-species priority weights. DontCare
// species are always forced to zero.
func WithDepriority(weights []float64) Option {
	return func(n *Network) {
		n.depriority = append([]float64(nil), weights...)
	}
}

// WithRateFinder replaces the rate finder of every transition.
func WithRateFinder(rf RateFinder) Option {
	return func(n *Network) {
		for _, t := range n.transitions {
			t.Rates = rf
		}
	}
}

// NewNetwork validates and assembles a network. Transition names must be
// unique. The network keeps its own copies of the transitions, so later
// changes to the arguments do not affect it.
func NewNetwork(species []string, initial State, boundary Boundary, transitions []*Transition, opts ...Option) (*Network, error) {
	n := len(species)
	if len(initial) != n {
		return nil, fmt.Errorf("%w: initial state has %d entries, want %d", ErrDimensionMismatch, len(initial), n)
	}
	if len(boundary) != n {
		return nil, fmt.Errorf("%w: boundary has %d entries, want %d", ErrDimensionMismatch, len(boundary), n)
	}
	for i, v := range initial {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative initial count for %s", ErrMalformedInput, species[i])
		}
	}
	names := make(map[string]bool, len(transitions))
	for _, t := range transitions {
		if names[t.Name] {
			return nil, fmt.Errorf("%w: duplicate transition %q", ErrMalformedInput, t.Name)
		}
		names[t.Name] = true
		if len(t.Update) != n {
			return nil, fmt.Errorf("%w: transition %s has %d entries, want %d", ErrDimensionMismatch, t.Name, len(t.Update), n)
		}
		if t.RateConstant < 0 || math.IsNaN(t.RateConstant) || math.IsInf(t.RateConstant, 0) {
			return nil, fmt.Errorf("%w: transition %s has rate %v", ErrInvalidRate, t.Name, t.RateConstant)
		}
	}
	net := &Network{
		species:     append([]string(nil), species...),
		transitions: make([]*Transition, len(transitions)),
		boundary:    append(Boundary(nil), boundary...),
		initial:     initial.Clone(),
		logger:      slog.Default(),
	}
	for i, t := range transitions {
		net.transitions[i] = t.Clone()
	}
	for _, opt := range opts {
		opt(net)
	}
	if net.depriority == nil {
		net.depriority = make([]float64, n)
		for i := range net.depriority {
			net.depriority[i] = 1
		}
	}
	if len(net.depriority) != n {
		return nil, fmt.Errorf("%w: depriority has %d entries, want %d", ErrDimensionMismatch, len(net.depriority), n)
	}
	for i, b := range net.boundary {
		if b.Kind == DontCare {
			net.depriority[i] = 0
		}
	}
	return net, nil
}

// Species returns the species names in vector order.
func (n *Network) Species() []string { return append([]string(nil), n.species...) }

// NumSpecies returns the vector length.
func (n *Network) NumSpecies() int { return len(n.species) }

// Transitions returns the transitions in declaration order. The slice is a
// copy; the transitions themselves are shared and must not be modified.
func (n *Network) Transitions() []*Transition {
	return append([]*Transition(nil), n.transitions...)
}

// Boundary returns a copy of the target region.
func (n *Network) Boundary() Boundary { return append(Boundary(nil), n.boundary...) }

// Initial returns a copy of the initial state.
func (n *Network) Initial() State { return n.initial.Clone() }

// Depriority returns the per-species priority weights.
func (n *Network) Depriority() []float64 { return append([]float64(nil), n.depriority...) }

// Logger returns the network's logger.
func (n *Network) Logger() *slog.Logger { return n.logger }

// Target returns the bound values with -1 marking DontCare species.
func (n *Network) Target() []int {
	out := make([]int, len(n.boundary))
	for i, b := range n.boundary {
		if b.Kind == DontCare {
			out[i] = -1
			continue
		}
		out[i] = b.Value
	}
	return out
}

// SpeciesIndex looks up a species by name.
func (n *Network) SpeciesIndex(name string) (int, bool) {
	for i, s := range n.species {
		if s == name {
			return i, true
		}
	}
	return -1, false
}

// Transition looks up a transition by name. A miss is logged and reported
// as absent; callers treat it as an unavailable feature.
func (n *Network) Transition(name string) (*Transition, bool) {
	for _, t := range n.transitions {
		if t.Name == name {
			return t, true
		}
	}
	n.logger.Warn("transition not found", "name", name)
	return nil, false
}

// TransitionIndex returns the position of t in the network.
func (n *Network) TransitionIndex(t *Transition) int {
	for i, other := range n.transitions {
		if other == t {
			return i
		}
	}
	return -1
}

// Enabled returns the indices of transitions enabled in s.
func (n *Network) Enabled(s State) []int {
	var out []int
	for i, t := range n.transitions {
		if t.Enabled(s) && t.Rate(s) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// OutgoingRate is the total rate of every transition enabled in s.
func (n *Network) OutgoingRate(s State) float64 {
	total := 0.0
	for _, t := range n.transitions {
		if t.Enabled(s) {
			total += t.Rate(s)
		}
	}
	return total
}

// Valid reports whether every count in s is non-negative.
func (n *Network) Valid(s State) bool {
	for _, v := range s {
		if v < 0 {
			return false
		}
	}
	return true
}
