package heuristic

import (
	"gonum.org/v1/gonum/floats"

	"github.com/fluentverification/wayfarer/crn"
)

// FlowWeights blends the two terms each successor contributes to the flow
// vector. They are expected to sum to one.
type FlowWeights struct {
	Distance float64
	Rate     float64
}

// DefaultFlowWeights weighs geometry and rate share equally.
func DefaultFlowWeights() FlowWeights {
	return FlowWeights{Distance: 0.5, Rate: 0.5}
}

// FlowVector sums unit vectors toward each enabled successor of s. Each
// unit vector is weighted by w.Distance times the successor's share of the
// total step length plus w.Rate times its share of the outgoing rate. A
// state with no enabled transitions has a zero flow vector.
func FlowVector(s crn.State, net *crn.Network, w FlowWeights) []float64 {
	flow := make([]float64, net.NumSpecies())
	transitions := net.Transitions()
	enabled := net.Enabled(s)

	var totalRate, totalDist float64
	rates := make([]float64, len(enabled))
	dists := make([]float64, len(enabled))
	for j, idx := range enabled {
		t := transitions[idx]
		rates[j] = t.Rate(s)
		dists[j] = floats.Norm(toFloats(t.Update), 2)
		totalRate += rates[j]
		totalDist += dists[j]
	}
	if totalRate == 0 || totalDist == 0 {
		return flow
	}

	unit := make([]float64, len(flow))
	for j, idx := range enabled {
		if dists[j] == 0 {
			continue
		}
		copy(unit, toFloats(transitions[idx].Update))
		floats.Scale(1/dists[j], unit)
		weight := w.Distance*dists[j]/totalDist + w.Rate*rates[j]/totalRate
		floats.AddScaled(flow, weight, unit)
	}
	return flow
}

func toFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
