package explore

import (
	"context"

	"github.com/fluentverification/wayfarer/heuristic"
	"github.com/fluentverification/wayfarer/linalg"
	"github.com/fluentverification/wayfarer/subspace"
)

// Pruning reasons reported on the successors_pruned_total metric.
const (
	PruneOrderRegression = "order_regression"
	PruneInnermostCycle  = "innermost_cycle"
)

// FindWitnesses runs best-first search on the distance priority until
// count satisfying states are found, the queue empties, or the search is
// stopped.
func FindWitnesses(ctx context.Context, c *Context, count int) (*Result, error) {
	rs := c.begin(ctx, "primitive", count)

	p := heuristic.NewPrioritizer(c.net)
	p.UseFlowAngle = c.flowAngle
	p.Weights = c.weights
	p.Logger = c.logger
	score := func(s *State) { s.Priority = p.Priority(s.Vector) }

	all := allTransitions(c)
	q := NewQueue(func(a, b *State) bool { return a.Priority < b.Priority })
	q.Push(c.seedInitial(score, nil))
	err := c.run(rs.ctx, q, count, nil, func(*State) []int { return all }, score, nil)
	return c.end(rs, count, err)
}

// FindWitnessesSubspace runs the subspace-guided search.
func FindWitnessesSubspace(ctx context.Context, c *Context, d *subspace.Decomposition, count int) (*Result, error) {
	return Explore(ctx, c, d, count, nil)
}

// Explore is the subspace-guided search with an observer attached. States
// are ordered by their (order, leading epsilon) key and may only fire the
// transitions lying in the subspace they currently occupy. Successors
// that would raise the order are dropped, as are successors that move
// away from the target inside a rank-1 innermost subspace. Full expansion
// lifts the transition restriction and both pruning rules.
func Explore(ctx context.Context, c *Context, d *subspace.Decomposition, count int, obs Observer) (*Result, error) {
	if d == nil {
		return nil, ErrNoDecomposition
	}
	rs := c.begin(ctx, "subspace", count)

	score := func(s *State) {
		k := d.Classify(s.Vector)
		s.Order, s.Epsilon = k.Order, k.Epsilon
		s.Priority = k.Lead()
	}
	all := allTransitions(c)
	allowed := func(s *State) []int {
		if c.fullExpansion {
			return all
		}
		return d.Allowed(s.Order)
	}
	var admit admitFunc
	if !c.fullExpansion {
		admit = subspaceAdmit(d)
	}

	q := NewQueue(func(a, b *State) bool { return a.Key().Less(b.Key()) })
	q.Push(c.seedInitial(score, obs))
	err := c.run(rs.ctx, q, count, obs, allowed, score, admit)
	return c.end(rs, count, err)
}

func subspaceAdmit(d *subspace.Decomposition) admitFunc {
	inner := d.Innermost()
	rankOne := inner != nil && inner.Rank == 1
	return func(parent, child *State) (bool, string) {
		if child.Satisfying {
			return true, ""
		}
		if child.Order > parent.Order {
			return false, PruneOrderRegression
		}
		if rankOne && parent.Order == 0 && child.Order == 0 &&
			child.Key().Lead() > parent.Key().Lead()+linalg.Tolerance {
			return false, PruneInnermostCycle
		}
		return true, ""
	}
}

func allTransitions(c *Context) []int {
	all := make([]int, len(c.net.Transitions()))
	for i := range all {
		all[i] = i
	}
	return all
}
