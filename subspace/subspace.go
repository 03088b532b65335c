// Package subspace builds the nested reaction subspaces derived from the
// dependency graph and classifies states against them.
package subspace

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/dependency"
	"github.com/fluentverification/wayfarer/heuristic"
	"github.com/fluentverification/wayfarer/linalg"
)

// ErrNotNested reports a subspace that does not contain its predecessor.
var ErrNotNested = errors.New("subspaces are not nested")

// Subspace is the span of the update vectors of every transition at or
// below one dependency level.
type Subspace struct {
	Level int
	// Basis lists the transitions whose updates span the subspace.
	Basis []int
	// Members lists every transition whose update lies in the span, which
	// includes the basis. Excluded is the complement of Members.
	Members   []int
	Excluded  []int
	P         *mat.Dense
	Rank      int
	Deficient bool

	allowed map[int]bool
}

func newSubspace(level, dim int, basis []int, transitions []*crn.Transition) *Subspace {
	s := &Subspace{Level: level, Basis: basis, allowed: make(map[int]bool, len(transitions))}
	cols := make([][]float64, 0, len(basis))
	for _, idx := range basis {
		cols = append(cols, crn.State(transitions[idx].Update).Floats())
	}
	s.P, s.Rank, s.Deficient = linalg.Projector(dim, cols)

	inBasis := make(map[int]bool, len(basis))
	for _, idx := range basis {
		inBasis[idx] = true
	}
	for idx, t := range transitions {
		if inBasis[idx] || linalg.IsZero(linalg.Residual(s.P, crn.State(t.Update).Floats(), nil)) {
			s.allowed[idx] = true
			s.Members = append(s.Members, idx)
			continue
		}
		s.Excluded = append(s.Excluded, idx)
	}
	return s
}

// Residual is the masked distance from v to the subspace.
func (s *Subspace) Residual(v, mask []float64) float64 {
	return linalg.Residual(s.P, v, mask)
}

// Contains reports whether other lies inside s: s has at least other's
// rank and joining both projectors adds no rank.
func (s *Subspace) Contains(other *Subspace) bool {
	if s.Rank < other.Rank {
		return false
	}
	return linalg.Rank(linalg.Join(s.P, other.P)) == s.Rank
}

// Allows reports whether the update of the transition at idx lies in s.
func (s *Subspace) Allows(idx int) bool {
	return s.allowed[idx]
}

// verifyNesting panics when a subspace fails to contain the one before it.
// Cumulative construction guarantees nesting, so a failure is a bug.
func verifyNesting(subspaces []*Subspace) {
	for k := 1; k < len(subspaces); k++ {
		if !subspaces[k].Contains(subspaces[k-1]) {
			panic(fmt.Errorf("%w: level %d does not contain level %d", ErrNotNested, k, k-1))
		}
	}
}

// Decomposition is the ordered list of nested subspaces for one network,
// innermost first.
type Decomposition struct {
	net       *crn.Network
	boundary  crn.Boundary
	mask      []float64
	subspaces []*Subspace
	all       []int
}

// New builds the decomposition from the graph's levels. A nil graph
// yields no subspaces, in which case every state has order 0 and every
// transition is allowed.
func New(net *crn.Network, g *dependency.Graph, logger *slog.Logger) *Decomposition {
	if logger == nil {
		logger = slog.Default()
	}
	transitions := net.Transitions()
	boundary := net.Boundary()
	d := &Decomposition{
		net:      net,
		boundary: boundary,
		mask:     boundary.Mask(),
		all:      make([]int, len(transitions)),
	}
	for i := range d.all {
		d.all[i] = i
	}
	if g == nil {
		return d
	}

	var basis []int
	for _, level := range g.Levels() {
		basis = append(append([]int(nil), basis...), level.Transitions...)
		s := newSubspace(level.Index, net.NumSpecies(), basis, transitions)
		if s.Deficient {
			logger.Warn("rank-deficient subspace basis",
				"level", s.Level, "vectors", len(s.Basis), "rank", s.Rank)
		}
		logger.Debug("subspace", "level", s.Level, "rank", s.Rank, "transitions", len(s.Basis))
		d.subspaces = append(d.subspaces, s)
	}
	verifyNesting(d.subspaces)
	return d
}

// Len returns the number of subspaces.
func (d *Decomposition) Len() int { return len(d.subspaces) }

// Subspaces returns the subspaces, innermost first.
func (d *Decomposition) Subspaces() []*Subspace { return d.subspaces }

// Innermost returns the level-0 subspace, or nil when there is none.
func (d *Decomposition) Innermost() *Subspace {
	if len(d.subspaces) == 0 {
		return nil
	}
	return d.subspaces[0]
}

// Allowed returns the transitions a state of the given order may fire
// under subspace restriction. States outside every subspace, and every
// state when there are no subspaces, may fire anything.
func (d *Decomposition) Allowed(order int) []int {
	if order < 0 {
		return nil
	}
	if order >= len(d.subspaces) {
		return d.all
	}
	return d.subspaces[order].Members
}

// Classify computes the abstraction key of s. The remaining displacement
// toward the target is walked from the innermost subspace outward until
// one contains it. Order counts the subspaces that did not, and Epsilon
// lists their residuals outermost first followed by the target distance.
func (d *Decomposition) Classify(s crn.State) Key {
	if heuristic.Satisfies(s, d.boundary) {
		return Key{Order: SatisfyingOrder, Epsilon: []float64{0}}
	}
	v := heuristic.SignedDistanceVector(s, d.boundary)
	dist := heuristic.Distance(s, d.boundary)

	order := len(d.subspaces)
	var residuals []float64
	for k, sub := range d.subspaces {
		r := sub.Residual(v, d.mask)
		if linalg.IsZero(r) {
			order = k
			break
		}
		residuals = append(residuals, r)
	}

	eps := make([]float64, 0, len(residuals)+1)
	for i := len(residuals) - 1; i >= 0; i-- {
		eps = append(eps, residuals[i])
	}
	eps = append(eps, dist)
	return Key{Order: order, Epsilon: eps}
}
