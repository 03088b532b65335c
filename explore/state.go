package explore

import (
	"fmt"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/subspace"
)

// State is one discovered vector together with its search bookkeeping.
type State struct {
	Vector crn.State
	// Adjusted is Vector minus the initial state.
	Adjusted []int
	Order    int
	Epsilon  []float64
	Priority float64
	// Perimeter is set from discovery until the state is dequeued.
	Perimeter  bool
	Satisfying bool
	// Index is the discovery position. The initial state has index 0.
	Index int
}

// Key returns the subspace ordering key of the state.
func (s *State) Key() subspace.Key {
	return subspace.Key{Order: s.Order, Epsilon: s.Epsilon}
}

// StrongEqual compares the underlying vectors, unlike Key().Equal.
func (s *State) StrongEqual(other *State) bool {
	return s.Vector.Equal(other.Vector)
}

func (s *State) String() string {
	return fmt.Sprintf("#%d %s", s.Index, s.Vector)
}

// BackPointer is a recorded predecessor edge.
type BackPointer struct {
	Parent     *State
	Transition int
	// Probability is the transition's rate over the parent's full
	// outgoing rate.
	Probability float64
}

// Edge is one followed transition out of an expanded state.
type Edge struct {
	Target     *State
	Transition int
	Rate       float64
}

// Observer receives search events. Builders that need the explored graph
// itself, such as the Markov chain builder, implement it.
type Observer interface {
	OnDiscover(s *State)
	OnSatisfying(s *State)
	// OnExpanded reports the followed edges of s and the total rate of
	// every transition enabled in s.
	OnExpanded(s *State, edges []Edge, fullRate float64)
}
