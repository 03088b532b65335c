package subspace

import (
	"fmt"
	"strings"

	"github.com/fluentverification/wayfarer/linalg"
)

// SatisfyingOrder is the order of every state inside the target region.
const SatisfyingOrder = -1

// Key is the abstraction of a state used to order the subspace search.
type Key struct {
	Order   int
	Epsilon []float64
}

// Satisfying reports whether the key belongs to a target state.
func (k Key) Satisfying() bool { return k.Order == SatisfyingOrder }

// Lead is the first epsilon entry, the one keys are ordered by.
func (k Key) Lead() float64 {
	if len(k.Epsilon) == 0 {
		return 0
	}
	return k.Epsilon[0]
}

// Less orders by order, then by the leading epsilon.
func (k Key) Less(other Key) bool {
	if k.Order != other.Order {
		return k.Order < other.Order
	}
	return k.Lead() < other.Lead() && !linalg.IsZero(k.Lead()-other.Lead())
}

// Equal is weak equality on order and leading epsilon only. Keys whose
// later epsilon entries differ still compare equal.
func (k Key) Equal(other Key) bool {
	return k.Order == other.Order && linalg.IsZero(k.Lead()-other.Lead())
}

func (k Key) String() string {
	parts := make([]string, len(k.Epsilon))
	for i, e := range k.Epsilon {
		parts[i] = fmt.Sprintf("%.4g", e)
	}
	return fmt.Sprintf("order=%d eps=[%s]", k.Order, strings.Join(parts, " "))
}
