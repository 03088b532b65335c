package crn

import (
	"fmt"
	"strconv"
	"strings"
)

// State is a species vector: one non-negative count per species.
type State []int

// Key returns a hashable identity for the vector.
func (s State) Key() string {
	var sb strings.Builder
	for i, v := range s {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Add returns s + update as a new vector.
func (s State) Add(update []int) State {
	out := make(State, len(s))
	for i := range s {
		out[i] = s[i] + update[i]
	}
	return out
}

// Sub returns s - other as a plain integer vector.
func (s State) Sub(other State) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = s[i] - other[i]
	}
	return out
}

// Equal reports whether both vectors hold the same counts.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the vector.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// Floats converts the vector for use in distance computations.
func (s State) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

func (s State) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// BoundKind is the comparison a species count must satisfy.
type BoundKind int

const (
	DontCare BoundKind = iota
	LessThan
	LessOrEqual
	Equal
	GreaterThan
	GreaterOrEqual
)

var boundKindSymbols = map[BoundKind]string{
	DontCare:       "*",
	LessThan:       "<",
	LessOrEqual:    "<=",
	Equal:          "=",
	GreaterThan:    ">",
	GreaterOrEqual: ">=",
}

func (k BoundKind) String() string {
	if s, ok := boundKindSymbols[k]; ok {
		return s
	}
	return fmt.Sprintf("BoundKind(%d)", int(k))
}

// Compare applies the operator to value and bound. DontCare always holds.
func (k BoundKind) Compare(value, bound int) bool {
	switch k {
	case LessThan:
		return value < bound
	case LessOrEqual:
		return value <= bound
	case Equal:
		return value == bound
	case GreaterThan:
		return value > bound
	case GreaterOrEqual:
		return value >= bound
	default:
		return true
	}
}

// Bound is a single species constraint.
type Bound struct {
	Value int
	Kind  BoundKind
}

func (b Bound) String() string {
	if b.Kind == DontCare {
		return "*"
	}
	return b.Kind.String() + strconv.Itoa(b.Value)
}

// ParseBound reads a bound written as "*", "98", "=98", ">200", ">=3",
// "<5" or "<=5". A bare "-1" is the DontCare sentinel.
func ParseBound(text string) (Bound, error) {
	text = strings.TrimSpace(text)
	if text == "*" || text == "-1" {
		return Bound{Kind: DontCare}, nil
	}
	kind := Equal
	for _, op := range []struct {
		prefix string
		kind   BoundKind
	}{
		{"<=", LessOrEqual},
		{">=", GreaterOrEqual},
		{"<", LessThan},
		{">", GreaterThan},
		{"=", Equal},
	} {
		if strings.HasPrefix(text, op.prefix) {
			kind = op.kind
			text = strings.TrimSpace(strings.TrimPrefix(text, op.prefix))
			break
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return Bound{}, fmt.Errorf("%w: bound %q", ErrMalformedInput, text)
	}
	return Bound{Value: v, Kind: kind}, nil
}

// Boundary is the target region: one Bound per species.
type Boundary []Bound

// Mask returns 0 for DontCare species and 1 otherwise.
func (b Boundary) Mask() []float64 {
	mask := make([]float64, len(b))
	for i, bound := range b {
		if bound.Kind != DontCare {
			mask[i] = 1
		}
	}
	return mask
}

func (b Boundary) String() string {
	parts := make([]string, len(b))
	for i, bound := range b {
		parts[i] = bound.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
