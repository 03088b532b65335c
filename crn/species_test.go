package crn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateKeyAndArithmetic(t *testing.T) {
	s := State{1, 20, 3}
	assert.Equal(t, "1,20,3", s.Key())
	assert.Equal(t, "(1, 20, 3)", s.String())

	next := s.Add([]int{-1, 5, 0})
	assert.Equal(t, State{0, 25, 3}, next)
	assert.Equal(t, State{1, 20, 3}, s, "Add must not modify the receiver")
	assert.Equal(t, []int{-1, 5, 0}, next.Sub(s))
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(next))
}

func TestBoundKindCompare(t *testing.T) {
	tests := []struct {
		kind  BoundKind
		value int
		bound int
		want  bool
	}{
		{LessThan, 4, 5, true},
		{LessThan, 5, 5, false},
		{LessOrEqual, 5, 5, true},
		{Equal, 5, 5, true},
		{Equal, 6, 5, false},
		{GreaterThan, 5, 5, false},
		{GreaterThan, 6, 5, true},
		{GreaterOrEqual, 5, 5, true},
		{DontCare, -100, 5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Compare(tt.value, tt.bound), "%d %s %d", tt.value, tt.kind, tt.bound)
	}
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in   string
		want Bound
	}{
		{"*", Bound{Kind: DontCare}},
		{"-1", Bound{Kind: DontCare}},
		{"98", Bound{Value: 98, Kind: Equal}},
		{"=98", Bound{Value: 98, Kind: Equal}},
		{">200", Bound{Value: 200, Kind: GreaterThan}},
		{">= 3", Bound{Value: 3, Kind: GreaterOrEqual}},
		{"<5", Bound{Value: 5, Kind: LessThan}},
		{"<=5", Bound{Value: 5, Kind: LessOrEqual}},
	}
	for _, tt := range tests {
		got, err := ParseBound(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseBound(">lots")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBoundaryMask(t *testing.T) {
	b := Boundary{{Value: 1, Kind: Equal}, {Kind: DontCare}, {Value: 3, Kind: GreaterThan}}
	assert.Equal(t, []float64{1, 0, 1}, b.Mask())
	assert.Equal(t, "(=1, *, >3)", b.String())
}
