package solver

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentverification/wayfarer/chain"
)

type fakeSolver struct {
	res   Result
	err   error
	calls int
	prop  Property
}

func (f *fakeSolver) Solve(_ context.Context, _ *chain.Chain, prop Property) (Result, error) {
	f.calls++
	f.prop = prop
	return f.res, f.err
}

// reachable: 1 -> 2 (satisfy) and 1 -> 0 (absorbing).
func reachable() *chain.Chain {
	return &chain.Chain{
		Rows: [][]chain.Entry{
			{{Column: 0, Rate: 1}},
			{{Column: 0, Rate: 1}, {Column: 2, Rate: 3}},
			{{Column: 2, Rate: 1}},
		},
		ExitRates: []float64{1, 4, 1},
		Labels: map[string][]int{
			chain.LabelInit:      {1},
			chain.LabelSatisfy:   {2},
			chain.LabelAbsorbing: {0},
			chain.LabelDeadlock:  {0, 2},
		},
	}
}

func TestPropertyString(t *testing.T) {
	assert.Equal(t, `P=? [ true U "satisfy" ]`, Property{Label: "satisfy"}.String())
	assert.Equal(t, `P=? [ true U<=2.5 "satisfy" ]`, Property{Label: "satisfy", TimeBound: 2.5}.String())

	ch := reachable()
	ch.TimeBound = 10
	assert.Equal(t, Property{Label: chain.LabelSatisfy, TimeBound: 10}, Reachability(ch))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		ok   bool
	}{
		{"zero", Result{}, true},
		{"one", Result{Probability: 1, Min: 1, Max: 1}, true},
		{"inside", Result{Probability: 0.75, Min: 0.5, Max: 0.75}, true},
		{"above", Result{Probability: 1.0000001, Min: 0, Max: 1.0000001}, false},
		{"negative min", Result{Probability: 0.2, Min: -0.1, Max: 0.2}, false},
		{"nan", Result{Probability: math.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.res)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrProbabilityOutOfRange)
			}
		})
	}
}

func TestSolveCallsSolver(t *testing.T) {
	f := &fakeSolver{res: Result{Probability: 0.75, Min: 0.75, Max: 0.75}}
	res, err := Solve(context.Background(), f, reachable(), Property{Label: chain.LabelSatisfy})
	require.NoError(t, err)
	assert.Equal(t, 0.75, res.Probability)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, chain.LabelSatisfy, f.prop.Label)
}

func TestSolveUnreachableSkipsSolver(t *testing.T) {
	ch := reachable()
	ch.Rows[1] = []chain.Entry{{Column: 0, Rate: 4}}
	f := &fakeSolver{res: Result{Probability: 0.5}}

	res, err := Solve(context.Background(), f, ch, Property{Label: chain.LabelSatisfy})
	require.NoError(t, err)
	assert.Zero(t, res.Probability)
	assert.Zero(t, f.calls)
}

func TestSolveRejectsOutOfRange(t *testing.T) {
	f := &fakeSolver{res: Result{Probability: 1.5, Min: 1.5, Max: 1.5}}
	_, err := Solve(context.Background(), f, reachable(), Property{Label: chain.LabelSatisfy})
	assert.ErrorIs(t, err, ErrProbabilityOutOfRange)
}

func TestSolvePropagatesSolverError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Solve(context.Background(), &fakeSolver{err: boom}, reachable(), Property{Label: chain.LabelSatisfy})
	assert.ErrorIs(t, err, boom)
}

func TestParseResult(t *testing.T) {
	out := []byte("Storm 1.8.1\n\nModel checking property \"1\": P=? [true U \"satisfy\"] ...\n" +
		"Result (for initial states): 0.01234\nTime for model checking: 0.001s.\n")
	p, err := ParseResult(out)
	require.NoError(t, err)
	assert.InDelta(t, 0.01234, p, 1e-12)

	p, err = ParseResult([]byte("Result (for initial states): 1.5e-07\n"))
	require.NoError(t, err)
	assert.InDelta(t, 1.5e-07, p, 1e-18)

	_, err = ParseResult([]byte("ERROR: could not parse model\n"))
	assert.ErrorIs(t, err, ErrUnparsableResult)

	_, err = ParseResult([]byte("Result (for initial states): [0.1, 0.2]\n"))
	assert.ErrorIs(t, err, ErrUnparsableResult)
}

func TestStormMissingBinary(t *testing.T) {
	s := NewStorm("/nonexistent/wayfarer-storm", nil)
	_, err := s.Solve(context.Background(), reachable(), Property{Label: chain.LabelSatisfy})
	assert.ErrorIs(t, err, ErrSolverUnavailable)
}
