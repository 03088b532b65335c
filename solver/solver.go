// Package solver hands a bounded Markov chain to an external
// probabilistic model checker and validates what comes back.
package solver

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fluentverification/wayfarer/chain"
)

var tracer = otel.Tracer("wayfarer/solver")

// Property is the reachability query P=? [ true U "label" ], optionally
// bounded in time.
type Property struct {
	Label     string
	TimeBound float64
}

// Reachability returns the property for the satisfy label with the
// chain's time bound.
func Reachability(ch *chain.Chain) Property {
	return Property{Label: chain.LabelSatisfy, TimeBound: ch.TimeBound}
}

func (p Property) String() string {
	if p.TimeBound > 0 {
		return fmt.Sprintf("P=? [ true U<=%s %q ]", strconv.FormatFloat(p.TimeBound, 'g', -1, 64), p.Label)
	}
	return fmt.Sprintf("P=? [ true U %q ]", p.Label)
}

// Result is the probability reported for the initial state together with
// the range the solver reported over all initial states.
type Result struct {
	Probability float64 `yaml:"probability"`
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
}

// Check rejects any value outside [0,1].
func Check(r Result) error {
	for _, v := range []float64{r.Probability, r.Min, r.Max} {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: %+v", ErrProbabilityOutOfRange, r)
		}
	}
	return nil
}

// Solver computes the probability of a property on a chain.
type Solver interface {
	Solve(ctx context.Context, ch *chain.Chain, prop Property) (Result, error)
}

// Solve answers prop on ch. When the initial row cannot reach the label
// at all the answer is zero and s is never called. Every answer from s
// passes Check.
func Solve(ctx context.Context, s Solver, ch *chain.Chain, prop Property) (Result, error) {
	ctx, span := tracer.Start(ctx, "solver.Solve")
	defer span.End()
	span.SetAttributes(
		attribute.String("property", prop.String()),
		attribute.Int("states", ch.NumStates()),
		attribute.Int("transitions", ch.NumTransitions()),
	)

	if !ch.CanReach(prop.Label) {
		span.SetAttributes(attribute.Bool("qualitative", true))
		return Result{}, nil
	}
	res, err := s.Solve(ctx, ch, prop)
	if err == nil {
		err = Check(res)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.Float64("probability", res.Probability))
	return res, nil
}
