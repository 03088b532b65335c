package explore

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/heuristic"
)

// Sampling selects how a random walk picks its next transition.
type Sampling int

const (
	// SampleUniform picks uniformly among enabled transitions.
	SampleUniform Sampling = iota
	// SampleRate picks proportionally to transition rates.
	SampleRate
)

// ParseSampling accepts "uniform" and "rate".
func ParseSampling(s string) (Sampling, error) {
	switch s {
	case "uniform", "":
		return SampleUniform, nil
	case "rate":
		return SampleRate, nil
	}
	return SampleUniform, fmt.Errorf("unknown sampling %q", s)
}

func (s Sampling) String() string {
	if s == SampleRate {
		return "rate"
	}
	return "uniform"
}

// FindWitnessesRandomly samples walks from the initial state. By default
// the next transition is chosen uniformly among those enabled; either way
// each step contributes its true rate share to the trace probability. A
// walk ends on reaching the target or after the step budget. Walks that
// repeat an accepted trace are discarded.
func FindWitnessesRandomly(ctx context.Context, c *Context, count int) (*Result, error) {
	rs := c.begin(ctx, "random", count)

	seen := make(map[string]bool)
	var err error
	for walk := 0; walk < c.maxWalks && len(c.witnesses) < count && !c.forceEnd; walk++ {
		if ctxErr := rs.ctx.Err(); ctxErr != nil {
			c.Stop()
			err = fmt.Errorf("%w: %w", ErrStopped, ctxErr)
			break
		}
		path, prob, logp, ok := c.walk()
		if !ok {
			continue
		}
		key := traceKey(path)
		if seen[key] {
			c.metrics.pruned.WithLabelValues("duplicate_trace").Inc()
			continue
		}
		seen[key] = true

		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		c.found++
		c.metrics.satisfying.Inc()
		c.addWitness(Witness{Probability: prob, LogProbability: logp, States: path})
	}
	return c.end(rs, count, err)
}

// walk returns the visited states in forward order and whether the walk
// reached the target.
func (c *Context) walk() ([]crn.State, float64, float64, bool) {
	transitions := c.net.Transitions()
	boundary := c.net.Boundary()
	s := c.net.Initial()
	path := []crn.State{s}
	prob, logp := 1.0, 0.0
	for step := 0; ; step++ {
		if heuristic.Satisfies(s, boundary) {
			return path, prob, logp, true
		}
		if step >= c.maxWalkSteps {
			return nil, 0, 0, false
		}
		var candidates []int
		var rates []float64
		total := 0.0
		for _, idx := range c.net.Enabled(s) {
			if next := transitions[idx].Apply(s); c.net.Valid(next) {
				r := transitions[idx].Rate(s)
				candidates = append(candidates, idx)
				rates = append(rates, r)
				total += r
			}
		}
		if len(candidates) == 0 {
			return nil, 0, 0, false
		}
		pick := c.pick(rates, total)
		share := rates[pick] / c.net.OutgoingRate(s)
		prob *= share
		logp += math.Log(share)
		s = transitions[candidates[pick]].Apply(s)
		path = append(path, s)
		c.expanded++
		c.metrics.expanded.Inc()
	}
}

func (c *Context) pick(rates []float64, total float64) int {
	if c.sampling == SampleUniform {
		return c.rng.IntN(len(rates))
	}
	x := c.rng.Float64() * total
	for i, r := range rates {
		if x < r {
			return i
		}
		x -= r
	}
	return len(rates) - 1
}

func traceKey(path []crn.State) string {
	keys := make([]string, len(path))
	for i, s := range path {
		keys[i] = s.Key()
	}
	return strings.Join(keys, ";")
}
