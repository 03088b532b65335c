// Package chain turns a guided exploration into a finite absorbing
// continuous-time Markov chain for an external probabilistic solver.
package chain

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fluentverification/wayfarer/crn"
)

// ErrInconsistentChain reports a row whose entries disagree with its exit
// rate. It always indicates a construction bug.
var ErrInconsistentChain = errors.New("inconsistent chain")

// AbsorbingIndex is the row of the sink that collects unexplored mass.
const AbsorbingIndex = 0

// Labels attached to rows.
const (
	LabelInit      = "init"
	LabelSatisfy   = "satisfy"
	LabelAbsorbing = "absorbing"
	LabelDeadlock  = "deadlock"
)

// rateTolerance is relative to the row's exit rate.
const rateTolerance = 1e-9

// Entry is one nonzero rate of a row.
type Entry struct {
	Column int
	Rate   float64
}

// Chain is a sparse rate matrix with exit rates and labels. Row i+1 holds
// the explored state with discovery index i.
type Chain struct {
	Rows      [][]Entry
	ExitRates []float64
	Labels    map[string][]int
	// States maps rows to vectors; row 0 has none.
	States    []crn.State
	TimeBound float64
}

// NumStates returns the number of rows including the absorbing row.
func (c *Chain) NumStates() int { return len(c.Rows) }

// NumTransitions counts the nonzero entries.
func (c *Chain) NumTransitions() int {
	n := 0
	for _, row := range c.Rows {
		n += len(row)
	}
	return n
}

// Labeled returns the rows carrying label.
func (c *Chain) Labeled(label string) []int { return c.Labels[label] }

// HasLabel reports whether row carries label.
func (c *Chain) HasLabel(row int, label string) bool {
	for _, r := range c.Labels[label] {
		if r == row {
			return true
		}
	}
	return false
}

// Validate checks every row: no entry exceeds the exit rate and the
// entries sum to it.
func (c *Chain) Validate() error {
	if len(c.ExitRates) != len(c.Rows) {
		return fmt.Errorf("%w: %d exit rates for %d rows", ErrInconsistentChain, len(c.ExitRates), len(c.Rows))
	}
	for r, row := range c.Rows {
		exit := c.ExitRates[r]
		if len(row) == 0 {
			return fmt.Errorf("%w: row %d has no entries", ErrInconsistentChain, r)
		}
		tol := rateTolerance * math.Max(1, exit)
		sum, top := 0.0, 0.0
		for _, e := range row {
			if e.Rate <= 0 || e.Column < 0 || e.Column >= len(c.Rows) {
				return fmt.Errorf("%w: row %d has entry %+v", ErrInconsistentChain, r, e)
			}
			sum += e.Rate
			top = math.Max(top, e.Rate)
		}
		if top > exit+tol {
			return fmt.Errorf("%w: row %d entry %g exceeds exit rate %g", ErrInconsistentChain, r, top, exit)
		}
		if math.Abs(sum-exit) > tol {
			return fmt.Errorf("%w: row %d sums to %g, exit rate %g", ErrInconsistentChain, r, sum, exit)
		}
	}
	return nil
}

// mergeEntries folds entries with equal columns and sorts by column.
func mergeEntries(entries []Entry) []Entry {
	byCol := make(map[int]float64, len(entries))
	for _, e := range entries {
		byCol[e.Column] += e.Rate
	}
	out := make([]Entry, 0, len(byCol))
	for col, rate := range byCol {
		out = append(out, Entry{Column: col, Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}
