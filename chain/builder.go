package chain

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/subspace"
)

var tracer = otel.Tracer("wayfarer/chain")

// Builder assembles a chain from exploration events. It implements
// explore.Observer.
type Builder struct {
	rows      [][]Entry
	exit      []float64
	done      []bool
	satisfy   []int
	deadlock  []int
	states    []*explore.State
	timeBound float64
	logger    *slog.Logger
}

// NewBuilder returns a builder holding only the absorbing row.
func NewBuilder(timeBound float64, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		rows:      [][]Entry{{{Column: AbsorbingIndex, Rate: 1}}},
		exit:      []float64{1},
		done:      []bool{true},
		states:    []*explore.State{nil},
		timeBound: timeBound,
		logger:    logger,
	}
}

func row(s *explore.State) int { return s.Index + 1 }

func (b *Builder) grow(r int) {
	for len(b.rows) <= r {
		b.rows = append(b.rows, nil)
		b.exit = append(b.exit, 0)
		b.done = append(b.done, false)
		b.states = append(b.states, nil)
	}
}

// OnDiscover reserves the row of s.
func (b *Builder) OnDiscover(s *explore.State) {
	b.grow(row(s))
	b.states[row(s)] = s
}

// OnSatisfying turns s into a labeled self-loop.
func (b *Builder) OnSatisfying(s *explore.State) {
	r := row(s)
	b.grow(r)
	b.selfLoop(r)
	b.satisfy = append(b.satisfy, r)
}

// OnExpanded writes the followed edges of s and sends the rate of every
// transition that was not followed to the absorbing row.
func (b *Builder) OnExpanded(s *explore.State, edges []explore.Edge, fullRate float64) {
	r := row(s)
	b.grow(r)
	if fullRate <= 0 {
		b.selfLoop(r)
		b.deadlock = append(b.deadlock, r)
		return
	}
	entries := make([]Entry, 0, len(edges)+1)
	expanded := 0.0
	for _, e := range edges {
		entries = append(entries, Entry{Column: row(e.Target), Rate: e.Rate})
		expanded += e.Rate
	}
	b.close(r, entries, expanded, fullRate)
}

// close stores a row whose entries cover expanded out of full.
func (b *Builder) close(r int, entries []Entry, expanded, full float64) {
	if shortfall := full - expanded; shortfall > rateTolerance*full {
		entries = append(entries, Entry{Column: AbsorbingIndex, Rate: shortfall})
	}
	b.rows[r] = mergeEntries(entries)
	b.exit[r] = full
	b.done[r] = true
}

func (b *Builder) selfLoop(r int) {
	b.rows[r] = []Entry{{Column: r, Rate: 1}}
	b.exit[r] = 1
	b.done[r] = true
}

// Finalize closes every row that was discovered but never dequeued. Each
// enabled transition leads to its target row when that state is known and
// to the absorbing row otherwise.
func (b *Builder) Finalize(c *explore.Context) {
	net := c.Network()
	transitions := net.Transitions()
	flushed := 0
	for r, s := range b.states {
		if s == nil || b.done[r] {
			continue
		}
		flushed++
		if s.Satisfying {
			b.selfLoop(r)
			b.satisfy = append(b.satisfy, r)
			continue
		}
		full := net.OutgoingRate(s.Vector)
		if full <= 0 {
			b.selfLoop(r)
			b.deadlock = append(b.deadlock, r)
			continue
		}
		var entries []Entry
		expanded := 0.0
		for _, idx := range net.Enabled(s.Vector) {
			target, ok := c.Lookup(transitions[idx].Apply(s.Vector))
			if !ok {
				continue
			}
			rate := transitions[idx].Rate(s.Vector)
			entries = append(entries, Entry{Column: row(target), Rate: rate})
			expanded += rate
		}
		b.close(r, entries, expanded, full)
	}
	b.logger.Debug("finalized perimeter", "rows", flushed)
}

// Chain returns the assembled chain.
func (b *Builder) Chain() *Chain {
	ch := &Chain{
		Rows:      b.rows,
		ExitRates: b.exit,
		Labels:    make(map[string][]int),
		States:    make([]crn.State, len(b.states)),
		TimeBound: b.timeBound,
	}
	for r, s := range b.states {
		if s != nil {
			ch.States[r] = s.Vector
		}
	}
	ch.Labels[LabelAbsorbing] = []int{AbsorbingIndex}
	if len(b.rows) > 1 {
		ch.Labels[LabelInit] = []int{1}
	}
	ch.Labels[LabelSatisfy] = sortedRows(b.satisfy)
	ch.Labels[LabelDeadlock] = sortedRows(append(append([]int{AbsorbingIndex}, b.satisfy...), b.deadlock...))
	return ch
}

func sortedRows(rows []int) []int {
	out := append([]int(nil), rows...)
	sort.Ints(out)
	return out
}

// Build runs the subspace-guided exploration with a builder attached,
// finalizes the perimeter and validates the result.
func Build(ctx context.Context, c *explore.Context, d *subspace.Decomposition, count int, timeBound float64) (*Chain, *explore.Result, error) {
	ctx, span := tracer.Start(ctx, "chain.Build")
	defer span.End()

	b := NewBuilder(timeBound, c.Logger())
	res, err := explore.Explore(ctx, c, d, count, b)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, res, err
	}
	b.Finalize(c)
	ch := b.Chain()
	span.SetAttributes(
		attribute.Int("states", ch.NumStates()),
		attribute.Int("transitions", ch.NumTransitions()),
	)
	if err := ch.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, res, err
	}
	c.Logger().Info("chain built", "states", ch.NumStates(), "transitions", ch.NumTransitions(),
		"satisfying", len(ch.Labeled(LabelSatisfy)))
	return ch, res, nil
}
