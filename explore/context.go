// Package explore runs the guided searches over a reaction network and
// reconstructs witness traces from the recorded predecessor edges.
package explore

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/heuristic"
)

var tracer = otel.Tracer("wayfarer/explore")

const (
	DefaultTracebackSlack   = 10
	DefaultProgressInterval = 100000
	DefaultMaxWalkSteps     = 100000
	DefaultMaxWalks         = 1000
)

// Context owns every piece of mutable state of one exploration run. It is
// not safe for concurrent use; run independent explorations on separate
// contexts.
type Context struct {
	net     *crn.Network
	base    *slog.Logger
	logger  *slog.Logger
	metrics *Metrics

	seed          uint64
	rng           *rand.Rand
	slack         int
	progressEvery int
	fullExpansion bool
	flowAngle     bool
	weights       heuristic.FlowWeights
	maxWalkSteps  int
	maxWalks      int
	sampling      Sampling

	runID         string
	visited       map[string]*State
	states        []*State
	backward      map[int][]BackPointer
	satisfying    []*State
	witnesses     []Witness
	lowerBound    float64
	found         int
	expanded      int
	forceEnd      bool
	tracebackHalt bool
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the base logger. Each run adds a run_id attribute.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.base = l
		}
	}
}

// WithMetrics records into m instead of a private registry.
func WithMetrics(m *Metrics) Option {
	return func(c *Context) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSeed seeds the random-walk generator.
func WithSeed(seed uint64) Option {
	return func(c *Context) { c.seed = seed }
}

// WithTracebackSlack bounds how many paths beyond the remaining witness
// budget a single traceback may explore.
func WithTracebackSlack(n int) Option {
	return func(c *Context) {
		if n >= 0 {
			c.slack = n
		}
	}
}

// WithProgressInterval logs progress every n expanded states. Zero
// disables progress logging.
func WithProgressInterval(n int) Option {
	return func(c *Context) {
		if n >= 0 {
			c.progressEvery = n
		}
	}
}

// WithFullExpansion lets the subspace search follow every enabled
// transition and disables its pruning rules.
func WithFullExpansion(on bool) Option {
	return func(c *Context) { c.fullExpansion = on }
}

// WithFlowAngle adds the flow-angle penalty to the primitive priority.
func WithFlowAngle(on bool) Option {
	return func(c *Context) { c.flowAngle = on }
}

// WithFlowWeights sets the flow vector blend.
func WithFlowWeights(w heuristic.FlowWeights) Option {
	return func(c *Context) { c.weights = w }
}

// WithWalkBudget bounds the random strategy: steps per walk and total walks.
func WithWalkBudget(steps, walks int) Option {
	return func(c *Context) {
		if steps > 0 {
			c.maxWalkSteps = steps
		}
		if walks > 0 {
			c.maxWalks = walks
		}
	}
}

// WithSampling sets how the random strategy picks transitions.
func WithSampling(s Sampling) Option {
	return func(c *Context) { c.sampling = s }
}

// NewContext returns a reset context for net.
func NewContext(net *crn.Network, opts ...Option) *Context {
	c := &Context{
		net:           net,
		base:          net.Logger(),
		seed:          1,
		slack:         DefaultTracebackSlack,
		progressEvery: DefaultProgressInterval,
		weights:       heuristic.DefaultFlowWeights(),
		maxWalkSteps:  DefaultMaxWalkSteps,
		maxWalks:      DefaultMaxWalks,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(prometheus.NewRegistry())
	}
	c.Reset()
	return c
}

// Reset clears every count, the backward pointers, the lower bound and the
// visited table, reseeds the generator and starts a new run id.
func (c *Context) Reset() {
	c.runID = uuid.NewString()
	c.logger = c.base.With("run_id", c.runID)
	c.rng = rand.New(rand.NewPCG(c.seed, c.seed^0x9e3779b97f4a7c15))
	c.visited = make(map[string]*State)
	c.states = nil
	c.backward = make(map[int][]BackPointer)
	c.satisfying = nil
	c.witnesses = nil
	c.lowerBound = 0
	c.found = 0
	c.expanded = 0
	c.forceEnd = false
	c.tracebackHalt = false
}

// Stop ends the running search after the current state.
func (c *Context) Stop() { c.forceEnd = true }

// Stopped reports whether Stop was called during this run.
func (c *Context) Stopped() bool { return c.forceEnd }

// Network returns the explored network.
func (c *Context) Network() *crn.Network { return c.net }

// Logger returns the run-scoped logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Metrics returns the metrics the context records into.
func (c *Context) Metrics() *Metrics { return c.metrics }

// RunID identifies the current run in logs.
func (c *Context) RunID() string { return c.runID }

// States returns the discovered states in discovery order.
func (c *Context) States() []*State { return c.states }

// Lookup finds a discovered state by vector.
func (c *Context) Lookup(v crn.State) (*State, bool) {
	s, ok := c.visited[v.Key()]
	return s, ok
}

// BackPointers returns the recorded predecessors of s.
func (c *Context) BackPointers(s *State) []BackPointer { return c.backward[s.Index] }

// Satisfying returns the satisfying states in the order they were found.
func (c *Context) Satisfying() []*State { return c.satisfying }

// Witnesses returns the witnesses emitted so far.
func (c *Context) Witnesses() []Witness { return c.witnesses }

// LowerBound is the sum of the emitted witness probabilities.
func (c *Context) LowerBound() float64 { return c.lowerBound }

// Found is the number of satisfying states found.
func (c *Context) Found() int { return c.found }

// Expanded is the number of states whose successors were generated.
func (c *Context) Expanded() int { return c.expanded }

type scorer func(s *State)

// admitFunc decides whether a freshly generated successor may be
// discovered. A rejection names the reason for the pruned metric.
type admitFunc func(parent, child *State) (bool, string)

func (c *Context) newState(v crn.State) *State {
	return &State{
		Vector:     v,
		Adjusted:   v.Sub(c.net.Initial()),
		Satisfying: heuristic.Satisfies(v, c.net.Boundary()),
	}
}

func (c *Context) register(s *State) {
	s.Index = len(c.states)
	s.Perimeter = true
	c.states = append(c.states, s)
	c.visited[s.Vector.Key()] = s
	c.metrics.discovered.Inc()
}

// seedInitial discovers the initial state.
func (c *Context) seedInitial(score scorer, obs Observer) *State {
	s := c.newState(c.net.Initial())
	score(s)
	c.register(s)
	if obs != nil {
		obs.OnDiscover(s)
	}
	return s
}

// expand generates the successors of s through the allowed transitions.
// Every followed edge gets a backward pointer unless it leads into the
// initial state or back into s. It returns the newly discovered states.
func (c *Context) expand(s *State, allowed []int, score scorer, admit admitFunc, obs Observer) []*State {
	s.Perimeter = false
	c.expanded++
	c.metrics.expanded.Inc()

	transitions := c.net.Transitions()
	full := c.net.OutgoingRate(s.Vector)
	var edges []Edge
	var fresh []*State
	for _, idx := range allowed {
		t := transitions[idx]
		if !t.Enabled(s.Vector) {
			continue
		}
		rate := t.Rate(s.Vector)
		if rate <= 0 {
			continue
		}
		next := t.Apply(s.Vector)
		if !c.net.Valid(next) {
			continue
		}
		child, seen := c.visited[next.Key()]
		if !seen {
			child = c.newState(next)
			score(child)
			if admit != nil {
				if ok, reason := admit(s, child); !ok {
					c.metrics.pruned.WithLabelValues(reason).Inc()
					continue
				}
			}
			c.register(child)
			fresh = append(fresh, child)
			if obs != nil {
				obs.OnDiscover(child)
			}
		}
		if child.Index != 0 && child != s {
			c.backward[child.Index] = append(c.backward[child.Index], BackPointer{
				Parent:      s,
				Transition:  idx,
				Probability: rate / full,
			})
		}
		edges = append(edges, Edge{Target: child, Transition: idx, Rate: rate})
	}
	if obs != nil {
		obs.OnExpanded(s, edges, full)
	}
	return fresh
}

// satisfy records a dequeued satisfying state and traces witnesses back
// from it.
func (c *Context) satisfy(s *State, count int, obs Observer) {
	s.Perimeter = false
	c.satisfying = append(c.satisfying, s)
	c.found++
	c.metrics.satisfying.Inc()
	c.logger.Debug("found satisfying state", "state", s.Vector.String(), "found", c.found)
	if obs != nil {
		obs.OnSatisfying(s)
	}
	c.traceback(s, count)
}

// run is the loop shared by the queue-based strategies.
func (c *Context) run(ctx context.Context, q *Queue[*State], count int, obs Observer,
	allowed func(*State) []int, score scorer, admit admitFunc) error {
	for q.Len() > 0 && c.found < count && !c.forceEnd {
		if err := ctx.Err(); err != nil {
			c.Stop()
			return fmt.Errorf("%w: %w", ErrStopped, err)
		}
		s, _ := q.Pop()
		if s.Satisfying {
			c.satisfy(s, count, obs)
			continue
		}
		for _, child := range c.expand(s, allowed(s), score, admit, obs) {
			q.Push(child)
		}
		c.metrics.queueDepth.Set(float64(q.Len()))
		if c.progressEvery > 0 && c.expanded%c.progressEvery == 0 {
			c.logger.Info("exploring",
				"explored", len(c.states), "expanded", c.expanded,
				"queued", q.Len(), "satisfying", c.found)
		}
	}
	return nil
}

// sanityCheck verifies that the visited table and the discovery order
// agree.
func (c *Context) sanityCheck() error {
	if len(c.visited) != len(c.states) {
		return fmt.Errorf("%w: %d keys for %d states", ErrCorruptIndex, len(c.visited), len(c.states))
	}
	for i, s := range c.states {
		if s.Index != i || c.visited[s.Vector.Key()] != s {
			return fmt.Errorf("%w: state %s at position %d", ErrCorruptIndex, s.Vector, i)
		}
	}
	return nil
}

type runSpan struct {
	ctx   context.Context
	span  trace.Span
	mode  string
	start time.Time
}

// begin resets the context and opens the run's span.
func (c *Context) begin(ctx context.Context, mode string, count int) runSpan {
	c.Reset()
	ctx, span := tracer.Start(ctx, "explore."+mode, trace.WithAttributes(
		attribute.String("run_id", c.runID),
		attribute.Int("requested", count),
		attribute.Int("species", c.net.NumSpecies()),
		attribute.Int("transitions", len(c.net.Transitions())),
	))
	c.metrics.runs.WithLabelValues(mode).Inc()
	c.logger.Info("exploration started", "mode", mode, "requested", count)
	return runSpan{ctx: ctx, span: span, mode: mode, start: time.Now()}
}

// end closes the span and assembles the result.
func (c *Context) end(rs runSpan, count int, err error) (*Result, error) {
	if err == nil {
		err = c.sanityCheck()
	}
	elapsed := time.Since(rs.start)
	c.metrics.duration.WithLabelValues(rs.mode).Observe(elapsed.Seconds())
	c.metrics.lowerBound.Set(c.lowerBound)

	res := &Result{
		RunID:      c.runID,
		Mode:       rs.mode,
		Requested:  count,
		Witnesses:  c.witnesses,
		LowerBound: c.lowerBound,
		Explored:   len(c.states),
		Expanded:   c.expanded,
		Satisfying: c.found,
		Duration:   elapsed,
	}
	rs.span.SetAttributes(
		attribute.Int("explored", res.Explored),
		attribute.Int("satisfying", res.Satisfying),
		attribute.Int("witnesses", len(res.Witnesses)),
		attribute.Float64("lower_bound", res.LowerBound),
	)
	if err != nil {
		rs.span.RecordError(err)
		rs.span.SetStatus(codes.Error, err.Error())
		c.logger.Error("exploration failed", "mode", rs.mode, "error", err)
	}
	rs.span.End()
	c.logger.Info(res.Summary(), "mode", rs.mode, "lower_bound", res.LowerBound, "duration", elapsed)
	return res, err
}
