// Package dependency derives which reactions must fire, and in what
// order of depth, for the target region to become reachable.
package dependency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/heuristic"
)

// ErrNoTarget is returned when every species is DontCare.
var ErrNoTarget = errors.New("target constrains no species")

// Options controls graph construction.
type Options struct {
	// Agnostic ignores what the initial state already supplies when
	// computing the requirement of a reaction.
	Agnostic bool
}

// Node is one reaction in the graph together with what it needs before it
// can fire. The root node has no reaction and requires the target deficit.
type Node struct {
	Reaction *crn.Transition
	// Required is the deficit this node must cover.
	Required []int
	Children []*Node
	// Level is 0 for nodes that need nothing further, 1 + the smallest
	// child level otherwise, and -1 when no finite level exists.
	Level int
	// Dead is set when some species in Required has no producer (or no
	// consumer) at all.
	Dead bool
	// Pruned is set when Required was already being expanded higher up.
	Pruned bool
}

// Leaf reports whether the node requires nothing.
func (n *Node) Leaf() bool {
	for _, v := range n.Required {
		if v != 0 {
			return false
		}
	}
	return true
}

// Level groups the transitions assigned to one depth.
type Level struct {
	Index       int
	Transitions []int
}

// Graph is the result of Build.
type Graph struct {
	Root *Node
	// Producers and Consumers hold transition indices per species.
	Producers [][]int
	Consumers [][]int

	net    *crn.Network
	nodes  []*Node
	levels []int
}

type memoEntry struct {
	children []*Node
	done     bool
}

type builder struct {
	net   *crn.Network
	opts  Options
	memo  map[string]*memoEntry
	graph *Graph
}

// Build constructs the dependency graph of net.
func Build(net *crn.Network, opts Options) (*Graph, error) {
	boundary := net.Boundary()
	constrained := false
	for _, b := range boundary {
		if b.Kind != crn.DontCare {
			constrained = true
		}
	}
	if !constrained {
		return nil, ErrNoTarget
	}

	n := net.NumSpecies()
	g := &Graph{
		Producers: make([][]int, n),
		Consumers: make([][]int, n),
		net:       net,
	}
	for idx, t := range net.Transitions() {
		for i := 0; i < n; i++ {
			if t.IsProducerOf(i) {
				g.Producers[i] = append(g.Producers[i], idx)
			}
			if t.IsConsumerOf(i) {
				g.Consumers[i] = append(g.Consumers[i], idx)
			}
		}
	}

	b := &builder{net: net, opts: opts, memo: make(map[string]*memoEntry), graph: g}
	g.Root = b.node(nil, rootDeficit(net))
	b.resolvePruned()
	b.assignLevels()
	return g, nil
}

// rootDeficit is (target - initial) masked by the constrained species.
// Inequality bounds the initial state already meets contribute nothing.
func rootDeficit(net *crn.Network) []int {
	signed := heuristic.SignedDistanceVector(net.Initial(), net.Boundary())
	out := make([]int, len(signed))
	for i, v := range signed {
		out[i] = int(math.Round(v))
	}
	return out
}

func (b *builder) node(reaction *crn.Transition, required []int) *Node {
	nd := &Node{Reaction: reaction, Required: required, Level: -1}
	b.graph.nodes = append(b.graph.nodes, nd)
	if nd.Leaf() {
		return nd
	}

	key := crn.State(required).Key()
	if entry, ok := b.memo[key]; ok {
		if !entry.done {
			nd.Pruned = true
			return nd
		}
		nd.Children = entry.children
		nd.Dead = b.dead(required)
		return nd
	}

	entry := &memoEntry{}
	b.memo[key] = entry
	nd.Dead = b.dead(required)
	transitions := b.net.Transitions()
	for i, d := range required {
		var candidates []int
		switch {
		case d > 0:
			candidates = b.graph.Producers[i]
		case d < 0:
			candidates = b.graph.Consumers[i]
		}
		for _, idx := range candidates {
			t := transitions[idx]
			entry.children = append(entry.children, b.node(t, b.requirement(t)))
		}
	}
	entry.done = true
	nd.Children = entry.children
	return nd
}

// dead reports whether some nonzero entry of required has nothing that
// could move it.
func (b *builder) dead(required []int) bool {
	for i, d := range required {
		if d > 0 && len(b.graph.Producers[i]) == 0 {
			return true
		}
		if d < 0 && len(b.graph.Consumers[i]) == 0 {
			return true
		}
	}
	return false
}

// requirement is what must additionally hold for t to be enabled. It is
// a fresh vector, not a reduction of the parent's deficit.
func (b *builder) requirement(t *crn.Transition) []int {
	req := t.Requirement()
	if b.opts.Agnostic {
		return req
	}
	initial := b.net.Initial()
	for i := range req {
		req[i] = max(req[i]-initial[i], 0)
	}
	return req
}

func (b *builder) resolvePruned() {
	for _, nd := range b.graph.nodes {
		if !nd.Pruned {
			continue
		}
		if entry, ok := b.memo[crn.State(nd.Required).Key()]; ok {
			nd.Children = entry.children
			nd.Dead = b.dead(nd.Required)
		}
	}
}

// assignLevels relaxes node levels to their least fixpoint. Nodes on
// cycles with no way out and dead nodes keep level -1.
func (b *builder) assignLevels() {
	for _, nd := range b.graph.nodes {
		if nd.Leaf() {
			nd.Level = 0
		}
	}
	for changed := true; changed; {
		changed = false
		for _, nd := range b.graph.nodes {
			if nd.Leaf() || nd.Dead {
				continue
			}
			best := -1
			for _, c := range nd.Children {
				if c.Level >= 0 && (best < 0 || c.Level < best) {
					best = c.Level
				}
			}
			if best >= 0 && (nd.Level < 0 || best+1 < nd.Level) {
				nd.Level = best + 1
				changed = true
			}
		}
	}

	g := b.graph
	g.levels = make([]int, len(b.net.Transitions()))
	for i := range g.levels {
		g.levels[i] = -1
	}
	for _, nd := range g.nodes {
		if nd.Reaction == nil || nd.Level < 0 {
			continue
		}
		idx := b.net.TransitionIndex(nd.Reaction)
		if g.levels[idx] < 0 || nd.Level < g.levels[idx] {
			g.levels[idx] = nd.Level
		}
	}
}

// ReactionLevel returns the level of the transition at idx, or false when
// the transition plays no part in reaching the target.
func (g *Graph) ReactionLevel(idx int) (int, bool) {
	if idx < 0 || idx >= len(g.levels) || g.levels[idx] < 0 {
		return 0, false
	}
	return g.levels[idx], true
}

// Levels returns the transitions grouped by level, starting at level 0.
// Intermediate levels with no transitions are included empty.
func (g *Graph) Levels() []Level {
	top := -1
	for _, l := range g.levels {
		top = max(top, l)
	}
	out := make([]Level, top+1)
	for i := range out {
		out[i].Index = i
	}
	for idx, l := range g.levels {
		if l >= 0 {
			out[l].Transitions = append(out[l].Transitions, idx)
		}
	}
	return out
}

// Relevant returns the indices of every transition that has a level.
func (g *Graph) Relevant() []int {
	var out []int
	for idx, l := range g.levels {
		if l >= 0 {
			out = append(out, idx)
		}
	}
	return out
}

// Nodes returns every node created during construction.
func (g *Graph) Nodes() []*Node { return g.nodes }

func (g *Graph) String() string {
	transitions := g.net.Transitions()
	producing, consuming := map[int]bool{}, map[int]bool{}
	for i := range g.Producers {
		for _, idx := range g.Producers[i] {
			producing[idx] = true
		}
		for _, idx := range g.Consumers[i] {
			consuming[idx] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("Dependency Graph:\n")
	fmt.Fprintf(&sb, "Total Reactions: %d\n", len(transitions))
	fmt.Fprintf(&sb, "Producing Reactions: %d\n", len(producing))
	fmt.Fprintf(&sb, "Consuming Reactions: %d\n", len(consuming))
	for _, level := range g.Levels() {
		names := make([]string, 0, len(level.Transitions))
		for _, idx := range level.Transitions {
			names = append(names, transitions[idx].Name)
		}
		sort.Strings(names)
		fmt.Fprintf(&sb, "Level %d:", level.Index)
		for _, name := range names {
			sb.WriteString(" " + name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
