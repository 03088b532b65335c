package dependency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentverification/wayfarer/crn"
)

// chain: r1 makes A, r2 turns A into B, r3 turns B into C. r4 feeds C
// back into A and r5 needs D, which nothing produces.
const chainRagtimer = "A\tB\tC\tD\n" +
	"0\t0\t0\t0\n" +
	"-1\t-1\t1\t-1\n" +
	"r1\t0\t>\tA\t1\n" +
	"r2\tA\t>\tB\t1\n" +
	"r3\tB\t>\tC\t1\n" +
	"r4\tC\t>\tA\t1\n" +
	"r5\tD\t>\tC\t1\n"

func load(t *testing.T, text string) *crn.Network {
	t.Helper()
	net, err := crn.ParseRagtimer(strings.NewReader(text))
	require.NoError(t, err)
	return net
}

func levelOf(t *testing.T, g *Graph, net *crn.Network, name string) (int, bool) {
	t.Helper()
	tr, ok := net.Transition(name)
	require.True(t, ok)
	return g.ReactionLevel(net.TransitionIndex(tr))
}

func TestBuildProducersAndConsumers(t *testing.T) {
	net := load(t, chainRagtimer)
	g, err := Build(net, Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 3}, g.Producers[0])
	assert.Equal(t, []int{1}, g.Producers[1])
	assert.Equal(t, []int{2, 4}, g.Producers[2])
	assert.Empty(t, g.Producers[3])
	assert.Equal(t, []int{1}, g.Consumers[0])
	assert.Equal(t, []int{4}, g.Consumers[3])
}

func TestBuildLevels(t *testing.T) {
	net := load(t, chainRagtimer)
	g, err := Build(net, Options{})
	require.NoError(t, err)

	for name, want := range map[string]int{"r1": 0, "r2": 1, "r3": 2, "r4": 3} {
		got, ok := levelOf(t, g, net, name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := levelOf(t, g, net, "r5")
	assert.False(t, ok, "r5 needs D, which nothing produces")

	levels := g.Levels()
	require.Len(t, levels, 4)
	assert.Equal(t, []int{0}, levels[0].Transitions)
	assert.Equal(t, []int{0, 1, 2, 3}, g.Relevant())
}

func TestBuildMarksDeadAndPrunedNodes(t *testing.T) {
	net := load(t, chainRagtimer)
	g, err := Build(net, Options{})
	require.NoError(t, err)

	var dead, pruned int
	for _, nd := range g.Nodes() {
		if nd.Dead {
			dead++
			assert.Equal(t, "r5", nd.Reaction.Name)
			assert.Equal(t, -1, nd.Level)
		}
		if nd.Pruned {
			pruned++
			assert.Equal(t, "r4", nd.Reaction.Name)
			assert.NotEmpty(t, nd.Children, "pruned nodes are relinked to the finished expansion")
		}
	}
	assert.Equal(t, 1, dead)
	assert.Equal(t, 1, pruned)
}

func TestBuildUsesInitialSupply(t *testing.T) {
	text := strings.Replace(chainRagtimer, "0\t0\t0\t0\n", "1\t0\t0\t0\n", 1)
	net := load(t, text)

	g, err := Build(net, Options{})
	require.NoError(t, err)
	level, ok := levelOf(t, g, net, "r2")
	require.True(t, ok)
	assert.Equal(t, 0, level, "the initial A enables r2 directly")

	g, err = Build(net, Options{Agnostic: true})
	require.NoError(t, err)
	level, ok = levelOf(t, g, net, "r2")
	require.True(t, ok)
	assert.Equal(t, 1, level)
}

func TestBuildFollowsConsumersForExcess(t *testing.T) {
	text := "A\tB\n" +
		"5\t0\n" +
		"2\t-1\n" +
		"drain\tA\t>\t0\t1\n" +
		"fill\t0\t>\tA\t1\n"
	net := load(t, text)
	g, err := Build(net, Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{-3, 0}, g.Root.Required)
	_, ok := levelOf(t, g, net, "drain")
	assert.True(t, ok)
	_, ok = levelOf(t, g, net, "fill")
	assert.False(t, ok)
}

func TestBuildSatisfiedInequalityNeedsNothing(t *testing.T) {
	text := "A\n" +
		"5\n" +
		"0\n" +
		"fill\t0\t>\tA\t1\n"
	net := load(t, text)
	tr, _ := net.Transition("fill")
	bounded, err := crn.NewNetwork(net.Species(), net.Initial(),
		crn.Boundary{{Value: 3, Kind: crn.GreaterThan}}, []*crn.Transition{tr})
	require.NoError(t, err)

	g, err := Build(bounded, Options{})
	require.NoError(t, err)
	assert.True(t, g.Root.Leaf())
	assert.Empty(t, g.Levels())
}

func TestBuildRejectsUnconstrainedTarget(t *testing.T) {
	text := "A\n0\n-1\nfill\t0\t>\tA\t1\n"
	_, err := Build(load(t, text), Options{})
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestGraphString(t *testing.T) {
	net := load(t, chainRagtimer)
	g, err := Build(net, Options{})
	require.NoError(t, err)

	out := g.String()
	assert.Contains(t, out, "Total Reactions: 5\n")
	assert.Contains(t, out, "Producing Reactions: 5\n")
	assert.Contains(t, out, "Level 0: r1\n")
	assert.Contains(t, out, "Level 3: r4\n")
}
