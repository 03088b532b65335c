package chain

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/dependency"
	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/models/threespecies"
	"github.com/fluentverification/wayfarer/subspace"
)

func decompose(t *testing.T, net *crn.Network) *subspace.Decomposition {
	t.Helper()
	g, err := dependency.Build(net, dependency.Options{})
	require.NoError(t, err)
	return subspace.New(net, g, nil)
}

func TestBuildThreeSpecies(t *testing.T) {
	net, err := threespecies.New()
	require.NoError(t, err)
	c := explore.NewContext(net)

	ch, res, err := Build(context.Background(), c, decompose(t, net), 2, 0)
	require.NoError(t, err)
	require.NoError(t, ch.Validate())

	assert.Equal(t, len(c.States())+1, ch.NumStates())
	assert.Equal(t, []Entry{{Column: AbsorbingIndex, Rate: 1}}, ch.Rows[AbsorbingIndex])
	assert.Equal(t, []int{1}, ch.Labeled(LabelInit))
	assert.Equal(t, net.Initial(), ch.States[1])
	assert.GreaterOrEqual(t, len(ch.Labeled(LabelSatisfy)), res.Satisfying)
	assert.True(t, ch.HasLabel(AbsorbingIndex, LabelDeadlock))
	assert.True(t, ch.CanReach(LabelSatisfy))

	for _, r := range ch.Labeled(LabelSatisfy) {
		assert.Equal(t, []Entry{{Column: r, Rate: 1}}, ch.Rows[r])
	}

	// Every expanded row leaves at the full outgoing rate of its state.
	for r := 1; r < ch.NumStates(); r++ {
		if ch.HasLabel(r, LabelDeadlock) {
			continue
		}
		sum := 0.0
		for _, e := range ch.Rows[r] {
			sum += e.Rate
		}
		assert.InDelta(t, net.OutgoingRate(ch.States[r]), ch.ExitRates[r], 1e-9)
		assert.InDelta(t, ch.ExitRates[r], sum, 1e-9)
	}
}

func TestBuildRedirectsUnfollowedRate(t *testing.T) {
	// B is unconstrained. r2 lies outside the innermost subspace and r3
	// moves away from the target, so only r1 is followed.
	text := "A\tB\n2\t0\n3\t-1\n" +
		"r1\t0\t>\tA\t1\n" +
		"r2\tA\t>\tB\t1\n" +
		"r3\tA\t>\t0\t1\n"
	net, err := crn.ParseRagtimer(strings.NewReader(text))
	require.NoError(t, err)
	c := explore.NewContext(net)

	ch, _, err := Build(context.Background(), c, decompose(t, net), 1, 0)
	require.NoError(t, err)

	require.Equal(t, 3, ch.NumStates())
	assert.Equal(t, []Entry{{Column: AbsorbingIndex, Rate: 4}, {Column: 2, Rate: 1}}, ch.Rows[1])
	assert.Equal(t, 5.0, ch.ExitRates[1])
	assert.Equal(t, []int{2}, ch.Labeled(LabelSatisfy))
	assert.Equal(t, crn.State{3, 0}, ch.States[2])
}

func TestBuilderEvents(t *testing.T) {
	s0 := &explore.State{Vector: crn.State{0}, Index: 0}
	s1 := &explore.State{Vector: crn.State{1}, Index: 1}
	s2 := &explore.State{Vector: crn.State{2}, Index: 2}

	b := NewBuilder(5, nil)
	for _, s := range []*explore.State{s0, s1, s2} {
		b.OnDiscover(s)
	}
	b.OnExpanded(s0, []explore.Edge{{Target: s1, Rate: 2}, {Target: s1, Rate: 0.5}}, 3)
	b.OnSatisfying(s1)
	b.OnExpanded(s2, nil, 0)

	ch := b.Chain()
	require.NoError(t, ch.Validate())
	assert.Equal(t, 5.0, ch.TimeBound)
	assert.Equal(t, []Entry{{Column: 0, Rate: 0.5}, {Column: 2, Rate: 2.5}}, ch.Rows[1])
	assert.Equal(t, 3.0, ch.ExitRates[1])
	assert.Equal(t, []int{2}, ch.Labeled(LabelSatisfy))
	assert.Equal(t, []int{0, 2, 3}, ch.Labeled(LabelDeadlock))
	assert.Equal(t, []Entry{{Column: 3, Rate: 1}}, ch.Rows[3])
}

func TestValidateRejectsInconsistentRows(t *testing.T) {
	tests := []struct {
		name string
		ch   *Chain
	}{
		{"sum below exit", &Chain{
			Rows:      [][]Entry{{{Column: 0, Rate: 1}}, {{Column: 0, Rate: 1}}},
			ExitRates: []float64{1, 2},
		}},
		{"entry above exit", &Chain{
			Rows:      [][]Entry{{{Column: 0, Rate: 1}}, {{Column: 0, Rate: 3}, {Column: 1, Rate: -1}}},
			ExitRates: []float64{1, 2},
		}},
		{"empty row", &Chain{
			Rows:      [][]Entry{{{Column: 0, Rate: 1}}, nil},
			ExitRates: []float64{1, 0},
		}},
		{"column out of range", &Chain{
			Rows:      [][]Entry{{{Column: 0, Rate: 1}}, {{Column: 7, Rate: 1}}},
			ExitRates: []float64{1, 1},
		}},
		{"missing exit rates", &Chain{
			Rows:      [][]Entry{{{Column: 0, Rate: 1}}},
			ExitRates: nil,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.ch.Validate(), ErrInconsistentChain)
		})
	}
}

// lineChain: 0 absorbing, 1 -> 2 -> 3 (satisfy), 4 isolated self-loop.
func lineChain() *Chain {
	return &Chain{
		Rows: [][]Entry{
			{{Column: 0, Rate: 1}},
			{{Column: 2, Rate: 1}},
			{{Column: 0, Rate: 1}, {Column: 3, Rate: 1}},
			{{Column: 3, Rate: 1}},
			{{Column: 4, Rate: 1}},
		},
		ExitRates: []float64{1, 1, 2, 1, 1},
		Labels: map[string][]int{
			LabelInit:      {1},
			LabelSatisfy:   {3},
			LabelAbsorbing: {0},
			LabelDeadlock:  {0, 3},
		},
	}
}

func TestReachSet(t *testing.T) {
	ch := lineChain()
	reach := ch.ReachSet(LabelSatisfy)

	assert.True(t, reach.Equals(NewRowSet(1, 2, 3)))
	assert.True(t, ch.CanReach(LabelSatisfy))
	assert.True(t, ch.CanReach(LabelAbsorbing))

	ch.Labels[LabelInit] = []int{4}
	assert.False(t, ch.CanReach(LabelSatisfy))

	delete(ch.Labels, LabelInit)
	assert.False(t, ch.CanReach(LabelSatisfy))
}

func TestWriteExplicit(t *testing.T) {
	var tra, lab bytes.Buffer
	require.NoError(t, lineChain().WriteExplicit(&tra, &lab))

	assert.Equal(t, "ctmc\n"+
		"0 0 1\n"+
		"1 2 1\n"+
		"2 0 1\n"+
		"2 3 1\n"+
		"3 3 1\n"+
		"4 4 1\n", tra.String())
	assert.Equal(t, "#DECLARATION\n"+
		"init satisfy absorbing deadlock\n"+
		"#END\n"+
		"0 absorbing deadlock\n"+
		"1 init\n"+
		"3 satisfy deadlock\n", lab.String())
}

func TestWriteDOT(t *testing.T) {
	ch := lineChain()
	ch.States = []crn.State{nil, {0}, {1}, {2}, {3}}
	var buf bytes.Buffer
	require.NoError(t, ch.WriteDOT(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph Chain {\n"))
	assert.Contains(t, out, "  start -> r1;\n")
	assert.Contains(t, out, `  r0 [label="absorbing\n{absorbing, deadlock}", shape=doublecircle];`)
	assert.Contains(t, out, `  r3 [label="(2)\n{satisfy, deadlock}"];`)
	assert.Contains(t, out, `  r4 [label="(3)"];`)
	assert.Contains(t, out, `  r2 -> r3 [label="1"];`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestWriteMermaid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, lineChain().WriteMermaid(&buf))

	assert.Equal(t, "stateDiagram-v2\n"+
		"  [*] --> r1\n"+
		"  r1 --> r2: 1\n"+
		"  r2 --> r0: 1\n"+
		"  r2 --> r3: 1\n"+
		"  r0: absorbing absorbing deadlock\n"+
		"  r1: s1 init\n"+
		"  r2: s2\n"+
		"  r3: s3 satisfy deadlock\n"+
		"  r4: s4\n", buf.String())
}
