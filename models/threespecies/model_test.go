package threespecies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentverification/wayfarer/crn"
)

func TestModelRegistered(t *testing.T) {
	m, ok := crn.Lookup("threespecies")
	require.True(t, ok)

	net, err := m.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, net.Species())
	assert.Len(t, net.Transitions(), 6)
	assert.Equal(t, crn.State{0, 0, 0}, net.Initial())
}

func TestGuards(t *testing.T) {
	net, err := New()
	require.NoError(t, err)

	names := func(s crn.State) []string {
		var out []string
		for _, idx := range net.Enabled(s) {
			out = append(out, net.Transitions()[idx].Name)
		}
		return out
	}
	assert.Equal(t, []string{"a_up", "b_up", "c_up"}, names(crn.State{0, 0, 0}))
	assert.Equal(t, []string{"a_down", "b_up", "b_down", "c_down"}, names(crn.State{1000, 5, 100}))
	assert.InDelta(t, 5.7+3+4, net.OutgoingRate(crn.State{0, 0, 0}), 1e-12)
}
