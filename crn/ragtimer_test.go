package crn

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRagtimer = "A\tB\tC\n" +
	"2\t0\t0\n" +
	"-1\t3\t1\n" +
	"r1\t0\t>\tA\t1.5\n" +
	"r2\tA\tA\t>\tB\t0.25\n" +
	"r3\tB\t>\tC\t2\n" +
	"r4\tC\t>\t0\t0.1\n"

func TestParseRagtimer(t *testing.T) {
	net, err := ParseRagtimer(strings.NewReader(sampleRagtimer))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, net.Species())
	assert.Equal(t, State{2, 0, 0}, net.Initial())
	assert.Equal(t, Boundary{{Kind: DontCare}, {Value: 3, Kind: Equal}, {Value: 1, Kind: Equal}}, net.Boundary())
	require.Len(t, net.Transitions(), 4)

	r2, ok := net.Transition("r2")
	require.True(t, ok)
	assert.Equal(t, []int{2, 0, 0}, r2.Reactants, "repeated species accumulate multiplicity")
	assert.Equal(t, []int{-2, 1, 0}, r2.Update)
	// C(2,2) * 0.25
	assert.InDelta(t, 0.25, r2.Rate(State{2, 0, 0}), 1e-12)
}

func TestParseRagtimerEmptySetIsNotASpecies(t *testing.T) {
	net, err := ParseRagtimer(strings.NewReader(sampleRagtimer))
	require.NoError(t, err)

	r1, _ := net.Transition("r1")
	assert.Equal(t, []int{0, 0, 0}, r1.Reactants)
	assert.Equal(t, []int{1, 0, 0}, r1.Update)
	assert.True(t, r1.Enabled(State{0, 0, 0}), "an empty reactant side is always enabled")

	r4, _ := net.Transition("r4")
	assert.Equal(t, []int{0, 0, 0}, r4.Products)
	assert.Equal(t, []int{0, 0, -1}, r4.Update)
}

func TestParseRagtimerRejectsBadIdentifiers(t *testing.T) {
	for _, species := range []string{"A\tB.1", "A\t42", "A\tx y"} {
		input := species + "\n0\t0\n1\t1\n"
		_, err := ParseRagtimer(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrInvalidIdentifier, species)
	}
}

func TestParseRagtimerErrors(t *testing.T) {
	tests := map[string]struct {
		input string
		want  error
	}{
		"too short":       {"A\n0\n", ErrMalformedInput},
		"count mismatch":  {"A\tB\n0\n1\t1\n", ErrDimensionMismatch},
		"unknown species": {"A\n0\n1\nr\tZ\t>\tA\t1\n", ErrUnknownSpecies},
		"no separator":    {"A\n0\n1\nr\tA\tA\t1\n", ErrMalformedInput},
		"bad rate":        {"A\n0\n1\nr\t0\t>\tA\tfast\n", ErrInvalidRate},
		"numeric name":    {"A\n0\n1\n7\t0\t>\tA\t1\n", ErrInvalidIdentifier},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRagtimer(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteRagtimerRoundTrip(t *testing.T) {
	net, err := ParseRagtimer(strings.NewReader(sampleRagtimer))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRagtimer(&buf, net))

	again, err := ParseRagtimer(&buf)
	require.NoError(t, err)
	assert.Equal(t, net.Species(), again.Species())
	assert.Equal(t, net.Boundary(), again.Boundary())
	for i, tr := range net.Transitions() {
		assert.Equal(t, tr.Update, again.Transitions()[i].Update)
		assert.Equal(t, tr.RateConstant, again.Transitions()[i].RateConstant)
	}
}

func TestParseRagtimerRejectsDuplicateReaction(t *testing.T) {
	text := "A\tB\n5\t0\n-1\t1\n" +
		"r\tA\t>\tB\t1\n" +
		"r\tA\tA\tA\t>\tB\t1\n"
	_, err := ParseRagtimer(strings.NewReader(text))
	require.ErrorIs(t, err, ErrMalformedInput)
	assert.ErrorContains(t, err, "line 5")
}

func TestParseRagtimerMassActionPerReaction(t *testing.T) {
	text := "A\tB\n5\t0\n-1\t1\n" +
		"single\tA\t>\tB\t1\n" +
		"triple\tA\tA\tA\t>\tB\t1\n"
	net, err := ParseRagtimer(strings.NewReader(text))
	require.NoError(t, err)

	single, ok := net.Transition("single")
	require.True(t, ok)
	triple, ok := net.Transition("triple")
	require.True(t, ok)
	assert.InDelta(t, 5.0, single.Rate(State{5, 0}), 1e-12)
	// C(5,3)
	assert.InDelta(t, 10.0, triple.Rate(State{5, 0}), 1e-12)
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after == 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestWriteRagtimerRejectsBeforeWriting(t *testing.T) {
	net, err := ParseRagtimer(strings.NewReader(sampleRagtimer))
	require.NoError(t, err)
	bounded, err := NewNetwork(net.Species(), net.Initial(),
		Boundary{{Kind: DontCare}, {Value: 3, Kind: GreaterThan}, {Value: 1, Kind: Equal}},
		net.Transitions())
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteRagtimer(&buf, bounded), ErrMalformedInput)
	assert.Zero(t, buf.Len())

	handBuilt, err := NewNetwork([]string{"A"}, State{0}, Boundary{{Value: 1, Kind: Equal}},
		[]*Transition{{Name: "t", Update: []int{1}, RateConstant: 1}})
	require.NoError(t, err)
	assert.ErrorIs(t, WriteRagtimer(&buf, handBuilt), ErrMalformedInput)
	assert.Zero(t, buf.Len())
}

func TestWriteRagtimerReturnsWriteError(t *testing.T) {
	net, err := ParseRagtimer(strings.NewReader(sampleRagtimer))
	require.NoError(t, err)
	assert.ErrorContains(t, WriteRagtimer(&failingWriter{after: 2}, net), "disk full")
}
