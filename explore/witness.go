package explore

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fluentverification/wayfarer/crn"
)

// Witness is one trace into the target region. States runs from the
// satisfying state back to the initial state.
type Witness struct {
	Probability float64
	// LogProbability stays finite for long traces whose product
	// underflows.
	LogProbability float64
	States         []crn.State
}

// Len returns the number of states on the trace.
func (w Witness) Len() int { return len(w.States) }

func (w Witness) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Counterexample (probability %g)\n", w.Probability)
	for i, s := range w.States {
		note := ""
		switch {
		case i == 0:
			note = " (satisfying state)"
		case i == len(w.States)-1:
			note = " (initial state)"
		}
		fmt.Fprintf(&sb, "\tState: %s%s\n", s, note)
	}
	return sb.String()
}

// WriteWitnesses writes the witnesses and their summed probability as
// plain text.
func WriteWitnesses(w io.Writer, witnesses []Witness) error {
	lower := 0.0
	if _, err := fmt.Fprintf(w, "Finished finding %d counterexamples\n", len(witnesses)); err != nil {
		return err
	}
	for _, wt := range witnesses {
		lower += wt.Probability
		if _, err := io.WriteString(w, wt.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Probability lower bound: %g\n", lower)
	return err
}

// Result summarizes one exploration run.
type Result struct {
	RunID      string        `yaml:"run_id"`
	Mode       string        `yaml:"mode"`
	Requested  int           `yaml:"requested"`
	Witnesses  []Witness     `yaml:"-"`
	LowerBound float64       `yaml:"lower_bound"`
	Explored   int           `yaml:"explored"`
	Expanded   int           `yaml:"expanded"`
	Satisfying int           `yaml:"satisfying"`
	Duration   time.Duration `yaml:"duration"`
}

// Summary is the one-line account of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("Explored %d states (expanded %d). Found %d satisfying states.",
		r.Explored, r.Expanded, r.Satisfying)
}
