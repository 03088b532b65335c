package explore

import (
	"math"

	"github.com/fluentverification/wayfarer/crn"
)

type frame struct {
	state *State
	tail  []*State
	prob  float64
	logp  float64
}

// traceback walks backward pointers from target toward the initial state
// and emits every simple path it completes as a witness. Emission stops
// once count witnesses exist in total, and at most remaining+slack paths
// are explored from target. A path whose probability reaches exactly zero
// halts every later traceback of the run.
func (c *Context) traceback(target *State, count int) {
	if c.tracebackHalt {
		return
	}
	remaining := count - len(c.witnesses)
	if remaining <= 0 {
		return
	}
	budget := remaining + c.slack
	explored := 0

	stack := []frame{{state: target, prob: 1}}
	for len(stack) > 0 && explored < budget && len(c.witnesses) < count {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		tail := make([]*State, len(f.tail)+1)
		copy(tail, f.tail)
		tail[len(f.tail)] = f.state

		preds := c.backward[f.state.Index]
		if len(preds) == 0 {
			c.emit(tail, f.prob, f.logp)
			explored++
			continue
		}

		pushed := 0
		// Reverse order so the first recorded predecessor is walked first.
		for i := len(preds) - 1; i >= 0; i-- {
			bp := preds[i]
			if onPath(tail, bp.Parent) {
				continue
			}
			p := f.prob * bp.Probability
			if p == 0 {
				c.tracebackHalt = true
				c.logger.Warn("traceback halted on zero probability",
					"state", f.state.Vector.String(), "witnesses", len(c.witnesses))
				return
			}
			stack = append(stack, frame{
				state: bp.Parent,
				tail:  tail,
				prob:  p,
				logp:  f.logp + math.Log(bp.Probability),
			})
			pushed++
		}
		if pushed == 0 {
			explored++
		}
	}
}

func onPath(path []*State, s *State) bool {
	for _, p := range path {
		if p == s {
			return true
		}
	}
	return false
}

func (c *Context) emit(path []*State, prob, logp float64) {
	states := make([]crn.State, len(path))
	for i, s := range path {
		states[i] = s.Vector
	}
	c.addWitness(Witness{Probability: prob, LogProbability: logp, States: states})
}

func (c *Context) addWitness(w Witness) {
	c.witnesses = append(c.witnesses, w)
	c.lowerBound += w.Probability
	c.metrics.witnesses.Inc()
	c.logger.Debug("witness found", "witnesses", len(c.witnesses),
		"length", len(w.States), "probability", w.Probability)
}
