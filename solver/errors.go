package solver

import "errors"

var (
	// ErrProbabilityOutOfRange reports a solver answer outside [0,1]. It
	// is an integration fault and is never clamped.
	ErrProbabilityOutOfRange = errors.New("probability out of range")
	ErrSolverUnavailable     = errors.New("solver unavailable")
	ErrUnparsableResult      = errors.New("unparsable solver result")
)
