package explore

import "errors"

var (
	// ErrNoDecomposition is returned when a subspace search is started
	// without a decomposition.
	ErrNoDecomposition = errors.New("no subspace decomposition")

	// ErrStopped is returned when the caller's context ends a search early.
	// The partial result is still returned alongside it.
	ErrStopped = errors.New("exploration stopped")

	// ErrCorruptIndex is returned when the visited table disagrees with the
	// discovery order.
	ErrCorruptIndex = errors.New("visited index out of sync")
)
