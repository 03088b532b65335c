package crn

import "errors"

// Sentinel errors for network construction and parsing.
var (
	// ErrInvalidIdentifier is returned for species or reaction names that
	// contain whitespace or a period, or that are purely numeric.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrMalformedInput is returned when an input file does not follow the
	// expected layout.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnknownSpecies is returned when a reaction names a species that
	// was not declared.
	ErrUnknownSpecies = errors.New("unknown species")

	// ErrDimensionMismatch is returned when a vector does not have one
	// entry per species.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidRate is returned for negative or non-finite rate constants.
	ErrInvalidRate = errors.New("invalid rate constant")
)
