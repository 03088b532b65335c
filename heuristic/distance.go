// Package heuristic turns a state and a target boundary into the scalar
// closeness measures that order exploration.
package heuristic

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/fluentverification/wayfarer/crn"
)

// ErrDegenerateVector is returned when an angle is requested against a
// zero-magnitude vector.
var ErrDegenerateVector = errors.New("zero-magnitude vector")

// SpeciesDistance is how far value is from satisfying b. Strict and
// non-strict bounds measure the same distance; Satisfies tells them apart.
func SpeciesDistance(value int, b crn.Bound) float64 {
	switch b.Kind {
	case crn.Equal:
		return math.Abs(float64(value - b.Value))
	case crn.LessThan, crn.LessOrEqual:
		return math.Max(float64(value-b.Value), 0)
	case crn.GreaterThan, crn.GreaterOrEqual:
		return math.Max(float64(b.Value-value), 0)
	default:
		return 0
	}
}

// Satisfies reports whether every species meets its bound.
func Satisfies(s crn.State, boundary crn.Boundary) bool {
	for i, b := range boundary {
		if !b.Kind.Compare(s[i], b.Value) {
			return false
		}
	}
	return true
}

// DistanceVector holds SpeciesDistance for every species.
func DistanceVector(s crn.State, boundary crn.Boundary) []float64 {
	out := make([]float64, len(boundary))
	for i, b := range boundary {
		out[i] = SpeciesDistance(s[i], b)
	}
	return out
}

// SignedDistanceVector is DistanceVector with a direction: positive where
// the species must increase and negative where it must decrease.
func SignedDistanceVector(s crn.State, boundary crn.Boundary) []float64 {
	out := make([]float64, len(boundary))
	for i, b := range boundary {
		switch b.Kind {
		case crn.Equal:
			out[i] = float64(b.Value - s[i])
		case crn.LessThan, crn.LessOrEqual:
			out[i] = -SpeciesDistance(s[i], b)
		case crn.GreaterThan, crn.GreaterOrEqual:
			out[i] = SpeciesDistance(s[i], b)
		}
	}
	return out
}

// Distance is the Euclidean norm of the distance vector.
func Distance(s crn.State, boundary crn.Boundary) float64 {
	return floats.Norm(DistanceVector(s, boundary), 2)
}

// WeightedDistance scales each species distance before taking the norm.
func WeightedDistance(s crn.State, boundary crn.Boundary, weights []float64) float64 {
	v := DistanceVector(s, boundary)
	floats.Mul(v, weights)
	return floats.Norm(v, 2)
}

// Angle returns the angle between a and b in degrees, in [0, 180].
func Angle(a, b []float64) (float64, error) {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}
	cos := floats.Dot(a, b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, nil
}
