// Package linalg wraps the few gonum operations the subspace machinery
// needs: pseudoinverse, rank, orthogonal projectors and masked residuals.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tolerance is the single threshold for rank decisions, zero residuals and
// consistency checks.
const Tolerance = 1e-9

// IsZero reports whether x is within Tolerance of zero.
func IsZero(x float64) bool {
	return math.Abs(x) <= Tolerance
}

// cutoff scales Tolerance by the largest singular value so that rank
// decisions do not depend on the magnitude of the update vectors.
func cutoff(values []float64) float64 {
	if len(values) == 0 {
		return Tolerance
	}
	return Tolerance * math.Max(1, values[0])
}

// Pinv returns the Moore-Penrose pseudoinverse of a.
func Pinv(a mat.Matrix) *mat.Dense {
	r, c := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return mat.NewDense(c, r, nil)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)
	tol := cutoff(values)

	inv := make([]float64, len(values))
	for i, s := range values {
		if s > tol {
			inv[i] = 1 / s
		}
	}
	var vs mat.Dense
	vs.Mul(&v, mat.NewDiagDense(len(inv), inv))
	out := mat.NewDense(c, r, nil)
	out.Mul(&vs, u.T())
	return out
}

// Rank returns the numerical rank of a.
func Rank(a mat.Matrix) int {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	tol := cutoff(values)
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank
}

// Columns builds a dim x len(cols) matrix whose columns are cols.
func Columns(dim int, cols [][]float64) *mat.Dense {
	a := mat.NewDense(dim, len(cols), nil)
	for j, col := range cols {
		a.SetCol(j, col)
	}
	return a
}

// Projector returns the orthogonal projector onto the column space of the
// given vectors, its rank, and whether the vectors were linearly
// dependent. With no columns the projector is the zero matrix.
func Projector(dim int, columns [][]float64) (p *mat.Dense, rank int, deficient bool) {
	if len(columns) == 0 {
		return mat.NewDense(dim, dim, nil), 0, false
	}
	a := Columns(dim, columns)
	p = mat.NewDense(dim, dim, nil)
	p.Mul(a, Pinv(a))
	rank = Rank(p)
	return p, rank, rank < len(columns)
}

// Join places a and b side by side.
func Join(a, b mat.Matrix) *mat.Dense {
	var j mat.Dense
	j.Augment(a, b)
	return &j
}

// Project returns p*v.
func Project(p mat.Matrix, v []float64) []float64 {
	r, _ := p.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(p, mat.NewVecDense(len(v), append([]float64(nil), v...)))
	return out.RawVector().Data
}

// Residual is the norm of mask*(p*v - v). A nil mask keeps every entry.
func Residual(p mat.Matrix, v, mask []float64) float64 {
	diff := Project(p, v)
	floats.Sub(diff, v)
	if mask != nil {
		floats.Mul(diff, mask)
	}
	return floats.Norm(diff, 2)
}
