package core

import (
	"math"
	"math/cmplx"
)

// Matrix is a 2x2 complex matrix, indexed [row][column].
type Matrix [2][2]complex128

// Identity returns the 2x2 identity.
func Identity() Matrix {
	return Matrix{{1, 0}, {0, 1}}
}

// Mul returns a*b.
func Mul(a, b Matrix) Matrix {
	return Matrix{
		{a[0][0]*b[0][0] + a[0][1]*b[1][0], a[0][0]*b[0][1] + a[0][1]*b[1][1]},
		{a[1][0]*b[0][0] + a[1][1]*b[1][0], a[1][0]*b[0][1] + a[1][1]*b[1][1]},
	}
}

// Scale returns c*m.
func (m Matrix) Scale(c complex128) Matrix {
	return Matrix{
		{c * m[0][0], c * m[0][1]},
		{c * m[1][0], c * m[1][1]},
	}
}

// Ldexp returns m*2^e, exact up to underflow.
func (m Matrix) Ldexp(e int) Matrix {
	if e == 0 {
		return m
	}

	var out Matrix
	for i := range 2 {
		for j := range 2 {
			out[i][j] = Ldexp(m[i][j], e)
		}
	}

	return out
}

// Trace returns m[0][0] + m[1][1].
func (m Matrix) Trace() complex128 {
	return m[0][0] + m[1][1]
}

// MaxAbs returns the largest entry modulus.
func (m Matrix) MaxAbs() float64 {
	return math.Max(
		math.Max(cmplx.Abs(m[0][0]), cmplx.Abs(m[0][1])),
		math.Max(cmplx.Abs(m[1][0]), cmplx.Abs(m[1][1])),
	)
}

// IsFinite reports whether every entry is finite.
func (m Matrix) IsFinite() bool {
	return IsFinite(m[0][0]) && IsFinite(m[0][1]) && IsFinite(m[1][0]) && IsFinite(m[1][1])
}
