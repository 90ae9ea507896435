package poly

import (
	"math"
)

// Matrix is a 2x2 matrix whose entries are polynomials in ascending order.
type Matrix [2][2][]complex128

// Len returns the longest entry length.
func (a Matrix) Len() int {
	n := 0
	for i := range 2 {
		for j := range 2 {
			n = max(n, len(a[i][j]))
		}
	}

	return n
}

// Eval evaluates every entry at z.
func (a Matrix) Eval(z complex128) [2][2]complex128 {
	var out [2][2]complex128
	for i := range 2 {
		for j := range 2 {
			out[i][j] = Eval(a[i][j], z)
		}
	}

	return out
}

// MaxAbs returns the largest coefficient modulus over all entries.
func (a Matrix) MaxAbs() float64 {
	m := 0.0
	for i := range 2 {
		for j := range 2 {
			m = max(m, MaxAbs(a[i][j]))
		}
	}

	return m
}

// IsFinite reports whether every coefficient of every entry is finite.
func (a Matrix) IsFinite() bool {
	for i := range 2 {
		for j := range 2 {
			if !IsFinite(a[i][j]) {
				return false
			}
		}
	}

	return true
}

// Normalize rescales a in place by a power of two so that its largest
// coefficient modulus lies in [0.5, 1). It returns the exponent e such that
// the original matrix equals the rescaled one times 2^e.
func (a Matrix) Normalize() int {
	m := a.MaxAbs()
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return 0
	}

	_, e := math.Frexp(m)
	if e == 0 {
		return 0
	}

	for i := range 2 {
		for j := range 2 {
			for k, c := range a[i][j] {
				a[i][j][k] = complex(math.Ldexp(real(c), -e), math.Ldexp(imag(c), -e))
			}
		}
	}

	return e
}

// MulMatrix returns the matrix product a*b.
func (m *Multiplier) MulMatrix(a, b Matrix) (Matrix, error) {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return Matrix{}, ErrEmptyInput
	}

	if min(la, lb) <= directThreshold {
		return mulMatrixDirect(a, b), nil
	}

	return m.mulMatrixFFT(a, b)
}

func mulMatrixDirect(a, b Matrix) Matrix {
	var out Matrix

	for i := range 2 {
		for j := range 2 {
			n := 0
			for k := range 2 {
				if len(a[i][k]) > 0 && len(b[k][j]) > 0 {
					n = max(n, len(a[i][k])+len(b[k][j])-1)
				}
			}

			dst := make([]complex128, n)
			tmp := make([]complex128, n)

			for k := range 2 {
				x, y := a[i][k], b[k][j]
				if len(x) == 0 || len(y) == 0 {
					continue
				}

				part := tmp[:len(x)+len(y)-1]
				DirectTo(part, x, y)

				for t, v := range part {
					dst[t] += v
				}
			}

			out[i][j] = dst
		}
	}

	return out
}

func (m *Multiplier) mulMatrixFFT(a, b Matrix) (Matrix, error) {
	n := nextPowerOf2(a.Len() + b.Len() - 1)

	plan, err := m.acquire(n)
	if err != nil {
		return Matrix{}, err
	}
	defer m.release(n, plan)

	var fa, fb [2][2][]complex128

	for i := range 2 {
		for j := range 2 {
			if fa[i][j], err = forward(plan, a[i][j], n); err != nil {
				return Matrix{}, err
			}

			if fb[i][j], err = forward(plan, b[i][j], n); err != nil {
				return Matrix{}, err
			}
		}
	}

	var out Matrix

	acc := make([]complex128, n)

	for i := range 2 {
		for j := range 2 {
			length := 0
			for k := range 2 {
				if len(a[i][k]) > 0 && len(b[k][j]) > 0 {
					length = max(length, len(a[i][k])+len(b[k][j])-1)
				}
			}

			for t := range acc {
				acc[t] = fa[i][0][t]*fb[0][j][t] + fa[i][1][t]*fb[1][j][t]
			}

			res := make([]complex128, n)
			if err := plan.Inverse(res, acc); err != nil {
				return Matrix{}, err
			}

			out[i][j] = res[:length]
		}
	}

	return out, nil
}
