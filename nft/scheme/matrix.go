package scheme

import (
	"fmt"
	"math/cmplx"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/core"
)

// taylorLimit bounds |w| below which C and S use their series.
const taylorLimit = 1e-3

// coshSinhc returns C(w) = cosh(sqrt(w)) and S(w) = sinh(sqrt(w))/sqrt(w).
// Both are entire in w, so the branch of the square root does not matter.
func coshSinhc(w complex128) (complex128, complex128) {
	if cmplx.Abs(w) < taylorLimit {
		w2 := w * w
		c := 1 + w/2 + w2/24 + w2*w/720 + w2*w2/40320
		s := 1 + w/6 + w2/120 + w2*w/5040 + w2*w2/362880
		return c, s
	}

	r := cmplx.Sqrt(w)
	return cmplx.Cosh(r), cmplx.Sinh(r) / r
}

// Expm returns exp(eps*[[a11, a12], [a21, -a11]]) in closed form,
// C*I + eps*S*A with w = eps^2*(a11^2 + a12*a21).
func Expm(a11, a12, a21 complex128, eps float64) core.Matrix {
	e := complex(eps, 0)
	c, s := coshSinhc(e * e * (a11*a11 + a12*a21))
	es := e * s

	return core.Matrix{
		{c + es*a11, es * a12},
		{es * a21, c - es*a11},
	}
}

// Matrix returns the transfer matrix of one sample at spectral parameter xi.
func (s Scheme) Matrix(q, r complex128, eps float64, xi complex128) (core.Matrix, error) {
	switch s {
	case Exponential:
		return Expm(-1i*xi, q, r, eps), nil
	case Split2:
		return strang(q, r, eps, xi), nil
	case Split4:
		half := strang(q, r, eps/2, xi)
		full := strang(q, r, eps, xi)
		hh := core.Mul(half, half)

		var out core.Matrix
		for i := range 2 {
			for j := range 2 {
				out[i][j] = 4.0/3*hh[i][j] - 1.0/3*full[i][j]
			}
		}

		return out, nil
	default:
		return core.Matrix{}, s.Check()
	}
}

// strang returns H(eps/2)*exp(eps*[[0, q], [r, 0]])*H(eps/2) with
// H(h) = diag(exp(-i*xi*h), exp(i*xi*h)).
func strang(q, r complex128, eps float64, xi complex128) core.Matrix {
	h := cmplx.Exp(-1i * xi * complex(eps/2, 0))
	e := Expm(0, q, r, eps)

	return core.Matrix{
		{h * e[0][0] * h, e[0][1]},
		{e[1][0], e[1][1] / (h * h)},
	}
}

// Matrices returns the ordered per-sample transfer matrices of p.
func (s Scheme) Matrices(p Potential, eps float64, xi complex128) ([]core.Matrix, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}

	out := make([]core.Matrix, p.Len())
	for n := range out {
		out[n], _ = s.Matrix(p.Q[n], p.R[n], eps, xi)
	}

	return out, nil
}

// Variable returns the polynomial variable z = exp(i*xi*eps/m).
func (s Scheme) Variable(xi complex128, eps float64) complex128 {
	return cmplx.Exp(1i * xi * complex(eps/float64(s.Upsampling()), 0))
}

// Prefactor returns exp(-i*xi*eps*d), the scalar that multiplies the
// product of d polynomial factors.
func (s Scheme) Prefactor(xi complex128, eps float64, d int) complex128 {
	return cmplx.Exp(-1i * xi * complex(eps*float64(d), 0))
}

// PolyFactor returns the polynomial factor Q(z) of one sample, such that the
// sample's transfer matrix equals exp(-i*xi*eps)*Q(z).
func (s Scheme) PolyFactor(q, r complex128, eps float64) (poly.Matrix, error) {
	switch s {
	case Split2:
		e := Expm(0, q, r, eps)
		// diag(1, z) E diag(1, z)
		return poly.Matrix{
			{{e[0][0]}, {0, e[0][1]}},
			{{0, e[1][0]}, {0, 0, e[1][1]}},
		}, nil
	case Split4:
		h := Expm(0, q, r, eps/2)
		e := Expm(0, q, r, eps)
		// 4/3 diag(1,z) H diag(1,z^2) H diag(1,z) - 1/3 diag(1,z^2) E diag(1,z^2)
		hh := [2][2][3]complex128{
			{{h[0][0] * h[0][0], 0, h[0][1] * h[1][0]}, {h[0][0] * h[0][1], 0, h[0][1] * h[1][1]}},
			{{h[1][0] * h[0][0], 0, h[1][1] * h[1][0]}, {h[1][0] * h[0][1], 0, h[1][1] * h[1][1]}},
		}

		const a, b = 4.0 / 3, 1.0 / 3

		return poly.Matrix{
			{
				{a*hh[0][0][0] - b*e[0][0], 0, a * hh[0][0][2]},
				{0, a * hh[0][1][0], -b * e[0][1], a * hh[0][1][2]},
			},
			{
				{0, a * hh[1][0][0], -b * e[1][0], a * hh[1][0][2]},
				{0, 0, a * hh[1][1][0], 0, a*hh[1][1][2] - b*e[1][1]},
			},
		}, nil
	default:
		if err := s.Check(); err != nil {
			return poly.Matrix{}, err
		}

		return poly.Matrix{}, fmt.Errorf("%w: %v has no polynomial form", core.ErrInvalidDiscretization, s)
	}
}
