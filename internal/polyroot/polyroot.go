// Package polyroot provides polynomial root finding for the large, dense
// complex polynomials produced by the fast monodromy representation.
package polyroot

import (
	"errors"
	"math"
	"math/cmplx"
)

// ErrDegeneratePolynomial is returned when a polynomial has degenerate
// coefficients (leading coefficient zero, convergence failure, etc.).
var ErrDegeneratePolynomial = errors.New("polyroot: degenerate polynomial")

// Roots returns the roots of the polynomial c[0] + c[1]*z + ... + c[n]*z^n.
//
// Trailing zero coefficients (degree drop) are trimmed and leading zero
// coefficients contribute exact roots at z = 0. Aberth-Ehrlich iteration is
// tried first; Durand-Kerner is the fallback. The boolean reports whether
// the iteration met its tolerance; unconverged roots are still returned and
// are usable as starting points for a refinement step.
func Roots(c []complex128) ([]complex128, bool, error) {
	hi := len(c) - 1
	for hi >= 0 && c[hi] == 0 {
		hi--
	}

	if hi < 0 {
		return nil, false, ErrDegeneratePolynomial
	}

	lo := 0
	for c[lo] == 0 {
		lo++
	}

	roots := make([]complex128, lo, hi)
	if hi == lo {
		return roots, true, nil
	}

	desc := make([]complex128, hi-lo+1)
	for i := range desc {
		desc[i] = c[hi-i]
	}

	found, converged := Aberth(desc)
	if !converged {
		if dk, err := DurandKerner(desc); err == nil && allFinite(dk) {
			found, converged = dk, true
		}
	}

	if !allFinite(found) {
		return nil, false, ErrDegeneratePolynomial
	}

	return append(roots, found...), converged, nil
}

func allFinite(zs []complex128) bool {
	for _, z := range zs {
		if cmplx.IsNaN(z) || cmplx.IsInf(z) {
			return false
		}
	}

	return true
}

// Aberth finds all roots of a polynomial using the Aberth-Ehrlich
// simultaneous iteration. Coefficients are in descending power order:
// coeff[0]*z^n + coeff[1]*z^(n-1) + ... + coeff[n].
//
// Starting points lie on a circle whose radius is the geometric mean of the
// root moduli, which keeps the start well conditioned for the high degree,
// near-circular root sets of monodromy polynomials.
//
// Near a multiple root the corrections shrink only linearly and rounding
// limits the accuracy to about the square root of the tolerance. A root
// whose correction is below stallTol and no longer halves is accepted.
//
//nolint:cyclop
func Aberth(coeff []complex128) ([]complex128, bool) {
	n := len(coeff) - 1
	if n < 1 || coeff[0] == 0 {
		return nil, false
	}

	radius := math.Pow(cmplx.Abs(coeff[n])/cmplx.Abs(coeff[0]), 1/float64(n))
	if radius == 0 || math.IsInf(radius, 0) || math.IsNaN(radius) {
		radius = 1
	}

	roots := make([]complex128, n)
	for i := range n {
		roots[i] = cmplx.Rect(radius, 2*math.Pi*float64(i)/float64(n)+0.4)
	}

	const (
		maxIter  = 500
		tol      = 1e-13
		stallTol = 1e-7
	)

	done := make([]bool, n)
	prev := make([]float64, n)
	remaining := n

	for i := range prev {
		prev[i] = math.Inf(1)
	}

	for range maxIter {
		for i := range n {
			if done[i] {
				continue
			}

			ratio, exact := newtonRatio(coeff, roots[i])
			if exact {
				done[i] = true
				remaining--

				continue
			}

			var sum complex128

			for j := range n {
				if j == i {
					continue
				}

				if d := roots[i] - roots[j]; d != 0 {
					sum += 1 / d
				}
			}

			w := ratio / (1 - ratio*sum)
			if cmplx.IsNaN(w) || cmplx.IsInf(w) {
				done[i] = true
				remaining--

				continue
			}

			roots[i] -= w

			step := cmplx.Abs(w)
			size := cmplx.Abs(roots[i])

			if step <= tol*size || (step <= stallTol*size && step > prev[i]/2) {
				done[i] = true
				remaining--
			}

			prev[i] = step
		}

		if remaining == 0 {
			return roots, true
		}
	}

	return roots, false
}

// newtonRatio returns p(z)/p'(z). For |z| > 1 the reversed polynomial is
// evaluated at 1/z so that high degrees do not overflow. exact is true when
// z is a root to working precision.
func newtonRatio(coeff []complex128, z complex128) (complex128, bool) {
	n := len(coeff) - 1

	if cmplx.Abs(z) <= 1 {
		p, dp := hornerDerivative(coeff, z, false)
		if p == 0 {
			return 0, true
		}

		if dp == 0 {
			return complex(1e-3, 0), false
		}

		return p / dp, false
	}

	w := 1 / z

	p, dp := hornerDerivative(coeff, w, true)
	if p == 0 {
		return 0, true
	}

	// p(z) = z^n P(1/z), so p'/p = n/z - P'(w)/(z^2 P(w)).
	den := complex(float64(n), 0)*w - w*w*dp/p
	if den == 0 {
		return complex(1e-3, 0), false
	}

	return 1 / den, false
}

func hornerDerivative(coeff []complex128, z complex128, reversed bool) (complex128, complex128) {
	var p, dp complex128

	n := len(coeff)
	for k := range n {
		c := coeff[k]
		if reversed {
			c = coeff[n-1-k]
		}

		dp = dp*z + p
		p = p*z + c
	}

	return p, dp
}

// DurandKerner finds all roots of a polynomial using the Durand-Kerner
// (Weierstrass) simultaneous iteration method. Coefficients are in descending
// power order: coeff[0]*z^n + coeff[1]*z^(n-1) + ... + coeff[n].
//
//nolint:cyclop
func DurandKerner(coeff []complex128) ([]complex128, error) {
	if len(coeff) < 2 {
		return nil, ErrDegeneratePolynomial
	}

	lead := coeff[0]
	if lead == 0 {
		return nil, ErrDegeneratePolynomial
	}

	n := len(coeff) - 1

	norm := make([]complex128, len(coeff))
	for i := range coeff {
		norm[i] = coeff[i] / lead
	}

	radius := 0.0
	for i := 1; i <= n; i++ {
		if r := cmplx.Abs(norm[i]); r > radius {
			radius = r
		}
	}

	if radius < 1 {
		radius = 1
	}

	roots := make([]complex128, n)
	for i := range n {
		angle := 2*math.Pi*float64(i)/float64(n) + 0.3
		r := radius * (1 + 0.1*float64(i)/float64(n))
		roots[i] = complex(r*math.Cos(angle), r*math.Sin(angle))
	}

	const (
		maxIter = 500
		tol     = 1e-12
	)

	for range maxIter {
		maxDelta := 0.0

		for i := range n {
			den := complex(1, 0)

			for j := range n {
				if i == j {
					continue
				}

				den *= roots[i] - roots[j]
			}

			if cmplx.IsInf(den) {
				return nil, ErrDegeneratePolynomial
			}

			if cmplx.Abs(den) == 0 {
				roots[i] += complex(1e-10, 1e-10)
				continue
			}

			delta := PolyEval(norm, roots[i]) / den
			if cmplx.IsNaN(delta) || cmplx.IsInf(delta) {
				return nil, ErrDegeneratePolynomial
			}

			roots[i] -= delta
			if d := cmplx.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}

		if maxDelta < tol {
			return roots, nil
		}
	}

	maxResidual := 0.0

	for _, r := range roots {
		res := cmplx.Abs(PolyEval(norm, r))
		if math.IsNaN(res) {
			return nil, ErrDegeneratePolynomial
		}

		maxResidual = math.Max(maxResidual, res)
	}

	if maxResidual < 1e-6 {
		return roots, nil
	}

	return nil, ErrDegeneratePolynomial
}

// PolyEval evaluates a polynomial at x using Horner's method. Coefficients
// are in descending power order: coeff[0]*x^n + ... + coeff[n].
func PolyEval(coeff []complex128, x complex128) complex128 {
	v := coeff[0]
	for i := 1; i < len(coeff); i++ {
		v = v*x + coeff[i]
	}

	return v
}
