package inverse

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// model is the discrete Split2 scattering model of a D-sample signal,
// evaluated on an M-point grid of roots of unity.
type model struct {
	mult  *poly.Multiplier
	d, m  int
	eps   float64
	kappa core.Kappa
	// phase[j] = exp(2i*xi_j*T2), grid in FFT order
	phase []complex128
}

func newModel(grid core.Grid, m int, kappa core.Kappa, mult *poly.Multiplier) *model {
	eps := grid.Step()
	phase := make([]complex128, m)

	for k := range m {
		phase[k] = cmplx.Exp(complex(0, 2*fftXi(k, m, eps)*grid.T2))
	}

	if mult == nil {
		mult = poly.NewMultiplier()
	}

	return &model{mult: mult, d: grid.D, m: m, eps: eps, kappa: kappa, phase: phase}
}

// fftXi is the spectral point at FFT index k.
func fftXi(k, m int, eps float64) float64 {
	j := k
	if k >= m/2 {
		j = k - m
	}
	return math.Pi * float64(j) / (float64(m) * eps)
}

// toFFTOrder reorders ascending grid values (j = -m/2 ... m/2-1) so that
// index k holds j = k for k < m/2 and j = k-m otherwise.
func toFFTOrder(in []complex128) []complex128 {
	m := len(in)
	out := make([]complex128, m)
	for k := range m {
		out[k] = in[(k+m/2)%m]
	}
	return out
}

// factor returns E(q)*diag(1, z).
func (s *model) factor(q complex128) poly.Matrix {
	e := scheme.Expm(0, q, complex(-float64(s.kappa), 0)*cmplx.Conj(q), s.eps)
	return poly.Matrix{
		{{e[0][0]}, {0, e[0][1]}},
		{{e[1][0]}, {0, e[1][1]}},
	}
}

func (s *model) product(q []complex128) (poly.Matrix, error) {
	if len(q) == 1 {
		return s.factor(q[0]), nil
	}

	mid := len(q) / 2

	lo, err := s.product(q[:mid])
	if err != nil {
		return poly.Matrix{}, err
	}

	hi, err := s.product(q[mid:])
	if err != nil {
		return poly.Matrix{}, err
	}

	return s.mult.MulMatrix(hi, lo)
}

// coefficients returns the first column (A, B) of the model monodromy,
// each padded or cut to D coefficients.
func (s *model) coefficients(q []complex128) ([]complex128, []complex128, error) {
	p, err := s.product(q)
	if err != nil {
		return nil, nil, err
	}

	a := make([]complex128, s.d)
	b := make([]complex128, s.d)
	copy(a, p[0][0])
	copy(b, p[1][0])

	if !poly.IsFinite(a) || !poly.IsFinite(b) {
		return nil, nil, fmt.Errorf("%w: model monodromy", core.ErrNumericalOverflow)
	}

	return a, b, nil
}

// scattering returns a and b of the model on the grid, in FFT order.
func (s *model) scattering(q []complex128) ([]complex128, []complex128, error) {
	ac, bc, err := s.coefficients(q)
	if err != nil {
		return nil, nil, err
	}

	av, err := s.mult.EvalUnitRoots(ac, s.m)
	if err != nil {
		return nil, nil, err
	}

	bv, err := s.mult.EvalUnitRoots(bc, s.m)
	if err != nil {
		return nil, nil, err
	}

	for k := range bv {
		bv[k] *= cmplx.Conj(s.phase[k])
	}

	return av, bv, nil
}

// born returns the linearized inverse of b on the grid:
// q_n = -kappa*conj(B_{D-1-n})/eps with B the coefficients of b*phase.
func (s *model) born(b []complex128) ([]complex128, error) {
	p := make([]complex128, s.m)
	for k := range p {
		p[k] = b[k] * s.phase[k]
	}

	c, err := s.mult.Interpolate(p)
	if err != nil {
		return nil, err
	}

	q := make([]complex128, s.d)
	scale := complex(-float64(s.kappa)/s.eps, 0)

	for n := range q {
		q[n] = scale * cmplx.Conj(c[s.d-1-n])
	}

	return q, nil
}

// minimumPhase returns the a(xi) on the grid that is analytic in the upper
// half-plane, has no zeros there and satisfies log|a| = logMag.
func (s *model) minimumPhase(logMag []float64) ([]complex128, error) {
	vals := make([]complex128, s.m)
	for k, v := range logMag {
		vals[k] = complex(v, 0)
	}

	c, err := s.mult.Interpolate(vals)
	if err != nil {
		return nil, err
	}

	// fold the cepstrum onto non-negative powers
	fold := make([]complex128, s.m)
	fold[0] = c[0]

	for k := 1; k < s.m/2; k++ {
		fold[k] = 2 * c[k]
	}

	fold[s.m/2] = c[s.m/2]

	loga, err := s.mult.EvalUnitRoots(fold, s.m)
	if err != nil {
		return nil, err
	}

	a := make([]complex128, s.m)
	for k, l := range loga {
		a[k] = cmplx.Rect(mathExp(real(l)), imag(l))
	}

	return a, nil
}

// scatteringFromSpectrum converts the given spectrum (FFT order) into the
// reflection coefficient and the minimum-phase a.
func (s *model) scatteringFromSpectrum(spec []complex128, typ ContSpecType) (r, a []complex128, err error) {
	logMag := make([]float64, s.m)
	k := float64(s.kappa)

	for j, v := range spec {
		p := real(v)*real(v) + imag(v)*imag(v)

		var arg float64
		if typ == Reflection {
			arg = 1 + k*p
		} else {
			arg = 1 - k*p
		}

		if !(arg > 0) || math.IsInf(arg, 0) {
			return nil, nil, fmt.Errorf("%w: |%v| = %v is inconsistent with %v scattering", core.ErrInvalidArgument, typ, math.Sqrt(p), s.kappa)
		}

		if typ == Reflection {
			logMag[j] = -0.5 * mathLog(arg)
		} else {
			logMag[j] = 0.5 * mathLog(arg)
		}
	}

	a, err = s.minimumPhase(logMag)
	if err != nil {
		return nil, nil, err
	}

	if typ == Reflection {
		return spec, a, nil
	}

	r = make([]complex128, s.m)
	for j := range r {
		r[j] = spec[j] / a[j]
	}

	return r, a, nil
}

// peel recovers the samples from the coefficients of A and B*phase by
// removing one transfer matrix per step, last sample first.
func (s *model) peel(a, b []complex128) ([]complex128, error) {
	q := make([]complex128, s.d)
	a = append([]complex128(nil), a[:s.d]...)
	b = append([]complex128(nil), b[:s.d]...)

	for n := s.d - 1; n >= 0; n-- {
		if a[0] == 0 {
			return nil, fmt.Errorf("%w: vanishing leading coefficient at sample %d", core.ErrNumericalOverflow, n)
		}

		rho := -b[0] / a[0]
		mag := cmplx.Abs(rho)

		var qn complex128

		if mag > 0 {
			var m float64
			if s.kappa == core.Focusing {
				m = math.Atan(mag) / s.eps
			} else {
				if mag >= 1 {
					return nil, fmt.Errorf("%w: reflection ratio %v at sample %d", core.ErrNumericalOverflow, mag, n)
				}
				m = -math.Atanh(mag) / s.eps
			}

			qn = complex(m/mag, 0) * cmplx.Conj(rho)
		}

		q[n] = qn

		c, sq := stepCoefficients(cmplx.Abs(qn), s.eps, s.kappa)
		kk := complex(float64(s.kappa), 0)

		for i := range a {
			ai, bi := a[i], b[i]
			a[i] = c*ai - sq*qn*bi
			b[i] = kk*sq*cmplx.Conj(qn)*ai + c*bi
		}

		// b now carries a factor z; a loses its top coefficient
		b = b[1:]
		a = a[:len(b)]
	}

	return q, nil
}

// stepCoefficients returns c and s with the sample transfer matrix
// E = [[c, s*q], [-kappa*s*conj(q), c]] for a sample of modulus m.
func stepCoefficients(m, eps float64, kappa core.Kappa) (complex128, complex128) {
	if m == 0 {
		return 1, complex(eps, 0)
	}

	if kappa == core.Focusing {
		return complex(math.Cos(eps*m), 0), complex(math.Sin(eps*m)/m, 0)
	}

	return complex(math.Cosh(eps*m), 0), complex(math.Sinh(eps*m)/m, 0)
}
