package inverse

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// svec is a 2-vector v*2^e.
type svec struct {
	v [2]complex128
	e int
}

func (x svec) apply(m core.Matrix) svec {
	out := svec{
		v: [2]complex128{
			m[0][0]*x.v[0] + m[0][1]*x.v[1],
			m[1][0]*x.v[0] + m[1][1]*x.v[1],
		},
		e: x.e,
	}

	mx := math.Max(cmplx.Abs(out.v[0]), cmplx.Abs(out.v[1]))
	if mx == 0 || math.IsInf(mx, 0) || math.IsNaN(mx) {
		return out
	}

	_, e := math.Frexp(mx)
	out.v[0] = core.Ldexp(out.v[0], -e)
	out.v[1] = core.Ldexp(out.v[1], -e)
	out.e += e

	return out
}

// jost returns the Jost solutions at every sample of q for the focusing
// equation: phi ~ (exp(-i*lam*t), 0) left of the support and
// psi ~ (0, exp(i*lam*t)) right of it.
func jost(q []complex128, grid core.Grid, lam complex128) ([]svec, []svec) {
	pot := scheme.NSE(q, core.Focusing)
	eps := grid.Step()
	l, r := grid.Boundary()
	a := -1i * lam

	phi := make([]svec, len(q))
	pl, el := core.ExpScaled(-1i * lam * complex(l, 0))
	v := svec{v: [2]complex128{pl, 0}, e: el}

	for n := range q {
		phi[n] = v.apply(scheme.Expm(a, pot.Q[n], pot.R[n], eps/2))
		v = v.apply(scheme.Expm(a, pot.Q[n], pot.R[n], eps))
	}

	psi := make([]svec, len(q))
	pr, er := core.ExpScaled(1i * lam * complex(r, 0))
	v = svec{v: [2]complex128{0, pr}, e: er}

	for n := len(q) - 1; n >= 0; n-- {
		psi[n] = v.apply(scheme.Expm(a, pot.Q[n], pot.R[n], -eps/2))
		v = v.apply(scheme.Expm(a, pot.Q[n], pot.R[n], -eps))
	}

	return phi, psi
}

// dress adds the bound state lam with norming constant b to the focusing
// signal q in place. The eigenvalues and norming constants of q are kept.
func dress(q []complex128, grid core.Grid, lam, b complex128) error {
	phi, psi := jost(q, grid, lam)
	gamma := -b
	gain := 4 * imag(lam)

	for n := range q {
		e := max(phi[n].e, psi[n].e)
		f1 := core.Ldexp(phi[n].v[0], phi[n].e-e) + gamma*core.Ldexp(psi[n].v[0], psi[n].e-e)
		f2 := core.Ldexp(phi[n].v[1], phi[n].e-e) + gamma*core.Ldexp(psi[n].v[1], psi[n].e-e)

		den := real(f1)*real(f1) + imag(f1)*imag(f1) + real(f2)*real(f2) + imag(f2)*imag(f2)
		if den == 0 || math.IsInf(den, 0) || math.IsNaN(den) {
			return fmt.Errorf("%w: Darboux transform of %v at sample %d", core.ErrNumericalOverflow, lam, n)
		}

		q[n] += complex(gain/den, 0) * f1 * cmplx.Conj(f2)
	}

	return nil
}

// Dress adds bound states to the focusing signal q0 and returns the
// result; q0 is not modified. eigenvalues must lie in the upper half-plane
// and be distinct.
func Dress(q0 []complex128, grid core.Grid, eigenvalues, normingConstants []complex128) ([]complex128, error) {
	if err := checkDiscrete(eigenvalues, normingConstants); err != nil {
		return nil, err
	}

	if len(q0) != grid.D {
		return nil, fmt.Errorf("%w: %d samples for a grid of %d", core.ErrInvalidArgument, len(q0), grid.D)
	}

	q := slices.Clone(q0)

	for k, lam := range eigenvalues {
		if err := dress(q, grid, lam, normingConstants[k]); err != nil {
			return nil, err
		}
	}

	if !core.AllFinite(q) {
		return nil, fmt.Errorf("%w: dressed signal", core.ErrNumericalOverflow)
	}

	return q, nil
}

func checkDiscrete(eigenvalues, values []complex128) error {
	if len(eigenvalues) != len(values) {
		return fmt.Errorf("%w: %d eigenvalues but %d discrete spectrum values", core.ErrInvalidArgument, len(eigenvalues), len(values))
	}

	for i, lam := range eigenvalues {
		if !core.IsFinite(lam) || !core.IsFinite(values[i]) || values[i] == 0 {
			return fmt.Errorf("%w: discrete spectrum entry %d (%v, %v)", core.ErrInvalidArgument, i, lam, values[i])
		}

		if !(imag(lam) > 0) {
			return fmt.Errorf("%w: eigenvalue %v is not in the upper half-plane", core.ErrInvalidArgument, lam)
		}

		if slices.Contains(eigenvalues[:i], lam) {
			return fmt.Errorf("%w: repeated eigenvalue %v", core.ErrInvalidArgument, lam)
		}
	}

	return nil
}

// Blaschke returns prod_k (xi - lam_k)/(xi - conj(lam_k)), the factor by
// which a(xi) changes when the eigenvalues lam_k are added.
func Blaschke(xi complex128, eigenvalues []complex128) complex128 {
	p := complex(1, 0)
	for _, lam := range eigenvalues {
		p *= (xi - lam) / (xi - cmplx.Conj(lam))
	}
	return p
}

// NormingConstantsFromResidues converts residues b/a' into norming
// constants b. a0 is the scattering coefficient a of the signal without
// bound states; nil stands for a0 = 1.
func NormingConstantsFromResidues(a0 func(complex128) (complex128, error), eigenvalues, residues []complex128) ([]complex128, error) {
	if err := checkDiscrete(eigenvalues, residues); err != nil {
		return nil, err
	}

	out := make([]complex128, len(eigenvalues))

	for k, lam := range eigenvalues {
		da := 1 / (lam - cmplx.Conj(lam))

		for j, mu := range eigenvalues {
			if j != k {
				da *= (lam - mu) / (lam - cmplx.Conj(mu))
			}
		}

		if a0 != nil {
			v, err := a0(lam)
			if err != nil {
				return nil, err
			}

			da *= v
		}

		out[k] = residues[k] * da

		if !core.IsFinite(out[k]) || out[k] == 0 {
			return nil, fmt.Errorf("%w: norming constant for %v", core.ErrNumericalOverflow, lam)
		}
	}

	return out, nil
}
