// Package transfer composes per-sample transfer matrices into the monodromy
// matrix of a whole signal.
//
// Two representations are provided. [Pointwise] discretizes and multiplies
// the D sample matrices for every requested spectral parameter. [Polynomial]
// multiplies the per-sample polynomial factors of a polynomial scheme once,
// as a balanced binary tree with FFT-based products, after which every
// evaluation costs one Horner pass.
package transfer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// Scaled is a matrix value M*2^Exp.
type Scaled struct {
	M   core.Matrix
	Exp int
}

// Unscaled returns M*2^Exp. The result may overflow.
func (s Scaled) Unscaled() core.Matrix {
	return s.M.Ldexp(s.Exp)
}

// Monodromy evaluates the monodromy matrix of a fixed signal.
type Monodromy interface {
	Eval(xi complex128) (Scaled, error)
}

// Compose multiplies the ordered sample matrices, later samples on the left.
// With normalize set, the running product is rescaled by a power of two
// after every step and the exponent is returned in Scaled.Exp.
func Compose(ms []core.Matrix, normalize bool) (Scaled, error) {
	acc := Scaled{M: core.Identity()}

	for n, m := range ms {
		acc.M = core.Mul(m, acc.M)

		if normalize {
			renormalize(&acc)
		}

		if !acc.M.IsFinite() {
			return Scaled{}, fmt.Errorf("%w: monodromy product at sample %d", core.ErrNumericalOverflow, n)
		}
	}

	return acc, nil
}

func renormalize(s *Scaled) {
	m := s.M.MaxAbs()
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return
	}

	_, e := math.Frexp(m)
	if e != 0 {
		s.M = s.M.Ldexp(-e)
		s.Exp += e
	}
}

// finish applies the normalization policy to an evaluated value.
func finish(s Scaled, normalize bool, xi complex128) (Scaled, error) {
	if normalize {
		renormalize(&s)
	} else {
		s = Scaled{M: s.Unscaled()}
	}

	if !s.M.IsFinite() {
		return Scaled{}, fmt.Errorf("%w: monodromy at xi=%v", core.ErrNumericalOverflow, xi)
	}

	return s, nil
}

// New returns a Polynomial monodromy for polynomial schemes and a Pointwise
// one otherwise.
func New(s scheme.Scheme, p scheme.Potential, eps float64, cfg Config) (Monodromy, error) {
	if s.IsPolynomial() {
		return NewPolynomial(s, p, eps, cfg)
	}

	return NewPointwise(s, p, eps, cfg.Normalize)
}
