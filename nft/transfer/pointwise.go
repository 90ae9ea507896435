package transfer

import (
	"fmt"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// Pointwise evaluates the monodromy by composing sample matrices on demand.
// It supports every scheme.
type Pointwise struct {
	scheme    scheme.Scheme
	pot       scheme.Potential
	eps       float64
	normalize bool
}

// NewPointwise validates the inputs and returns a Pointwise monodromy.
func NewPointwise(s scheme.Scheme, p scheme.Potential, eps float64, normalize bool) (*Pointwise, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}

	if p.Len() == 0 || len(p.R) != p.Len() {
		return nil, fmt.Errorf("%w: empty or inconsistent potential", core.ErrInvalidArgument)
	}

	if !(eps > 0) {
		return nil, fmt.Errorf("%w: step %v", core.ErrInvalidArgument, eps)
	}

	return &Pointwise{scheme: s, pot: p, eps: eps, normalize: normalize}, nil
}

// Eval returns the monodromy matrix at xi.
func (p *Pointwise) Eval(xi complex128) (Scaled, error) {
	acc := Scaled{M: core.Identity()}

	for n := range p.pot.Len() {
		m, err := p.scheme.Matrix(p.pot.Q[n], p.pot.R[n], p.eps, xi)
		if err != nil {
			return Scaled{}, err
		}

		acc.M = core.Mul(m, acc.M)

		if p.normalize {
			renormalize(&acc)
		}

		if !acc.M.IsFinite() {
			return Scaled{}, fmt.Errorf("%w: monodromy at xi=%v, sample %d", core.ErrNumericalOverflow, xi, n)
		}
	}

	return acc, nil
}
