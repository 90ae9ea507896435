package inverse

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/scheme"
	"github.com/cwbudde/algo-nft/nft/transfer"
)

// Spectrum is the target of a synthesis. Either part may be empty.
type Spectrum struct {
	// Continuous holds the continuous spectrum on the XiGrid points in
	// ascending order; nil means a purely discrete spectrum.
	Continuous []complex128
	ContType   ContSpecType
	// Eigenvalues in the upper half-plane with one Discrete value each.
	Eigenvalues []complex128
	Discrete    []complex128
	DiscType    DiscSpecType
}

// Synthesize returns D = grid.D samples with the given spectrum.
//
// With bound states the reflection coefficient is first divided by their
// Blaschke product, the remaining continuous part is synthesized, and the
// eigenvalues are then added by Darboux dressing. Bound states require the
// focusing equation. A non-converged Fourier iteration still yields a
// signal; the returned error then wraps core.ErrInverseSynthesisDivergence.
func Synthesize(spec Spectrum, grid core.Grid, cfg Config) ([]complex128, Report, error) {
	if err := grid.Validate(); err != nil {
		return nil, Report{}, err
	}

	if len(spec.Eigenvalues) > 0 {
		if cfg.Kappa != core.Focusing {
			return nil, Report{}, fmt.Errorf("%w: bound states require the focusing equation", core.ErrInvalidArgument)
		}

		if !spec.DiscType.Valid() {
			return nil, Report{}, fmt.Errorf("%w: discrete spectrum type %v", core.ErrInvalidArgument, spec.DiscType)
		}

		if err := checkDiscrete(spec.Eigenvalues, spec.Discrete); err != nil {
			return nil, Report{}, err
		}
	}

	var (
		q      []complex128
		report Report
		diverr error
	)

	if len(spec.Continuous) > 0 {
		cont := spec.Continuous

		if spec.ContType == Reflection && len(spec.Eigenvalues) > 0 {
			xg, err := XiGrid(grid.D, grid.T1, grid.T2, len(cont))
			if err != nil {
				return nil, Report{}, err
			}

			cont = slices.Clone(cont)
			for j, xi := range xg.Points() {
				cont[j] *= Blaschke(complex(xi, 0), spec.Eigenvalues)
			}
		}

		var err error

		q, report, err = Continuous(cont, spec.ContType, grid, cfg)
		if errors.Is(err, core.ErrInverseSynthesisDivergence) {
			diverr = err
		} else if err != nil {
			return nil, Report{}, err
		}
	} else {
		q = make([]complex128, grid.D)
	}

	if len(spec.Eigenvalues) == 0 {
		return q, report, diverr
	}

	b := spec.Discrete

	if spec.DiscType == Residues {
		a0, err := scatteringA(q, grid)
		if err != nil {
			return nil, Report{}, err
		}

		if b, err = NormingConstantsFromResidues(a0, spec.Eigenvalues, spec.Discrete); err != nil {
			return nil, Report{}, err
		}
	}

	q, err := Dress(q, grid, spec.Eigenvalues, b)
	if err != nil {
		return nil, Report{}, err
	}

	return q, report, diverr
}

// scatteringA returns a(lambda) of the focusing signal q, or nil when q
// vanishes.
func scatteringA(q []complex128, grid core.Grid) (func(complex128) (complex128, error), error) {
	if core.MaxAbs(q) == 0 {
		return nil, nil
	}

	mono, err := transfer.NewPointwise(scheme.Exponential, scheme.NSE(q, core.Focusing), grid.Step(), true)
	if err != nil {
		return nil, err
	}

	l, r := grid.Boundary()

	return norming.ScatteringFunc(mono, contspec.Boundary{Left: l, Right: r}), nil
}
