package nsev

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/inverse"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// InverseOptions configures [Inverse].
type InverseOptions struct {
	// Discretization is the scheme whose discrete spectrum is inverted.
	// Only Split2 has an exact discrete inverse, so other schemes are
	// rejected.
	Discretization scheme.Scheme
	// Method inverts the continuous spectrum.
	Method inverse.Method
	// ContSpecType describes the given continuous spectrum.
	ContSpecType inverse.ContSpecType
	// DiscSpecType describes the values given with the eigenvalues.
	DiscSpecType inverse.DiscSpecType
	// MaxIter bounds the Fourier iteration.
	MaxIter int
	// Oversampling is the ratio of spectral points to samples; the grid
	// size is rounded up to a power of two.
	Oversampling int
	// Tolerance is the relative residual at which the Fourier iteration
	// stops.
	Tolerance float64
	Kappa     core.Kappa
}

// DefaultInverseOptions returns layer peeling of a reflection coefficient
// with norming constants, oversampling 8.
func DefaultInverseOptions() InverseOptions {
	def := inverse.DefaultConfig()

	return InverseOptions{
		Discretization: scheme.Split2,
		Method:         def.Method,
		ContSpecType:   inverse.Reflection,
		DiscSpecType:   inverse.NormingConstants,
		MaxIter:        def.MaxIter,
		Oversampling:   8,
		Tolerance:      def.Tolerance,
		Kappa:          core.Focusing,
	}
}

// Validate checks the options.
func (o InverseOptions) Validate() error {
	if err := o.Discretization.Check(); err != nil {
		return err
	}

	if o.Discretization != scheme.Split2 {
		return fmt.Errorf("%w: inverse transform of %v, only %v is supported",
			core.ErrInvalidDiscretization, o.Discretization, scheme.Split2)
	}

	if !o.Method.Valid() {
		return fmt.Errorf("%w: inverse method %v", core.ErrInvalidArgument, o.Method)
	}

	if !o.ContSpecType.Valid() || !o.DiscSpecType.Valid() {
		return fmt.Errorf("%w: spectrum types %v, %v", core.ErrInvalidArgument, o.ContSpecType, o.DiscSpecType)
	}

	if o.MaxIter < 1 || o.Oversampling < 1 || !(o.Tolerance > 0) {
		return fmt.Errorf("%w: max iter %d, oversampling %d, tolerance %v",
			core.ErrInvalidArgument, o.MaxIter, o.Oversampling, o.Tolerance)
	}

	if !o.Kappa.Valid() {
		return fmt.Errorf("%w: kappa %v", core.ErrInvalidArgument, o.Kappa)
	}

	return nil
}

// String lists the options one per line.
func (o InverseOptions) String() string {
	return core.FormatFields([]core.Field{
		{Name: "discretization", Value: o.Discretization},
		{Name: "method", Value: o.Method},
		{Name: "continuous spectrum type", Value: o.ContSpecType},
		{Name: "discrete spectrum type", Value: o.DiscSpecType},
		{Name: "max iter", Value: o.MaxIter},
		{Name: "oversampling", Value: o.Oversampling},
		{Name: "tolerance", Value: o.Tolerance},
		{Name: "kappa", Value: o.Kappa},
	})
}

// InverseXi returns the spectral grid on which [Inverse] expects the
// continuous spectrum of d samples on [t1, t2], as computed by [Forward]
// with opts.Discretization.
func InverseXi(d int, t1, t2 float64, opts InverseOptions) (core.XiGrid, error) {
	if opts.Oversampling < 1 || d < 2 {
		return core.XiGrid{}, fmt.Errorf("%w: %d samples, oversampling %d", core.ErrInvalidArgument, d, opts.Oversampling)
	}

	m := 1 << bits.Len(uint(d*opts.Oversampling-1))

	return inverse.XiGrid(d, t1, t2, m)
}

// InverseResult is the outcome of [Inverse].
type InverseResult struct {
	Status      core.Status
	Q           []complex128
	Diagnostics core.Diagnostics
}

// Inverse synthesizes d samples on [t1, t2] from a continuous spectrum on
// the [InverseXi] grid (nil for none) and bound states with one norming
// constant or residue each.
//
// A Fourier iteration that does not reach the tolerance still returns its
// best signal; the result then carries StatusInverseSynthesisDivergence
// and the error wraps core.ErrInverseSynthesisDivergence.
func Inverse(cont, eigenvalues, discrete []complex128, t1, t2 float64, d int, opts InverseOptions,
	run ...core.RunOption,
) (*InverseResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cfg := core.ApplyRunOptions(run...)
	grid := core.Grid{T1: t1, T2: t2, D: d}

	if len(cont) > 0 {
		xg, err := InverseXi(d, t1, t2, opts)
		if err != nil {
			return nil, err
		}

		if len(cont) != xg.M {
			return nil, fmt.Errorf("%w: continuous spectrum has %d points, the grid %d",
				core.ErrInvalidArgument, len(cont), xg.M)
		}
	}

	spec := inverse.Spectrum{
		Continuous:  cont,
		ContType:    opts.ContSpecType,
		Eigenvalues: eigenvalues,
		Discrete:    discrete,
		DiscType:    opts.DiscSpecType,
	}

	icfg := inverse.Config{
		Method:     opts.Method,
		Kappa:      opts.Kappa,
		MaxIter:    opts.MaxIter,
		Tolerance:  opts.Tolerance,
		Multiplier: poly.NewMultiplier(),
	}

	q, report, err := inverse.Synthesize(spec, grid, icfg)
	if err != nil && !errors.Is(err, core.ErrInverseSynthesisDivergence) {
		return nil, err
	}

	res := &InverseResult{
		Status: core.StatusOf(err),
		Q:      q,
		Diagnostics: core.Diagnostics{
			Samples:    d,
			Roots:      len(eigenvalues),
			Iterations: report.Iterations,
			Residual:   report.Residual,
		},
	}

	cfg.Logger.WithFields(logrus.Fields{
		"transform":  "nsev-inverse",
		"samples":    d,
		"method":     opts.Method,
		"iterations": report.Iterations,
		"residual":   report.Residual,
	}).Debug("signal synthesized")

	return res, err
}
