// Package kdvv computes the nonlinear Fourier transform of the
// Korteweg-de Vries equation with vanishing boundary conditions,
//
//	q_t + 6 q q_x + q_xxx = 0,
//
// for real signals. The scattering problem is the AKNS system with r = -1.
// Its second component solves the Schrodinger equation
//
//	v'' + (xi^2 + q) v = 0,
//
// so a and b are referred to the free solutions (2i*xi,1)exp(-i*xi*t) and
// (0,1)exp(i*xi*t). The bound states are the points i*eta,
// 0 < eta^2 <= max q, where a(xi) vanishes. The reflection coefficient
// tends to -1 as xi goes to 0 for generic signals, and a and b have a pole
// there.
package kdvv

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/roots"
	"github.com/cwbudde/algo-nft/nft/scheme"
	"github.com/cwbudde/algo-nft/nft/transfer"
)

const (
	// axisSlack widens the imaginary axis scan beyond sqrt(max q).
	axisSlack = 0.1
	// axisStart is the lower end of the scan relative to its upper end.
	axisStart = 1e-4
	// lineRefinement is the number of scan intervals per GridSize unit.
	lineRefinement = 16
	minImag        = 1e-9
)

// Result is the outcome of [Forward].
type Result struct {
	Status core.Status
	// ContSpec holds one sample per requested spectral point, in order.
	ContSpec []contspec.Sample
	// BoundStates lie on the positive imaginary axis.
	BoundStates []norming.Entry
	Diagnostics core.Diagnostics
}

// Forward computes the spectrum of the D = len(q) samples taken on [t1, t2]
// (both ends included). The continuous spectrum is evaluated at the points
// of xi.
//
// Invalid input and numerical overflow are fatal and return a nil result.
func Forward(q []float64, t1, t2 float64, xi core.XiGrid, opts Options, run ...core.RunOption) (*Result, error) {
	cfg := core.ApplyRunOptions(run...)
	grid := core.Grid{T1: t1, T2: t2, D: len(q)}

	if err := opts.Validate(len(q)); err != nil {
		return nil, err
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}

	if !core.AllFiniteReal(q) {
		return nil, fmt.Errorf("%w: non-finite signal sample", core.ErrInvalidArgument)
	}

	if err := xi.Validate(); err != nil {
		return nil, err
	}

	tcfg := transfer.Config{Normalize: opts.Normalize, Workers: cfg.Workers, Multiplier: poly.NewMultiplier()}

	mono, err := transfer.New(opts.Discretization, scheme.KdV(q), grid.Step(), tcfg)
	if err != nil {
		return nil, err
	}

	l, r := grid.Boundary()
	bnd := contspec.Boundary{Left: l, Right: r, Basis: contspec.Schrodinger}

	res := &Result{Diagnostics: core.Diagnostics{Samples: grid.D}}

	if res.ContSpec, err = contspec.Evaluate(mono, xi.Points(), bnd, opts.ContSpecType); err != nil {
		return nil, err
	}

	log := cfg.Logger.WithFields(logrus.Fields{"transform": "kdvv", "samples": grid.D})

	top := math.Sqrt(max(slices.Max(q), 0)) * (1 + axisSlack)
	if !opts.BoundStates || top == 0 {
		log.Debug("no bound state search")
		return res, nil
	}

	f := norming.ScatteringFunc(mono, bnd)

	seeds, err := roots.LineSearch(f, complex(0, axisStart*top), complex(0, top), lineRefinement*opts.GridSize)
	if err != nil {
		return nil, err
	}

	ropts := roots.Options{
		Niter:     opts.Niter,
		Tolerance: opts.Tolerance,
		Region:    core.Box{XMin: -top, XMax: top, YMin: -top, YMax: 2 * top},
		Workers:   cfg.Workers,
	}

	keep := func(r roots.Root) bool {
		return r.Converged && imag(r.Z) > minImag && imag(r.Z) <= top
	}

	found, stats := roots.Collect(f, seeds, ropts, opts.DedupTolerance, keep, opts.MaxEvals)
	stats.Apply(&res.Diagnostics)

	if res.BoundStates, err = norming.Compute(mono, roots.Values(found), bnd, opts.DiscSpecType, roots.DefaultOptions().Radius); err != nil {
		return nil, err
	}

	res.Diagnostics.Roots = len(res.BoundStates)

	log.WithFields(logrus.Fields{
		"seeds":    stats.Seeds,
		"diverged": stats.Diverged,
		"roots":    res.Diagnostics.Roots,
	}).Debug("bound states located")

	return res, nil
}
