// Package nsep computes the spectrum of the nonlinear Schrödinger equation
// with periodic boundary conditions.
//
// For a signal with period T = t2 - t1 and monodromy matrix M(xi) over one
// period, the main spectrum consists of the points where
// tr M(xi) = +-2 and the auxiliary spectrum of the zeros of M12(xi).
package nsep

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/roots"
	"github.com/cwbudde/algo-nft/nft/scheme"
	"github.com/cwbudde/algo-nft/nft/transfer"
)

// lineRefinement is the number of line search intervals per grid cell.
const lineRefinement = 16

// Result is the outcome of [Forward]. Both spectra are ordered by real
// part, then imaginary part.
type Result struct {
	Status      core.Status
	Main        []complex128
	Aux         []complex128
	Diagnostics core.Diagnostics
}

// Forward computes the main and auxiliary spectrum of the D = len(q)
// samples of one period [t1, t2); sample n sits at t1 + n*(t2-t1)/D.
//
// Invalid input and numerical overflow are fatal and return a nil result.
// When a validated seed fails to converge, its coarse location is reported
// instead, the result carries StatusRootFindingDivergence and the returned
// error wraps core.ErrRootFindingDivergence.
func Forward(q []complex128, t1, t2 float64, opts Options, run ...core.RunOption) (*Result, error) {
	cfg := core.ApplyRunOptions(run...)
	grid := core.Grid{T1: t1, T2: t2, D: len(q), Periodic: true}

	if err := opts.Validate(len(q)); err != nil {
		return nil, err
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}

	if !core.AllFinite(q) {
		return nil, fmt.Errorf("%w: non-finite signal sample", core.ErrInvalidArgument)
	}

	s, err := newSolver(q, grid, opts, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{Diagnostics: core.Diagnostics{Samples: grid.D}}

	var stats roots.Stats

	main, st, err := s.spectrum(mainSpectrum)
	if err != nil {
		return nil, err
	}

	stats.Add(st)

	aux, st, err := s.spectrum(auxSpectrum)
	if err != nil {
		return nil, err
	}

	stats.Add(st)
	stats.Apply(&res.Diagnostics)

	res.Main, res.Aux = roots.Values(main), roots.Values(aux)
	res.Diagnostics.Roots = len(res.Main) + len(res.Aux)

	if opts.Localization == SubsampleAndRefine {
		res.Diagnostics.Subsamples = opts.subsamples(grid.D)
	}

	cfg.Logger.WithFields(logrus.Fields{
		"transform": "nsep",
		"samples":   grid.D,
		"seeds":     stats.Seeds,
		"diverged":  stats.Diverged,
		"fallbacks": stats.Fallbacks,
		"main":      len(res.Main),
		"aux":       len(res.Aux),
	}).Debug("periodic spectrum located")

	switch {
	case s.seedFailures > 0:
		res.Status = core.StatusRootFindingDivergence

		return res, fmt.Errorf("%w: %d spectral polynomials without usable roots, seeded by %v instead",
			core.ErrRootFindingDivergence, s.seedFailures, GridSearch)
	case stats.Fallbacks > 0:
		res.Status = core.StatusRootFindingDivergence

		return res, fmt.Errorf("%w: %d spectral points kept at their coarse estimate",
			core.ErrRootFindingDivergence, stats.Fallbacks)
	}

	return res, nil
}

type spectrumKind int

const (
	mainSpectrum spectrumKind = iota
	auxSpectrum
)

type solver struct {
	opts Options
	cfg  core.RunConfig
	grid core.Grid
	pot  scheme.Potential
	tcfg transfer.Config
	mono transfer.Monodromy
	// seedFailures counts spectral polynomials whose roots could not be
	// computed.
	seedFailures int
}

func newSolver(q []complex128, grid core.Grid, opts Options, cfg core.RunConfig) (*solver, error) {
	pot := scheme.NSE(q, opts.Kappa)
	tcfg := transfer.Config{Normalize: opts.Normalize, Workers: cfg.Workers, Multiplier: poly.NewMultiplier()}

	mono, err := transfer.New(opts.Discretization, pot, grid.Step(), tcfg)
	if err != nil {
		return nil, err
	}

	return &solver{opts: opts, cfg: cfg, grid: grid, pot: pot, tcfg: tcfg, mono: mono}, nil
}

// window is the alias-free region of the sampled signal, bounded in the
// imaginary direction by max|q| + 1.
func (s *solver) window() core.Box {
	w := math.Pi / (2 * s.grid.Step())
	h := s.pot.MaxAbs() + 1

	return core.Box{XMin: -w, XMax: w, YMin: -h, YMax: h}
}

func (s *solver) searchBox() core.Box {
	if s.opts.BoundingBox.IsZero() {
		return s.window()
	}

	return s.opts.BoundingBox
}

func (s *solver) keep(z complex128) bool {
	box := s.opts.BoundingBox
	if box.IsZero() {
		box = core.InfiniteBox()
	}

	switch s.opts.Filtering {
	case FilterManual:
		return box.Contains(z)
	case FilterAuto:
		w := math.Pi / (2 * s.grid.Step())
		return box.Contains(z) && math.Abs(real(z)) <= w
	default:
		return true
	}
}

func (s *solver) function(kind spectrumKind) roots.Func {
	return func(xi complex128) (complex128, error) {
		v, err := s.mono.Eval(xi)
		if err != nil {
			return 0, err
		}

		m := v.Unscaled()
		if !m.IsFinite() {
			return 0, fmt.Errorf("%w: monodromy at %v", core.ErrNumericalOverflow, xi)
		}

		if kind == auxSpectrum {
			return m[0][1], nil
		}

		h := m.Trace() / 2

		return h*h - 1, nil
	}
}

func (s *solver) spectrum(kind spectrumKind) ([]roots.Root, roots.Stats, error) {
	seeds, err := s.seeds(kind)
	if err != nil {
		return nil, roots.Stats{}, err
	}

	box := s.searchBox()
	h := math.Max(box.XMax-box.XMin, box.YMax-box.YMin)

	ropts := roots.Options{
		Niter:     s.opts.Niter,
		Tolerance: s.opts.Tolerance,
		Region:    core.Box{XMin: box.XMin - h, XMax: box.XMax + h, YMin: box.YMin - h, YMax: box.YMax + h},
		Workers:   s.cfg.Workers,
	}

	found, stats := roots.Collect(s.function(kind), seeds, ropts, s.opts.DedupTolerance,
		func(r roots.Root) bool { return s.keep(r.Z) }, s.opts.MaxEvals)

	return found, stats, nil
}

func (s *solver) seeds(kind spectrumKind) ([]roots.Seed, error) {
	f := s.function(kind)

	switch s.opts.Localization {
	case GridSearch:
		return roots.GridSearch(f, s.searchBox(), s.opts.GridSize, s.opts.GridSize)
	case RealLineSearch:
		box := s.searchBox()
		return roots.LineSearch(f, complex(box.XMin, 0), complex(box.XMax, 0), lineRefinement*s.opts.GridSize)
	}

	all, failed, err := s.polynomialSeeds(kind)
	if err != nil {
		return nil, err
	}

	out := all[:0]

	for _, sd := range all {
		if s.keep(sd.Z) {
			out = append(out, sd)
		}
	}

	// an identically vanishing polynomial (M12 of the zero signal) has no
	// isolated zeros to seed
	if failed == 0 && (len(out) > 0 || len(all) == 0) {
		return out, nil
	}

	s.seedFailures += failed

	s.cfg.Logger.WithFields(logrus.Fields{
		"failed": failed,
		"seeds":  len(out),
	}).Warn("spectral polynomial seeding incomplete, falling back to grid search")

	grid, err := s.fallbackSeeds(f)
	if err != nil {
		return nil, err
	}

	return append(out, grid...), nil
}

// fallbackSeeds scans the search box cell by cell, or along the real axis
// when the box has no height.
func (s *solver) fallbackSeeds(f roots.Func) ([]roots.Seed, error) {
	box := s.searchBox()
	if box.YMin == box.YMax {
		return roots.LineSearch(f, complex(box.XMin, box.YMin), complex(box.XMax, box.YMin), lineRefinement*s.opts.GridSize)
	}

	return roots.GridSearch(f, box, s.opts.GridSize, s.opts.GridSize)
}

// polynomialSeeds returns the zeros of the spectral polynomial of the
// (subsampled) signal. With the monodromy written as
// exp(-i*xi*eps*D) * P(z) * 2^e and z^(m*D) = exp(i*xi*eps*D), the main
// spectrum solves P11 + P22 = +-2^(1-e) * z^(m*D) and the auxiliary
// spectrum P12 = 0. Zeros of the full signal's own polynomial are exact and
// count as validated. The count of polynomials whose roots could not be
// computed is returned alongside.
func (s *solver) polynomialSeeds(kind spectrumKind) ([]roots.Seed, int, error) {
	sch := s.opts.Discretization
	if !sch.IsPolynomial() {
		sch = scheme.Split2
	}

	n := s.opts.subsamples(s.grid.D)
	exact := n == s.grid.D && sch == s.opts.Discretization

	idx, coarse := s.grid.Subsample(n)

	cfg := s.tcfg
	cfg.Normalize = true

	pm, err := transfer.NewPolynomial(sch, s.pot.Subsample(idx), coarse.Step(), cfg)
	if err != nil {
		return nil, 0, err
	}

	var polys [][]complex128

	if kind == auxSpectrum {
		polys = [][]complex128{pm.Entry(0, 1)}
	} else {
		c := math.Ldexp(1, 1-pm.Exp())
		if math.IsInf(c, 0) {
			return nil, 0, fmt.Errorf("%w: trace polynomial scale 2^%d", core.ErrNumericalOverflow, 1-pm.Exp())
		}

		k := sch.Upsampling() * pm.Samples()

		for _, sign := range []float64{1, -1} {
			p := make([]complex128, pm.Degree()+1)
			for i := range p {
				p[i] = pm.Entry(0, 0)[i] + pm.Entry(1, 1)[i]
			}

			p[k] -= complex(sign*c, 0)
			polys = append(polys, p)
		}
	}

	var (
		out    []roots.Seed
		failed int
	)

	for _, p := range polys {
		if poly.MaxAbs(p) == 0 {
			continue
		}

		seeds, converged, err := roots.PolynomialSeeds(p, pm.ToXi)
		if err != nil {
			s.cfg.Logger.WithError(err).Warn("spectral polynomial has no usable roots")
			failed++

			continue
		}

		if !converged {
			s.cfg.Logger.WithField("degree", len(p)-1).Debug("spectral polynomial roots did not fully converge")
		}

		for _, sd := range seeds {
			sd.Validated = exact && converged
			out = append(out, sd)
		}
	}

	return out, failed, nil
}
