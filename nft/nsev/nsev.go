// Package nsev computes the nonlinear Fourier transform of the nonlinear
// Schrödinger equation with vanishing boundary conditions,
//
//	i q_x + q_tt + 2*kappa*|q|^2 q = 0,
//
// and its inverse. The forward transform returns the continuous spectrum on
// a real grid and, for the focusing equation, the bound states with their
// norming constants or residues.
package nsev

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/roots"
	"github.com/cwbudde/algo-nft/nft/scheme"
	"github.com/cwbudde/algo-nft/nft/transfer"
)

// minImag is the smallest imaginary part of a reported bound state.
const minImag = 1e-9

// Result is the outcome of [Forward].
type Result struct {
	Status core.Status
	// ContSpec holds one sample per requested spectral point, in order.
	ContSpec []contspec.Sample
	// BoundStates are ordered by real part, then imaginary part.
	BoundStates []norming.Entry
	Diagnostics core.Diagnostics
}

// Forward computes the spectrum of the D = len(q) samples taken on [t1, t2]
// (both ends included). The continuous spectrum is evaluated at the points
// of xi.
//
// Invalid input and numerical overflow are fatal and return a nil result.
// When a validated seed fails to converge, its coarse location is reported
// instead, the result carries StatusRootFindingDivergence and the returned
// error wraps core.ErrRootFindingDivergence.
func Forward(q []complex128, t1, t2 float64, xi core.XiGrid, opts Options, run ...core.RunOption) (*Result, error) {
	cfg := core.ApplyRunOptions(run...)
	grid := core.Grid{T1: t1, T2: t2, D: len(q)}

	if err := validate(q, grid, xi, opts); err != nil {
		return nil, err
	}

	eps := grid.Step()
	pot := scheme.NSE(q, opts.Kappa)
	tcfg := transfer.Config{Normalize: opts.Normalize, Workers: cfg.Workers, Multiplier: poly.NewMultiplier()}

	mono, err := transfer.New(opts.Discretization, pot, eps, tcfg)
	if err != nil {
		return nil, err
	}

	l, r := grid.Boundary()
	bnd := contspec.Boundary{Left: l, Right: r}

	res := &Result{Diagnostics: core.Diagnostics{Samples: grid.D}}

	if res.ContSpec, err = contspec.Evaluate(mono, xi.Points(), bnd, opts.ContSpecType); err != nil {
		return nil, err
	}

	log := cfg.Logger.WithFields(logrus.Fields{"transform": "nsev", "samples": grid.D})

	if !opts.BoundStates || opts.Kappa != core.Focusing || pot.MaxAbs() == 0 {
		log.Debug("no bound state search")
		return res, nil
	}

	loc := locator{
		opts: opts,
		cfg:  cfg,
		grid: grid,
		pot:  pot,
		tcfg: tcfg,
		f:    norming.ScatteringFunc(mono, bnd),
	}

	found, reseeded, err := loc.locate(&res.Diagnostics)
	if err != nil {
		return nil, err
	}

	if res.BoundStates, err = norming.Compute(mono, roots.Values(found), bnd, opts.DiscSpecType, roots.DefaultOptions().Radius); err != nil {
		return nil, err
	}

	res.Diagnostics.Roots = len(res.BoundStates)

	log.WithFields(logrus.Fields{
		"seeds":     res.Diagnostics.Seeds,
		"diverged":  res.Diagnostics.Diverged,
		"fallbacks": res.Diagnostics.Fallbacks,
		"roots":     res.Diagnostics.Roots,
	}).Debug("bound states located")

	switch {
	case reseeded:
		res.Status = core.StatusRootFindingDivergence

		return res, fmt.Errorf("%w: coarse polynomial without usable roots, seeded by %v instead",
			core.ErrRootFindingDivergence, GridSearch)
	case res.Diagnostics.Fallbacks > 0:
		res.Status = core.StatusRootFindingDivergence

		return res, fmt.Errorf("%w: %d bound states kept at their coarse estimate",
			core.ErrRootFindingDivergence, res.Diagnostics.Fallbacks)
	}

	return res, nil
}

func validate(q []complex128, grid core.Grid, xi core.XiGrid, opts Options) error {
	if err := opts.Validate(len(q)); err != nil {
		return err
	}

	if err := grid.Validate(); err != nil {
		return err
	}

	if !core.AllFinite(q) {
		return fmt.Errorf("%w: non-finite signal sample", core.ErrInvalidArgument)
	}

	return xi.Validate()
}

// locator finds the bound states of one signal.
type locator struct {
	opts Options
	cfg  core.RunConfig
	grid core.Grid
	pot  scheme.Potential
	tcfg transfer.Config
	f    roots.Func
}

// region is where bound states of the sampled signal can lie.
func (l *locator) region() core.Box {
	w := math.Pi / (2 * l.grid.Step())

	return core.Box{XMin: -w, XMax: w, YMin: 0, YMax: (1 + boxSlack) * l.pot.MaxAbs()}
}

// searchBox is the grid search region.
func (l *locator) searchBox() core.Box {
	if l.opts.BoundingBox.IsZero() {
		return l.region()
	}

	return l.opts.BoundingBox
}

func (l *locator) keep(z complex128) bool {
	switch l.opts.Filtering {
	case FilterNone:
		return true
	case FilterBasic:
		return imag(z) > minImag && (l.opts.BoundingBox.IsZero() || l.opts.BoundingBox.Contains(z))
	default:
		return imag(z) > minImag && l.searchBox().Contains(z) && l.region().Contains(z)
	}
}

func (l *locator) seeds() ([]roots.Seed, error) {
	switch l.opts.Localization {
	case GridSearch:
		return roots.GridSearch(l.f, l.searchBox(), l.opts.GridSize, l.opts.GridSize)
	case Newton:
		out := make([]roots.Seed, len(l.opts.InitialGuesses))
		for i, z := range l.opts.InitialGuesses {
			out[i] = roots.Seed{Z: z}
		}

		return out, nil
	default:
		return l.subsampledSeeds()
	}
}

// subsampledSeeds returns the upper half-plane zeros of a(xi) for a coarse
// version of the signal. Polynomial schemes keep their own discretization
// for the coarse problem; the exponential scheme falls back to Split2.
func (l *locator) subsampledSeeds() ([]roots.Seed, error) {
	s := l.opts.Discretization
	if !s.IsPolynomial() {
		s = scheme.Split2
	}

	idx, coarse := l.grid.Subsample(l.opts.subsamples(l.grid.D))

	cfg := l.tcfg
	cfg.Normalize = true

	pm, err := transfer.NewPolynomial(s, l.pot.Subsample(idx), coarse.Step(), cfg)
	if err != nil {
		return nil, err
	}

	all, converged, err := roots.PolynomialSeeds(pm.Entry(0, 0), pm.ToXi)
	if err != nil {
		return nil, err
	}

	if !converged {
		l.cfg.Logger.WithField("degree", pm.Degree()).Debug("coarse polynomial roots did not fully converge")
	}

	out := all[:0]

	for _, sd := range all {
		if imag(sd.Z) > 0 && (l.opts.Filtering == FilterNone || l.keep(sd.Z)) {
			out = append(out, sd)
		}
	}

	return out, nil
}

// newtonRegion confines iterates to the search region widened by its own
// height on every side.
func (l *locator) newtonRegion() core.Box {
	b := l.searchBox()
	h := b.YMax - b.YMin

	if math.IsInf(h, 0) || math.IsNaN(h) {
		return core.InfiniteBox()
	}

	return core.Box{XMin: b.XMin - h, XMax: b.XMax + h, YMin: b.YMin - h, YMax: b.YMax + h}
}

// locate reports whether the coarse polynomial seeding failed and the
// seeds came from a grid search instead.
func (l *locator) locate(diag *core.Diagnostics) ([]roots.Root, bool, error) {
	if l.opts.Localization == SubsampleAndRefine {
		diag.Subsamples = l.opts.subsamples(l.grid.D)
	}

	reseeded := false

	seeds, err := l.seeds()
	if err != nil && l.opts.Localization == SubsampleAndRefine && errors.Is(err, core.ErrRootFindingDivergence) {
		l.cfg.Logger.WithError(err).Warn("coarse polynomial seeding failed, falling back to grid search")

		box := l.searchBox().Intersect(l.region())
		if !box.Finite() || !(box.XMin < box.XMax && box.YMin < box.YMax) {
			box = l.region()
		}

		reseeded = true
		seeds, err = roots.GridSearch(l.f, box, l.opts.GridSize, l.opts.GridSize)
	}

	if err != nil {
		return nil, false, err
	}

	ropts := roots.Options{
		Niter:     l.opts.Niter,
		Tolerance: l.opts.Tolerance,
		Region:    l.newtonRegion(),
		Workers:   l.cfg.Workers,
	}

	found, stats := roots.Collect(l.f, seeds, ropts, l.opts.DedupTolerance,
		func(r roots.Root) bool { return l.keep(r.Z) }, l.opts.maxEvals(l.grid.D))

	stats.Apply(diag)

	return found, reseeded, nil
}
