package roots

import (
	"fmt"
	"math"
	"math/cmplx"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-nft/nft/core"
)

// stallLimit is the number of small non-contracting Newton steps after
// which an iteration is considered to have reached its attainable accuracy.
const stallLimit = 5

// Newton refines z0 towards a zero of f.
//
// When the step ratio of consecutive iterations settles near 1/2, the zero
// is treated as double and the step is doubled, which restores quadratic
// convergence at the double points of periodic spectra. Near such points
// rounding noise limits the attainable accuracy to about sqrt(Tolerance);
// once stallLimit consecutive steps below that size stop shrinking
// quadratically, the iterate with the smallest |f| is accepted.
//
// It returns ErrRootFindingDivergence if the iteration limit is exceeded,
// an iterate becomes non-finite or leaves the region, or f cannot be
// evaluated along the way.
//
//nolint:cyclop
func Newton(f Func, z0 complex128, opts Options) (Root, error) {
	opts = opts.normalize()

	z := z0
	mult := 1.0
	prev := 0.0
	halving := 0
	stalled := 0
	best := Root{Z: z0, Residual: math.Inf(1)}
	noise := math.Sqrt(opts.Tolerance)

	for it := 1; it <= opts.Niter; it++ {
		fz, err := f(z)
		if err != nil {
			return Root{Z: z, Iterations: it}, fmt.Errorf("%w: %w", core.ErrRootFindingDivergence, err)
		}

		if fz == 0 {
			return Root{Z: z, Converged: true, Iterations: it}, nil
		}

		if a := cmplx.Abs(fz); a < best.Residual {
			best = Root{Z: z, Residual: a}
		}

		d, err := Derivative(f, z, opts.Radius, opts.Points)
		if err != nil {
			return Root{Z: z, Iterations: it}, fmt.Errorf("%w: %w", core.ErrRootFindingDivergence, err)
		}

		step := fz / d
		size := cmplx.Abs(step)
		ratio := 1.0

		if prev > 0 {
			ratio = size / prev

			switch {
			case ratio > 0.4 && ratio < 0.6:
				halving++
				if halving >= 2 {
					mult = 2
				}
			case ratio < 0.1:
				halving = 0
			default:
				halving = 0
				mult = 1
			}
		}

		switch {
		case size > noise*math.Max(1, cmplx.Abs(z)):
			stalled = 0
		case ratio >= 0.1:
			stalled++
		}

		prev = size
		z -= complex(mult, 0) * step

		if !core.IsFinite(z) {
			return Root{Z: z0, Iterations: it}, fmt.Errorf("%w: non-finite iterate from %v", core.ErrRootFindingDivergence, z0)
		}

		if !opts.Region.Contains(z) {
			return Root{Z: z, Iterations: it}, fmt.Errorf("%w: iterate %v left the search region", core.ErrRootFindingDivergence, z)
		}

		if mult*size <= opts.Tolerance*math.Max(1, cmplx.Abs(z)) {
			res, err := f(z)
			if err != nil {
				return Root{Z: z, Iterations: it}, fmt.Errorf("%w: %w", core.ErrRootFindingDivergence, err)
			}

			return Root{Z: z, Residual: cmplx.Abs(res), Converged: true, Iterations: it}, nil
		}

		if stalled >= stallLimit {
			best.Converged, best.Iterations = true, it
			return best, nil
		}
	}

	return Root{Z: z, Iterations: opts.Niter}, fmt.Errorf("%w: no convergence from %v in %d iterations",
		core.ErrRootFindingDivergence, z0, opts.Niter)
}

// Refine runs [Newton] from every seed, concurrently up to opts.Workers.
// Results keep the seed order. A diverged seed is dropped unless it is
// validated, in which case its coarse location is kept unconverged.
func Refine(f Func, seeds []Seed, opts Options) ([]Root, Stats) {
	opts = opts.normalize()

	type outcome struct {
		root Root
		err  error
	}

	results := make([]outcome, len(seeds))

	var g errgroup.Group
	g.SetLimit(opts.Workers)

	for i, s := range seeds {
		g.Go(func() error {
			r, err := Newton(f, s.Z, opts)
			results[i] = outcome{root: r, err: err}

			return nil
		})
	}

	_ = g.Wait()

	stats := Stats{Seeds: len(seeds)}
	out := make([]Root, 0, len(seeds))

	for i, res := range results {
		switch {
		case res.err == nil:
			stats.Converged++
			out = append(out, res.root)
		case seeds[i].Validated:
			stats.Fallbacks++

			coarse := Root{Z: seeds[i].Z, Residual: math.Inf(1)}
			if v, err := f(coarse.Z); err == nil {
				coarse.Residual = cmplx.Abs(v)
			}

			out = append(out, coarse)
		default:
			stats.Diverged++
		}
	}

	return out, stats
}
