// Package roots locates zeros of analytic spectral functions: grid search by
// phase winding, 1-D line search, polynomial seeding, and Newton refinement
// with a contour-integral derivative.
//
// All spectral functions handled here are analytic, so the derivative is
// taken from samples on a small circle rather than from a separately
// propagated derivative matrix.
package roots

import (
	"cmp"
	"math"
	"math/cmplx"
	"slices"

	"github.com/cwbudde/algo-nft/nft/core"
)

// Func is an analytic function of the spectral parameter. An error marks
// points where it cannot be evaluated, typically numerical overflow.
type Func func(z complex128) (complex128, error)

// Seed is an initial guess. Validated seeds come from a phase-winding test
// and are known to enclose a zero.
type Seed struct {
	Z         complex128
	Validated bool
}

// Root is a refined zero.
type Root struct {
	Z          complex128
	Residual   float64
	Converged  bool
	Iterations int
}

// Stats counts what happened to the seeds of one refinement.
type Stats struct {
	Seeds     int
	Converged int
	Diverged  int
	Fallbacks int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Seeds += o.Seeds
	s.Converged += o.Converged
	s.Diverged += o.Diverged
	s.Fallbacks += o.Fallbacks
}

// Options configures Newton refinement.
type Options struct {
	// Niter is the iteration limit per seed.
	Niter int
	// Tolerance is the relative step size at which an iteration has converged.
	Tolerance float64
	// Radius of the circle used for the derivative.
	Radius float64
	// Points on that circle.
	Points int
	// Region confines the iterates; the zero Box means no confinement.
	Region core.Box
	// Workers bounds concurrent refinements.
	Workers int
}

// DefaultOptions returns settings suitable for unit-scale problems.
func DefaultOptions() Options {
	return Options{
		Niter:     20,
		Tolerance: 1e-10,
		Radius:    1e-3,
		Points:    4,
		Workers:   1,
	}
}

func (o Options) normalize() Options {
	def := DefaultOptions()

	if o.Niter <= 0 {
		o.Niter = def.Niter
	}

	if !(o.Tolerance > 0) {
		o.Tolerance = def.Tolerance
	}

	if !(o.Radius > 0) {
		o.Radius = def.Radius
	}

	if o.Points < 2 {
		o.Points = def.Points
	}

	if o.Workers < 1 {
		o.Workers = 1
	}

	if o.Region.IsZero() {
		o.Region = core.InfiniteBox()
	}

	return o
}

// Derivative estimates f'(z) from n samples on the circle |w - z| = r,
// f'(z) ~ (1/(n*r)) * sum_k f(z + r*u_k) * conj(u_k) with u_k the n-th roots
// of unity. The truncation error is O(r^n).
func Derivative(f Func, z complex128, r float64, n int) (complex128, error) {
	var sum complex128

	for k := range n {
		u := cmplx.Rect(1, 2*math.Pi*float64(k)/float64(n))

		v, err := f(z + complex(r, 0)*u)
		if err != nil {
			return 0, err
		}

		sum += v * cmplx.Conj(u)
	}

	return sum / complex(float64(n)*r, 0), nil
}

// Dedup ranks roots (converged first, then by residual, real part and
// imaginary part) and keeps the best representative of every group of
// roots closer than tol*max(1, |z|).
func Dedup(roots []Root, tol float64) []Root {
	ranked := slices.Clone(roots)
	slices.SortStableFunc(ranked, rank)

	out := make([]Root, 0, len(ranked))

	for _, r := range ranked {
		dup := false

		for _, kept := range out {
			if cmplx.Abs(r.Z-kept.Z) <= tol*math.Max(1, cmplx.Abs(kept.Z)) {
				dup = true
				break
			}
		}

		if !dup {
			out = append(out, r)
		}
	}

	return out
}

func rank(a, b Root) int {
	if a.Converged != b.Converged {
		if a.Converged {
			return -1
		}

		return 1
	}

	if c := cmp.Compare(a.Residual, b.Residual); c != 0 {
		return c
	}

	return byPosition(a, b)
}

func byPosition(a, b Root) int {
	if c := cmp.Compare(real(a.Z), real(b.Z)); c != 0 {
		return c
	}

	return cmp.Compare(imag(a.Z), imag(b.Z))
}

// Truncate keeps the first limit roots of a ranked slice (see [Dedup]); a
// non-positive limit keeps all. The kept set for a larger limit is always a
// superset of the kept set for a smaller one.
func Truncate(ranked []Root, limit int) []Root {
	if limit <= 0 || len(ranked) <= limit {
		return ranked
	}

	return ranked[:limit]
}

// SortByPosition orders roots by real part, then imaginary part.
func SortByPosition(roots []Root) {
	slices.SortStableFunc(roots, byPosition)
}

// Filter returns the roots for which keep reports true.
func Filter(roots []Root, keep func(Root) bool) []Root {
	out := make([]Root, 0, len(roots))

	for _, r := range roots {
		if keep(r) {
			out = append(out, r)
		}
	}

	return out
}

// Values extracts the root locations.
func Values(roots []Root) []complex128 {
	out := make([]complex128, len(roots))
	for i, r := range roots {
		out[i] = r.Z
	}

	return out
}

// Apply copies the counts into d.
func (s Stats) Apply(d *core.Diagnostics) {
	d.Seeds = s.Seeds
	d.Converged = s.Converged
	d.Diverged = s.Diverged
	d.Fallbacks = s.Fallbacks
}

// Collect refines the seeds and reduces the refined roots to the reported
// set: duplicates closer than dedupTol are merged, keep (if non-nil)
// filters, at most limit roots survive (limit <= 0 keeps all) and the
// result is ordered by position.
func Collect(f Func, seeds []Seed, opts Options, dedupTol float64, keep func(Root) bool, limit int) ([]Root, Stats) {
	refined, stats := Refine(f, seeds, opts)

	out := Dedup(refined, dedupTol)
	if keep != nil {
		out = Filter(out, keep)
	}

	out = slices.Clone(Truncate(out, limit))
	SortByPosition(out)

	return out, stats
}
