package transfer

import (
	"fmt"
	"math/cmplx"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// parallelMin is the smallest subtree (in samples) merged concurrently.
const parallelMin = 64

// Config controls the construction of a [Polynomial] monodromy.
type Config struct {
	// Normalize rescales partial products by powers of two.
	Normalize bool
	// Workers bounds the number of goroutines merging subtrees, the caller's
	// included.
	Workers int
	// Multiplier caches FFT plans; a fresh one is used when nil.
	Multiplier *poly.Multiplier
}

// Polynomial is the monodromy of a polynomial scheme in the form
// exp(-i*xi*eps*D) * P(z) * 2^Exp with z = exp(i*xi*eps/m).
type Polynomial struct {
	p         poly.Matrix
	exp       int
	scheme    scheme.Scheme
	eps       float64
	samples   int
	normalize bool

	// peak is the largest number of goroutines that merged at once.
	peak int
}

type builder struct {
	scheme    scheme.Scheme
	pot       scheme.Potential
	eps       float64
	normalize bool
	mult      *poly.Multiplier

	// g runs left subtrees when a worker is free, nil for one worker.
	g            *errgroup.Group
	active, peak atomic.Int32
}

// NewPolynomial multiplies out the per-sample factors of p. Subtrees are
// merged in a fixed balanced structure, so the result does not depend on
// the number of workers.
func NewPolynomial(s scheme.Scheme, p scheme.Potential, eps float64, cfg Config) (*Polynomial, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}

	if !s.IsPolynomial() {
		return nil, fmt.Errorf("%w: %v has no polynomial form", core.ErrInvalidDiscretization, s)
	}

	d := p.Len()
	if d == 0 || len(p.R) != d {
		return nil, fmt.Errorf("%w: empty or inconsistent potential", core.ErrInvalidArgument)
	}

	if !(eps > 0) {
		return nil, fmt.Errorf("%w: step %v", core.ErrInvalidArgument, eps)
	}

	n := s.Degree()*d + 1
	if err := core.CheckSize(4 * n); err != nil {
		return nil, err
	}

	b := &builder{
		scheme:    s,
		pot:       p,
		eps:       eps,
		normalize: cfg.Normalize,
		mult:      cfg.Multiplier,
	}

	if b.mult == nil {
		b.mult = poly.NewMultiplier()
	}

	if cfg.Workers > 1 {
		b.g = new(errgroup.Group)
		b.g.SetLimit(cfg.Workers - 1)
	}

	b.enter()
	m, e, err := b.merge(0, d)
	b.leave()

	if b.g != nil {
		// every spawned merge has been joined by its parent
		_ = b.g.Wait()
	}

	if err != nil {
		return nil, err
	}

	for i := range 2 {
		for j := range 2 {
			if len(m[i][j]) < n {
				pad, err := core.Allocate(n)
				if err != nil {
					return nil, err
				}

				copy(pad, m[i][j])
				m[i][j] = pad
			}
		}
	}

	return &Polynomial{
		p:         m,
		exp:       e,
		scheme:    s,
		eps:       eps,
		samples:   d,
		normalize: cfg.Normalize,
		peak:      int(b.peak.Load()),
	}, nil
}

func (b *builder) enter() {
	n := b.active.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (b *builder) leave() { b.active.Add(-1) }

func (b *builder) merge(lo, hi int) (poly.Matrix, int, error) {
	if hi-lo == 1 {
		f, err := b.scheme.PolyFactor(b.pot.Q[lo], b.pot.R[lo], b.eps)
		if err != nil {
			return poly.Matrix{}, 0, err
		}

		if !f.IsFinite() {
			return poly.Matrix{}, 0, fmt.Errorf("%w: factor of sample %d", core.ErrNumericalOverflow, lo)
		}

		e := 0
		if b.normalize {
			e = f.Normalize()
		}

		return f, e, nil
	}

	mid := lo + (hi-lo)/2

	var (
		left, right       poly.Matrix
		el, er            int
		errLeft, errRight error
	)

	done := make(chan struct{})
	spawned := b.g != nil && hi-lo >= parallelMin && b.g.TryGo(func() error {
		defer close(done)

		b.enter()
		defer b.leave()

		left, el, errLeft = b.merge(lo, mid)
		return nil
	})

	if !spawned {
		left, el, errLeft = b.merge(lo, mid)
		close(done)
	}

	// a spawned left merge is still writing errLeft
	if spawned || errLeft == nil {
		right, er, errRight = b.merge(mid, hi)
	}

	<-done

	if errLeft != nil {
		return poly.Matrix{}, 0, errLeft
	}

	if errRight != nil {
		return poly.Matrix{}, 0, errRight
	}

	prod, err := b.mult.MulMatrix(right, left)
	if err != nil {
		return poly.Matrix{}, 0, fmt.Errorf("%w: %w", core.ErrAllocationFailure, err)
	}

	if !prod.IsFinite() {
		return poly.Matrix{}, 0, fmt.Errorf("%w: merging samples [%d, %d)", core.ErrNumericalOverflow, lo, hi)
	}

	e := el + er
	if b.normalize {
		e += prod.Normalize()
	}

	return prod, e, nil
}

// Scheme returns the discretization the polynomial was built with.
func (pm *Polynomial) Scheme() scheme.Scheme { return pm.scheme }

// Samples returns the number of samples D.
func (pm *Polynomial) Samples() int { return pm.samples }

// Step returns the grid step.
func (pm *Polynomial) Step() float64 { return pm.eps }

// Exp returns the power-of-two scale of the coefficients.
func (pm *Polynomial) Exp() int { return pm.exp }

// Degree returns the common degree of the entries.
func (pm *Polynomial) Degree() int { return pm.p.Len() - 1 }

// Entry returns the coefficients of entry (i, j) in ascending order. The
// slice is shared and must not be modified.
func (pm *Polynomial) Entry(i, j int) []complex128 { return pm.p[i][j] }

// ToXi maps a value of the polynomial variable back to the spectral
// parameter, xi = -i*m*log(z)/eps (principal branch).
func (pm *Polynomial) ToXi(z complex128) complex128 {
	m := float64(pm.scheme.Upsampling())
	return -1i * cmplx.Log(z) * complex(m/pm.eps, 0)
}

// Eval returns the monodromy matrix at xi. In the lower half plane, where
// |z| > 1, the entries are evaluated in 1/z to avoid overflow.
func (pm *Polynomial) Eval(xi complex128) (Scaled, error) {
	m := float64(pm.scheme.Upsampling())
	w := 1i * xi * complex(pm.eps/m, 0)
	phase := -1i * xi * complex(pm.eps*float64(pm.samples), 0)
	n := pm.Degree()

	var val [2][2]complex128

	if real(w) <= 0 {
		val = pm.p.Eval(cmplx.Exp(w))
	} else {
		rz := cmplx.Exp(-w)
		for i := range 2 {
			for j := range 2 {
				var v complex128
				for _, c := range pm.p[i][j] {
					v = v*rz + c
				}

				val[i][j] = v
			}
		}

		phase += complex(float64(n), 0) * w
	}

	pre, e := core.ExpScaled(phase)

	return finish(Scaled{M: core.Matrix(val).Scale(pre), Exp: pm.exp + e}, pm.normalize, xi)
}
