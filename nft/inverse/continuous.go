package inverse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-nft/internal/poly"
	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
)

// divergenceLimit aborts a Fourier iteration whose relative residual has
// grown past it.
const divergenceLimit = 1e3

// Config controls the continuous spectrum inversion.
type Config struct {
	Method Method
	Kappa  core.Kappa
	// MaxIter bounds the Fourier iteration.
	MaxIter int
	// Tolerance is the relative reflection residual at which the Fourier
	// iteration stops.
	Tolerance float64
	// Multiplier caches FFT plans; nil allocates a private one.
	Multiplier *poly.Multiplier
}

// DefaultConfig returns layer peeling for the focusing equation.
func DefaultConfig() Config {
	return Config{
		Method:    LayerPeeling,
		Kappa:     core.Focusing,
		MaxIter:   100,
		Tolerance: 1e-10,
	}
}

// Report describes how a synthesis ended.
type Report struct {
	// Iterations is the number of Fourier iterations; zero for layer peeling.
	Iterations int
	// Residual is the final relative reflection residual of the Fourier
	// iteration.
	Residual float64
}

// Continuous synthesizes the D = grid.D samples whose continuous spectrum
// of the given type equals spec on the [XiGrid] points, in ascending order.
// A Fourier iteration that fails to converge returns its best iterate
// together with an error wrapping core.ErrInverseSynthesisDivergence.
func Continuous(spec []complex128, typ ContSpecType, grid core.Grid, cfg Config) ([]complex128, Report, error) {
	if !cfg.Method.Valid() {
		return nil, Report{}, fmt.Errorf("%w: inverse method %v", core.ErrInvalidArgument, cfg.Method)
	}

	if !typ.Valid() {
		return nil, Report{}, fmt.Errorf("%w: continuous spectrum type %v", core.ErrInvalidArgument, typ)
	}

	if !cfg.Kappa.Valid() {
		return nil, Report{}, fmt.Errorf("%w: kappa %v", core.ErrInvalidArgument, cfg.Kappa)
	}

	if grid.Periodic {
		return nil, Report{}, fmt.Errorf("%w: inverse transform requires a vanishing grid", core.ErrInvalidArgument)
	}

	if _, err := XiGrid(grid.D, grid.T1, grid.T2, len(spec)); err != nil {
		return nil, Report{}, err
	}

	if !core.AllFinite(spec) {
		return nil, Report{}, fmt.Errorf("%w: non-finite spectrum", core.ErrInvalidArgument)
	}

	s := newModel(grid, len(spec), cfg.Kappa, cfg.Multiplier)

	r, a, err := s.scatteringFromSpectrum(toFFTOrder(spec), typ)
	if err != nil {
		return nil, Report{}, err
	}

	if cfg.Method == FourierIteration {
		return s.iterate(r, cfg)
	}

	q, err := s.layerPeeling(r, a)

	return q, Report{}, err
}

func (s *model) layerPeeling(r, a []complex128) ([]complex128, error) {
	bp := make([]complex128, s.m)
	for k := range bp {
		bp[k] = r[k] * a[k] * s.phase[k]
	}

	ac, err := s.mult.Interpolate(a)
	if err != nil {
		return nil, err
	}

	bc, err := s.mult.Interpolate(bp)
	if err != nil {
		return nil, err
	}

	return s.peel(ac, bc)
}

// iterate runs q <- q + born(r*a(q) - b(q)) from the Born approximation of
// r and keeps the iterate with the smallest residual.
func (s *model) iterate(r []complex128, cfg Config) ([]complex128, Report, error) {
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultConfig().MaxIter
	}

	tol := cfg.Tolerance
	if !(tol > 0) {
		tol = DefaultConfig().Tolerance
	}

	norm := floats.Norm(contspec.Magnitude(r), 2)
	if norm == 0 {
		return make([]complex128, s.d), Report{}, nil
	}

	q, err := s.born(r)
	if err != nil {
		return nil, Report{}, err
	}

	best := Report{Residual: math.Inf(1)}
	bestQ := q
	diff := make([]complex128, s.m)

	for it := 1; it <= maxIter; it++ {
		av, bv, err := s.scattering(q)
		if err != nil {
			break
		}

		for k := range diff {
			diff[k] = r[k] - bv[k]/av[k]
		}

		res := floats.Norm(contspec.Magnitude(diff), 2) / norm
		if math.IsNaN(res) {
			break
		}

		if res < best.Residual {
			best = Report{Iterations: it, Residual: res}
			bestQ = q
		}

		if res <= tol {
			return q, Report{Iterations: it, Residual: res}, nil
		}

		if res > divergenceLimit || it == maxIter {
			break
		}

		for k := range diff {
			diff[k] = r[k]*av[k] - bv[k]
		}

		dq, err := s.born(diff)
		if err != nil {
			return nil, Report{}, err
		}

		next := make([]complex128, s.d)
		for n := range next {
			next[n] = q[n] + dq[n]
		}

		q = next
	}

	return bestQ, best, fmt.Errorf("%w: relative residual %.3g after %d iterations",
		core.ErrInverseSynthesisDivergence, best.Residual, best.Iterations)
}
