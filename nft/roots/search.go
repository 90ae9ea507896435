package roots

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-nft/internal/polyroot"
	"github.com/cwbudde/algo-nft/nft/core"
)

// maxEdgeDepth limits the bisection of one grid edge while tracking the
// argument of f.
const maxEdgeDepth = 8

// GridSearch samples f on an nx-by-ny cell grid over box and returns one
// validated seed at the centre of every cell around which the argument of f
// winds at least once. Cells touching points where f fails are skipped.
func GridSearch(f Func, box core.Box, nx, ny int) ([]Seed, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("%w: grid size %dx%d", core.ErrInvalidArgument, nx, ny)
	}

	if !box.Finite() || box.Empty() || box.XMin == box.XMax || box.YMin == box.YMax {
		return nil, fmt.Errorf("%w: grid search needs a finite box with area, got %v", core.ErrInvalidArgument, box)
	}

	hx := (box.XMax - box.XMin) / float64(nx)
	hy := (box.YMax - box.YMin) / float64(ny)
	node := func(i, j int) complex128 {
		return complex(box.XMin+float64(i)*hx, box.YMin+float64(j)*hy)
	}

	vals := make([][]complex128, nx+1)
	ok := make([][]bool, nx+1)

	for i := range vals {
		vals[i] = make([]complex128, ny+1)
		ok[i] = make([]bool, ny+1)

		for j := range vals[i] {
			v, err := f(node(i, j))
			vals[i][j], ok[i][j] = v, err == nil && core.IsFinite(v)
		}
	}

	// horizontal[i][j]: argument change from node (i,j) to (i+1,j);
	// vertical[i][j]: from (i,j) to (i,j+1).
	horizontal := make([][]float64, nx)
	for i := range horizontal {
		horizontal[i] = make([]float64, ny+1)
		for j := range horizontal[i] {
			horizontal[i][j] = math.NaN()
			if ok[i][j] && ok[i+1][j] {
				horizontal[i][j] = argChange(f, node(i, j), node(i+1, j), vals[i][j], vals[i+1][j], 0)
			}
		}
	}

	vertical := make([][]float64, nx+1)
	for i := range vertical {
		vertical[i] = make([]float64, ny)
		for j := range vertical[i] {
			vertical[i][j] = math.NaN()
			if ok[i][j] && ok[i][j+1] {
				vertical[i][j] = argChange(f, node(i, j), node(i, j+1), vals[i][j], vals[i][j+1], 0)
			}
		}
	}

	var seeds []Seed

	for i := range nx {
		for j := range ny {
			// counter-clockwise: bottom, right, top (reversed), left (reversed)
			total := horizontal[i][j] + vertical[i+1][j] - horizontal[i][j+1] - vertical[i][j]
			if math.IsNaN(total) {
				continue
			}

			if int(math.Round(total/(2*math.Pi))) >= 1 {
				seeds = append(seeds, Seed{
					Z:         complex(box.XMin+(float64(i)+0.5)*hx, box.YMin+(float64(j)+0.5)*hy),
					Validated: true,
				})
			}
		}
	}

	return seeds, nil
}

// argChange returns the continuous change of arg f along the segment a-b,
// bisecting while a single step exceeds a quarter turn.
func argChange(f Func, a, b, fa, fb complex128, depth int) float64 {
	if fa == 0 || fb == 0 {
		return math.NaN()
	}

	d := cmplx.Phase(fb / fa)
	if math.Abs(d) <= math.Pi/2 || depth >= maxEdgeDepth {
		return d
	}

	m := (a + b) / 2

	fm, err := f(m)
	if err != nil || !core.IsFinite(fm) {
		return math.NaN()
	}

	return argChange(f, a, m, fa, fm, depth+1) + argChange(f, m, b, fm, fb, depth+1)
}

// LineSearch samples |f| at n+1 equally spaced points from a to b and
// returns the interior local minima as (unvalidated) seeds.
func LineSearch(f Func, a, b complex128, n int) ([]Seed, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: line search needs at least 2 intervals, got %d", core.ErrInvalidArgument, n)
	}

	if !core.IsFinite(a) || !core.IsFinite(b) || a == b {
		return nil, fmt.Errorf("%w: degenerate segment %v..%v", core.ErrInvalidArgument, a, b)
	}

	pts := make([]complex128, n+1)
	mag := make([]float64, n+1)

	for k := range pts {
		pts[k] = a + (b-a)*complex(float64(k)/float64(n), 0)

		v, err := f(pts[k])
		if err != nil || !core.IsFinite(v) {
			mag[k] = math.Inf(1)
		} else {
			mag[k] = cmplx.Abs(v)
		}
	}

	var seeds []Seed

	for k := 1; k < n; k++ {
		if math.IsInf(mag[k], 1) {
			continue
		}

		if mag[k] <= mag[k-1] && mag[k] <= mag[k+1] && (mag[k] < mag[k-1] || mag[k] < mag[k+1]) {
			seeds = append(seeds, Seed{Z: pts[k]})
		}
	}

	return seeds, nil
}

// PolynomialSeeds returns the roots of the polynomial c (ascending order),
// mapped through toXi, as unvalidated seeds. Roots at z = 0 are skipped.
// The boolean reports whether the polynomial root finder converged.
func PolynomialSeeds(c []complex128, toXi func(complex128) complex128) ([]Seed, bool, error) {
	zs, converged, err := polyroot.Roots(c)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", core.ErrRootFindingDivergence, err)
	}

	seeds := make([]Seed, 0, len(zs))

	for _, z := range zs {
		if z == 0 || !core.IsFinite(z) {
			continue
		}

		if xi := toXi(z); core.IsFinite(xi) {
			seeds = append(seeds, Seed{Z: xi})
		}
	}

	return seeds, converged, nil
}
