package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid describes D uniform samples on [T1, T2].
//
// Vanishing problems sample both end points, so the step is (T2-T1)/(D-1)
// and every sample stands for a cell of one step centred on it. Periodic
// problems treat [T1, T2) as one period: the step is (T2-T1)/D and sample n
// covers [T1+n*step, T1+(n+1)*step).
type Grid struct {
	T1, T2   float64
	D        int
	Periodic bool
}

// Validate checks the grid invariants.
func (g Grid) Validate() error {
	if g.D < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidArgument, g.D)
	}

	if math.IsNaN(g.T1) || math.IsNaN(g.T2) || math.IsInf(g.T1, 0) || math.IsInf(g.T2, 0) {
		return fmt.Errorf("%w: non-finite time bounds [%v, %v]", ErrInvalidArgument, g.T1, g.T2)
	}

	if !(g.T1 < g.T2) {
		return fmt.Errorf("%w: time bounds must satisfy T1 < T2, got [%v, %v]", ErrInvalidArgument, g.T1, g.T2)
	}

	if !(g.Step() > 0) {
		return fmt.Errorf("%w: degenerate step for [%v, %v] with %d samples", ErrInvalidArgument, g.T1, g.T2, g.D)
	}

	return nil
}

// Step returns the sample spacing.
func (g Grid) Step() float64 {
	if g.Periodic {
		return (g.T2 - g.T1) / float64(g.D)
	}

	return (g.T2 - g.T1) / float64(g.D-1)
}

// Boundary returns the outer edges of the first and last cell. The
// scattering data of vanishing problems are referred to these points.
func (g Grid) Boundary() (float64, float64) {
	if g.Periodic {
		return g.T1, g.T2
	}

	h := g.Step() / 2

	return g.T1 - h, g.T2 + h
}

// Points returns the sample positions.
func (g Grid) Points() []float64 {
	if g.Periodic {
		return floats.Span(make([]float64, g.D+1), g.T1, g.T2)[:g.D]
	}

	return floats.Span(make([]float64, g.D), g.T1, g.T2)
}

// XiGrid describes M equally spaced real spectral points from Xi1 to Xi2.
type XiGrid struct {
	Xi1, Xi2 float64
	M        int
}

// Validate checks the spectral grid invariants. M == 0 requests no points.
func (x XiGrid) Validate() error {
	if x.M < 0 {
		return fmt.Errorf("%w: negative spectral point count %d", ErrInvalidArgument, x.M)
	}

	if x.M == 0 {
		return nil
	}

	if math.IsNaN(x.Xi1) || math.IsNaN(x.Xi2) || math.IsInf(x.Xi1, 0) || math.IsInf(x.Xi2, 0) {
		return fmt.Errorf("%w: non-finite spectral bounds [%v, %v]", ErrInvalidArgument, x.Xi1, x.Xi2)
	}

	if x.M > 1 && !(x.Xi1 < x.Xi2) {
		return fmt.Errorf("%w: spectral bounds must satisfy Xi1 < Xi2, got [%v, %v]", ErrInvalidArgument, x.Xi1, x.Xi2)
	}

	return nil
}

// Points returns the spectral points. A single point sits at Xi1.
func (x XiGrid) Points() []float64 {
	switch x.M {
	case 0:
		return nil
	case 1:
		return []float64{x.Xi1}
	default:
		return floats.Span(make([]float64, x.M), x.Xi1, x.Xi2)
	}
}

// Box is an axis-aligned region of the complex plane. Bounds may be
// infinite. The zero Box is treated as "unset" by the drivers.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
}

// InfiniteBox covers the whole complex plane.
func InfiniteBox() Box {
	return Box{XMin: math.Inf(-1), XMax: math.Inf(1), YMin: math.Inf(-1), YMax: math.Inf(1)}
}

// IsZero reports whether b is the zero value.
func (b Box) IsZero() bool {
	return b == Box{}
}

// Validate checks that the bounds are ordered and not NaN.
func (b Box) Validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN in bounding box %v", ErrInvalidArgument, b)
		}
	}

	if b.XMin > b.XMax || b.YMin > b.YMax {
		return fmt.Errorf("%w: unordered bounding box %v", ErrInvalidArgument, b)
	}

	return nil
}

// Finite reports whether all four bounds are finite.
func (b Box) Finite() bool {
	return !math.IsInf(b.XMin, 0) && !math.IsInf(b.XMax, 0) &&
		!math.IsInf(b.YMin, 0) && !math.IsInf(b.YMax, 0)
}

// Contains reports whether z lies in the closed box.
func (b Box) Contains(z complex128) bool {
	x, y := real(z), imag(z)
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// Intersect returns the common part of b and o. The result may be empty
// (XMin > XMax or YMin > YMax).
func (b Box) Intersect(o Box) Box {
	return Box{
		XMin: math.Max(b.XMin, o.XMin),
		XMax: math.Min(b.XMax, o.XMax),
		YMin: math.Max(b.YMin, o.YMin),
		YMax: math.Min(b.YMax, o.YMax),
	}
}

// Empty reports whether the box contains no point.
func (b Box) Empty() bool {
	return b.XMin > b.XMax || b.YMin > b.YMax
}

func (b Box) String() string {
	return fmt.Sprintf("[%g, %g]x[%g, %g]", b.XMin, b.XMax, b.YMin, b.YMax)
}

// Subsample picks n of the grid's samples, spread evenly and including the
// first one, and returns their indices together with the grid they
// approximately form. n is clamped to [2, D].
func (g Grid) Subsample(n int) ([]int, Grid) {
	n = min(max(n, 2), g.D)
	idx := make([]int, n)

	if g.Periodic {
		for k := range idx {
			idx[k] = k * g.D / n
		}

		return idx, Grid{T1: g.T1, T2: g.T2, D: n, Periodic: true}
	}

	for k := range idx {
		idx[k] = int(math.Round(float64(k) * float64(g.D-1) / float64(n-1)))
	}

	return idx, Grid{T1: g.T1, T2: g.T2, D: n}
}
