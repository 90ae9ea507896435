package nsev

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nft/internal/testutil"
	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/inverse"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

const boxEigenvalue = 1.5742260077386625i

func boxReflection(amp, width, xi float64) complex128 {
	k := math.Sqrt(xi*xi + amp*amp)
	sinc := math.Sin(k*width) / k
	a := complex(math.Cos(k*width), -xi*sinc) * cmplx.Exp(complex(0, xi*width))

	return complex(-amp*sinc, 0) / a
}

func boxSignal() ([]complex128, float64, float64) {
	return testutil.Constant(2, 256), -1, 1
}

var exampleXi = core.XiGrid{Xi1: -2, Xi2: 2, M: 8}

func TestForward_BoxClosedForm(t *testing.T) {
	tests := []struct {
		scheme  scheme.Scheme
		specTol float64
		eigTol  float64
	}{
		{scheme.Exponential, 1e-5, 1e-8},
		{scheme.Split4, 1e-4, 1e-4},
		{scheme.Split2, 1e-2, 1e-2},
	}

	q, t1, t2 := boxSignal()
	width := (t2 - t1) * 256 / 255

	for _, tt := range tests {
		t.Run(tt.scheme.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Discretization = tt.scheme

			res, err := Forward(q, t1, t2, exampleXi, opts)
			require.NoError(t, err)
			require.Equal(t, core.StatusOK, res.Status)
			require.Len(t, res.ContSpec, exampleXi.M)

			for _, s := range res.ContSpec {
				testutil.RequireNearlyEqual(t, s.Reflection, boxReflection(2, width, s.Xi), tt.specTol)
			}

			require.Len(t, res.BoundStates, 1)
			testutil.RequireNearlyEqual(t, res.BoundStates[0].Eigenvalue, boxEigenvalue, tt.eigTol)
			testutil.RequireNearlyEqual(t, res.BoundStates[0].NormingConstant, -1, 100*tt.eigTol)
			require.Equal(t, 256, res.Diagnostics.Samples)
			require.Equal(t, 1, res.Diagnostics.Roots)
		})
	}
}

func TestForward_Localizations(t *testing.T) {
	q, t1, t2 := boxSignal()

	grid := DefaultOptions()
	grid.Localization = GridSearch
	grid.BoundingBox = core.Box{XMin: -3, XMax: 3, YMin: 0, YMax: 3}

	newton := DefaultOptions()
	newton.Localization = Newton
	newton.InitialGuesses = []complex128{1.4i, 0.3 + 1.7i}

	full := DefaultOptions()
	full.Dsub = 256

	tests := map[string]Options{
		"subsample-and-refine": DefaultOptions(),
		"full polynomial":      full,
		"grid-search":          grid,
		"newton":               newton,
	}

	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := Forward(q, t1, t2, core.XiGrid{}, opts)
			require.NoError(t, err)
			require.Empty(t, res.ContSpec)
			require.Len(t, res.BoundStates, 1, "bound states %v", res.BoundStates)
			testutil.RequireNearlyEqual(t, res.BoundStates[0].Eigenvalue, boxEigenvalue, 1e-4)
			require.Positive(t, res.Diagnostics.Seeds)
		})
	}
}

func TestForward_ZeroSignal(t *testing.T) {
	res, err := Forward(make([]complex128, 64), -1, 1, exampleXi, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, core.StatusOK, res.Status)
	require.Empty(t, res.BoundStates)

	for _, s := range res.ContSpec {
		require.Zero(t, s.Reflection)
	}
}

func TestForward_MinimalSignal(t *testing.T) {
	res, err := Forward([]complex128{1, 0.5i}, 0, 1, exampleXi, DefaultOptions())
	if err != nil {
		require.ErrorIs(t, err, core.ErrInvalidArgument)
		return
	}

	require.Len(t, res.ContSpec, exampleXi.M)
	testutil.RequireFinite(t, contspec.Reflections(res.ContSpec))

	for _, b := range res.BoundStates {
		require.Positive(t, imag(b.Eigenvalue))
	}
}

func twoSolitons() ([]complex128, float64, float64) {
	grid := core.Grid{T1: -10, T2: 10, D: 256}
	return testutil.Sech(grid.Points(), 2.2, 0), grid.T1, grid.T2
}

func TestForward_SechEigenvalues(t *testing.T) {
	q, t1, t2 := twoSolitons()

	res, err := Forward(q, t1, t2, core.XiGrid{}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.BoundStates, 2)

	// the piecewise constant signal model limits the accuracy to O(eps^2)
	eigs := norming.Eigenvalues(res.BoundStates)
	testutil.RequireContains(t, eigs, 1.7i, 1e-3)
	testutil.RequireContains(t, eigs, 0.7i, 1e-3)
}

func TestForward_SecondOrderConvergence(t *testing.T) {
	eigErr := func(s scheme.Scheme, d int) float64 {
		grid := core.Grid{T1: -10, T2: 10, D: d}
		opts := DefaultOptions()
		opts.Discretization = s

		res, err := Forward(testutil.Sech(grid.Points(), 2.2, 0), grid.T1, grid.T2, core.XiGrid{}, opts)
		require.NoError(t, err)

		_, dist := testutil.Nearest(norming.Eigenvalues(res.BoundStates), 1.7i)

		return dist
	}

	for _, s := range []scheme.Scheme{scheme.Exponential, scheme.Split4} {
		t.Run(s.String(), func(t *testing.T) {
			ratio := eigErr(s, 256) / eigErr(s, 512)
			require.InDelta(t, 4, ratio, 1, "error ratio per halved step")
		})
	}
}

func TestForward_Deterministic(t *testing.T) {
	q, t1, t2 := twoSolitons()
	xi := core.XiGrid{Xi1: -3, Xi2: 3, M: 33}

	opts := DefaultOptions()
	opts.DiscSpecType = norming.Both
	opts.ContSpecType = contspec.All

	one, err := Forward(q, t1, t2, xi, opts, core.WithWorkers(1))
	require.NoError(t, err)

	many, err := Forward(q, t1, t2, xi, opts, core.WithWorkers(8))
	require.NoError(t, err)

	again, err := Forward(q, t1, t2, xi, opts, core.WithWorkers(8))
	require.NoError(t, err)

	require.Equal(t, one, many)
	require.Equal(t, many, again)
}

func TestForward_MaxEvalsMonotone(t *testing.T) {
	q, t1, t2 := twoSolitons()

	var prev []complex128

	for limit := 1; limit <= 3; limit++ {
		opts := DefaultOptions()
		opts.MaxEvals = limit

		res, err := Forward(q, t1, t2, core.XiGrid{}, opts)
		require.NoError(t, err)
		require.LessOrEqual(t, len(res.BoundStates), limit)

		eigs := norming.Eigenvalues(res.BoundStates)
		for _, z := range prev {
			testutil.RequireContains(t, eigs, z, 0)
		}

		prev = eigs
	}

	require.Len(t, prev, 2)
}

func TestForward_Defocusing(t *testing.T) {
	q, t1, t2 := twoSolitons()

	opts := DefaultOptions()
	opts.Kappa = core.Defocusing

	res, err := Forward(q, t1, t2, core.XiGrid{Xi1: -4, Xi2: 4, M: 41}, opts)
	require.NoError(t, err)
	require.Empty(t, res.BoundStates)

	for _, p := range contspec.Power(contspec.Reflections(res.ContSpec)) {
		require.Less(t, p, 1.0)
	}
}

func TestForward_TraceFormula(t *testing.T) {
	grid := core.Grid{T1: -15, T2: 15, D: 512}
	q := testutil.Sech(grid.Points(), 1.2, 0)

	res, err := Forward(q, grid.T1, grid.T2, core.XiGrid{Xi1: -12, Xi2: 12, M: 2401}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.BoundStates, 1)

	energy := 0.0
	for _, p := range contspec.Power(q) {
		energy += p * grid.Step()
	}

	discrete := 4 * imag(res.BoundStates[0].Eigenvalue)
	require.InDelta(t, energy, contspec.Energy(res.ContSpec, 1)+discrete, 1e-3)
}

func TestForward_InvalidInput(t *testing.T) {
	q, t1, t2 := boxSignal()

	badScheme := DefaultOptions()
	badScheme.Discretization = scheme.Scheme(9)

	noGuesses := DefaultOptions()
	noGuesses.Localization = Newton

	badKappa := DefaultOptions()
	badKappa.Kappa = 0

	nan := testutil.Constant(1, 16)
	nan[3] = cmplx.NaN()

	tests := []struct {
		name   string
		q      []complex128
		t1, t2 float64
		xi     core.XiGrid
		opts   Options
		want   error
	}{
		{"scheme", q, t1, t2, exampleXi, badScheme, core.ErrInvalidDiscretization},
		{"newton without guesses", q, t1, t2, exampleXi, noGuesses, core.ErrInvalidArgument},
		{"kappa", q, t1, t2, exampleXi, badKappa, core.ErrInvalidArgument},
		{"one sample", q[:1], t1, t2, exampleXi, DefaultOptions(), core.ErrInvalidArgument},
		{"reversed bounds", q, t2, t1, exampleXi, DefaultOptions(), core.ErrInvalidArgument},
		{"nan sample", nan, t1, t2, exampleXi, DefaultOptions(), core.ErrInvalidArgument},
		{"xi grid", q, t1, t2, core.XiGrid{Xi1: 1, Xi2: -1, M: 4}, DefaultOptions(), core.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Forward(tt.q, tt.t1, tt.t2, tt.xi, tt.opts)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, res)
			require.Equal(t, core.StatusOf(tt.want), core.StatusOf(err))
		})
	}
}

func TestForward_OverflowWithoutNormalization(t *testing.T) {
	opts := DefaultOptions()
	opts.Kappa = core.Defocusing
	opts.Normalize = false

	res, err := Forward(testutil.Constant(400, 64), -1, 1, exampleXi, opts)
	require.ErrorIs(t, err, core.ErrNumericalOverflow)
	require.Nil(t, res)

	opts.Normalize = true

	_, err = Forward(testutil.Constant(400, 64), -1, 1, exampleXi, opts)
	require.NoError(t, err)
}

func TestInverse_RoundTrip(t *testing.T) {
	grid := core.Grid{T1: -4, T2: 4, D: 64}
	q := testutil.Sech(grid.Points(), 0.4, 0.5)

	iopts := DefaultInverseOptions()

	xi, err := InverseXi(grid.D, grid.T1, grid.T2, iopts)
	require.NoError(t, err)
	require.Equal(t, 512, xi.M)

	fopts := DefaultOptions()
	fopts.Discretization = iopts.Discretization
	fopts.BoundStates = false

	fwd, err := Forward(q, grid.T1, grid.T2, xi, fopts)
	require.NoError(t, err)

	inv, err := Inverse(contspec.Reflections(fwd.ContSpec), nil, nil, grid.T1, grid.T2, grid.D, iopts)
	require.NoError(t, err)
	require.Equal(t, core.StatusOK, inv.Status)

	diff, err := testutil.MaxAbsDiff(inv.Q, q)
	require.NoError(t, err)
	require.Less(t, diff, 1e-6)
}

func TestInverse_SolitonFoundByForward(t *testing.T) {
	grid := core.Grid{T1: -12, T2: 12, D: 1024}

	inv, err := Inverse(nil, []complex128{0.5i}, []complex128{1}, grid.T1, grid.T2, grid.D, DefaultInverseOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Discretization = scheme.Exponential
	opts.Localization = Newton
	opts.InitialGuesses = []complex128{0.45i}

	fwd, err := Forward(inv.Q, grid.T1, grid.T2, core.XiGrid{}, opts)
	require.NoError(t, err)
	require.Len(t, fwd.BoundStates, 1)
	testutil.RequireNearlyEqual(t, fwd.BoundStates[0].Eigenvalue, 0.5i, 1e-3)
	testutil.RequireNearlyEqual(t, fwd.BoundStates[0].NormingConstant, 1, 1e-2)
}

func TestInverse_Divergence(t *testing.T) {
	grid := core.Grid{T1: -4, T2: 4, D: 64}
	q := testutil.Sech(grid.Points(), 0.3, 0)

	iopts := DefaultInverseOptions()
	iopts.Method = inverse.FourierIteration
	iopts.Oversampling = 2
	iopts.MaxIter = 1
	iopts.Tolerance = 1e-14

	xi, err := InverseXi(grid.D, grid.T1, grid.T2, iopts)
	require.NoError(t, err)

	fopts := DefaultOptions()
	fopts.Discretization = scheme.Split2
	fopts.BoundStates = false

	fwd, err := Forward(q, grid.T1, grid.T2, xi, fopts)
	require.NoError(t, err)

	inv, err := Inverse(contspec.Reflections(fwd.ContSpec), nil, nil, grid.T1, grid.T2, grid.D, iopts)
	require.ErrorIs(t, err, core.ErrInverseSynthesisDivergence)
	require.NotNil(t, inv)
	require.Equal(t, core.StatusInverseSynthesisDivergence, inv.Status)
	require.Len(t, inv.Q, grid.D)
	require.Equal(t, 1, inv.Diagnostics.Iterations)
}

func TestInverse_InvalidInput(t *testing.T) {
	opts := DefaultInverseOptions()

	_, err := Inverse(make([]complex128, 100), nil, nil, -1, 1, 64, opts)
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	bad := opts
	bad.Oversampling = 0
	_, err = Inverse(nil, []complex128{0.5i}, []complex128{1}, -1, 1, 64, bad)
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	defocusing := opts
	defocusing.Kappa = core.Defocusing
	_, err = Inverse(nil, []complex128{0.5i}, []complex128{1}, -1, 1, 64, defocusing)
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = InverseXi(1, -1, 1, opts)
	require.True(t, errors.Is(err, core.ErrInvalidArgument))

	for _, s := range []scheme.Scheme{scheme.Exponential, scheme.Split4, scheme.Scheme(7)} {
		other := opts
		other.Discretization = s

		res, err := Inverse(nil, []complex128{0.5i}, []complex128{1}, -1, 1, 64, other)
		require.ErrorIs(t, err, core.ErrInvalidDiscretization, "scheme %v", s)
		require.Nil(t, res)
	}
}

func TestOptionsString(t *testing.T) {
	s := DefaultOptions().String()
	require.Contains(t, s, "subsample-and-refine")
	require.Contains(t, s, "split4")
	require.Contains(t, s, "bounding box")

	require.Contains(t, DefaultInverseOptions().String(), "layer-peeling")
	require.Contains(t, DefaultInverseOptions().String(), "split2")
}

func TestParseNames(t *testing.T) {
	for _, l := range []Localization{SubsampleAndRefine, GridSearch, Newton} {
		got, err := ParseLocalization(l.String())
		require.NoError(t, err)
		require.Equal(t, l, got)
	}

	for _, f := range []Filtering{FilterNone, FilterBasic, FilterFull} {
		got, err := ParseFiltering(f.String())
		require.NoError(t, err)
		require.Equal(t, f, got)
	}

	_, err := ParseFiltering("strict")
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}
