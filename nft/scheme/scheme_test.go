package scheme

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-nft/internal/testutil"
	"github.com/cwbudde/algo-nft/nft/core"
)

// expmSeries is a plain power-series reference for small matrices.
func expmSeries(a core.Matrix) core.Matrix {
	out := core.Identity()
	term := core.Identity()

	for k := 1; k < 40; k++ {
		term = core.Mul(term, a).Scale(complex(1/float64(k), 0))
		for i := range 2 {
			for j := range 2 {
				out[i][j] += term[i][j]
			}
		}
	}

	return out
}

func requireMatrixNear(t *testing.T, got, want core.Matrix, eps float64) {
	t.Helper()

	for i := range 2 {
		for j := range 2 {
			if d := cmplx.Abs(got[i][j] - want[i][j]); d > eps {
				t.Fatalf("[%d][%d]: got %v, want %v (diff %v)", i, j, got[i][j], want[i][j], d)
			}
		}
	}
}

func TestExpm(t *testing.T) {
	tests := []struct {
		name          string
		a11, a12, a21 complex128
		eps           float64
	}{
		{"zero potential", -0.5i, 0, 0, 0.1},
		{"series branch", 1e-3i, 0.01, -0.01, 0.2},
		{"near threshold", 0.1i, 0.3, -0.2, 0.1},
		{"focusing", -1i, 2, -2, 0.05},
		{"defocusing", -0.3i, 1 + 1i, 1 - 1i, 0.5},
		{"complex xi", -1i * (0.7 + 1.2i), 0.5, -0.5, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := complex(tt.eps, 0)
			want := expmSeries(core.Matrix{{e * tt.a11, e * tt.a12}, {e * tt.a21, -e * tt.a11}})
			got := Expm(tt.a11, tt.a12, tt.a21, tt.eps)

			requireMatrixNear(t, got, want, 1e-14)

			det := got[0][0]*got[1][1] - got[0][1]*got[1][0]
			testutil.RequireNearlyEqual(t, det, 1, 1e-13)
		})
	}
}

func TestMatrix_ZeroPotentialIsPhase(t *testing.T) {
	xi := complex(1.3, 0)
	eps := 0.25
	want := core.Matrix{{cmplx.Exp(-1i * xi * 0.25), 0}, {0, cmplx.Exp(1i * xi * 0.25)}}

	for _, s := range []Scheme{Exponential, Split2, Split4} {
		got, err := s.Matrix(0, 0, eps, xi)
		if err != nil {
			t.Fatal(err)
		}

		requireMatrixNear(t, got, want, 1e-15)
	}
}

func TestMatrix_SchemesAgreeForSmallSteps(t *testing.T) {
	q, r := complex(0.8, 0.3), complex(-0.8, 0.3)
	xi := complex(0.4, 0.2)
	eps := 1e-2

	exact, err := Exponential.Matrix(q, r, eps, xi)
	if err != nil {
		t.Fatal(err)
	}

	s2, _ := Split2.Matrix(q, r, eps, xi)
	s4, _ := Split4.Matrix(q, r, eps, xi)

	// local errors are O(eps^3) and O(eps^5)
	requireMatrixNear(t, s2, exact, 1e-5)
	requireMatrixNear(t, s4, exact, 1e-8)
}

func maxDiff(a, b core.Matrix) float64 {
	var d float64
	for i := range 2 {
		for j := range 2 {
			d = max(d, cmplx.Abs(a[i][j]-b[i][j]))
		}
	}

	return d
}

func TestMatrix_LocalErrorOrder(t *testing.T) {
	q := complex(1.3, 0.4)
	r := -cmplx.Conj(q)
	xi := complex(0.7, 0.2)

	stepErr := func(s Scheme, eps float64) float64 {
		exact, _ := Exponential.Matrix(q, r, eps, xi)
		got, _ := s.Matrix(q, r, eps, xi)

		return maxDiff(got, exact)
	}

	// halving the step divides a local error of O(eps^(p+1)) by 2^(p+1)
	tests := []struct {
		scheme   Scheme
		min, max float64
	}{
		{Split2, 6, 10},
		{Split4, 24, 40},
	}

	for _, tt := range tests {
		ratio := stepErr(tt.scheme, 0.1) / stepErr(tt.scheme, 0.05)
		if ratio < tt.min || ratio > tt.max {
			t.Errorf("%v: error ratio %.2f, want in [%v, %v]", tt.scheme, ratio, tt.min, tt.max)
		}

		if got := tt.scheme.Order(); got != 2 {
			t.Errorf("%v.Order() = %d, want 2", tt.scheme, got)
		}
	}
}

func TestPolyFactor_MatchesMatrix(t *testing.T) {
	q, r := complex(0.6, -0.2), complex(0.6, 0.2)
	eps := 0.1

	for _, s := range []Scheme{Split2, Split4} {
		f, err := s.PolyFactor(q, r, eps)
		if err != nil {
			t.Fatal(err)
		}

		if f.Len() != s.Degree()+1 {
			t.Fatalf("%v: factor length %d, want %d", s, f.Len(), s.Degree()+1)
		}

		for _, xi := range []complex128{0, 0.7, -2.1 + 0.4i, 3 - 0.5i} {
			want, _ := s.Matrix(q, r, eps, xi)
			got := core.Matrix(f.Eval(s.Variable(xi, eps))).Scale(s.Prefactor(xi, eps, 1))

			requireMatrixNear(t, got, want, 1e-14)
		}
	}
}

func TestInvalidScheme(t *testing.T) {
	bad := Scheme(42)

	if _, err := bad.Matrix(1, -1, 0.1, 0); !errors.Is(err, core.ErrInvalidDiscretization) {
		t.Fatalf("Matrix: expected ErrInvalidDiscretization, got %v", err)
	}

	if _, err := bad.Matrices(NSE([]complex128{1, 2}, core.Focusing), 0.1, 0); !errors.Is(err, core.ErrInvalidDiscretization) {
		t.Fatalf("Matrices: expected ErrInvalidDiscretization, got %v", err)
	}

	if _, err := Exponential.PolyFactor(1, -1, 0.1); !errors.Is(err, core.ErrInvalidDiscretization) {
		t.Fatalf("PolyFactor: expected ErrInvalidDiscretization, got %v", err)
	}

	if _, err := Parse("split3"); !errors.Is(err, core.ErrInvalidDiscretization) {
		t.Fatalf("Parse: expected ErrInvalidDiscretization, got %v", err)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []Scheme{Exponential, Split2, Split4} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}

		var back Scheme
		if err := back.UnmarshalText(text); err != nil || back != s {
			t.Fatalf("round trip of %v gave %v, %v", s, back, err)
		}
	}

	if s, err := Parse(" BO "); err != nil || s != Exponential {
		t.Fatalf("Parse alias = %v, %v", s, err)
	}
}

func TestPotential(t *testing.T) {
	p := NSE([]complex128{1 + 2i, -3i}, core.Focusing)
	testutil.RequireSliceNearlyEqual(t, p.R, []complex128{-1 + 2i, -3i}, 0)

	d := NSE([]complex128{1 + 2i}, core.Defocusing)
	testutil.RequireSliceNearlyEqual(t, d.R, []complex128{1 - 2i}, 0)

	k := KdV([]float64{2, 0.5})
	testutil.RequireSliceNearlyEqual(t, k.Q, []complex128{2, 0.5}, 0)
	testutil.RequireSliceNearlyEqual(t, k.R, []complex128{-1, -1}, 0)

	sub := p.Subsample([]int{1})
	if sub.Len() != 1 || sub.Q[0] != -3i {
		t.Fatalf("Subsample = %+v", sub)
	}
}
