package poly

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-nft/internal/testutil"
)

func TestDirect_Simple(t *testing.T) {
	// (1 + z)(1 - z) = 1 - z^2
	got, err := Direct([]complex128{1, 1}, []complex128{1, -1})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, got, []complex128{1, 0, -1}, 0)
}

func TestDirect_Empty(t *testing.T) {
	if _, err := Direct(nil, []complex128{1}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestMul_FFTMatchesDirect(t *testing.T) {
	m := NewMultiplier()

	tests := []struct {
		name string
		na   int
		nb   int
	}{
		{"short", 3, 5},
		{"at threshold", 32, 40},
		{"long", 100, 77},
		{"unbalanced", 513, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testutil.DeterministicNoise(1, 1, tt.na)
			b := testutil.DeterministicNoise(2, 1, tt.nb)

			want, err := Direct(a, b)
			if err != nil {
				t.Fatal(err)
			}

			got, err := m.Mul(a, b)
			if err != nil {
				t.Fatal(err)
			}

			testutil.RequireSliceNearlyEqual(t, got, want, 1e-11)
		})
	}
}

func TestEvalUnitRoots(t *testing.T) {
	m := NewMultiplier()
	c := testutil.DeterministicNoise(3, 1, 12)

	vals, err := m.EvalUnitRoots(c, 16)
	if err != nil {
		t.Fatal(err)
	}

	for j, v := range vals {
		z := cmplx.Rect(1, 2*math.Pi*float64(j)/16)
		testutil.RequireNearlyEqual(t, v, Eval(c, z), 1e-12)
	}

	back, err := m.Interpolate(vals)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, back[:12], c, 1e-13)
	testutil.RequireSliceNearlyEqual(t, back[12:], make([]complex128, 4), 1e-13)
}

func TestEvalUnitRoots_Errors(t *testing.T) {
	m := NewMultiplier()

	if _, err := m.EvalUnitRoots([]complex128{1, 2, 3}, 12); !errors.Is(err, ErrNotPowerOfTwo) {
		t.Fatalf("expected ErrNotPowerOfTwo, got %v", err)
	}

	if _, err := m.EvalUnitRoots(make([]complex128, 9), 8); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func randomMatrix(seed int64, n int) Matrix {
	var a Matrix
	for i := range 2 {
		for j := range 2 {
			// entries deliberately differ in length
			a[i][j] = testutil.DeterministicNoise(seed+int64(2*i+j), 1, n-i-j)
		}
	}

	return a
}

func TestMulMatrix_FFTMatchesDirect(t *testing.T) {
	m := NewMultiplier()
	a := randomMatrix(10, 80)
	b := randomMatrix(20, 70)

	want := mulMatrixDirect(a, b)

	got, err := m.MulMatrix(a, b)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 2 {
		for j := range 2 {
			testutil.RequireSliceNearlyEqual(t, got[i][j], want[i][j], 1e-11)
		}
	}
}

func TestMulMatrix_EvaluatesAsProduct(t *testing.T) {
	m := NewMultiplier()
	a := randomMatrix(30, 6)
	b := randomMatrix(40, 9)

	p, err := m.MulMatrix(a, b)
	if err != nil {
		t.Fatal(err)
	}

	z := complex(0.3, -0.8)
	ea, eb, ep := a.Eval(z), b.Eval(z), p.Eval(z)

	for i := range 2 {
		for j := range 2 {
			want := ea[i][0]*eb[0][j] + ea[i][1]*eb[1][j]
			testutil.RequireNearlyEqual(t, ep[i][j], want, 1e-12)
		}
	}
}

func TestMatrixNormalize(t *testing.T) {
	a := Matrix{
		{{3, 1}, {0}},
		{{-6i}, {1, 2}},
	}

	e := a.Normalize()
	if e != 3 {
		t.Fatalf("exponent = %d, want 3", e)
	}

	if got := a.MaxAbs(); got < 0.5 || got >= 1 {
		t.Fatalf("max after normalize = %v, want in [0.5, 1)", got)
	}

	testutil.RequireNearlyEqual(t, a[1][0][0], -0.75i, 0)

	var zero Matrix
	zero[0][0] = []complex128{0}

	if e := zero.Normalize(); e != 0 {
		t.Fatalf("zero matrix exponent = %d, want 0", e)
	}
}

func TestMatrixIsFinite(t *testing.T) {
	a := Matrix{{{1}, {2}}, {{3}, {4}}}
	if !a.IsFinite() {
		t.Fatal("expected finite")
	}

	a[1][1] = []complex128{cmplx.Inf()}
	if a.IsFinite() {
		t.Fatal("expected non-finite")
	}
}
