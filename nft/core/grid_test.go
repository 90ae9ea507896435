package core

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestGridStep(t *testing.T) {
	g := Grid{T1: -1, T2: 1, D: 5}
	if g.Step() != 0.5 {
		t.Fatalf("vanishing step = %v, want 0.5", g.Step())
	}

	l, r := g.Boundary()
	if l != -1.25 || r != 1.25 {
		t.Fatalf("boundary = [%v, %v], want [-1.25, 1.25]", l, r)
	}

	p := Grid{T1: 0, T2: 2, D: 4, Periodic: true}
	if p.Step() != 0.5 {
		t.Fatalf("periodic step = %v, want 0.5", p.Step())
	}

	pts := p.Points()
	if len(pts) != 4 || pts[3] != 1.5 {
		t.Fatalf("periodic points = %v", pts)
	}
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name string
		g    Grid
		ok   bool
	}{
		{"minimal", Grid{T1: 0, T2: 1, D: 2}, true},
		{"one sample", Grid{T1: 0, T2: 1, D: 1}, false},
		{"reversed", Grid{T1: 1, T2: 0, D: 8}, false},
		{"equal", Grid{T1: 1, T2: 1, D: 8}, false},
		{"nan", Grid{T1: math.NaN(), T2: 1, D: 8}, false},
		{"inf", Grid{T1: 0, T2: math.Inf(1), D: 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestXiGrid(t *testing.T) {
	x := XiGrid{Xi1: -2, Xi2: 2, M: 5}
	if err := x.Validate(); err != nil {
		t.Fatal(err)
	}

	pts := x.Points()
	if len(pts) != 5 || pts[0] != -2 || pts[4] != 2 || pts[2] != 0 {
		t.Fatalf("points = %v", pts)
	}

	if err := (XiGrid{Xi1: 2, Xi2: -2, M: 3}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	if pts := (XiGrid{Xi1: 0.5, Xi2: 0.5, M: 1}).Points(); len(pts) != 1 || pts[0] != 0.5 {
		t.Fatalf("single point = %v", pts)
	}
}

func TestBox(t *testing.T) {
	b := Box{XMin: -1, XMax: 1, YMin: 0, YMax: 2}
	if !b.Contains(0.5+1i) || b.Contains(2+1i) {
		t.Fatal("Contains mismatch")
	}

	if !b.Finite() || InfiniteBox().Finite() {
		t.Fatal("Finite mismatch")
	}

	if !InfiniteBox().Contains(cmplx.Rect(1e300, 1)) {
		t.Fatal("infinite box must contain every finite point")
	}

	in := b.Intersect(Box{XMin: 0, XMax: 5, YMin: -1, YMax: 1})
	if in != (Box{XMin: 0, XMax: 1, YMin: 0, YMax: 1}) {
		t.Fatalf("Intersect = %v", in)
	}

	if !b.Intersect(Box{XMin: 3, XMax: 4, YMin: 0, YMax: 1}).Empty() {
		t.Fatal("expected empty intersection")
	}

	if err := (Box{XMin: 1, XMax: 0}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMatrix(t *testing.T) {
	a := Matrix{{1, 2i}, {3, 4}}

	if Mul(Identity(), a) != a || Mul(a, Identity()) != a {
		t.Fatal("identity product mismatch")
	}

	p := Mul(a, a)
	want := Matrix{{1 + 6i, 2i + 8i}, {3 + 12, 6i + 16}}
	if p != want {
		t.Fatalf("a*a = %v, want %v", p, want)
	}

	if a.Ldexp(2) != a.Scale(4) {
		t.Fatal("Ldexp(2) != Scale(4)")
	}

	if a.Trace() != 5 || a.MaxAbs() != 4 {
		t.Fatal("Trace or MaxAbs mismatch")
	}

	a[1][0] = complex(math.NaN(), 0)
	if a.IsFinite() {
		t.Fatal("expected non-finite")
	}
}
