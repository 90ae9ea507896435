package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	a := []complex128{1.0, 2.0, 3i}
	b := []complex128{1.0, 2.1, 3i}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]complex128{1}, []complex128{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestRelativeL2Error(t *testing.T) {
	a := []complex128{3, 4i}
	b := []complex128{0, 0}

	d, err := RelativeL2Error(a, b)
	if err != nil {
		t.Fatal(err)
	}

	if d != 5 {
		t.Fatalf("RelativeL2Error against zero = %v, want 5", d)
	}

	d, err = RelativeL2Error(b, a)
	if err != nil {
		t.Fatal(err)
	}

	if d != 1 {
		t.Fatalf("RelativeL2Error of zero = %v, want 1", d)
	}
}

func TestNearest(t *testing.T) {
	idx, d := Nearest([]complex128{1, 2i, -3}, 1.9i)
	if idx != 1 || math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("Nearest = (%d, %v), want (1, 0.1)", idx, d)
	}

	if idx, _ := Nearest(nil, 0); idx != -1 {
		t.Fatalf("Nearest on empty slice = %d, want -1", idx)
	}
}
