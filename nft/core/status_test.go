package core

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatusOK},
		{ErrInvalidArgument, StatusInvalidArgument},
		{fmt.Errorf("%w: bad scheme", ErrInvalidDiscretization), StatusInvalidDiscretization},
		{fmt.Errorf("nsev: %w", ErrRootFindingDivergence), StatusRootFindingDivergence},
		{fmt.Errorf("wrap: %w", fmt.Errorf("%w: n", ErrAllocationFailure)), StatusAllocationFailure},
		{ErrNumericalOverflow, StatusNumericalOverflow},
		{ErrInverseSynthesisDivergence, StatusInverseSynthesisDivergence},
		{errors.New("other"), StatusInvalidArgument},
	}

	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatusCodes(t *testing.T) {
	codes := map[Status]int{
		StatusOK:                         0,
		StatusInvalidArgument:            -1,
		StatusInvalidDiscretization:      -2,
		StatusRootFindingDivergence:      -3,
		StatusAllocationFailure:          -4,
		StatusNumericalOverflow:          -5,
		StatusInverseSynthesisDivergence: -6,
	}

	for s, want := range codes {
		if int(s) != want {
			t.Errorf("%v = %d, want %d", s, int(s), want)
		}
	}

	if !StatusRootFindingDivergence.Recoverable() || StatusNumericalOverflow.Recoverable() {
		t.Error("unexpected recoverability")
	}
}

func TestAllocate(t *testing.T) {
	buf, err := Allocate(8)
	if err != nil || len(buf) != 8 {
		t.Fatalf("Allocate(8) = %d, %v", len(buf), err)
	}

	if _, err := Allocate(-1); !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure, got %v", err)
	}

	if _, err := Allocate(maxElements + 1); !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure, got %v", err)
	}
}

func TestParseKappa(t *testing.T) {
	for in, want := range map[string]Kappa{"focusing": Focusing, "+1": Focusing, "Defocusing": Defocusing, "-1": Defocusing} {
		got, err := ParseKappa(in)
		if err != nil || got != want {
			t.Errorf("ParseKappa(%q) = %v, %v", in, got, err)
		}
	}

	if _, err := ParseKappa("0"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExpScaled(t *testing.T) {
	for _, w := range []complex128{0, 1.5 - 2i, -40 + 3i, 1000 + 0.5i} {
		m, e := ExpScaled(w)
		if a := cmplx.Abs(m); a < 1-1e-12 || a >= 2 {
			t.Fatalf("ExpScaled(%v): |m| = %v", w, a)
		}

		if real(w) < 700 {
			want := cmplx.Exp(w)
			if got := complex(math.Ldexp(real(m), e), math.Ldexp(imag(m), e)); cmplx.Abs(got-want) > 1e-13*cmplx.Abs(want) {
				t.Fatalf("ExpScaled(%v) = %v, want %v", w, got, want)
			}
		}
	}
}
