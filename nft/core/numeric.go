package core

import (
	"fmt"
	"math"
	"math/cmplx"
)

// maxElements caps a single working buffer.
const maxElements = 1 << 30

// IsFinite reports whether z has finite real and imaginary parts.
func IsFinite(z complex128) bool {
	return !cmplx.IsInf(z) && !cmplx.IsNaN(z)
}

// AllFinite reports whether every sample is finite.
func AllFinite(s []complex128) bool {
	for _, z := range s {
		if !IsFinite(z) {
			return false
		}
	}
	return true
}

// AllFiniteReal reports whether every sample is finite.
func AllFiniteReal(s []float64) bool {
	for _, x := range s {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// CheckSize reports buffer sizes that cannot be satisfied.
func CheckSize(n int) error {
	if n < 0 || n > maxElements {
		return fmt.Errorf("%w: %d elements", ErrAllocationFailure, n)
	}
	return nil
}

// Allocate returns a zeroed buffer of n elements, reporting sizes that cannot
// be satisfied as ErrAllocationFailure instead of panicking.
func Allocate(n int) (buf []complex128, err error) {
	if err := CheckSize(n); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrAllocationFailure, r)
		}
	}()

	return make([]complex128, n), nil
}

// MaxAbs returns max |s[i]|, or 0 for an empty slice.
func MaxAbs(s []complex128) float64 {
	m := 0.0
	for _, z := range s {
		if a := cmplx.Abs(z); a > m {
			m = a
		}
	}
	return m
}

// ExpScaled returns m and e with exp(w) = m*2^e and |m| in [1, 2), so that
// exponentials of large arguments stay representable.
func ExpScaled(w complex128) (complex128, int) {
	e := int(math.Floor(real(w) / math.Ln2))
	return cmplx.Exp(complex(real(w)-float64(e)*math.Ln2, imag(w))), e
}

// Ldexp returns z*2^e.
func Ldexp(z complex128, e int) complex128 {
	if e == 0 {
		return z
	}
	return complex(math.Ldexp(real(z), e), math.Ldexp(imag(z), e))
}
