// Package poly provides complex polynomial arithmetic for the fast monodromy
// representation: linear convolution of coefficient sequences (direct or via
// FFT), 2x2 polynomial matrix products, and evaluation.
//
// Coefficients are stored in ascending power order: c[0] + c[1]*z + ...
//
// # Algorithm Selection
//
// Products of short operands (<= 32 coefficients) use direct convolution;
// longer ones are multiplied in the frequency domain with power-of-two FFT
// plans cached by a [Multiplier].
package poly

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Errors returned by polynomial routines.
var (
	ErrEmptyInput     = errors.New("poly: empty input")
	ErrLengthMismatch = errors.New("poly: buffer length mismatch")
	ErrNotPowerOfTwo  = errors.New("poly: length is not a power of two")
)

const directThreshold = 32

// Direct performs direct linear convolution of a and b. Returns a new slice
// of length len(a) + len(b) - 1.
func Direct(a, b []complex128) ([]complex128, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	dst := make([]complex128, len(a)+len(b)-1)
	DirectTo(dst, a, b)

	return dst, nil
}

// DirectTo accumulates the convolution of a and b into dst after clearing
// it. dst must have length len(a) + len(b) - 1.
func DirectTo(dst, a, b []complex128) {
	clear(dst)

	for i, x := range a {
		if x == 0 {
			continue
		}

		row := dst[i : i+len(b)]
		for j, y := range b {
			row[j] += x * y
		}
	}
}

// Multiplier multiplies polynomials, reusing FFT plans per transform size.
// A Multiplier is safe for concurrent use; a plan is never shared by two
// goroutines at the same time.
type Multiplier struct {
	mu    sync.Mutex
	plans map[int][]*algofft.Plan[complex128]
}

// NewMultiplier returns a Multiplier with an empty plan cache.
func NewMultiplier() *Multiplier {
	return &Multiplier{plans: make(map[int][]*algofft.Plan[complex128])}
}

func (m *Multiplier) acquire(n int) (*algofft.Plan[complex128], error) {
	m.mu.Lock()
	if free := m.plans[n]; len(free) > 0 {
		p := free[len(free)-1]
		m.plans[n] = free[:len(free)-1]
		m.mu.Unlock()

		return p, nil
	}
	m.mu.Unlock()

	p, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("poly: failed to create FFT plan: %w", err)
	}

	return p, nil
}

func (m *Multiplier) release(n int, p *algofft.Plan[complex128]) {
	m.mu.Lock()
	m.plans[n] = append(m.plans[n], p)
	m.mu.Unlock()
}

// Mul returns the product of a and b with automatic algorithm selection.
func (m *Multiplier) Mul(a, b []complex128) ([]complex128, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	if min(len(a), len(b)) <= directThreshold {
		return Direct(a, b)
	}

	n := nextPowerOf2(len(a) + len(b) - 1)

	plan, err := m.acquire(n)
	if err != nil {
		return nil, err
	}
	defer m.release(n, plan)

	fa, err := forward(plan, a, n)
	if err != nil {
		return nil, err
	}

	fb, err := forward(plan, b, n)
	if err != nil {
		return nil, err
	}

	for i := range fa {
		fa[i] *= fb[i]
	}

	out := make([]complex128, n)
	if err := plan.Inverse(out, fa); err != nil {
		return nil, err
	}

	return out[:len(a)+len(b)-1], nil
}

// EvalUnitRoots evaluates the polynomial c at the n-th roots of unity,
// out[j] = c(exp(2*pi*i*j/n)). n must be a power of two and at least len(c).
func (m *Multiplier) EvalUnitRoots(c []complex128, n int) ([]complex128, error) {
	if !isPowerOf2(n) {
		return nil, ErrNotPowerOfTwo
	}

	if len(c) > n {
		return nil, ErrLengthMismatch
	}

	plan, err := m.acquire(n)
	if err != nil {
		return nil, err
	}
	defer m.release(n, plan)

	in := make([]complex128, n)
	copy(in, c)

	out := make([]complex128, n)
	if err := plan.Inverse(out, in); err != nil {
		return nil, err
	}

	scale := complex(float64(n), 0)
	for i := range out {
		out[i] *= scale
	}

	return out, nil
}

// Interpolate is the inverse of [Multiplier.EvalUnitRoots]: it returns the n
// coefficients of the polynomial taking the given values at the n-th roots
// of unity.
func (m *Multiplier) Interpolate(values []complex128) ([]complex128, error) {
	n := len(values)
	if !isPowerOf2(n) {
		return nil, ErrNotPowerOfTwo
	}

	plan, err := m.acquire(n)
	if err != nil {
		return nil, err
	}
	defer m.release(n, plan)

	out := make([]complex128, n)
	if err := plan.Forward(out, values); err != nil {
		return nil, err
	}

	scale := complex(1/float64(n), 0)
	for i := range out {
		out[i] *= scale
	}

	return out, nil
}

func forward(plan *algofft.Plan[complex128], c []complex128, n int) ([]complex128, error) {
	in := make([]complex128, n)
	copy(in, c)

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, err
	}

	return out, nil
}

// Eval evaluates c at z with Horner's method.
func Eval(c []complex128, z complex128) complex128 {
	var v complex128
	for i := len(c) - 1; i >= 0; i-- {
		v = v*z + c[i]
	}

	return v
}

// MaxAbs returns the largest coefficient modulus.
func MaxAbs(c []complex128) float64 {
	m := 0.0
	for _, x := range c {
		if a := cmplx.Abs(x); a > m {
			m = a
		}
	}

	return m
}

// IsFinite reports whether every coefficient is finite.
func IsFinite(c []complex128) bool {
	for _, x := range c {
		if cmplx.IsInf(x) || cmplx.IsNaN(x) {
			return false
		}
	}

	return true
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
