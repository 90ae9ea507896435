package testutil

import (
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// TimeGrid returns n equally spaced points from t1 to t2 inclusive.
func TimeGrid(t1, t2 float64, n int) []float64 {
	return floats.Span(make([]float64, n), t1, t2)
}

// Constant generates a constant-valued complex signal.
func Constant(value complex128, length int) []complex128 {
	out := make([]complex128, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Sech samples amp*sech(t)*exp(i*chirp*t) on the grid t.
func Sech(t []float64, amp, chirp float64) []complex128 {
	out := make([]complex128, len(t))
	for i, x := range t {
		out[i] = complex(amp/math.Cosh(x), 0) * cmplx.Exp(complex(0, chirp*x))
	}
	return out
}

// PlaneWave samples amp*exp(i*k*t) on the grid t.
func PlaneWave(t []float64, amp, k float64) []complex128 {
	out := make([]complex128, len(t))
	for i, x := range t {
		out[i] = cmplx.Rect(amp, k*x)
	}
	return out
}

// DeterministicNoise generates complex white noise with a fixed seed for
// reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []complex128 {
	out := make([]complex128, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = complex((rng.Float64()*2-1)*amplitude, (rng.Float64()*2-1)*amplitude)
	}
	return out
}
