package contspec

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Reflections extracts the reflection coefficients.
func Reflections(samples []Sample) []complex128 {
	out := make([]complex128, len(samples))
	for i, s := range samples {
		out[i] = s.Reflection
	}
	return out
}

func split(in []complex128) (re, im []float64) {
	re = make([]float64, len(in))
	im = make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	return re, im
}

// Power returns |c[k]|^2 for each coefficient.
func Power(c []complex128) []float64 {
	if len(c) == 0 {
		return nil
	}

	re, im := split(c)
	out := make([]float64, len(c))
	vecmath.Power(out, re, im)

	return out
}

// Magnitude returns |c[k]| for each coefficient.
func Magnitude(c []complex128) []float64 {
	if len(c) == 0 {
		return nil
	}

	re, im := split(c)
	out := make([]float64, len(c))
	vecmath.Magnitude(out, re, im)

	return out
}

// Energy approximates the continuous spectrum energy
// (1/pi) * integral of log(1 + kappa*|r|^2)/kappa d xi over the sampled
// points with the trapezoidal rule. For kappa = +1 and small r it reduces to the linear
// Parseval energy of the signal.
func Energy(samples []Sample, kappa float64) float64 {
	if len(samples) < 2 {
		return 0
	}

	p := Power(Reflections(samples))

	var sum float64
	for i := 1; i < len(samples); i++ {
		fa := math.Log1p(kappa*p[i-1]) / kappa
		fb := math.Log1p(kappa*p[i]) / kappa
		sum += (samples[i].Xi - samples[i-1].Xi) * (fa + fb) / 2
	}

	return sum / math.Pi
}
