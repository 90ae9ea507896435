package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-nft/nft/core"
)

// signal describes a test signal sampled on a grid.
type signal struct {
	Kind      string
	Amplitude float64
	// Chirp of the sech pulse or wavenumber of the plane wave.
	Param float64
}

var signalKinds = []string{"constant", "sech", "plane-wave"}

func (s signal) sample(g core.Grid) ([]complex128, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	t := g.Points()
	q := make([]complex128, len(t))

	switch strings.ToLower(s.Kind) {
	case "constant":
		for i := range q {
			q[i] = complex(s.Amplitude, 0)
		}
	case "sech":
		for i, x := range t {
			q[i] = complex(s.Amplitude/math.Cosh(x), 0) * cmplx.Exp(complex(0, -s.Param*math.Log(math.Cosh(x))))
		}
	case "plane-wave":
		for i, x := range t {
			q[i] = cmplx.Rect(s.Amplitude, s.Param*x)
		}
	default:
		return nil, fmt.Errorf("unknown signal %q (want one of %s)", s.Kind, strings.Join(signalKinds, ", "))
	}

	return q, nil
}

func (s signal) sampleReal(g core.Grid) ([]float64, error) {
	q, err := s.sample(g)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(q))
	for i, v := range q {
		out[i] = real(v)
	}

	return out, nil
}

func parseComplex(s string) (complex128, error) {
	return strconv.ParseComplex(strings.TrimSpace(s), 128)
}
