// Package inverse synthesizes a signal from its nonlinear Fourier spectrum
// under vanishing boundary conditions.
//
// The continuous part is inverted on the discrete model of the Split2
// scheme, whose monodromy is a polynomial in z = exp(2i*xi*eps). Its
// spectrum must therefore be given on the grid returned by [XiGrid], where
// z runs over the roots of unity and every transform is a single FFT.
// Two methods are available:
//
//   - [LayerPeeling] recovers a(xi) from |a| with the cepstral (minimum
//     phase) relation and strips one sample per step.
//   - [FourierIteration] starts from the Born approximation and repeatedly
//     corrects the signal with the Born image of the residual b-mismatch.
//
// Bound states are added afterwards by Darboux dressing, one eigenvalue at a
// time, with Jost solutions propagated numerically through the current
// signal.
package inverse

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nft/nft/core"
)

// Method selects the continuous spectrum inversion algorithm.
type Method int

const (
	// LayerPeeling is a direct O(D^2) recursion.
	LayerPeeling Method = iota
	// FourierIteration is a fixed-point iteration on the Born map.
	FourierIteration
)

// ContSpecType describes the given continuous spectrum.
type ContSpecType int

const (
	// Reflection is r(xi) = b(xi)/a(xi).
	Reflection ContSpecType = iota
	// BOfXi is b(xi).
	BOfXi
)

// DiscSpecType describes the values given with the eigenvalues.
type DiscSpecType int

const (
	// NormingConstants are b(lambda).
	NormingConstants DiscSpecType = iota
	// Residues are b(lambda)/a'(lambda).
	Residues
)

var (
	methodNames = map[Method]string{
		LayerPeeling:     "layer-peeling",
		FourierIteration: "fourier-iteration",
	}
	contSpecNames = map[ContSpecType]string{
		Reflection: "reflection",
		BOfXi:      "b-of-xi",
	}
	discSpecNames = map[DiscSpecType]string{
		NormingConstants: "norming-constants",
		Residues:         "residues",
	}
)

func (m Method) String() string { return core.EnumName(methodNames, m, "Method") }

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseMethod resolves a method name.
func ParseMethod(s string) (Method, error) { return core.ParseEnum(methodNames, s, "inverse method") }

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (t ContSpecType) String() string { return core.EnumName(contSpecNames, t, "ContSpecType") }

// Valid reports whether t is a known type.
func (t ContSpecType) Valid() bool {
	_, ok := contSpecNames[t]
	return ok
}

// ParseContSpecType resolves a continuous spectrum type name.
func ParseContSpecType(s string) (ContSpecType, error) {
	return core.ParseEnum(contSpecNames, s, "continuous spectrum type")
}

// MarshalText implements encoding.TextMarshaler.
func (t ContSpecType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ContSpecType) UnmarshalText(b []byte) error {
	v, err := ParseContSpecType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t DiscSpecType) String() string { return core.EnumName(discSpecNames, t, "DiscSpecType") }

// Valid reports whether t is a known type.
func (t DiscSpecType) Valid() bool {
	_, ok := discSpecNames[t]
	return ok
}

// ParseDiscSpecType resolves a discrete spectrum type name.
func ParseDiscSpecType(s string) (DiscSpecType, error) {
	return core.ParseEnum(discSpecNames, s, "discrete spectrum type")
}

// MarshalText implements encoding.TextMarshaler.
func (t DiscSpecType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DiscSpecType) UnmarshalText(b []byte) error {
	v, err := ParseDiscSpecType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// XiGrid returns the spectral grid on which the continuous spectrum of a
// signal with d samples on [t1, t2] must be given: m points
// xi_j = pi*j/(m*eps), j = -m/2 ... m/2-1, with eps = (t2-t1)/(d-1).
// m must be a power of two not smaller than d; m/d is the oversampling
// factor.
func XiGrid(d int, t1, t2 float64, m int) (core.XiGrid, error) {
	g := core.Grid{T1: t1, T2: t2, D: d}
	if err := g.Validate(); err != nil {
		return core.XiGrid{}, err
	}

	if m < d || m&(m-1) != 0 {
		return core.XiGrid{}, fmt.Errorf("%w: spectral grid size %d must be a power of two >= %d", core.ErrInvalidArgument, m, d)
	}

	eps := g.Step()

	return core.XiGrid{
		Xi1: -math.Pi / (2 * eps),
		Xi2: math.Pi * float64(m/2-1) / (float64(m) * eps),
		M:   m,
	}, nil
}
