// Package contspec evaluates the continuous spectrum (reflection and
// transmission coefficients, scattering coefficients a and b) of a signal
// on a real grid of spectral points.
package contspec

import (
	"fmt"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/transfer"
)

// Type selects which continuous spectrum quantities are produced.
type Type int

const (
	// Reflection computes r(xi) = b(xi)/a(xi).
	Reflection Type = iota
	// ReflectionTransmission adds t(xi) = 1/a(xi).
	ReflectionTransmission
	// AB computes a(xi) and b(xi) in scaled form.
	AB
	// All computes every quantity.
	All
	// Skip computes nothing.
	Skip
)

var typeNames = map[Type]string{
	Reflection:             "reflection",
	ReflectionTransmission: "reflection+transmission",
	AB:                     "ab",
	All:                    "all",
	Skip:                   "skip",
}

func (t Type) String() string { return core.EnumName(typeNames, t, "Type") }

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType resolves a type name (case-insensitive).
func ParseType(s string) (Type, error) {
	return core.ParseEnum(typeNames, s, "continuous spectrum type")
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Sample is the continuous spectrum at one real spectral point. A and B are
// scaled: the true values are A*2^Scale and B*2^Scale. Fields not requested
// by the Type are zero.
type Sample struct {
	Xi           float64
	Reflection   complex128
	Transmission complex128
	A, B         complex128
	Scale        int
}

// Basis selects the free solutions to which a and b are referred.
type Basis int

const (
	// AKNS refers a and b to (1,0)exp(-i*xi*t) and (0,1)exp(i*xi*t), the
	// free solutions for r = -kappa*conj(q).
	AKNS Basis = iota
	// Schrodinger refers a and b to (2i*xi,1)exp(-i*xi*t) and
	// (0,1)exp(i*xi*t), the free solutions for r = -1. Then the second
	// component solves v'' + (xi^2 + q) v = 0.
	Schrodinger
)

// Boundary holds the left and right edges of the signal support to which a
// and b are referred, and the basis of free solutions there.
type Boundary struct {
	Left, Right float64
	Basis       Basis
}

// scaled returns numerators na, nb and a denominator den such that
// a = na/den*2^scale and b = nb/den*2^scale. den is zero only for the
// Schrodinger basis at xi = 0, where a and b have a pole but b/a does not.
func scaled(m transfer.Scaled, xi complex128, bnd Boundary) (na, nb, den complex128, scale int) {
	na, nb, den = m.M[0][0], m.M[1][0], 1

	if bnd.Basis == Schrodinger {
		den = 2i * xi
		na = den*m.M[0][0] + m.M[0][1]
		nb = den*(den*m.M[1][0]+m.M[1][1]) - na
	}

	pa, ea := core.ExpScaled(1i * xi * complex(bnd.Right-bnd.Left, 0))
	pb, eb := core.ExpScaled(-1i * xi * complex(bnd.Left+bnd.Right, 0))

	// bring both to the common exponent of the larger phase factor
	e := max(ea, eb)
	na = core.Ldexp(na*pa, ea-e)
	nb = core.Ldexp(nb*pb, eb-e)

	return na, nb, den, m.Exp + e
}

// Scattering returns the scaled scattering coefficients at xi. In the AKNS
// basis a = M11*exp(i*xi*(R-L)) and b = M21*exp(-i*xi*(L+R)). In the
// Schrodinger basis
//
//	a = (M11 + M12/(2i*xi)) * exp(i*xi*(R-L))
//	b = (2i*xi*M21 + M22 - M11 - M12/(2i*xi)) * exp(-i*xi*(L+R))
//
// which are not finite at xi = 0.
func Scattering(m transfer.Scaled, xi complex128, bnd Boundary) (a, b complex128, scale int) {
	na, nb, den, scale := scaled(m, xi, bnd)
	return na / den, nb / den, scale
}

// Evaluate computes the requested quantities at every point of xis, in
// order. Any overflow is fatal. a(xi) = 0 is only an error when r or t is
// requested.
func Evaluate(mono transfer.Monodromy, xis []float64, bnd Boundary, typ Type) ([]Sample, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: continuous spectrum type %v", core.ErrInvalidArgument, typ)
	}

	if typ == Skip {
		return nil, nil
	}

	out := make([]Sample, len(xis))

	for i, x := range xis {
		xi := complex(x, 0)

		m, err := mono.Eval(xi)
		if err != nil {
			return nil, err
		}

		na, nb, den, scale := scaled(m, xi, bnd)
		s := Sample{Xi: x}

		if typ != AB {
			if na == 0 {
				return nil, fmt.Errorf("%w: a(xi) vanishes at xi=%v", core.ErrNumericalOverflow, x)
			}
			s.Reflection = nb / na
		}

		if typ == ReflectionTransmission || typ == All {
			s.Transmission = core.Ldexp(den/na, -scale)
		}

		if typ == AB || typ == All {
			if den == 0 {
				return nil, fmt.Errorf("%w: a and b have a pole at xi=%v", core.ErrNumericalOverflow, x)
			}
			s.A, s.B, s.Scale = na/den, nb/den, scale
		}

		if !core.IsFinite(s.Reflection) || !core.IsFinite(s.Transmission) || !core.IsFinite(s.A) || !core.IsFinite(s.B) {
			return nil, fmt.Errorf("%w: continuous spectrum at xi=%v", core.ErrNumericalOverflow, x)
		}

		out[i] = s
	}

	return out, nil
}
