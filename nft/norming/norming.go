// Package norming computes the norming constants b(lambda) and residues
// b(lambda)/a'(lambda) attached to the eigenvalues of the discrete spectrum.
package norming

import (
	"fmt"

	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/roots"
	"github.com/cwbudde/algo-nft/nft/transfer"
)

// Type selects the discrete spectrum quantities.
type Type int

const (
	// NormingConstants computes b(lambda).
	NormingConstants Type = iota
	// Residues computes b(lambda)/a'(lambda).
	Residues
	// Both computes norming constants and residues.
	Both
	// Skip computes eigenvalues only.
	Skip
)

var typeNames = map[Type]string{
	NormingConstants: "norming-constants",
	Residues:         "residues",
	Both:             "both",
	Skip:             "skip",
}

func (t Type) String() string { return core.EnumName(typeNames, t, "Type") }

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType resolves a type name (case-insensitive).
func ParseType(s string) (Type, error) {
	return core.ParseEnum(typeNames, s, "discrete spectrum type")
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

// Entry is one element of the discrete spectrum. Fields not requested are
// zero.
type Entry struct {
	Eigenvalue      complex128
	NormingConstant complex128
	Residue         complex128
}

// ScatteringFunc returns the unscaled a(xi) of mono, for root finding.
func ScatteringFunc(mono transfer.Monodromy, bnd contspec.Boundary) roots.Func {
	return func(xi complex128) (complex128, error) {
		a, _, err := ab(mono, xi, bnd)
		return a, err
	}
}

func ab(mono transfer.Monodromy, xi complex128, bnd contspec.Boundary) (complex128, complex128, error) {
	m, err := mono.Eval(xi)
	if err != nil {
		return 0, 0, err
	}

	a, b, scale := contspec.Scattering(m, xi, bnd)
	a, b = core.Ldexp(a, scale), core.Ldexp(b, scale)

	if !core.IsFinite(a) || !core.IsFinite(b) {
		return 0, 0, fmt.Errorf("%w: scattering coefficients at %v", core.ErrNumericalOverflow, xi)
	}

	return a, b, nil
}

// Compute evaluates the requested quantities at every eigenvalue. The
// derivative a'(lambda) is taken on a circle of the given radius.
func Compute(mono transfer.Monodromy, eigenvalues []complex128, bnd contspec.Boundary, typ Type, radius float64) ([]Entry, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: discrete spectrum type %v", core.ErrInvalidArgument, typ)
	}

	out := make([]Entry, len(eigenvalues))

	for i, lam := range eigenvalues {
		out[i].Eigenvalue = lam

		if typ == Skip {
			continue
		}

		_, b, err := ab(mono, lam, bnd)
		if err != nil {
			return nil, err
		}

		if typ == NormingConstants || typ == Both {
			out[i].NormingConstant = b
		}

		if typ == Residues || typ == Both {
			da, err := roots.Derivative(ScatteringFunc(mono, bnd), lam, radius, 4)
			if err != nil {
				return nil, err
			}

			if da == 0 {
				return nil, fmt.Errorf("%w: a'(lambda) vanishes at %v", core.ErrNumericalOverflow, lam)
			}

			out[i].Residue = b / da
		}
	}

	return out, nil
}

// Eigenvalues extracts the eigenvalues.
func Eigenvalues(entries []Entry) []complex128 {
	out := make([]complex128, len(entries))
	for i, e := range entries {
		out[i] = e.Eigenvalue
	}
	return out
}
