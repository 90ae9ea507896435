// Package scheme implements the discretizations of the AKNS scattering
// problem v' = [[-i*xi, q], [r, i*xi]] v on a uniform grid.
//
// Every scheme turns sample n into a 2x2 transfer matrix. Polynomial
// schemes additionally express that matrix as exp(-i*xi*eps) times a 2x2
// polynomial matrix in z = exp(i*xi*eps/m), which the fast propagator
// multiplies out once for all xi.
package scheme

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-nft/nft/core"
)

// Scheme selects a discretization.
type Scheme int

const (
	// Exponential uses the exact exponential of each piecewise constant
	// sample (Boffetta-Osborne). Second order, not polynomial.
	Exponential Scheme = iota
	// Split2 uses symmetric Strang splitting. Second order, degree 2 per
	// sample in z = exp(i*xi*eps).
	Split2
	// Split4 Richardson-extrapolates two Strang steps. It approximates the
	// Exponential step to fourth order (local error eps^5), so like
	// Exponential it converges to the continuous problem at second order.
	// Degree 4 per sample in z = exp(i*xi*eps/2).
	Split4
)

var schemeNames = map[Scheme]string{
	Exponential: "exponential",
	Split2:      "split2",
	Split4:      "split4",
}

var schemeAliases = map[string]Scheme{
	"exponential": Exponential,
	"bo":          Exponential,
	"split2":      Split2,
	"strang":      Split2,
	"split4":      Split4,
}

// Valid reports whether s names a known scheme.
func (s Scheme) Valid() bool {
	_, ok := schemeNames[s]
	return ok
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// Parse resolves a scheme name (case-insensitive).
func Parse(name string) (Scheme, error) {
	s, ok := schemeAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown scheme %q", core.ErrInvalidDiscretization, name)
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidDiscretization, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Check returns ErrInvalidDiscretization for unknown schemes.
func (s Scheme) Check() error {
	if !s.Valid() {
		return fmt.Errorf("%w: %v", core.ErrInvalidDiscretization, s)
	}
	return nil
}

// Order returns the order of convergence in the step size towards the
// continuous scattering problem. Every scheme models the signal as
// piecewise constant, which limits all of them to second order.
func (s Scheme) Order() int {
	return 2
}

// IsPolynomial reports whether the scheme has a polynomial representation.
func (s Scheme) IsPolynomial() bool {
	return s == Split2 || s == Split4
}

// Degree returns the polynomial degree contributed by one sample, or 0 for
// non-polynomial schemes.
func (s Scheme) Degree() int {
	switch s {
	case Split2:
		return 2
	case Split4:
		return 4
	default:
		return 0
	}
}

// Upsampling returns m in z = exp(i*xi*eps/m).
func (s Scheme) Upsampling() int {
	if s == Split4 {
		return 2
	}
	return 1
}
