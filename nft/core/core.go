// Package core defines the types shared by every nonlinear Fourier transform
// in this module: sampling grids, bounding boxes, 2x2 transfer matrices,
// status codes, sentinel errors and run-time options.
package core

import (
	"fmt"
	"strings"
)

// Kappa selects the focusing (+1) or defocusing (-1) nonlinear Schrödinger
// equation. It enters the scattering problem through r = -Kappa*conj(q).
type Kappa int

const (
	// Focusing supports bright solitons and a discrete spectrum.
	Focusing Kappa = 1
	// Defocusing has no bound states under vanishing boundary conditions.
	Defocusing Kappa = -1
)

// Valid reports whether k is Focusing or Defocusing.
func (k Kappa) Valid() bool {
	return k == Focusing || k == Defocusing
}

func (k Kappa) String() string {
	switch k {
	case Focusing:
		return "focusing"
	case Defocusing:
		return "defocusing"
	default:
		return fmt.Sprintf("Kappa(%d)", int(k))
	}
}

// ParseKappa accepts "focusing", "defocusing", "+1", "1" and "-1".
func ParseKappa(s string) (Kappa, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "focusing", "1", "+1":
		return Focusing, nil
	case "defocusing", "-1":
		return Defocusing, nil
	default:
		return 0, fmt.Errorf("%w: unknown kappa %q", ErrInvalidArgument, s)
	}
}
