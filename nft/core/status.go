package core

import (
	"errors"
	"fmt"
)

// Status is the numeric outcome code attached to every result.
type Status int

// Status codes. Negative values are errors; only RootFindingDivergence and
// InverseSynthesisDivergence accompany a usable (degraded) result.
const (
	StatusOK                         Status = 0
	StatusInvalidArgument            Status = -1
	StatusInvalidDiscretization      Status = -2
	StatusRootFindingDivergence      Status = -3
	StatusAllocationFailure          Status = -4
	StatusNumericalOverflow          Status = -5
	StatusInverseSynthesisDivergence Status = -6
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusInvalidDiscretization:
		return "invalid discretization"
	case StatusRootFindingDivergence:
		return "root finding divergence"
	case StatusAllocationFailure:
		return "allocation failure"
	case StatusNumericalOverflow:
		return "numerical overflow"
	case StatusInverseSynthesisDivergence:
		return "inverse synthesis divergence"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Recoverable reports whether a result accompanies this status.
func (s Status) Recoverable() bool {
	return s == StatusOK || s == StatusRootFindingDivergence || s == StatusInverseSynthesisDivergence
}

// Errors returned by the transforms. Callers match them with errors.Is.
var (
	ErrInvalidArgument            = errors.New("nft: invalid argument")
	ErrInvalidDiscretization      = errors.New("nft: invalid discretization")
	ErrRootFindingDivergence      = errors.New("nft: root finding diverged")
	ErrAllocationFailure          = errors.New("nft: allocation failure")
	ErrNumericalOverflow          = errors.New("nft: numerical overflow")
	ErrInverseSynthesisDivergence = errors.New("nft: inverse synthesis diverged")
)

var statusErrors = []struct {
	err    error
	status Status
}{
	{ErrInvalidDiscretization, StatusInvalidDiscretization},
	{ErrInvalidArgument, StatusInvalidArgument},
	{ErrRootFindingDivergence, StatusRootFindingDivergence},
	{ErrAllocationFailure, StatusAllocationFailure},
	{ErrNumericalOverflow, StatusNumericalOverflow},
	{ErrInverseSynthesisDivergence, StatusInverseSynthesisDivergence},
}

// StatusOf maps err to its status code. nil maps to StatusOK; errors that
// wrap none of the sentinels are reported as StatusInvalidArgument.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}

	return StatusInvalidArgument
}
