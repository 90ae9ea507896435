package kdvv

import (
	"fmt"

	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// Options configures [Forward].
type Options struct {
	Discretization scheme.Scheme
	ContSpecType   contspec.Type
	// BoundStates enables the search for the discrete spectrum on the
	// positive imaginary axis.
	BoundStates bool
	// DiscSpecType selects the values attached to each eigenvalue. Skip
	// reports eigenvalues only.
	DiscSpecType norming.Type
	// Niter bounds the Newton iterations per seed.
	Niter int
	// GridSize sets the resolution of the imaginary axis scan to
	// 16*GridSize intervals.
	GridSize int
	// MaxEvals caps the number of reported bound states; 0 means no cap.
	MaxEvals int
	// Normalize keeps intermediate products representable by rescaling
	// them with powers of two.
	Normalize      bool
	Tolerance      float64
	DedupTolerance float64
}

// DefaultOptions returns the Split4 scheme with the
// reflection coefficient and no bound state search.
func DefaultOptions() Options {
	return Options{
		Discretization: scheme.Split4,
		ContSpecType:   contspec.Reflection,
		DiscSpecType:   norming.Skip,
		Niter:          20,
		GridSize:       64,
		Normalize:      true,
		Tolerance:      1e-10,
		DedupTolerance: 1e-6,
	}
}

// Validate checks the options for a signal of d samples.
func (o Options) Validate(d int) error {
	if err := o.Discretization.Check(); err != nil {
		return err
	}

	if !o.ContSpecType.Valid() || !o.DiscSpecType.Valid() {
		return fmt.Errorf("%w: spectrum types %v, %v", core.ErrInvalidArgument, o.ContSpecType, o.DiscSpecType)
	}

	if o.Niter < 1 || o.GridSize < 1 || o.MaxEvals < 0 {
		return fmt.Errorf("%w: niter %d, grid size %d, max evals %d",
			core.ErrInvalidArgument, o.Niter, o.GridSize, o.MaxEvals)
	}

	if !(o.Tolerance > 0) || !(o.DedupTolerance >= 0) {
		return fmt.Errorf("%w: tolerance %v, dedup tolerance %v", core.ErrInvalidArgument, o.Tolerance, o.DedupTolerance)
	}

	if d < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", core.ErrInvalidArgument, d)
	}

	return nil
}

// String lists the options one per line.
func (o Options) String() string {
	maxEvals := "unlimited"
	if o.MaxEvals > 0 {
		maxEvals = fmt.Sprint(o.MaxEvals)
	}

	return core.FormatFields([]core.Field{
		{Name: "discretization", Value: o.Discretization},
		{Name: "continuous spectrum type", Value: o.ContSpecType},
		{Name: "bound states", Value: o.BoundStates},
		{Name: "discrete spectrum type", Value: o.DiscSpecType},
		{Name: "niter", Value: o.Niter},
		{Name: "grid size", Value: o.GridSize},
		{Name: "max evals", Value: maxEvals},
		{Name: "normalize", Value: o.Normalize},
		{Name: "tolerance", Value: o.Tolerance},
		{Name: "dedup tolerance", Value: o.DedupTolerance},
	})
}
