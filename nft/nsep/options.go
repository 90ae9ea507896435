package nsep

import (
	"fmt"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// Localization selects how spectral points are found.
type Localization int

const (
	// SubsampleAndRefine takes the zeros of the monodromy polynomials of a
	// (possibly subsampled) signal as seeds and refines them with Newton's
	// method on the full signal.
	SubsampleAndRefine Localization = iota
	// GridSearch seeds Newton's method with the cells of a grid over the
	// bounding box around which the spectral function winds.
	GridSearch
	// RealLineSearch seeds Newton's method with the local minima of the
	// spectral function on the real axis. It only finds real points, which
	// suffices for the defocusing equation.
	RealLineSearch
)

// Filtering selects which located points are reported.
type Filtering int

const (
	// FilterNone reports everything the root finder returned.
	FilterNone Filtering = iota
	// FilterManual keeps the points inside BoundingBox.
	FilterManual
	// FilterAuto additionally drops points outside the alias-free window
	// |Re xi| <= pi/(2*eps) of the sampled signal.
	FilterAuto
)

var (
	localizationNames = map[Localization]string{
		SubsampleAndRefine: "subsample-and-refine",
		GridSearch:         "grid-search",
		RealLineSearch:     "real-line-search",
	}
	filteringNames = map[Filtering]string{
		FilterNone:   "none",
		FilterManual: "manual",
		FilterAuto:   "auto",
	}
)

func (l Localization) String() string { return core.EnumName(localizationNames, l, "Localization") }

// ParseLocalization resolves a localization name.
func ParseLocalization(s string) (Localization, error) {
	return core.ParseEnum(localizationNames, s, "localization")
}

// MarshalText implements encoding.TextMarshaler.
func (l Localization) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Localization) UnmarshalText(b []byte) error {
	v, err := ParseLocalization(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (f Filtering) String() string { return core.EnumName(filteringNames, f, "Filtering") }

// ParseFiltering resolves a filtering name.
func ParseFiltering(s string) (Filtering, error) {
	return core.ParseEnum(filteringNames, s, "filtering")
}

// MarshalText implements encoding.TextMarshaler.
func (f Filtering) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Filtering) UnmarshalText(b []byte) error {
	v, err := ParseFiltering(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Options configures [Forward].
type Options struct {
	Localization Localization
	Filtering    Filtering
	// BoundingBox is the search region of GridSearch, the segment
	// [XMin, XMax] of RealLineSearch and the region of FilterManual. The
	// zero Box selects the alias-free window.
	BoundingBox core.Box
	// GridSize is the number of cells per axis of GridSearch; line
	// searches use 16*GridSize intervals.
	GridSize int
	// MaxEvals caps the number of points per spectrum; 0 means no cap.
	MaxEvals       int
	Discretization scheme.Scheme
	// Normalize keeps intermediate products representable by rescaling
	// them with powers of two.
	Normalize bool
	Kappa     core.Kappa
	// Dsub is the length of the subsampled signal for seeding; 0 uses the
	// full signal.
	Dsub int
	// Niter bounds the Newton iterations per seed.
	Niter int
	// Tolerance is the relative Newton step at which a root has converged.
	Tolerance float64
	// DedupTolerance merges points closer than this, relative to
	// max(1, |z|). Double points of the main spectrum are reported once.
	DedupTolerance float64
}

// DefaultOptions returns subsample-and-refine localization on the full
// signal with the Split4 scheme and automatic filtering.
func DefaultOptions() Options {
	return Options{
		Localization:   SubsampleAndRefine,
		Filtering:      FilterAuto,
		GridSize:       64,
		Discretization: scheme.Split4,
		Normalize:      true,
		Kappa:          core.Focusing,
		Niter:          30,
		Tolerance:      1e-10,
		DedupTolerance: 1e-4,
	}
}

// Validate checks the options for a signal of d samples.
func (o Options) Validate(d int) error {
	if err := o.Discretization.Check(); err != nil {
		return err
	}

	if _, ok := localizationNames[o.Localization]; !ok {
		return fmt.Errorf("%w: localization %v", core.ErrInvalidArgument, o.Localization)
	}

	if _, ok := filteringNames[o.Filtering]; !ok {
		return fmt.Errorf("%w: filtering %v", core.ErrInvalidArgument, o.Filtering)
	}

	if err := o.BoundingBox.Validate(); err != nil {
		return err
	}

	if !o.Kappa.Valid() {
		return fmt.Errorf("%w: kappa %v", core.ErrInvalidArgument, o.Kappa)
	}

	if o.GridSize < 1 || o.Niter < 1 || o.Dsub < 0 || o.MaxEvals < 0 {
		return fmt.Errorf("%w: grid size %d, niter %d, dsub %d, max evals %d",
			core.ErrInvalidArgument, o.GridSize, o.Niter, o.Dsub, o.MaxEvals)
	}

	if !(o.Tolerance > 0) || !(o.DedupTolerance >= 0) {
		return fmt.Errorf("%w: tolerance %v, dedup tolerance %v", core.ErrInvalidArgument, o.Tolerance, o.DedupTolerance)
	}

	if d < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", core.ErrInvalidArgument, d)
	}

	return nil
}

func (o Options) subsamples(d int) int {
	if o.Dsub == 0 {
		return d
	}

	return min(max(o.Dsub, 2), d)
}

// String lists the options one per line.
func (o Options) String() string {
	box := "auto"
	if !o.BoundingBox.IsZero() {
		box = o.BoundingBox.String()
	}

	dsub, maxEvals := "full", "unlimited"
	if o.Dsub > 0 {
		dsub = fmt.Sprint(o.Dsub)
	}

	if o.MaxEvals > 0 {
		maxEvals = fmt.Sprint(o.MaxEvals)
	}

	return core.FormatFields([]core.Field{
		{Name: "localization", Value: o.Localization},
		{Name: "filtering", Value: o.Filtering},
		{Name: "bounding box", Value: box},
		{Name: "grid size", Value: o.GridSize},
		{Name: "max evals", Value: maxEvals},
		{Name: "discretization", Value: o.Discretization},
		{Name: "normalize", Value: o.Normalize},
		{Name: "kappa", Value: o.Kappa},
		{Name: "dsub", Value: dsub},
		{Name: "niter", Value: o.Niter},
		{Name: "tolerance", Value: o.Tolerance},
		{Name: "dedup tolerance", Value: o.DedupTolerance},
	})
}
