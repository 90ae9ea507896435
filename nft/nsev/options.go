package nsev

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// Localization selects how bound states are found.
type Localization int

const (
	// SubsampleAndRefine takes the zeros of the monodromy polynomial of a
	// subsampled signal as seeds and refines them with Newton's method on
	// the full signal.
	SubsampleAndRefine Localization = iota
	// GridSearch seeds Newton's method with the cells of a grid over the
	// bounding box around which a(xi) winds.
	GridSearch
	// Newton refines the caller's InitialGuesses.
	Newton
)

// Filtering selects which located bound states are reported.
type Filtering int

const (
	// FilterNone reports everything the root finder returned.
	FilterNone Filtering = iota
	// FilterBasic drops roots on or below the real axis and outside a
	// given bounding box.
	FilterBasic
	// FilterFull additionally drops roots outside the region where bound
	// states of the sampled signal can lie: |Re| <= pi/(2*eps) and
	// Im <= (1+boxSlack)*max|q|.
	FilterFull
)

var (
	localizationNames = map[Localization]string{
		SubsampleAndRefine: "subsample-and-refine",
		GridSearch:         "grid-search",
		Newton:             "newton",
	}
	filteringNames = map[Filtering]string{
		FilterNone:  "none",
		FilterBasic: "basic",
		FilterFull:  "full",
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

// boxSlack widens the imaginary bound max|q| of the full filter to leave
// room for discretization error.
const boxSlack = 0.1

// Options configures [Forward].
type Options struct {
	// Discretization of the scattering problem.
	Discretization scheme.Scheme
	// BoundStates enables the search for the discrete spectrum. It has no
	// effect for the defocusing equation, which has none.
	BoundStates bool
	// Localization strategy for bound states.
	Localization Localization
	// Filtering of the located bound states.
	Filtering Filtering
	// BoundingBox is the search region of GridSearch and a filter region
	// for the other strategies. The zero Box selects the region of
	// FilterFull.
	BoundingBox core.Box
	// GridSize is the number of cells per axis of GridSearch.
	GridSize int
	// InitialGuesses seed the Newton localization.
	InitialGuesses []complex128
	// Niter bounds the Newton iterations per seed.
	Niter int
	// Tolerance is the relative Newton step at which a root has converged.
	Tolerance float64
	// Dsub is the length of the subsampled signal; 0 selects
	// ceil(sqrt(D)*log2(D)).
	Dsub int
	// MaxEvals caps the number of reported bound states; 0 means D.
	MaxEvals int
	// DedupTolerance merges roots closer than this, relative to max(1, |z|).
	DedupTolerance float64
	// DiscSpecType selects the values attached to each eigenvalue.
	DiscSpecType norming.Type
	// ContSpecType selects the continuous spectrum quantities.
	ContSpecType contspec.Type
	// Normalize keeps intermediate products representable by rescaling
	// them with powers of two.
	Normalize bool
	Kappa     core.Kappa
}

// DefaultOptions returns the focusing transform with the Split4
// scheme, subsample-and-refine localization, full filtering and
// norming constants.
func DefaultOptions() Options {
	return Options{
		Discretization: scheme.Split4,
		BoundStates:    true,
		Localization:   SubsampleAndRefine,
		Filtering:      FilterFull,
		GridSize:       64,
		Niter:          20,
		Tolerance:      1e-10,
		DedupTolerance: 1e-6,
		DiscSpecType:   norming.NormingConstants,
		ContSpecType:   contspec.Reflection,
		Normalize:      true,
		Kappa:          core.Focusing,
	}
}

// Validate checks the options for a signal of d samples.
//
//nolint:cyclop
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

	if !o.DiscSpecType.Valid() {
		return fmt.Errorf("%w: discrete spectrum type %v", core.ErrInvalidArgument, o.DiscSpecType)
	}

	if !o.ContSpecType.Valid() {
		return fmt.Errorf("%w: continuous spectrum type %v", core.ErrInvalidArgument, o.ContSpecType)
	}

	if o.GridSize < 1 || o.Niter < 1 || o.Dsub < 0 || o.MaxEvals < 0 {
		return fmt.Errorf("%w: grid size %d, niter %d, dsub %d, max evals %d",
			core.ErrInvalidArgument, o.GridSize, o.Niter, o.Dsub, o.MaxEvals)
	}

	if !(o.Tolerance > 0) || !(o.DedupTolerance >= 0) {
		return fmt.Errorf("%w: tolerance %v, dedup tolerance %v", core.ErrInvalidArgument, o.Tolerance, o.DedupTolerance)
	}

	if o.Localization == Newton && o.BoundStates && len(o.InitialGuesses) == 0 {
		return fmt.Errorf("%w: newton localization needs initial guesses", core.ErrInvalidArgument)
	}

	if !core.AllFinite(o.InitialGuesses) {
		return fmt.Errorf("%w: non-finite initial guess", core.ErrInvalidArgument)
	}

	if d < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", core.ErrInvalidArgument, d)
	}

	return nil
}

// subsamples returns the coarse signal length for d samples.
func (o Options) subsamples(d int) int {
	if o.Dsub > 0 {
		return min(o.Dsub, d)
	}

	n := int(math.Ceil(math.Sqrt(float64(d)) * math.Log2(float64(d))))

	return min(max(n, 2), d)
}

func (o Options) maxEvals(d int) int {
	if o.MaxEvals > 0 {
		return o.MaxEvals
	}

	return d
}

// String lists the options one per line.
func (o Options) String() string {
	return core.FormatFields([]core.Field{
		{Name: "discretization", Value: o.Discretization},
		{Name: "bound states", Value: o.BoundStates},
		{Name: "localization", Value: o.Localization},
		{Name: "filtering", Value: o.Filtering},
		{Name: "bounding box", Value: boxString(o.BoundingBox)},
		{Name: "grid size", Value: o.GridSize},
		{Name: "initial guesses", Value: len(o.InitialGuesses)},
		{Name: "niter", Value: o.Niter},
		{Name: "tolerance", Value: o.Tolerance},
		{Name: "dsub", Value: autoInt(o.Dsub)},
		{Name: "max evals", Value: autoInt(o.MaxEvals)},
		{Name: "dedup tolerance", Value: o.DedupTolerance},
		{Name: "discrete spectrum type", Value: o.DiscSpecType},
		{Name: "continuous spectrum type", Value: o.ContSpecType},
		{Name: "normalize", Value: o.Normalize},
		{Name: "kappa", Value: o.Kappa},
	})
}

func boxString(b core.Box) string {
	if b.IsZero() {
		return "auto"
	}

	return b.String()
}

func autoInt(n int) string {
	if n == 0 {
		return "auto"
	}

	return fmt.Sprint(n)
}
