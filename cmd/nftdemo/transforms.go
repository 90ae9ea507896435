package main

import (
	"fmt"
	"math"
	"runtime"

	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/inverse"
	"github.com/cwbudde/algo-nft/nft/kdvv"
	"github.com/cwbudde/algo-nft/nft/norming"
	"github.com/cwbudde/algo-nft/nft/nsep"
	"github.com/cwbudde/algo-nft/nft/nsev"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

// addSignalFlags registers the test signal and its grid.
func addSignalFlags(cmd *cobra.Command, kind string, amp, param, t1, t2 float64) {
	f := cmd.Flags()
	f.Int("samples", 256, "number of samples D")
	f.Float64("t1", t1, "first sample position")
	f.Float64("t2", t2, "last sample position (end of period for nsep)")
	f.String("signal", kind, "test signal: constant, sech or plane-wave")
	f.Float64("amplitude", amp, "signal amplitude")
	f.Float64("param", param, "sech chirp or plane-wave wavenumber")
}

func addXiFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("xi1", -2, "first spectral point")
	f.Float64("xi2", 2, "last spectral point")
	f.Int("m", 8, "number of spectral points")
}

func (f *flags) grid(periodic bool) core.Grid {
	return core.Grid{T1: f.getFloat("t1"), T2: f.getFloat("t2"), D: f.getInt("samples"), Periodic: periodic}
}

func (f *flags) signal() signal {
	return signal{Kind: f.getString("signal"), Amplitude: f.getFloat("amplitude"), Param: f.getFloat("param")}
}

func (f *flags) xi() core.XiGrid {
	return core.XiGrid{Xi1: f.getFloat("xi1"), Xi2: f.getFloat("xi2"), M: f.getInt("m")}
}

// finish prints a result. Recoverable errors are reported alongside the
// result; a nil result turns err into the command error.
func (a *app) finish(rep *report, ok bool, err error) error {
	if !ok {
		return err
	}

	if err != nil {
		a.log.WithError(err).Warn("degraded result")
	}

	return write(a.out, a.v.GetString("format"), rep)
}

func (a *app) newNsevCmd() *cobra.Command {
	def := nsev.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "nsev",
		Short: "NSE with vanishing boundaries: continuous spectrum and bound states",
		Example: `  nftdemo nsev
  nftdemo nsev --discretization exponential --localization grid-search --box=-3,3,0,3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.flags(cmd)

			opts := nsev.Options{
				Discretization: parse(f, "discretization", scheme.Parse),
				BoundStates:    f.getBool("bound-states"),
				Localization:   parse(f, "localization", nsev.ParseLocalization),
				Filtering:      parse(f, "filtering", nsev.ParseFiltering),
				BoundingBox:    f.box("box"),
				GridSize:       f.getInt("grid-size"),
				InitialGuesses: f.complexes("guesses"),
				Niter:          f.getInt("niter"),
				Tolerance:      f.getFloat("tolerance"),
				Dsub:           f.getInt("dsub"),
				MaxEvals:       f.getInt("max-evals"),
				DedupTolerance: def.DedupTolerance,
				DiscSpecType:   parse(f, "disc-spec", norming.ParseType),
				ContSpecType:   parse(f, "cont-spec", contspec.ParseType),
				Normalize:      f.getBool("normalize"),
				Kappa:          parse(f, "kappa", core.ParseKappa),
			}
			if f.err != nil {
				return f.err
			}

			grid := f.grid(false)

			q, err := f.signal().sample(grid)
			if err != nil {
				return err
			}

			res, err := nsev.Forward(q, grid.T1, grid.T2, f.xi(), opts, a.runOptions()...)
			if res == nil {
				return a.finish(nil, false, err)
			}

			rep := newReport("nsev", res.Status, err, res.Diagnostics)
			rep.setContSpec(res.ContSpec)
			rep.setBoundStates(res.BoundStates)

			return a.finish(rep, true, err)
		},
	}

	addSignalFlags(cmd, "constant", 2, 0, -1, 1)
	addXiFlags(cmd)

	fl := cmd.Flags()
	fl.String("discretization", def.Discretization.String(), "exponential, split2 or split4")
	fl.Bool("bound-states", def.BoundStates, "search for bound states")
	fl.String("localization", def.Localization.String(), "subsample-and-refine, grid-search or newton")
	fl.String("filtering", def.Filtering.String(), "none, basic or full")
	fl.StringSlice("box", nil, "bounding box xmin,xmax,ymin,ymax")
	fl.Int("grid-size", def.GridSize, "grid search cells per axis")
	fl.StringSlice("guesses", nil, "initial guesses for newton localization, e.g. 1.5i")
	fl.Int("niter", def.Niter, "Newton iterations per seed")
	fl.Float64("tolerance", def.Tolerance, "Newton step tolerance")
	fl.Int("dsub", def.Dsub, "subsampled length (0: automatic)")
	fl.Int("max-evals", def.MaxEvals, "maximum number of bound states (0: D)")
	fl.String("disc-spec", def.DiscSpecType.String(), "norming-constants, residues, both or skip")
	fl.String("cont-spec", def.ContSpecType.String(), "reflection, reflection+transmission, ab, all or skip")
	fl.Bool("normalize", def.Normalize, "rescale intermediate products")
	fl.String("kappa", def.Kappa.String(), "focusing or defocusing")

	return cmd
}

func (a *app) newNsevInverseCmd() *cobra.Command {
	def := nsev.DefaultInverseOptions()

	cmd := &cobra.Command{
		Use:   "nsev-inverse",
		Short: "NSE with vanishing boundaries: signal from its spectrum",
		Long: `Synthesizes a signal from bound states and, optionally, the continuous
spectrum of a test signal computed on the inverse grid.`,
		Example: `  nftdemo nsev-inverse --eigenvalues 0.5i --norming 1 --t1 -12 --t2 12 --samples 1024
  nftdemo nsev-inverse --signal sech --amplitude 0.4 --eigenvalues "" --norming ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.flags(cmd)

			opts := nsev.InverseOptions{
				Discretization: parse(f, "discretization", scheme.Parse),
				Method:         parse(f, "method", inverse.ParseMethod),
				ContSpecType:   inverse.Reflection,
				DiscSpecType:   parse(f, "disc-spec", inverse.ParseDiscSpecType),
				MaxIter:        f.getInt("max-iter"),
				Oversampling:   f.getInt("oversampling"),
				Tolerance:      f.getFloat("tolerance"),
				Kappa:          parse(f, "kappa", core.ParseKappa),
			}
			eig := nonEmpty(f.complexes("eigenvalues"))
			disc := nonEmpty(f.complexes("norming"))

			if f.err != nil {
				return f.err
			}

			grid := f.grid(false)

			cont, err := a.inverseInput(f, grid, opts)
			if err != nil {
				return err
			}

			res, err := nsev.Inverse(cont, eig, disc, grid.T1, grid.T2, grid.D, opts, a.runOptions()...)
			if res == nil {
				return a.finish(nil, false, err)
			}

			rep := newReport("nsev-inverse", res.Status, err, res.Diagnostics)
			rep.Signal = toCplxs(res.Q)
			rep.Time = grid.Points()

			return a.finish(rep, true, err)
		},
	}

	addSignalFlags(cmd, "none", 0.4, 0, -12, 12)

	fl := cmd.Flags()
	fl.StringSlice("eigenvalues", []string{"0.5i"}, "bound state eigenvalues")
	fl.StringSlice("norming", []string{"1"}, "norming constants or residues, one per eigenvalue")
	fl.String("discretization", def.Discretization.String(), "scheme of the discrete spectrum, split2")
	fl.String("method", def.Method.String(), "layer-peeling or fourier-iteration")
	fl.String("disc-spec", def.DiscSpecType.String(), "norming-constants or residues")
	fl.Int("max-iter", def.MaxIter, "Fourier iteration limit")
	fl.Int("oversampling", def.Oversampling, "spectral points per sample")
	fl.Float64("tolerance", def.Tolerance, "Fourier iteration residual tolerance")
	fl.String("kappa", def.Kappa.String(), "focusing or defocusing")

	return cmd
}

// inverseInput computes the reflection coefficient of the test signal on the
// inverse grid; signal "none" gives no continuous spectrum.
func (a *app) inverseInput(f *flags, grid core.Grid, opts nsev.InverseOptions) ([]complex128, error) {
	sig := f.signal()
	if sig.Kind == "none" {
		return nil, nil
	}

	q, err := sig.sample(grid)
	if err != nil {
		return nil, err
	}

	xg, err := nsev.InverseXi(grid.D, grid.T1, grid.T2, opts)
	if err != nil {
		return nil, err
	}

	fopts := nsev.DefaultOptions()
	fopts.Discretization = opts.Discretization
	fopts.BoundStates = false
	fopts.Kappa = opts.Kappa

	res, err := nsev.Forward(q, grid.T1, grid.T2, xg, fopts, a.runOptions()...)
	if err != nil {
		return nil, fmt.Errorf("continuous spectrum of %s signal: %w", sig.Kind, err)
	}

	return contspec.Reflections(res.ContSpec), nil
}

// nonEmpty drops the result of an explicitly emptied list flag.
func nonEmpty(zs []complex128) []complex128 {
	if len(zs) == 0 {
		return nil
	}

	return zs
}

func (a *app) newNsepCmd() *cobra.Command {
	def := nsep.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "nsep",
		Short: "NSE with periodic boundaries: main and auxiliary spectrum",
		Example: `  nftdemo nsep --box=-2,2,-2,2 --filtering manual
  nftdemo nsep --kappa defocusing --localization real-line-search --box=-3,1,-1,1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.flags(cmd)

			opts := nsep.Options{
				Localization:   parse(f, "localization", nsep.ParseLocalization),
				Filtering:      parse(f, "filtering", nsep.ParseFiltering),
				BoundingBox:    f.box("box"),
				GridSize:       f.getInt("grid-size"),
				MaxEvals:       f.getInt("max-evals"),
				Discretization: parse(f, "discretization", scheme.Parse),
				Normalize:      f.getBool("normalize"),
				Kappa:          parse(f, "kappa", core.ParseKappa),
				Dsub:           f.getInt("dsub"),
				Niter:          f.getInt("niter"),
				Tolerance:      def.Tolerance,
				DedupTolerance: def.DedupTolerance,
			}
			if f.err != nil {
				return f.err
			}

			// t2 closes the period, so the last sample sits one step before it
			grid := f.grid(true)

			q, err := f.signal().sample(grid)
			if err != nil {
				return err
			}

			res, err := nsep.Forward(q, grid.T1, grid.T2, opts, a.runOptions()...)
			if res == nil {
				return a.finish(nil, false, err)
			}

			rep := newReport("nsep", res.Status, err, res.Diagnostics)
			rep.Main = toCplxs(res.Main)
			rep.Aux = toCplxs(res.Aux)

			return a.finish(rep, true, err)
		},
	}

	addSignalFlags(cmd, "plane-wave", 1, 2, 0, 2*math.Pi)

	fl := cmd.Flags()
	fl.String("localization", def.Localization.String(), "subsample-and-refine, grid-search or real-line-search")
	fl.String("filtering", def.Filtering.String(), "none, manual or auto")
	fl.StringSlice("box", nil, "bounding box xmin,xmax,ymin,ymax")
	fl.Int("grid-size", def.GridSize, "grid search cells per axis")
	fl.Int("max-evals", def.MaxEvals, "maximum number of points per spectrum (0: unlimited)")
	fl.String("discretization", def.Discretization.String(), "exponential, split2 or split4")
	fl.Bool("normalize", def.Normalize, "rescale intermediate products")
	fl.String("kappa", def.Kappa.String(), "focusing or defocusing")
	fl.Int("dsub", def.Dsub, "subsampled length for seeding (0: full signal)")
	fl.Int("niter", def.Niter, "Newton iterations per seed")

	return cmd
}

func (a *app) newKdvvCmd() *cobra.Command {
	def := kdvv.DefaultOptions()

	cmd := &cobra.Command{
		Use:     "kdvv",
		Short:   "KdV with vanishing boundaries: continuous spectrum and bound states",
		Example: `  nftdemo kdvv --bound-states --disc-spec norming-constants`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.flags(cmd)

			opts := kdvv.Options{
				Discretization: parse(f, "discretization", scheme.Parse),
				ContSpecType:   parse(f, "cont-spec", contspec.ParseType),
				BoundStates:    f.getBool("bound-states"),
				DiscSpecType:   parse(f, "disc-spec", norming.ParseType),
				Niter:          f.getInt("niter"),
				GridSize:       f.getInt("grid-size"),
				MaxEvals:       f.getInt("max-evals"),
				Normalize:      f.getBool("normalize"),
				Tolerance:      def.Tolerance,
				DedupTolerance: def.DedupTolerance,
			}
			if f.err != nil {
				return f.err
			}

			grid := f.grid(false)

			q, err := f.signal().sampleReal(grid)
			if err != nil {
				return err
			}

			res, err := kdvv.Forward(q, grid.T1, grid.T2, f.xi(), opts, a.runOptions()...)
			if res == nil {
				return a.finish(nil, false, err)
			}

			rep := newReport("kdvv", res.Status, err, res.Diagnostics)
			rep.setContSpec(res.ContSpec)
			rep.setBoundStates(res.BoundStates)

			return a.finish(rep, true, err)
		},
	}

	addSignalFlags(cmd, "constant", 2, 0, -1, 1)
	addXiFlags(cmd)

	fl := cmd.Flags()
	fl.String("discretization", def.Discretization.String(), "exponential, split2 or split4")
	fl.String("cont-spec", def.ContSpecType.String(), "reflection, reflection+transmission, ab, all or skip")
	fl.Bool("bound-states", def.BoundStates, "search the imaginary axis for bound states")
	fl.String("disc-spec", def.DiscSpecType.String(), "norming-constants, residues, both or skip")
	fl.Int("niter", def.Niter, "Newton iterations per seed")
	fl.Int("grid-size", def.GridSize, "imaginary axis scan resolution")
	fl.Int("max-evals", def.MaxEvals, "maximum number of bound states (0: unlimited)")
	fl.Bool("normalize", def.Normalize, "rescale intermediate products")

	return cmd
}

var defaultOptions = map[string]fmt.Stringer{
	"kdvv":         kdvv.DefaultOptions(),
	"nsep":         nsep.DefaultOptions(),
	"nsev":         nsev.DefaultOptions(),
	"nsev-inverse": nsev.DefaultInverseOptions(),
}

func (a *app) newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "options [transform ...]",
		Short:     "Print the default options of the transforms",
		ValidArgs: []string{"kdvv", "nsep", "nsev", "nsev-inverse"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"kdvv", "nsep", "nsev", "nsev-inverse"}
			}

			format := a.v.GetString("format")
			if format != "text" {
				out := make(map[string]string, len(args))
				for _, name := range args {
					out[name] = defaultOptions[name].String()
				}

				return write(a.out, format, out)
			}

			for _, name := range args {
				fmt.Fprintf(a.out, "%s\n%s\n", name, defaultOptions[name])
			}

			return nil
		},
	}
}

var simdLevels = []struct {
	level cpu.SIMDLevel
	name  string
}{
	{cpu.SIMDSSE2, "sse2"},
	{cpu.SIMDAVX2, "avx2"},
	{cpu.SIMDNEON, "neon"},
}

type envInfo struct {
	GoVersion    string   `json:"goVersion"`
	Architecture string   `json:"architecture"`
	Workers      int      `json:"workers"`
	SIMD         []string `json:"simd"`
	ForceGeneric bool     `json:"forceGeneric"`
}

func (e envInfo) String() string {
	return core.FormatFields([]core.Field{
		{Name: "go", Value: e.GoVersion},
		{Name: "architecture", Value: e.Architecture},
		{Name: "workers", Value: e.Workers},
		{Name: "simd", Value: e.SIMD},
		{Name: "force generic", Value: e.ForceGeneric},
	})
}

func (a *app) newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the runtime and the SIMD levels available to vector kernels",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			feat := cpu.DetectFeatures()

			info := envInfo{
				GoVersion:    runtime.Version(),
				Architecture: feat.Architecture,
				Workers:      core.ApplyRunOptions(a.runOptions()...).Workers,
				ForceGeneric: feat.ForceGeneric,
			}

			for _, l := range simdLevels {
				if cpu.Supports(feat, l.level) {
					info.SIMD = append(info.SIMD, l.name)
				}
			}

			if len(info.SIMD) == 0 {
				info.SIMD = []string{"none"}
			}

			return write(a.out, a.v.GetString("format"), info)
		},
	}
}
