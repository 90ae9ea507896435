package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-nft/nft/core"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	out io.Writer
	log *logrus.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, log: logrus.New()}
	a.log.SetOutput(errOut)
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	a.v.SetEnvPrefix("NFT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	var configFile string

	root := &cobra.Command{
		Use:           "nftdemo",
		Short:         "Nonlinear Fourier transforms of test signals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				a.v.SetConfigFile(configFile)
				if err := a.v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", configFile, err)
				}
			}

			a.bindFlags(cmd)

			a.log.SetLevel(logrus.WarnLevel)
			if a.v.GetBool("verbose") {
				a.log.SetLevel(logrus.DebugLevel)
			}

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML or JSON file with option defaults")
	pf.StringP("format", "o", "text", "output format: text, json or yaml")
	pf.BoolP("verbose", "v", false, "log solver diagnostics to stderr")
	pf.Int("workers", 0, "worker goroutines per transform (0: one per CPU)")

	for _, name := range []string{"format", "verbose", "workers"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		a.newNsevCmd(),
		a.newNsevInverseCmd(),
		a.newNsepCmd(),
		a.newKdvvCmd(),
		a.newOptionsCmd(),
		a.newEnvCmd(),
	)

	return root
}

// bindFlags binds the local flags of cmd to the keys "<cmd>.<flag>", so a
// config file section or NFT_<CMD>_<FLAG> can supply them.
func (a *app) bindFlags(cmd *cobra.Command) {
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = a.v.BindPFlag(a.key(cmd, f.Name), f)
	})
}

func (a *app) key(cmd *cobra.Command, flag string) string {
	return cmd.Name() + "." + flag
}

func (a *app) runOptions() []core.RunOption {
	return []core.RunOption{
		core.WithWorkers(a.v.GetInt("workers")),
		core.WithLogger(a.log),
	}
}

// flags reads the bound values of one subcommand.
type flags struct {
	v   *viper.Viper
	cmd string
	err error
}

func (a *app) flags(cmd *cobra.Command) *flags {
	return &flags{v: a.v, cmd: cmd.Name()}
}

func (f *flags) key(name string) string { return f.cmd + "." + name }

func (f *flags) getInt(name string) int { return f.v.GetInt(f.key(name)) }

func (f *flags) getFloat(name string) float64 { return f.v.GetFloat64(f.key(name)) }

func (f *flags) getBool(name string) bool { return f.v.GetBool(f.key(name)) }

func (f *flags) getString(name string) string { return f.v.GetString(f.key(name)) }

func (f *flags) getStrings(name string) []string { return f.v.GetStringSlice(f.key(name)) }

// parse resolves an enum flag, keeping the first error.
func parse[T any](f *flags, name string, fn func(string) (T, error)) T {
	v, err := fn(f.getString(name))
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("--%s: %w", name, err)
	}

	return v
}

// complexes parses a list of complex numbers such as "0.5i" or "1-2i".
func (f *flags) complexes(name string) []complex128 {
	raw := f.getStrings(name)
	out := make([]complex128, 0, len(raw))

	for _, s := range raw {
		z, err := parseComplex(s)
		if err != nil {
			if f.err == nil {
				f.err = fmt.Errorf("--%s: %w", name, err)
			}

			return nil
		}

		out = append(out, z)
	}

	return out
}

// box reads "xmin,xmax,ymin,ymax"; no values means unset.
func (f *flags) box(name string) core.Box {
	raw := f.getStrings(name)
	if len(raw) == 0 {
		return core.Box{}
	}

	if len(raw) != 4 {
		if f.err == nil {
			f.err = fmt.Errorf("--%s: want xmin,xmax,ymin,ymax, got %d values", name, len(raw))
		}

		return core.Box{}
	}

	var v [4]float64

	for i, s := range raw {
		if _, err := fmt.Sscan(strings.TrimSpace(s), &v[i]); err != nil {
			if f.err == nil {
				f.err = fmt.Errorf("--%s: %w", name, err)
			}

			return core.Box{}
		}
	}

	return core.Box{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3]}
}
