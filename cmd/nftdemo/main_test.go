package main

import (
	"bytes"
	"encoding/json"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func decode(t *testing.T, args ...string) report {
	t.Helper()

	out, err := run(t, append(args, "-o", "json")...)
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	return rep
}

func TestNsev(t *testing.T) {
	rep := decode(t, "nsev")

	require.Equal(t, "nsev", rep.Transform)
	require.Equal(t, "ok", rep.Status)
	require.Len(t, rep.ContSpec, 8)
	require.Len(t, rep.BoundStates, 1)
	require.InDelta(t, 0, rep.BoundStates[0].Eigenvalue.Re, 1e-4)
	require.InDelta(t, 1.5742260077, rep.BoundStates[0].Eigenvalue.Im, 1e-4)
	require.Equal(t, 256, rep.Diagnostics.Samples)
}

func TestNsevText(t *testing.T) {
	out, err := run(t, "nsev", "--discretization", "exponential")
	require.NoError(t, err)
	require.Contains(t, out, "continuous spectrum")
	require.Contains(t, out, "bound states")
	require.Contains(t, out, "1.574226")
}

func TestNsep(t *testing.T) {
	out, err := run(t, "nsep", "--box=-2,2,-2,2", "--filtering", "manual")
	require.NoError(t, err)
	require.Contains(t, out, "main spectrum")
	require.Contains(t, out, "auxiliary spectrum")
}

func TestKdvvYAML(t *testing.T) {
	out, err := run(t, "-o", "yaml", "kdvv", "--bound-states", "--disc-spec", "norming-constants")
	require.NoError(t, err)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.ContSpec, 8)
	require.Len(t, rep.BoundStates, 1)
	// square well of depth 2 and width 2*256/255
	require.InDelta(t, 1.1004725881, rep.BoundStates[0].Eigenvalue.Im, 1e-6)
	require.InDelta(t, 1, rep.BoundStates[0].NormingConstant.Re, 1e-6)
}

func TestNsevInverse(t *testing.T) {
	rep := decode(t, "nsev-inverse", "--samples", "1024", "--t1", "-12", "--t2", "12")

	require.Len(t, rep.Signal, 1024)
	require.Len(t, rep.Time, 1024)

	// a soliton with eigenvalue 0.5i peaks at |q| = 1
	peak := 0.0
	for _, q := range rep.Signal {
		peak = math.Max(peak, cmplx.Abs(complex(q.Re, q.Im)))
	}

	require.InDelta(t, 1, peak, 1e-2)
}

func TestNsevInverseDiscretization(t *testing.T) {
	_, err := run(t, "nsev-inverse", "--discretization", "split4")
	require.Error(t, err)
	require.Contains(t, err.Error(), "only split2")
}

func TestNsevInverseFromSignal(t *testing.T) {
	rep := decode(t, "nsev-inverse", "--signal", "sech", "--amplitude", "0.4",
		"--samples", "64", "--t1", "-4", "--t2", "4", "--eigenvalues", "", "--norming", "")

	require.Equal(t, "ok", rep.Status)
	require.Len(t, rep.Signal, 64)

	for i, q := range rep.Signal {
		want := 0.4 / math.Cosh(rep.Time[i])
		require.InDelta(t, want, q.Re, 1e-4)
		require.InDelta(t, 0, q.Im, 1e-4)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nsev:\n  discretization: exponential\n  m: 4\n"), 0o600))

	rep := decode(t, "--config", path, "nsev")
	require.Len(t, rep.ContSpec, 4)

	// flags override the file
	rep = decode(t, "--config", path, "nsev", "--m", "3")
	require.Len(t, rep.ContSpec, 3)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("NFT_NSEV_M", "5")
	t.Setenv("NFT_NSEV_BOUND_STATES", "false")

	rep := decode(t, "nsev")
	require.Len(t, rep.ContSpec, 5)
	require.Empty(t, rep.BoundStates)
}

func TestInvalidInput(t *testing.T) {
	tests := map[string][]string{
		"discretization": {"nsev", "--discretization", "split9"},
		"box":            {"nsep", "--box", "1,2"},
		"signal":         {"kdvv", "--signal", "square"},
		"samples":        {"nsev", "--samples", "1"},
		"format":         {"nsev", "-o", "xml"},
		"guess":          {"nsev", "--localization", "newton", "--guesses", "i1"},
		"options":        {"options", "fft"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, args...)
			require.Error(t, err)
		})
	}
}

func TestOptions(t *testing.T) {
	out, err := run(t, "options", "nsev", "nsep")
	require.NoError(t, err)
	require.Contains(t, out, "subsample-and-refine")
	require.Contains(t, out, "nsep")
	require.NotContains(t, out, "kdvv")

	out, err = run(t, "options", "-o", "json")
	require.NoError(t, err)

	var all map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all, 4)
}

func TestEnv(t *testing.T) {
	out, err := run(t, "env", "-o", "json", "--workers", "3")
	require.NoError(t, err)

	var info envInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.NotEmpty(t, info.GoVersion)
	require.NotEmpty(t, info.SIMD)
	require.Equal(t, 3, info.Workers)
}
