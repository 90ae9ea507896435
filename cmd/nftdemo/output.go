package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ghodss/yaml"

	"github.com/cwbudde/algo-nft/nft/contspec"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/norming"
)

// cplx is a complex number in a form JSON and YAML can carry.
type cplx struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

func toCplx(z complex128) cplx { return cplx{Re: real(z), Im: imag(z)} }

func toCplxs(zs []complex128) []cplx {
	out := make([]cplx, len(zs))
	for i, z := range zs {
		out[i] = toCplx(z)
	}

	return out
}

func (c cplx) String() string { return fmt.Sprintf("%.6f %+.6fi", c.Re, c.Im) }

type contSample struct {
	Xi           float64 `json:"xi"`
	Reflection   cplx    `json:"reflection"`
	Transmission cplx    `json:"transmission"`
	A            cplx    `json:"a"`
	B            cplx    `json:"b"`
	Scale        int     `json:"scale,omitempty"`
}

type boundState struct {
	Eigenvalue      cplx `json:"eigenvalue"`
	NormingConstant cplx `json:"normingConstant"`
	Residue         cplx `json:"residue"`
}

// report is the printable outcome of one transform.
type report struct {
	Transform   string           `json:"transform"`
	Status      string           `json:"status"`
	Error       string           `json:"error,omitempty"`
	ContSpec    []contSample     `json:"contSpec,omitempty"`
	BoundStates []boundState     `json:"boundStates,omitempty"`
	Main        []cplx           `json:"main,omitempty"`
	Aux         []cplx           `json:"aux,omitempty"`
	Signal      []cplx           `json:"signal,omitempty"`
	Time        []float64        `json:"time,omitempty"`
	Diagnostics core.Diagnostics `json:"diagnostics"`
}

func newReport(transform string, status core.Status, err error, diag core.Diagnostics) *report {
	r := &report{Transform: transform, Status: status.String(), Diagnostics: diag}
	if err != nil {
		r.Error = err.Error()
	}

	return r
}

func (r *report) setContSpec(samples []contspec.Sample) {
	r.ContSpec = make([]contSample, len(samples))
	for i, s := range samples {
		r.ContSpec[i] = contSample{
			Xi:           s.Xi,
			Reflection:   toCplx(s.Reflection),
			Transmission: toCplx(s.Transmission),
			A:            toCplx(s.A),
			B:            toCplx(s.B),
			Scale:        s.Scale,
		}
	}
}

func (r *report) setBoundStates(entries []norming.Entry) {
	r.BoundStates = make([]boundState, len(entries))
	for i, e := range entries {
		r.BoundStates[i] = boundState{
			Eigenvalue:      toCplx(e.Eigenvalue),
			NormingConstant: toCplx(e.NormingConstant),
			Residue:         toCplx(e.Residue),
		}
	}
}

// write renders v in the given format. Text output of a report is a set of
// aligned tables; other values print with %v.
func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}

		_, err = w.Write(b)

		return err
	case "text", "":
		if r, ok := v.(*report); ok {
			return r.writeText(w)
		}

		_, err := fmt.Fprintln(w, v)

		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func (r *report) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "transform:\t%s\n", r.Transform)
	fmt.Fprintf(tw, "status:\t%s\n", r.Status)

	if r.Error != "" {
		fmt.Fprintf(tw, "error:\t%s\n", r.Error)
	}

	fmt.Fprintf(tw, "samples:\t%d\n", r.Diagnostics.Samples)

	if len(r.ContSpec) > 0 {
		fmt.Fprintln(tw, "\ncontinuous spectrum")
		fmt.Fprintln(tw, "#\txi\treflection\ta\tb")

		for i, s := range r.ContSpec {
			fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\t%s\n", i, s.Xi, s.Reflection, s.A, s.B)
		}
	}

	if len(r.BoundStates) > 0 {
		fmt.Fprintln(tw, "\nbound states")
		fmt.Fprintln(tw, "#\teigenvalue\tnorming constant\tresidue")

		for i, b := range r.BoundStates {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, b.Eigenvalue, b.NormingConstant, b.Residue)
		}
	}

	writeList(tw, "main spectrum", r.Main)
	writeList(tw, "auxiliary spectrum", r.Aux)

	if len(r.Signal) > 0 {
		fmt.Fprintln(tw, "\nsignal")
		fmt.Fprintln(tw, "#\tt\tq")

		for i, q := range r.Signal {
			fmt.Fprintf(tw, "%d\t%.4f\t%s\n", i, r.Time[i], q)
		}
	}

	return tw.Flush()
}

func writeList(w io.Writer, title string, zs []cplx) {
	if len(zs) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", title)

	for i, z := range zs {
		fmt.Fprintf(w, "%d\t%s\n", i, z)
	}
}
