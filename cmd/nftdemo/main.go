// Command nftdemo runs the nonlinear Fourier transforms on test signals and
// prints their spectra.
//
// Usage:
//
//	nftdemo [global flags] <transform> [flags]
//
// Examples:
//
//	nftdemo nsev
//	nftdemo nsev --discretization exponential --format json
//	nftdemo nsep --box=-2,2,-2,2 --filtering manual
//	nftdemo kdvv --bound-states
//	nftdemo nsev-inverse --eigenvalues 0.5i --norming 1
//	nftdemo options nsev
//	nftdemo env
//
// Every flag can also be set in a YAML or JSON file passed with --config
// (keys "<transform>.<flag>") or through NFT_<TRANSFORM>_<FLAG> environment
// variables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
