package nsev

import (
	"fmt"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

func ExampleForward() {
	q := make([]complex128, 256)
	for i := range q {
		q[i] = 2
	}

	opts := DefaultOptions()
	opts.Discretization = scheme.Exponential

	res, err := Forward(q, -1, 1, core.XiGrid{Xi1: -2, Xi2: 2, M: 8}, opts)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, b := range res.BoundStates {
		fmt.Printf("eigenvalue %.4fi, norming constant %.3f\n", imag(b.Eigenvalue), real(b.NormingConstant))
	}
	// Output:
	// eigenvalue 1.5742i, norming constant -1.000
}

func ExampleInverse() {
	const d = 1024

	res, err := Inverse(nil, []complex128{0.5i}, []complex128{1}, -12, 12, d, DefaultInverseOptions())
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%d samples, peak %.2f\n", len(res.Q), core.MaxAbs(res.Q))
	// Output:
	// 1024 samples, peak 1.00
}
