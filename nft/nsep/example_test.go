package nsep

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

func ExampleForward() {
	// tr M = 2*cos(2*pi*xi) for the zero signal on a period of 2*pi
	opts := DefaultOptions()
	opts.Discretization = scheme.Split2
	opts.Filtering = FilterManual
	opts.BoundingBox = core.Box{XMin: -0.7, XMax: 0.7, YMin: -1, YMax: 1}

	res, err := Forward(make([]complex128, 32), 0, 2*math.Pi, opts)
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, z := range res.Main {
		x := math.Round(real(z)*1000) / 1000
		if x == 0 {
			x = 0 // drop the sign of -0
		}

		fmt.Printf("%.3f\n", x)
	}
	// Output:
	// -0.500
	// 0.000
	// 0.500
}
