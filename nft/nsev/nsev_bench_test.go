package nsev

import (
	"strconv"
	"testing"

	"github.com/cwbudde/algo-nft/internal/testutil"
	"github.com/cwbudde/algo-nft/nft/core"
	"github.com/cwbudde/algo-nft/nft/scheme"
)

func BenchmarkForward(b *testing.B) {
	for _, d := range []int{256, 1024} {
		grid := core.Grid{T1: -10, T2: 10, D: d}
		q := testutil.Sech(grid.Points(), 2.2, 0)

		for _, s := range []scheme.Scheme{scheme.Split2, scheme.Split4} {
			b.Run(s.String()+"/"+strconv.Itoa(d), func(b *testing.B) {
				opts := DefaultOptions()
				opts.Discretization = s

				b.ReportAllocs()

				for i := 0; i < b.N; i++ {
					if _, err := Forward(q, grid.T1, grid.T2, exampleXi, opts); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkInverse(b *testing.B) {
	for _, d := range []int{256, 1024} {
		b.Run(strconv.Itoa(d), func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := Inverse(nil, []complex128{0.5i}, []complex128{1}, -12, 12, d, DefaultInverseOptions()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
