package scheme

import "github.com/cwbudde/algo-nft/nft/core"

// Potential holds the AKNS coefficient pair (q_n, r_n) per sample.
type Potential struct {
	Q, R []complex128
}

// NSE builds the pair for the nonlinear Schrödinger equation,
// r = -kappa*conj(q). The input is not retained.
func NSE(q []complex128, kappa core.Kappa) Potential {
	p := Potential{Q: make([]complex128, len(q)), R: make([]complex128, len(q))}
	k := complex(float64(kappa), 0)

	for i, v := range q {
		p.Q[i] = v
		p.R[i] = -k * complex(real(v), -imag(v))
	}

	return p
}

// KdV builds the pair for the Korteweg-de Vries equation, r = -1.
func KdV(q []float64) Potential {
	p := Potential{Q: make([]complex128, len(q)), R: make([]complex128, len(q))}

	for i, v := range q {
		p.Q[i] = complex(v, 0)
		p.R[i] = -1
	}

	return p
}

// Len returns the number of samples.
func (p Potential) Len() int {
	return len(p.Q)
}

// Subsample keeps the samples at the given indices.
func (p Potential) Subsample(idx []int) Potential {
	out := Potential{Q: make([]complex128, len(idx)), R: make([]complex128, len(idx))}

	for i, k := range idx {
		out.Q[i] = p.Q[k]
		out.R[i] = p.R[k]
	}

	return out
}

// MaxAbs returns max |q_n|.
func (p Potential) MaxAbs() float64 {
	return core.MaxAbs(p.Q)
}
