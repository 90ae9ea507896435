package core

// Diagnostics counts what one transform did. Fields that do not apply to a
// transform stay zero.
type Diagnostics struct {
	// Samples is the number of signal samples D.
	Samples int `json:"samples"`
	// Subsamples is the length of the coarse signal used for seeding.
	Subsamples int `json:"subsamples,omitempty"`
	// Seeds handed to the root finder.
	Seeds int `json:"seeds,omitempty"`
	// Converged, Diverged and Fallbacks classify the refined seeds.
	Converged int `json:"converged,omitempty"`
	Diverged  int `json:"diverged,omitempty"`
	Fallbacks int `json:"fallbacks,omitempty"`
	// Roots is the number of spectral points reported.
	Roots int `json:"roots"`
	// Iterations and Residual describe an iterative inverse transform.
	Iterations int     `json:"iterations,omitempty"`
	Residual   float64 `json:"residual,omitempty"`
}
