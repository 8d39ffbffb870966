package continuum

import (
	"github.com/cwbudde/algo-redshift/spectrum"
)

// Model is a fitted continuum. Wavelengths are mapped linearly from Domain
// onto [-1, 1] before the basis is evaluated, so Coeffs refer to that
// normalised coordinate.
type Model struct {
	Family Family
	Degree int
	Coeffs []float64
	Domain spectrum.Region

	// Points is the number of samples used in the final fit; Rejected counts
	// samples removed by sigma clipping.
	Points   int
	Rejected int
}

func (m *Model) normalize(x float64) float64 {
	w := m.Domain.Width()
	if w == 0 {
		return 0
	}

	return 2*(x-m.Domain.Low)/w - 1
}

// Eval evaluates the model at wavelength x. Values outside Domain are
// extrapolated.
func (m *Model) Eval(x float64) float64 {
	b := make([]float64, len(m.Coeffs))
	m.Family.basis(b, m.normalize(x))

	var sum float64
	for i, c := range m.Coeffs {
		sum += c * b[i]
	}

	return sum
}

// EvalAll evaluates the model at every wavelength in xs.
func (m *Model) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	b := make([]float64, len(m.Coeffs))
	for i, x := range xs {
		m.Family.basis(b, m.normalize(x))

		var sum float64
		for k, c := range m.Coeffs {
			sum += c * b[k]
		}
		out[i] = sum
	}

	return out
}

// Params returns the number of free parameters.
func (m *Model) Params() int {
	return len(m.Coeffs)
}
