package xcorr

import (
	"math"

	"github.com/cwbudde/algo-redshift/dsp/interp"
	"github.com/cwbudde/algo-redshift/spectrum"
)

// Correlate evaluates the normalised cross-correlation of observed and
// template at every lag of grid.
//
// For a lag z the template wavelengths are multiplied by (1+z) and the
// template flux is linearly interpolated at each finite observed sample
// inside the shifted coverage. The score is
//
//	sum(o*t) / (|o| * |t|)
//
// where |o| is the norm of all finite observed samples and |t| the norm of
// the interpolated template over the overlap. Partial overlap therefore
// lowers the score. Lags covering fewer than max(3, minOverlap*N) finite
// observed samples are NaN.
//
// The template is converted to the spectral unit of observed first.
func Correlate(observed, template *spectrum.Spectrum, grid LagGrid, opts ...Option) (*Result, error) {
	if observed == nil || template == nil || observed.Len() < 2 || template.Len() < 2 {
		return nil, ErrTooFewSamples
	}

	lags, err := grid.Values()
	if err != nil {
		return nil, err
	}

	cfg := applyOptions(opts)
	template = template.ToUnit(observed.Unit())

	ow := observed.Wavelength()
	of := observed.Flux()

	var norm float64
	valid := 0
	for _, v := range of {
		if finite(v) {
			norm += v * v
			valid++
		}
	}
	norm = math.Sqrt(norm)
	need := minCount(cfg.minOverlap, valid)

	rest := template.Wavelength()
	tf := template.Flux()
	shifted := make([]float64, len(rest))

	scores := make([]float64, len(lags))
	for k, z := range lags {
		for i, w := range rest {
			shifted[i] = w * (1 + z)
		}

		var ot, tt float64
		n := 0
		for i, w := range ow {
			if !finite(of[i]) {
				continue
			}

			t, ok := interp.Linear(shifted, tf, w)
			if !ok || !finite(t) {
				continue
			}

			ot += of[i] * t
			tt += t * t
			n++
		}

		if n < need || tt == 0 || norm == 0 {
			scores[k] = math.NaN()
			continue
		}

		scores[k] = ot / (norm * math.Sqrt(tt))
	}

	return newResult(lags, scores)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// minCount returns the minimum number of overlapping samples for a lag to
// be scored.
func minCount(fraction float64, valid int) int {
	need := int(math.Ceil(fraction * float64(valid)))
	if need < minSamples {
		need = minSamples
	}

	return need
}
