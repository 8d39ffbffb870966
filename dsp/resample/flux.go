package resample

import (
	"math"

	"github.com/cwbudde/algo-redshift/spectrum"
)

// FluxConserving averages input bins weighted by their overlap with each
// output bin. Bin edges sit halfway between sample centres; the outermost
// edges mirror the adjacent half-width. An output bin that is not fully
// covered by input bins, or that overlaps an input bin with non-finite flux,
// is NaN.
type FluxConserving struct{}

// Resample implements [Resampler].
func (FluxConserving) Resample(s *spectrum.Spectrum, grid []float64) (*spectrum.Spectrum, error) {
	if err := validate(s, grid, 2); err != nil {
		return nil, err
	}

	x := s.Wavelength()
	y := s.Flux()
	sigma := s.Uncertainty()

	inEdges := binEdges(x)
	outEdges := binEdges(grid)

	flux := make([]float64, len(grid))
	var unc []float64
	if sigma != nil {
		unc = make([]float64, len(grid))
	}

	lastIn := len(inEdges) - 1
	j := 0
	for k := range grid {
		a, b := outEdges[k], outEdges[k+1]
		if a < inEdges[0] || b > inEdges[lastIn] {
			flux[k] = math.NaN()
			if unc != nil {
				unc[k] = math.NaN()
			}
			continue
		}

		// Advance to the first input bin whose upper edge lies above a.
		for j < len(x)-1 && inEdges[j+1] <= a {
			j++
		}

		var sumW, sumWF, sumVar float64
		for i := j; i < len(x) && inEdges[i] < b; i++ {
			w := math.Min(b, inEdges[i+1]) - math.Max(a, inEdges[i])
			if w <= 0 {
				continue
			}

			sumW += w
			sumWF += w * y[i]
			if sigma != nil {
				sumVar += w * w * sigma[i] * sigma[i]
			}
		}

		if sumW == 0 {
			flux[k] = math.NaN()
			if unc != nil {
				unc[k] = math.NaN()
			}
			continue
		}

		flux[k] = sumWF / sumW
		if unc != nil {
			unc[k] = math.Sqrt(sumVar) / sumW
		}
	}

	return build(s, grid, flux, unc)
}

// binEdges returns len(x)+1 edges around the sample centres x.
func binEdges(x []float64) []float64 {
	n := len(x)
	edges := make([]float64, n+1)
	edges[0] = x[0] - 0.5*(x[1]-x[0])
	for i := 1; i < n; i++ {
		edges[i] = 0.5 * (x[i-1] + x[i])
	}
	edges[n] = x[n-1] + 0.5*(x[n-1]-x[n-2])

	return edges
}
