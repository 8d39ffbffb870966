// Package window generates apodisation tapers for spectral cross-correlation.
//
// Tapering the ends of a rebinned spectrum before an FFT suppresses the edge
// discontinuity that would otherwise correlate with itself at zero lag.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Tukey returns the symmetric Tukey (tapered cosine) window of the given
// size. alpha is the tapered fraction: 0 gives a rectangle, 1 a Hann window.
func Tukey(size int, alpha float64) ([]float64, error) {
	if err := validateTukey(size, alpha); err != nil {
		return nil, err
	}

	return generate(size, alpha), nil
}

// Apply multiplies buf in place by a Tukey window of its length. alpha is
// clamped to [0, 1].
func Apply(buf []float64, alpha float64) {
	if len(buf) == 0 {
		return
	}

	alpha = math.Max(0, math.Min(1, alpha))
	vecmath.MulBlockInPlace(buf, generate(len(buf), alpha))
}

func generate(size int, alpha float64) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = tukeyAt(samplePosition(i, size), alpha)
	}

	return out
}

func samplePosition(n, size int) float64 {
	if size <= 1 {
		return 0
	}

	return float64(n) / float64(size-1)
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}

	if alpha >= 1 {
		return 0.5 * (1 - math.Cos(2*math.Pi*x))
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
