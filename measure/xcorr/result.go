package xcorr

import (
	"math"

	"github.com/cwbudde/algo-redshift/dsp/conv"
)

// Result holds the correlation function over the lag grid.
type Result struct {
	// Lags are the trial redshifts in ascending order.
	Lags []float64
	// Scores are normalised correlation values; NaN marks an excluded lag.
	Scores []float64

	// Redshift is the lag with the highest valid score. Ties resolve to the
	// smallest lag.
	Redshift  float64
	Peak      float64
	PeakIndex int

	// Refined is Redshift adjusted by a three-point parabolic fit through
	// the peak and its neighbours. It equals Redshift at the grid edges or
	// when a neighbour is excluded.
	Refined float64
}

func newResult(lags, scores []float64) (*Result, error) {
	idx, peak := conv.FindPeak(scores)
	if idx < 0 {
		return nil, ErrNoOverlap
	}

	res := &Result{
		Lags:      lags,
		Scores:    scores,
		Redshift:  lags[idx],
		Peak:      peak,
		PeakIndex: idx,
		Refined:   lags[idx],
	}

	offset, _ := conv.ParabolicPeak(scores, idx)
	switch {
	case offset > 0:
		res.Refined += offset * (lags[idx+1] - lags[idx])
	case offset < 0:
		res.Refined += offset * (lags[idx] - lags[idx-1])
	}

	return res, nil
}

// Len returns the number of lags.
func (r *Result) Len() int {
	return len(r.Lags)
}

// Valid reports whether lag i was scored.
func (r *Result) Valid(i int) bool {
	return !math.IsNaN(r.Scores[i])
}

// ValidCount returns the number of scored lags.
func (r *Result) ValidCount() int {
	n := 0
	for i := range r.Scores {
		if r.Valid(i) {
			n++
		}
	}

	return n
}
