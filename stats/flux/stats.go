// Package flux computes NaN-aware summary statistics of spectral flux.
//
// Non-finite samples (NaN and Inf) mark undefined spectral bins and are
// skipped rather than propagated.
package flux

import "math"

// Stats holds flux statistics over the finite samples of a sequence.
type Stats struct {
	Count    int // finite samples
	Skipped  int // non-finite samples
	Mean     float64
	RMS      float64
	StdDev   float64 // population standard deviation
	Variance float64
	Min      float64
	MinPos   int
	Max      float64
	MaxPos   int
	Energy   float64 // sum of squares
	Skewness float64
	Kurtosis float64 // excess
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Calculate computes all statistics in a single pass using Welford's online
// algorithm for numerical stability on higher-order moments.
// Position fields are indices into values; they are -1 when Count is 0.
func Calculate(values []float64) Stats {
	st := Stats{MinPos: -1, MaxPos: -1}

	var (
		mean float64
		m2   float64
		m3   float64
		m4   float64
	)

	for i, x := range values {
		if !finite(x) {
			st.Skipped++
			continue
		}

		k := st.Count // samples seen before this one
		st.Count++
		ni := float64(st.Count)
		delta := x - mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(k)

		// M4 must be updated before M3, and M3 before M2.
		m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(float64(k)-1) - 3*deltaN*m2
		m2 += term1
		mean += deltaN

		st.Energy += x * x

		if st.MaxPos < 0 || x > st.Max {
			st.Max = x
			st.MaxPos = i
		}

		if st.MinPos < 0 || x < st.Min {
			st.Min = x
			st.MinPos = i
		}
	}

	if st.Count == 0 {
		return st
	}

	nf := float64(st.Count)
	st.Mean = mean
	st.RMS = math.Sqrt(st.Energy / nf)
	st.Variance = m2 / nf
	st.StdDev = math.Sqrt(st.Variance)

	if st.Variance > 0 {
		st.Skewness = (m3 / nf) / (st.Variance * st.StdDev)
		st.Kurtosis = (m4/nf)/(st.Variance*st.Variance) - 3
	}

	return st
}

// RMS returns the root-mean-square of the finite values, or 0 if none.
func RMS(values []float64) float64 {
	var sumSq float64
	n := 0
	for _, x := range values {
		if finite(x) {
			sumSq += x * x
			n++
		}
	}

	if n == 0 {
		return 0
	}

	return math.Sqrt(sumSq / float64(n))
}

// Mean returns the mean of the finite values using Kahan summation, or 0 if
// none.
func Mean(values []float64) float64 {
	var sum, c float64
	n := 0
	for _, x := range values {
		if !finite(x) {
			continue
		}
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
		n++
	}

	if n == 0 {
		return 0
	}

	return sum / float64(n)
}

// StdDev returns the population standard deviation of the finite values.
func StdDev(values []float64) float64 {
	return Calculate(values).StdDev
}

// SNR returns the signal-to-noise estimate mean/stddev over the
// finite values, or 0 when the deviation is zero.
func SNR(values []float64) float64 {
	st := Calculate(values)
	if st.StdDev == 0 {
		return 0
	}

	return st.Mean / st.StdDev
}
