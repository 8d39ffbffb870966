package conv

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Correlate computes the full cross-correlation of a and b directly.
// The result has length len(a) + len(b) - 1.
// Output index k corresponds to lag k - (len(b) - 1): a positive lag means b
// must be delayed to line up with a.
func Correlate(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	bReversed := make([]float64, len(b))
	for i := range b {
		bReversed[i] = b[len(b)-1-i]
	}

	return Direct(a, bReversed)
}

// CorrelateFFT computes cross-correlation using FFT.
// The output layout matches [Correlate].
func CorrelateFFT(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	// For FFT-based correlation: IFFT(FFT(a) * conj(FFT(b)))
	n := len(a)
	m := len(b)
	fftSize := nextPowerOf2(n + m - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	aPadded := make([]complex128, fftSize)
	bPadded := make([]complex128, fftSize)
	for i := 0; i < n; i++ {
		aPadded[i] = complex(a[i], 0)
	}
	for i := 0; i < m; i++ {
		bPadded[i] = complex(b[i], 0)
	}

	aFreq := make([]complex128, fftSize)
	bFreq := make([]complex128, fftSize)

	if err := plan.Forward(aFreq, aPadded); err != nil {
		return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	if err := plan.Forward(bFreq, bPadded); err != nil {
		return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	resultFreq := make([]complex128, fftSize)
	for i := range resultFreq {
		bConj := complex(real(bFreq[i]), -imag(bFreq[i]))
		resultFreq[i] = aFreq[i] * bConj
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, resultFreq); err != nil {
		return nil, fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	// Circular result: non-negative lags at the start, negative lags wrapped
	// to the end of the buffer.
	result := make([]float64, n+m-1)
	for i := 0; i < n; i++ {
		result[m-1+i] = real(resultTime[i])
	}
	for i := 0; i < m-1; i++ {
		result[i] = real(resultTime[fftSize-m+1+i])
	}

	return result, nil
}

// FindPeak finds the index and value of the maximum in a correlation result.
// NaN entries are ignored; ties resolve to the lowest index. Returns -1 if
// no finite value exists.
func FindPeak(corr []float64) (index int, value float64) {
	index = -1
	for i, v := range corr {
		if math.IsNaN(v) {
			continue
		}
		if index < 0 || v > value {
			index = i
			value = v
		}
	}

	return index, value
}

// ParabolicPeak refines the peak at index i by fitting a parabola through
// corr[i-1], corr[i], corr[i+1]. It returns the fractional offset in
// (-0.5, 0.5) relative to i and the interpolated peak value. At the edges, or
// when a neighbour is NaN or the three points are collinear, the offset is 0.
func ParabolicPeak(corr []float64, i int) (offset, value float64) {
	if i <= 0 || i >= len(corr)-1 {
		if i >= 0 && i < len(corr) {
			return 0, corr[i]
		}
		return 0, math.NaN()
	}

	ym, y0, yp := corr[i-1], corr[i], corr[i+1]
	if math.IsNaN(ym) || math.IsNaN(yp) {
		return 0, y0
	}

	den := ym - 2*y0 + yp
	if den == 0 {
		return 0, y0
	}

	offset = 0.5 * (ym - yp) / den
	if offset <= -0.5 || offset >= 0.5 {
		return 0, y0
	}

	value = y0 - 0.25*(ym-yp)*offset

	return offset, value
}

// LagFromIndex converts a correlation result index to a lag value.
// For a correlation of signals with lengths lenA and lenB,
// the lag at index i is i - (lenB - 1).
func LagFromIndex(index, lenB int) int {
	return index - (lenB - 1)
}

// IndexFromLag converts a lag value to a correlation result index.
func IndexFromLag(lag, lenB int) int {
	return lag + (lenB - 1)
}
