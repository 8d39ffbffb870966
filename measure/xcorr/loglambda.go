package xcorr

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-redshift/dsp/conv"
	"github.com/cwbudde/algo-redshift/dsp/resample"
	"github.com/cwbudde/algo-redshift/dsp/window"
	"github.com/cwbudde/algo-redshift/spectrum"
)

// CorrelateLogLambda correlates observed and template on a shared uniform
// ln(lambda) axis using an FFT. A shift of k bins of width d corresponds to
// z = exp(k*d) - 1, so the lags of the result are not uniform in z; only
// lags inside [grid.Min, grid.Max] are kept and grid.Step is ignored.
//
// Both spectra are rebinned, mean-subtracted over their finite span and
// apodised with a Tukey taper before the transform. Scores are normalised by
// the product of the prepared signal norms. A lag is NaN when the shifted
// template range covers fewer finite observed samples than the minimum
// overlap requires.
func CorrelateLogLambda(observed, template *spectrum.Spectrum, grid LagGrid, opts ...Option) (*Result, error) {
	if observed == nil || template == nil || observed.Len() < 2 || template.Len() < 2 {
		return nil, ErrTooFewSamples
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}

	cfg := applyOptions(opts)
	template = template.ToUnit(observed.Unit())

	ow := observed.Wavelength()
	obsRange, tplRange := observed.Range(), template.Range()
	if !(obsRange.Low > 0) || !(tplRange.Low > 0) {
		return nil, fmt.Errorf("%w: ln(lambda) needs positive wavelengths", ErrInvalidGrid)
	}

	step := logStep(ow, cfg.logBins)
	lo := math.Min(obsRange.Low, tplRange.Low)
	hi := math.Max(obsRange.High, tplRange.High)
	n := int(math.Ceil(math.Log(hi/lo)/step)) + 1

	axis, err := resample.LogLambdaGrid(lo, hi, n)
	if err != nil {
		return nil, err
	}
	step = math.Log(hi/lo) / float64(n-1)

	ro, err := resample.Linear{}.Resample(observed, axis)
	if err != nil {
		return nil, err
	}

	rt, err := resample.Linear{}.Resample(template, axis)
	if err != nil {
		return nil, err
	}

	o := prepare(ro.Flux(), cfg.taper)
	t := prepare(rt.Flux(), cfg.taper)

	denom := norm(o) * norm(t)
	if denom == 0 {
		return nil, ErrNoOverlap
	}

	corr, err := conv.CorrelateFFT(o, t)
	if err != nil {
		return nil, err
	}

	cov := newCoverage(ow, observed.Flux())
	need := minCount(cfg.minOverlap, cov.total())

	var lags, scores []float64
	for idx, c := range corr {
		z := math.Exp(float64(conv.LagFromIndex(idx, len(t)))*step) - 1
		if !grid.contains(z) {
			continue
		}

		lags = append(lags, z)
		if cov.count(tplRange.Low*(1+z), tplRange.High*(1+z)) < need {
			scores = append(scores, math.NaN())
			continue
		}
		scores = append(scores, c/denom)
	}

	if len(lags) == 0 {
		return nil, fmt.Errorf("%w: grid [%g, %g] holds no ln(lambda) lag", ErrNoOverlap, grid.Min, grid.Max)
	}

	return newResult(lags, scores)
}

// logStep returns the ln(lambda) bin width: either the span divided into
// bins-1 steps or the median step of the observed axis.
func logStep(wl []float64, bins int) float64 {
	if bins >= 2 {
		return math.Log(wl[len(wl)-1]/wl[0]) / float64(bins-1)
	}

	steps := make([]float64, len(wl)-1)
	for i := range steps {
		steps[i] = math.Log(wl[i+1] / wl[i])
	}
	sort.Float64s(steps)

	mid := len(steps) / 2
	if len(steps)%2 == 0 {
		return 0.5 * (steps[mid-1] + steps[mid])
	}

	return steps[mid]
}

// prepare zeroes non-finite samples, subtracts the mean of the finite span
// and applies a Tukey taper across that span.
func prepare(flux []float64, taper float64) []float64 {
	out := make([]float64, len(flux))

	first, last := -1, -1
	var sum float64
	n := 0
	for i, v := range flux {
		if !finite(v) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		sum += v
		n++
	}

	if n == 0 {
		return out
	}

	mean := sum / float64(n)
	for i := first; i <= last; i++ {
		if finite(flux[i]) {
			out[i] = flux[i] - mean
		}
	}

	window.Apply(out[first:last+1], taper)

	return out
}

func norm(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}

	return math.Sqrt(s)
}

// coverage counts finite samples inside wavelength intervals.
type coverage struct {
	wl     []float64
	prefix []int
}

func newCoverage(wl, flux []float64) coverage {
	prefix := make([]int, len(wl)+1)
	for i, v := range flux {
		prefix[i+1] = prefix[i]
		if finite(v) {
			prefix[i+1]++
		}
	}

	return coverage{wl: wl, prefix: prefix}
}

func (c coverage) total() int {
	return c.prefix[len(c.prefix)-1]
}

// count returns the number of finite samples with lo <= wavelength <= hi.
func (c coverage) count(lo, hi float64) int {
	i := sort.SearchFloat64s(c.wl, lo)
	j := sort.Search(len(c.wl), func(k int) bool { return c.wl[k] > hi })
	if j <= i {
		return 0
	}

	return c.prefix[j] - c.prefix[i]
}
