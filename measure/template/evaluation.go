package template

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-redshift/spectrum"
)

// SkipReason classifies why a pair was not evaluated.
type SkipReason int

const (
	NotSkipped SkipReason = iota
	SkipInvalidRedshift
	SkipNoOverlap
	SkipResample
	SkipTooFewSamples
	SkipZeroPower
)

// String returns a short label suitable for logs and metric labels.
func (r SkipReason) String() string {
	switch r {
	case NotSkipped:
		return "ok"
	case SkipInvalidRedshift:
		return "invalid_redshift"
	case SkipNoOverlap:
		return "no_overlap"
	case SkipResample:
		return "resample"
	case SkipTooFewSamples:
		return "too_few_samples"
	case SkipZeroPower:
		return "zero_power"
	default:
		return fmt.Sprintf("SkipReason(%d)", int(r))
	}
}

// Evaluation is the outcome of one (template, redshift) pair.
type Evaluation struct {
	TemplateIndex int
	Template      string
	Redshift      float64

	// ChiSquared is the reduced chi-squared chi2/(Samples-1); NaN when
	// skipped.
	ChiSquared float64
	Amplitude  float64
	Samples    int

	Skip SkipReason
	Err  error
}

// Skipped reports whether the pair was not evaluated.
func (e Evaluation) Skipped() bool {
	return e.Skip != NotSkipped
}

func skipped(e Evaluation, reason SkipReason, err error) Evaluation {
	e.Skip = reason
	e.Err = err
	e.ChiSquared = math.NaN()
	e.Amplitude = math.NaN()

	return e
}

// evaluate fits tpl shifted to z against observed. It also returns the
// resampled (unscaled) template so the winner can be reconstructed.
func evaluate(observed *spectrum.Spectrum, tpl Template, idx int, z float64, need int, cfg *config) (Evaluation, *spectrum.Spectrum) {
	ev := Evaluation{TemplateIndex: idx, Template: tpl.Name, Redshift: z}

	shifted, err := tpl.Spectrum.ToUnit(observed.Unit()).Redshift(z)
	if err != nil {
		return skipped(ev, SkipInvalidRedshift, err), nil
	}

	if _, err := spectrum.Overlap(observed, shifted); err != nil {
		return skipped(ev, SkipNoOverlap, err), nil
	}

	model, err := cfg.resampler.Resample(shifted, observed.Wavelength())
	if err != nil {
		return skipped(ev, SkipResample, err), nil
	}

	of := observed.Flux()
	sigma := observed.Uncertainty()
	tf := model.Flux()

	var swot, swtt float64
	n := 0
	for i, o := range of {
		t := tf[i]
		if !finite(o) || !finite(t) {
			continue
		}

		w := 1.0
		if sigma != nil {
			if !(sigma[i] > 0) || math.IsInf(sigma[i], 0) {
				continue
			}
			w = 1 / (sigma[i] * sigma[i])
		}

		swot += w * o * t
		swtt += w * t * t
		n++
	}

	if n < need {
		return skipped(ev, SkipTooFewSamples, fmt.Errorf("%d usable samples, need %d", n, need)), nil
	}

	if swtt == 0 {
		return skipped(ev, SkipZeroPower, errors.New("template has no power over the overlap")), nil
	}

	a := swot / swtt

	var chi2 float64
	for i, o := range of {
		t := tf[i]
		if !finite(o) || !finite(t) {
			continue
		}

		w := 1.0
		if sigma != nil {
			if !(sigma[i] > 0) || math.IsInf(sigma[i], 0) {
				continue
			}
			w = 1 / (sigma[i] * sigma[i])
		}

		r := o - a*t
		chi2 += w * r * r
	}

	ev.Amplitude = a
	ev.ChiSquared = chi2 / float64(n-1)
	ev.Samples = n

	return ev, model
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
