package template

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-redshift/spectrum"
)

// Result is the outcome of a template sweep.
type Result struct {
	// Best is the winning template shifted, resampled onto the observed
	// wavelengths and scaled by Amplitude.
	Best          *spectrum.Spectrum
	Template      string
	TemplateIndex int
	Redshift      float64
	ChiSquared    float64
	Amplitude     float64
	Samples       int

	// Evaluations holds every pair in (template, redshift) order.
	Evaluations []Evaluation
	Skipped     int
}

// Curve returns the trial redshifts and reduced chi-squared values of the
// template at index i. Skipped pairs are NaN.
func (r *Result) Curve(i int) (zs, chi2 []float64) {
	for _, e := range r.Evaluations {
		if e.TemplateIndex != i {
			continue
		}
		zs = append(zs, e.Redshift)
		chi2 = append(chi2, e.ChiSquared)
	}

	return zs, chi2
}

// Match evaluates every template of lib at every trial redshift against
// observed and returns the pair with the lowest reduced chi-squared. Ties
// resolve to the lowest (template, redshift) index.
//
// Cancelling ctx aborts the sweep and returns ctx.Err().
func Match(ctx context.Context, observed *spectrum.Spectrum, lib *Library, opts ...Option) (*Result, error) {
	if observed == nil || observed.Len() < 2 {
		return nil, ErrTooFewSamples
	}

	if lib.Len() == 0 {
		return nil, ErrEmptyLibrary
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	need := int(math.Ceil(cfg.minOverlap * float64(observed.ValidCount())))
	if need < minSamples {
		need = minSamples
	}

	nz := len(cfg.redshifts)
	evals := make([]Evaluation, lib.Len()*nz)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	for slot := range evals {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			ti, zi := slot/nz, slot%nz
			ev, _ := evaluate(observed, lib.At(ti), ti, cfg.redshifts[zi], need, &cfg)
			evals[slot] = ev

			if cfg.observer != nil {
				cfg.observer(ev)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Evaluations: evals, TemplateIndex: -1}
	best := -1
	for i, ev := range evals {
		if ev.Skipped() {
			res.Skipped++
			continue
		}

		if best < 0 || ev.ChiSquared < evals[best].ChiSquared {
			best = i
		}
	}

	if best < 0 {
		return res, fmt.Errorf("%w: %d pairs", ErrNoValidPair, len(evals))
	}

	win := evals[best]
	_, model := evaluate(observed, lib.At(win.TemplateIndex), win.TemplateIndex, win.Redshift, need, &cfg)

	res.Best = model.Scale(win.Amplitude)
	res.Template = win.Template
	res.TemplateIndex = win.TemplateIndex
	res.Redshift = win.Redshift
	res.ChiSquared = win.ChiSquared
	res.Amplitude = win.Amplitude
	res.Samples = win.Samples

	return res, nil
}
