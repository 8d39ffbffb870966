package template

import (
	"runtime"

	"github.com/cwbudde/algo-redshift/dsp/resample"
)

// DefaultMinOverlap is the default fraction of finite observed samples a
// pair must use to be evaluated.
const DefaultMinOverlap = 0.25

const minSamples = 3

type config struct {
	redshifts  []float64
	resampler  resample.Resampler
	workers    int
	minOverlap float64
	observer   func(Evaluation)
}

// Option configures [Match].
type Option func(*config)

func defaultConfig() config {
	return config{
		redshifts:  []float64{0},
		resampler:  resample.FluxConserving{},
		workers:    runtime.GOMAXPROCS(0),
		minOverlap: DefaultMinOverlap,
	}
}

// WithRedshift evaluates every template at a single redshift.
func WithRedshift(z float64) Option {
	return func(c *config) {
		c.redshifts = []float64{z}
	}
}

// WithRedshifts evaluates every template at each of zs. An empty slice
// keeps the default of z = 0.
func WithRedshifts(zs []float64) Option {
	return func(c *config) {
		if len(zs) > 0 {
			c.redshifts = append([]float64(nil), zs...)
		}
	}
}

// WithResampler sets the resampling strategy. The default is
// [resample.FluxConserving].
func WithResampler(r resample.Resampler) Option {
	return func(c *config) {
		if r != nil {
			c.resampler = r
		}
	}
}

// WithWorkers bounds the number of pairs evaluated concurrently.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMinOverlap sets the minimum fraction in [0, 1] of finite observed
// samples a pair must use.
func WithMinOverlap(f float64) Option {
	return func(c *config) {
		if f >= 0 && f <= 1 {
			c.minOverlap = f
		}
	}
}

// WithObserver registers fn to be called once per evaluated pair. fn is
// called from worker goroutines and must be safe for concurrent use.
func WithObserver(fn func(Evaluation)) Option {
	return func(c *config) {
		c.observer = fn
	}
}
