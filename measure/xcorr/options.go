package xcorr

// DefaultMinOverlap is the default fraction of finite observed samples the
// shifted template must cover for a lag to be scored.
const DefaultMinOverlap = 0.25

const (
	defaultTaper = 0.1
	minSamples   = 3
)

type config struct {
	minOverlap float64
	taper      float64
	logBins    int
}

// Option configures a correlation.
type Option func(*config)

func defaultConfig() config {
	return config{
		minOverlap: DefaultMinOverlap,
		taper:      defaultTaper,
	}
}

// WithMinOverlap sets the minimum covered fraction in [0, 1].
func WithMinOverlap(f float64) Option {
	return func(c *config) {
		if f >= 0 && f <= 1 {
			c.minOverlap = f
		}
	}
}

// WithTaper sets the Tukey taper fraction used by [CorrelateLogLambda].
func WithTaper(alpha float64) Option {
	return func(c *config) {
		if alpha >= 0 && alpha <= 1 {
			c.taper = alpha
		}
	}
}

// WithLogBins fixes the number of ln(lambda) bins spanning the observed
// spectrum in [CorrelateLogLambda]. Zero derives the bin width from the
// median observed sampling.
func WithLogBins(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.logBins = n
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
