package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwbudde/algo-redshift/dsp/resample"
	"github.com/cwbudde/algo-redshift/internal/config"
	"github.com/cwbudde/algo-redshift/internal/fetch"
	"github.com/cwbudde/algo-redshift/internal/logging"
	"github.com/cwbudde/algo-redshift/internal/metrics"
	"github.com/cwbudde/algo-redshift/measure/continuum"
	"github.com/cwbudde/algo-redshift/measure/template"
	"github.com/cwbudde/algo-redshift/measure/xcorr"
	"github.com/cwbudde/algo-redshift/specio"
	"github.com/cwbudde/algo-redshift/spectrum"
	"github.com/cwbudde/algo-redshift/stats/flux"
)

// ErrNoObserved is returned when the configuration names no observed
// spectrum.
var ErrNoObserved = errors.New("workflow: no observed spectrum configured")

// Runner executes runs. Its zero value is not usable; use [New].
type Runner struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher
	sink    Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithFetcher sets the fetcher used for remote inputs.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithSink sets where intermediate spectra go. The default discards them
// unless the configuration names an output directory.
func WithSink(s Sink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithMetrics records stage timings and outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// New returns a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		sink:   NopSink{},
		logger: logging.WithComponent("workflow"),
	}
	if cfg.Output.Dir != "" {
		r.sink = CSVSink{Dir: cfg.Output.Dir}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.fetcher == nil {
		r.fetcher = NewFetcher(cfg, nil, r.metrics)
	}

	return r
}

// NewFetcher builds a fetcher from the data section of cfg. blob may be nil.
func NewFetcher(cfg *config.Config, blob fetch.BlobCache, m *metrics.Metrics) *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithCache(cfg.Data.Cache),
		fetch.WithLockTimeout(cfg.Data.LockTimeout),
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Data.HTTPTimeout}),
		fetch.WithMetrics(m),
	}
	if blob != nil {
		opts = append(opts, fetch.WithBlobCache(blob, cfg.Redis.TTL))
	}

	return fetch.New(cfg.Data.CacheDir, opts...)
}

// NewBlobCache connects the Redis blob cache when enabled. It returns nil
// and a no-op closer otherwise.
func NewBlobCache(ctx context.Context, cfg *config.Config) (fetch.BlobCache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	rc, err := fetch.NewRedisCache(ctx, fetch.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, func() {}, err
	}

	return rc, func() { _ = rc.Close() }, nil
}

// Run executes every enabled stage and returns the report. Input fetch
// failures stop the run before any analysis.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if r.cfg.Data.Observed == "" {
		return nil, ErrNoObserved
	}

	report := &Report{Observed: r.cfg.Data.Observed}

	observed, err := r.load(ctx, r.cfg.Data.Observed)
	if err != nil {
		return nil, fmt.Errorf("loading observed spectrum: %w", err)
	}

	var single *spectrum.Spectrum
	if r.cfg.Data.Template != "" {
		if single, err = r.load(ctx, r.cfg.Data.Template); err != nil {
			return nil, fmt.Errorf("loading template: %w", err)
		}
	}

	var lib *template.Library
	if r.cfg.Template.Enabled {
		if lib, err = r.library(ctx, single); err != nil {
			return nil, err
		}
	}

	report.Samples = observed.Len()
	report.Flux = flux.Calculate(observed.Flux())
	r.show("observed", observed)

	if r.cfg.Continuum.Enabled {
		start := time.Now()
		if observed, err = r.removeContinuum(observed, report); err != nil {
			return nil, err
		}
		if single, err = r.removeContinuumFull(single); err != nil {
			return nil, fmt.Errorf("template continuum: %w", err)
		}
		if lib, err = r.removeLibraryContinuum(lib); err != nil {
			return nil, err
		}
		r.stage(report, "continuum", start)
		r.show("observed_continuum_subtracted", observed)
	}

	if r.cfg.Xcorr.Enabled && single != nil {
		start := time.Now()
		if err := r.correlate(observed, single, report); err != nil {
			return nil, err
		}
		r.stage(report, "xcorr", start)
	}

	if lib != nil {
		start := time.Now()
		if err := r.match(ctx, observed, lib, report); err != nil {
			return nil, err
		}
		r.stage(report, "template", start)
	}

	return report, nil
}

func (r *Runner) load(ctx context.Context, loc string) (*spectrum.Spectrum, error) {
	path, err := r.fetcher.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}

	return specio.ReadFile(path)
}

// library builds the template library from the configured manifest, or
// from the single template when no manifest is set.
func (r *Runner) library(ctx context.Context, single *spectrum.Spectrum) (*template.Library, error) {
	if r.cfg.Data.Library == "" {
		if single == nil {
			return nil, nil
		}
		return template.NewLibrary(template.Template{Name: "template", Spectrum: single})
	}

	path, err := r.fetcher.Resolve(ctx, r.cfg.Data.Library)
	if err != nil {
		return nil, fmt.Errorf("loading library manifest: %w", err)
	}

	m, err := specio.ReadManifest(path)
	if err != nil {
		return nil, err
	}

	lib := &template.Library{}
	for _, e := range m.Templates {
		loc := e.File
		if loc == "" {
			loc = e.URL
		}

		p, err := r.fetcher.Resolve(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("loading template %q: %w", e.Name, err)
		}

		s, err := specio.ReadFile(p, e.Options()...)
		if err != nil {
			return nil, fmt.Errorf("loading template %q: %w", e.Name, err)
		}

		if err := lib.Add(e.Name, s); err != nil {
			return nil, err
		}
	}

	r.logger.Info("template library loaded", "templates", lib.Len(), "manifest", r.cfg.Data.Library)

	return lib, nil
}

func (r *Runner) continuumOptions() []continuum.Option {
	c := r.cfg.Continuum
	family, _ := continuum.ParseFamily(c.Family)

	return []continuum.Option{
		continuum.WithFamily(family),
		continuum.WithDegree(c.Degree),
		continuum.WithWeights(c.Weighted),
		continuum.WithSigmaClip(c.ClipSigma, c.ClipRounds),
	}
}

func (r *Runner) removeContinuum(s *spectrum.Spectrum, report *Report) (*spectrum.Spectrum, error) {
	regions := r.cfg.Continuum.Regions
	if len(regions) == 0 {
		regions = []spectrum.Region{s.Range()}
		r.logger.Info("no continuum regions configured, fitting the full range", "range", s.Range().String())
	}

	out, m, err := continuum.Subtract(s, regions, r.continuumOptions()...)
	if err != nil {
		return nil, fmt.Errorf("continuum: %w", err)
	}

	report.Continuum = &ContinuumReport{
		Family:   m.Family.String(),
		Degree:   m.Degree,
		Coeffs:   m.Coeffs,
		Points:   m.Points,
		Rejected: m.Rejected,
	}
	r.logger.Debug("continuum removed", "family", m.Family.String(), "points", m.Points, "rejected", m.Rejected)

	return out, nil
}

// removeContinuumFull subtracts a continuum fitted over the whole range of
// a template.
func (r *Runner) removeContinuumFull(s *spectrum.Spectrum) (*spectrum.Spectrum, error) {
	if s == nil {
		return nil, nil
	}

	out, _, err := continuum.Subtract(s, []spectrum.Region{s.Range()}, r.continuumOptions()...)

	return out, err
}

func (r *Runner) removeLibraryContinuum(lib *template.Library) (*template.Library, error) {
	if lib == nil {
		return nil, nil
	}

	out := &template.Library{}
	for i := 0; i < lib.Len(); i++ {
		t := lib.At(i)
		s, err := r.removeContinuumFull(t.Spectrum)
		if err != nil {
			return nil, fmt.Errorf("template %q continuum: %w", t.Name, err)
		}
		if err := out.Add(t.Name, s); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (r *Runner) correlate(observed, tpl *spectrum.Spectrum, report *Report) error {
	xc := r.cfg.Xcorr
	opts := []xcorr.Option{xcorr.WithMinOverlap(xc.MinOverlap)}

	var (
		res *xcorr.Result
		err error
	)
	switch xc.Method {
	case "fft":
		res, err = xcorr.CorrelateLogLambda(observed, tpl, xc.Grid(), opts...)
	default:
		res, err = xcorr.Correlate(observed, tpl, xc.Grid(), opts...)
	}
	if err != nil {
		return fmt.Errorf("xcorr: %w", err)
	}

	valid := res.ValidCount()
	report.Xcorr = &XcorrReport{
		Template:  r.cfg.Data.Template,
		Method:    xc.Method,
		Redshift:  res.Redshift,
		Refined:   res.Refined,
		Peak:      res.Peak,
		Lags:      res.Len(),
		ValidLags: valid,
	}

	if r.metrics != nil {
		r.metrics.CorrelationLags.WithLabelValues("scored").Add(float64(valid))
		r.metrics.CorrelationLags.WithLabelValues("excluded").Add(float64(res.Len() - valid))
		r.metrics.RedshiftEstimates.WithLabelValues("xcorr").Set(res.Refined)
	}

	r.logger.Info("cross-correlation", "method", xc.Method, "z", res.Redshift, "refined", res.Refined,
		"peak", res.Peak, "valid_lags", valid, "lags", res.Len())

	return nil
}

func (r *Runner) match(ctx context.Context, observed *spectrum.Spectrum, lib *template.Library, report *Report) error {
	tc := r.cfg.Template
	zs, err := tc.Trials()
	if err != nil {
		return err
	}
	method, _ := resample.ParseMethod(tc.Resampler)

	opts := []template.Option{
		template.WithRedshifts(zs),
		template.WithResampler(resample.New(method)),
		template.WithWorkers(tc.Workers),
		template.WithMinOverlap(tc.MinOverlap),
	}
	if r.metrics != nil {
		opts = append(opts, template.WithObserver(func(ev template.Evaluation) {
			r.metrics.TemplatePairs.WithLabelValues(ev.Skip.String()).Inc()
		}))
	}

	start := time.Now()
	res, err := template.Match(ctx, observed, lib, opts...)
	if r.metrics != nil {
		r.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("template match: %w", err)
	}

	residual := make([]float64, observed.Len())
	of, bf := observed.Flux(), res.Best.Flux()
	for i := range residual {
		residual[i] = of[i] - bf[i]
	}

	report.Match = &MatchReport{
		Template:    res.Template,
		Redshift:    res.Redshift,
		ChiSquared:  res.ChiSquared,
		Amplitude:   res.Amplitude,
		Samples:     res.Samples,
		Pairs:       len(res.Evaluations),
		Skipped:     res.Skipped,
		ResidualRMS: flux.RMS(residual),
	}

	if r.metrics != nil {
		r.metrics.RedshiftEstimates.WithLabelValues("template").Set(res.Redshift)
	}

	r.logger.Info("template match", "template", res.Template, "z", res.Redshift, "chi2", res.ChiSquared,
		"pairs", len(res.Evaluations), "skipped", res.Skipped)
	r.show("best_fit_"+res.Template, res.Best)

	return nil
}

func (r *Runner) stage(report *Report, name string, start time.Time) {
	report.Stages = append(report.Stages, StageTiming{Stage: name, Duration: time.Since(start)})
	r.metrics.ObserveStage(name, start)
}

func (r *Runner) show(label string, s *spectrum.Spectrum) {
	if err := r.sink.Show(label, s); err != nil {
		r.logger.Warn("sink failed", "label", label, "error", err)
	}
}
