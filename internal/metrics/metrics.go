// Package metrics defines the Prometheus collectors of a redshift run and
// an optional HTTP exposition endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors.
type Metrics struct {
	FetchesTotal      *prometheus.CounterVec
	TemplatePairs     *prometheus.CounterVec
	SweepDuration     prometheus.Histogram
	CorrelationLags   *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	RedshiftEstimates *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is useful in tests and one-shot commands.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redshift_fetches_total",
				Help: "Resource fetches by source (disk, blob, network) and status.",
			},
			[]string{"source", "status"},
		),
		TemplatePairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redshift_template_pairs_total",
				Help: "Evaluated (template, redshift) pairs by outcome.",
			},
			[]string{"outcome"},
		),
		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "redshift_template_sweep_duration_seconds",
				Help:    "Wall time of a template sweep.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
			},
		),
		CorrelationLags: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redshift_correlation_lags_total",
				Help: "Cross-correlation lags by validity (scored, excluded).",
			},
			[]string{"validity"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "redshift_stage_duration_seconds",
				Help:    "Wall time per workflow stage.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
			},
			[]string{"stage"},
		),
		RedshiftEstimates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "redshift_estimate",
				Help: "Latest redshift estimate by method (xcorr, template).",
			},
			[]string{"method"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.FetchesTotal,
			m.TemplatePairs,
			m.SweepDuration,
			m.CorrelationLags,
			m.StageDuration,
			m.RedshiftEstimates,
		)
	}

	return m
}

// ObserveStage records the duration of a stage that started at start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}

	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Server exposes a gatherer over HTTP at /metrics.
type Server struct {
	srv *http.Server
}

// NewServer returns a server for addr serving g.
func NewServer(addr string, g prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background. Errors other than a clean shutdown are
// sent on the returned channel.
func (s *Server) Start() <-chan error {
	errc := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	return errc
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
