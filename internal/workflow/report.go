package workflow

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-redshift/stats/flux"
)

// Report summarises a run.
type Report struct {
	Observed string     `json:"observed"`
	Samples  int        `json:"samples"`
	Flux     flux.Stats `json:"flux"`

	Continuum *ContinuumReport `json:"continuum,omitempty"`
	Xcorr     *XcorrReport     `json:"xcorr,omitempty"`
	Match     *MatchReport     `json:"match,omitempty"`

	Stages []StageTiming `json:"stages"`
}

// ContinuumReport describes the removed continuum.
type ContinuumReport struct {
	Family   string    `json:"family"`
	Degree   int       `json:"degree"`
	Coeffs   []float64 `json:"coeffs"`
	Points   int       `json:"points"`
	Rejected int       `json:"rejected"`
}

// XcorrReport holds the cross-correlation estimate.
type XcorrReport struct {
	Template  string  `json:"template"`
	Method    string  `json:"method"`
	Redshift  float64 `json:"redshift"`
	Refined   float64 `json:"refined"`
	Peak      float64 `json:"peak"`
	Lags      int     `json:"lags"`
	ValidLags int     `json:"validLags"`
}

// MatchReport holds the template-matching estimate.
type MatchReport struct {
	Template    string  `json:"template"`
	Redshift    float64 `json:"redshift"`
	ChiSquared  float64 `json:"chiSquared"`
	Amplitude   float64 `json:"amplitude"`
	Samples     int     `json:"samples"`
	Pairs       int     `json:"pairs"`
	Skipped     int     `json:"skipped"`
	ResidualRMS float64 `json:"residualRms"`
}

// StageTiming records the wall time of one stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// WriteText prints the report as aligned columns.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Observed\t%s\n", r.Observed)
	fmt.Fprintf(tw, "Samples\t%d (%d non-finite)\n", r.Samples, r.Flux.Skipped)
	fmt.Fprintf(tw, "Flux mean/std\t%.6g / %.6g\n", r.Flux.Mean, r.Flux.StdDev)

	if c := r.Continuum; c != nil {
		fmt.Fprintf(tw, "Continuum\t%s degree %d, %d points, %d rejected\n", c.Family, c.Degree, c.Points, c.Rejected)
	}

	if x := r.Xcorr; x != nil {
		fmt.Fprintf(tw, "Xcorr (%s)\tz=%.5f refined=%.5f peak=%.4f template=%s lags=%d/%d\n",
			x.Method, x.Redshift, x.Refined, x.Peak, x.Template, x.ValidLags, x.Lags)
	}

	if m := r.Match; m != nil {
		fmt.Fprintf(tw, "Template match\tz=%.5f chi2=%.6g amplitude=%.6g template=%s\n",
			m.Redshift, m.ChiSquared, m.Amplitude, m.Template)
		fmt.Fprintf(tw, "Pairs\t%d evaluated, %d skipped, residual rms %.6g\n", m.Pairs, m.Skipped, m.ResidualRMS)
	}

	for _, s := range r.Stages {
		fmt.Fprintf(tw, "Stage %s\t%s\n", s.Stage, s.Duration.Round(time.Microsecond))
	}

	return tw.Flush()
}
