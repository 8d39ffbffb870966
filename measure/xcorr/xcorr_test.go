package xcorr

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-redshift/internal/testutil"
	"github.com/cwbudde/algo-redshift/spectrum"
)

var restLines = []testutil.Line{
	{Center: 4000, Sigma: 5, Amplitude: 1},
	{Center: 4500, Sigma: 5, Amplitude: 0.6},
	{Center: 5000, Sigma: 5, Amplitude: 1.4},
	{Center: 5500, Sigma: 5, Amplitude: 0.8},
	{Center: 6000, Sigma: 5, Amplitude: 1.1},
	{Center: 6500, Sigma: 5, Amplitude: 0.5},
}

func lineSpectrum(t *testing.T, lo, hi float64, n int, z float64, opts ...spectrum.Option) *spectrum.Spectrum {
	t.Helper()
	wl := testutil.Axis(lo, hi, n)
	s, err := spectrum.New(wl, testutil.GaussianLines(wl, restLines, z), nil, opts...)
	if err != nil {
		t.Fatalf("spectrum.New: %v", err)
	}
	return s
}

func TestLagGridValues(t *testing.T) {
	tests := []struct {
		name string
		grid LagGrid
		n    int
		last float64
	}{
		{name: "default", grid: DefaultGrid(), n: 1001, last: 1},
		{name: "single", grid: LagGrid{Min: 0.2, Max: 0.2, Step: 0.1}, n: 1, last: 0.2},
		{name: "ragged", grid: LagGrid{Min: 0, Max: 0.33, Step: 0.1}, n: 4, last: 0.3},
		{name: "half step slack", grid: LagGrid{Min: 0, Max: 0.36, Step: 0.1}, n: 5, last: 0.4},
		{name: "blueshift", grid: LagGrid{Min: -0.01, Max: 0.01, Step: 0.01}, n: 3, last: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.grid.Values()
			if err != nil {
				t.Fatalf("Values: %v", err)
			}
			if len(v) != tt.n {
				t.Fatalf("len = %d, want %d", len(v), tt.n)
			}
			testutil.RequireNearlyEqual(t, "last", v[len(v)-1], tt.last, 1e-12)
		})
	}
}

func TestLagGridInvalid(t *testing.T) {
	for _, g := range []LagGrid{
		{Min: 0, Max: 1, Step: 0},
		{Min: 0, Max: 1, Step: -0.1},
		{Min: 1, Max: 0, Step: 0.1},
		{Min: -1, Max: 0, Step: 0.1},
		{Min: 0, Max: math.Inf(1), Step: 0.1},
		{Min: 0, Max: 1, Step: 1e-20},
		{Min: 0, Max: 1, Step: 1e-10},
	} {
		if _, err := g.Values(); !errors.Is(err, ErrInvalidGrid) {
			t.Fatalf("%+v: expected ErrInvalidGrid, got %v", g, err)
		}
	}
}

func TestCorrelateSelfPeaksAtZero(t *testing.T) {
	s := lineSpectrum(t, 3800, 6800, 3001, 0)

	res, err := Correlate(s, s, LagGrid{Min: 0, Max: 0.05, Step: 0.001})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	if res.PeakIndex != 0 || res.Redshift != 0 {
		t.Fatalf("peak at %d (z=%g), want 0", res.PeakIndex, res.Redshift)
	}
	testutil.RequireNearlyEqual(t, "peak", res.Peak, 1, 1e-12)
	testutil.RequireNearlyEqual(t, "refined", res.Refined, 0, 0)

	for i, v := range res.Scores {
		if res.Valid(i) && (v < -1-1e-12 || v > 1+1e-12) {
			t.Fatalf("score[%d] = %g outside [-1, 1]", i, v)
		}
	}
}

func TestCorrelateRecoversRedshift(t *testing.T) {
	const z0 = 0.1
	template := lineSpectrum(t, 3000, 7500, 4501, 0)
	observed := lineSpectrum(t, 4000, 8000, 4001, z0)

	res, err := Correlate(observed, template, LagGrid{Min: 0, Max: 0.3, Step: 0.001})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	if res.Len() != 301 {
		t.Fatalf("len = %d, want 301", res.Len())
	}
	testutil.RequireNearlyEqual(t, "redshift", res.Redshift, z0, 1e-9)
	testutil.RequireNearlyEqual(t, "refined", res.Refined, z0, 5e-4)
	if res.Peak < 0.99 {
		t.Fatalf("peak = %g, want close to 1", res.Peak)
	}
}

func TestCorrelateExcludesLowOverlap(t *testing.T) {
	// Observed 1.0-1.7 um, template 0.3-1.1 um rest frame. With a 0.75
	// minimum overlap the shifted template upper edge 1.1(1+z) must reach
	// 1.525 um, i.e. z >= ~0.386.
	obsWl := testutil.Axis(1.0, 1.7, 500)
	observed, err := spectrum.New(obsWl, testutil.Add(testutil.DC(1, 500), testutil.DeterministicNoise(1, 0.5, 500)), nil,
		spectrum.WithUnit(spectrum.Micron))
	if err != nil {
		t.Fatal(err)
	}

	tplWl := testutil.Axis(0.3, 1.1, 400)
	template, err := spectrum.New(tplWl, testutil.Add(testutil.DC(1, 400), testutil.DeterministicNoise(2, 0.5, 400)), nil,
		spectrum.WithUnit(spectrum.Micron))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Correlate(observed, template, LagGrid{Min: 0, Max: 1, Step: 0.05}, WithMinOverlap(0.75))
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}

	for i, z := range res.Lags {
		switch {
		case z < 0.36 && res.Valid(i):
			t.Fatalf("lag %g scored %g, want excluded", z, res.Scores[i])
		case z > 0.39 && !res.Valid(i):
			t.Fatalf("lag %g excluded, want scored", z)
		}
	}

	if res.Redshift < 0.39 {
		t.Fatalf("peak at excluded lag %g", res.Redshift)
	}
	if res.ValidCount() != 13 {
		t.Fatalf("valid lags = %d, want 13", res.ValidCount())
	}
}

func TestCorrelatePartialOverlapPenalised(t *testing.T) {
	observed := lineSpectrum(t, 3800, 6800, 3001, 0)
	half := lineSpectrum(t, 3800, 5300, 1501, 0)

	full, err := Correlate(observed, observed, LagGrid{Min: 0, Max: 0, Step: 0.001})
	if err != nil {
		t.Fatal(err)
	}
	part, err := Correlate(observed, half, LagGrid{Min: 0, Max: 0, Step: 0.001})
	if err != nil {
		t.Fatal(err)
	}

	if !(part.Peak < full.Peak) {
		t.Fatalf("partial %g not below full %g", part.Peak, full.Peak)
	}
}

func TestCorrelateNoOverlap(t *testing.T) {
	observed := lineSpectrum(t, 4000, 8000, 401, 0)
	template := lineSpectrum(t, 100, 200, 101, 0)

	_, err := Correlate(observed, template, LagGrid{Min: 0, Max: 0.5, Step: 0.01})
	if !errors.Is(err, ErrNoOverlap) {
		t.Fatalf("expected ErrNoOverlap, got %v", err)
	}
}

func TestCorrelateConvertsUnits(t *testing.T) {
	const z0 = 0.05
	observed := lineSpectrum(t, 4000, 8000, 4001, z0)

	wl := testutil.Axis(300, 750, 4501) // nm
	ang := make([]float64, len(wl))
	for i, w := range wl {
		ang[i] = w * 10
	}
	template, err := spectrum.New(wl, testutil.GaussianLines(ang, restLines, 0), nil, spectrum.WithUnit(spectrum.Nanometer))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Correlate(observed, template, LagGrid{Min: 0, Max: 0.1, Step: 0.001})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	testutil.RequireNearlyEqual(t, "redshift", res.Redshift, z0, 1e-9)
}

func TestCorrelateIgnoresNaNFlux(t *testing.T) {
	const z0 = 0.1
	template := lineSpectrum(t, 3000, 7500, 4501, 0)

	wl := testutil.Axis(4000, 8000, 4001)
	fx := testutil.GaussianLines(wl, restLines, z0)
	for i := 100; i < 200; i++ {
		fx[i] = math.NaN()
	}
	observed, err := spectrum.New(wl, fx, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Correlate(observed, template, LagGrid{Min: 0, Max: 0.3, Step: 0.001})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	testutil.RequireNearlyEqual(t, "redshift", res.Redshift, z0, 1e-9)
}

func TestCorrelateLogLambdaRecoversRedshift(t *testing.T) {
	const z0 = 0.1
	template := lineSpectrum(t, 3000, 7500, 4501, 0)
	observed := lineSpectrum(t, 4000, 8000, 4001, z0)

	res, err := CorrelateLogLambda(observed, template, LagGrid{Min: 0, Max: 0.5, Step: 0.001})
	if err != nil {
		t.Fatalf("CorrelateLogLambda: %v", err)
	}

	for i := 1; i < len(res.Lags); i++ {
		if !(res.Lags[i] > res.Lags[i-1]) {
			t.Fatalf("lags not ascending at %d", i)
		}
	}
	if res.Lags[0] < 0 || res.Lags[len(res.Lags)-1] > 0.5 {
		t.Fatalf("lags [%g, %g] outside grid", res.Lags[0], res.Lags[len(res.Lags)-1])
	}

	testutil.RequireNearlyEqual(t, "redshift", res.Redshift, z0, 5e-4)
	testutil.RequireNearlyEqual(t, "refined", res.Refined, z0, 3e-4)
}

func TestCorrelateLogLambdaScansGridRange(t *testing.T) {
	template := lineSpectrum(t, 3000, 7500, 4501, 0)
	observed := lineSpectrum(t, 4000, 8000, 4001, 0.1)

	// The last grid point is 0.4, half a step past Max.
	grid := LagGrid{Min: 0, Max: 0.36, Step: 0.1}
	zs, err := grid.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	last := zs[len(zs)-1]

	res, err := CorrelateLogLambda(observed, template, grid)
	if err != nil {
		t.Fatalf("CorrelateLogLambda: %v", err)
	}

	top := res.Lags[len(res.Lags)-1]
	if top <= grid.Max || top > last {
		t.Fatalf("highest lag %g, want in (%g, %g]", top, grid.Max, last)
	}
	if res.Lags[0] < grid.Min {
		t.Fatalf("lowest lag %g below %g", res.Lags[0], grid.Min)
	}
}

func TestCorrelateLogLambdaBins(t *testing.T) {
	const z0 = 0.2
	template := lineSpectrum(t, 3000, 7500, 4501, 0)
	observed := lineSpectrum(t, 4000, 8000, 4001, z0)

	res, err := CorrelateLogLambda(observed, template, LagGrid{Min: 0.1, Max: 0.3, Step: 0.001},
		WithLogBins(2048), WithTaper(0.2))
	if err != nil {
		t.Fatalf("CorrelateLogLambda: %v", err)
	}

	// ln(2)/2047 per bin is about 3.4e-4 in ln(lambda).
	testutil.RequireNearlyEqual(t, "refined", res.Refined, z0, 1e-3)
}

func TestCorrelateLogLambdaRejectsBadInput(t *testing.T) {
	s := lineSpectrum(t, 4000, 8000, 101, 0)

	if _, err := CorrelateLogLambda(s, s, LagGrid{Min: 0, Max: 1}); !errors.Is(err, ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid, got %v", err)
	}
	if _, err := CorrelateLogLambda(nil, s, DefaultGrid()); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}
