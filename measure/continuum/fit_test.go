package continuum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-redshift/internal/testutil"
	"github.com/cwbudde/algo-redshift/spectrum"
)

var featureLines = []testutil.Line{
	{Center: 5200, Sigma: 4, Amplitude: 3},
	{Center: 5600, Sigma: 6, Amplitude: -1.5},
}

// line-free windows for featureLines on a 5000-6000 axis.
var lineFree = []spectrum.Region{
	{Low: 5000, High: 5120},
	{Low: 5300, High: 5500},
	{Low: 5700, High: 6000},
}

func mustSpectrum(t *testing.T, wl, fx, unc []float64) *spectrum.Spectrum {
	t.Helper()
	s, err := spectrum.New(wl, fx, unc)
	if err != nil {
		t.Fatalf("spectrum.New: %v", err)
	}
	return s
}

func TestZeroOrderOnPureFeatures(t *testing.T) {
	wl := testutil.Axis(5000, 6000, 1001)
	features := testutil.GaussianLines(wl, featureLines, 0)
	s := mustSpectrum(t, wl, features, nil)

	out, m, err := Subtract(s, lineFree, WithFamily(Polynomial), WithDegree(0))
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if m.Params() != 1 {
		t.Fatalf("params = %d, want 1", m.Params())
	}

	testutil.RequireSliceNearlyEqual(t, out.Flux(), features, 1e-9)
}

func TestFlatContinuumRemoved(t *testing.T) {
	wl := testutil.Axis(5000, 6000, 1001)
	features := testutil.GaussianLines(wl, featureLines, 0)
	s := mustSpectrum(t, wl, testutil.Add(features, testutil.DC(7.5, len(wl))), nil)

	out, m, err := Subtract(s, lineFree, WithFamily(Polynomial), WithDegree(0))
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}

	testutil.RequireNearlyEqual(t, "level", m.Eval(5500), 7.5, 1e-9)
	testutil.RequireSliceNearlyEqual(t, out.Flux(), features, 1e-9)
}

func TestFamiliesRecoverQuadratic(t *testing.T) {
	wl := testutil.Axis(5000, 6000, 1001)
	t0 := make([]float64, len(wl))
	for i, w := range wl {
		t0[i] = (w - 5500) / 500
	}
	cont := testutil.Polynomial(t0, 10, -2, 0.5)
	features := testutil.GaussianLines(wl, featureLines, 0)
	s := mustSpectrum(t, wl, testutil.Add(cont, features), nil)

	for _, f := range []Family{Polynomial, Chebyshev, Legendre} {
		t.Run(f.String(), func(t *testing.T) {
			out, _, err := Subtract(s, lineFree, WithFamily(f), WithDegree(2))
			if err != nil {
				t.Fatalf("Subtract: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, out.Flux(), features, 1e-8)
		})
	}
}

func TestLinearIgnoresDegree(t *testing.T) {
	wl := testutil.Axis(0, 10, 11)
	s := mustSpectrum(t, wl, testutil.Polynomial(wl, 1, 2), nil)

	m, err := Fit(s, []spectrum.Region{{Low: 0, High: 10}}, WithFamily(Linear), WithDegree(5))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Degree != 1 || m.Params() != 2 {
		t.Fatalf("degree=%d params=%d, want 1/2", m.Degree, m.Params())
	}
	testutil.RequireNearlyEqual(t, "eval(4)", m.Eval(4), 9, 1e-12)
}

func TestFitErrors(t *testing.T) {
	wl := testutil.Axis(0, 10, 11)
	s := mustSpectrum(t, wl, testutil.DC(1, len(wl)), nil)

	tests := []struct {
		name    string
		regions []spectrum.Region
		opts    []Option
		want    error
	}{
		{name: "no regions", want: ErrNoRegions},
		{name: "endpoint outside", regions: []spectrum.Region{{Low: -1, High: 3}}, want: ErrRegionOutOfRange},
		{name: "inverted", regions: []spectrum.Region{{Low: 3, High: 1}}, want: spectrum.ErrInvalidRegion},
		{
			name:    "too few points",
			regions: []spectrum.Region{{Low: 2, High: 3}},
			opts:    []Option{WithFamily(Polynomial), WithDegree(3)},
			want:    ErrDegenerateFit,
		},
		{name: "negative degree", regions: []spectrum.Region{{Low: 0, High: 10}}, opts: []Option{WithFamily(Chebyshev), WithDegree(-1)}, want: ErrInvalidDegree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(s, tt.regions, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSigmaClipRejectsOutliers(t *testing.T) {
	wl := testutil.Axis(0, 100, 101)
	fx := testutil.Add(testutil.DC(5, len(wl)), testutil.DeterministicNoise(11, 0.01, len(wl)))
	fx[30] = 50
	fx[70] = 30
	s := mustSpectrum(t, wl, fx, nil)
	all := []spectrum.Region{{Low: 0, High: 100}}

	plain, err := Fit(s, all, WithFamily(Polynomial), WithDegree(0))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	clipped, err := Fit(s, all, WithFamily(Polynomial), WithDegree(0), WithSigmaClip(3, 5))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if math.Abs(plain.Eval(50)-5) < 0.05 {
		t.Fatalf("unclipped fit unexpectedly robust: %v", plain.Eval(50))
	}
	testutil.RequireNearlyEqual(t, "clipped level", clipped.Eval(50), 5, 0.01)
	if clipped.Rejected < 2 {
		t.Fatalf("rejected = %d, want >= 2", clipped.Rejected)
	}
	if clipped.Points+clipped.Rejected != len(wl) {
		t.Fatalf("points %d + rejected %d != %d", clipped.Points, clipped.Rejected, len(wl))
	}
}

func TestWeightedFitIgnoresNoisySamples(t *testing.T) {
	wl := testutil.Axis(0, 10, 11)
	fx := testutil.DC(2, len(wl))
	unc := testutil.DC(0.1, len(wl))
	fx[5] = 100
	unc[5] = 1e6
	s := mustSpectrum(t, wl, fx, unc)

	m, err := Fit(s, []spectrum.Region{{Low: 0, High: 10}}, WithFamily(Polynomial), WithDegree(0), WithWeights(true))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	testutil.RequireNearlyEqual(t, "weighted level", m.Eval(5), 2, 1e-6)
}

func TestWeightedSigmaClipUsesNormalisedResiduals(t *testing.T) {
	wl := testutil.Axis(0, 100, 101)
	fx := testutil.DC(5, len(wl))
	unc := make([]float64, len(wl))
	precise := testutil.DeterministicNoise(5, 0.001, len(wl))
	for i := range wl {
		switch i % 4 {
		case 1:
			fx[i] += 0.3
			unc[i] = 1
		case 3:
			fx[i] -= 0.3
			unc[i] = 1
		default:
			fx[i] += precise[i]
			unc[i] = 0.01
		}
	}
	// 20 sigma off for a precise sample, yet well inside the raw scatter.
	fx[40] = 5.2
	s := mustSpectrum(t, wl, fx, unc)
	all := []spectrum.Region{{Low: 0, High: 100}}

	plain, err := Fit(s, all, WithFamily(Polynomial), WithDegree(0), WithSigmaClip(3, 5))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if plain.Rejected != 0 {
		t.Fatalf("unweighted clip rejected %d, want 0", plain.Rejected)
	}

	weighted, err := Fit(s, all, WithFamily(Polynomial), WithDegree(0), WithWeights(true), WithSigmaClip(3, 5))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if weighted.Rejected != 1 {
		t.Fatalf("weighted clip rejected %d, want 1", weighted.Rejected)
	}
	testutil.RequireNearlyEqual(t, "weighted level", weighted.Eval(50), 5, 1e-3)
}

func TestNormalize(t *testing.T) {
	wl := testutil.Axis(5000, 6000, 1001)
	features := testutil.GaussianLines(wl, featureLines, 0)
	cont := testutil.DC(4, len(wl))
	fx := make([]float64, len(wl))
	for i := range fx {
		fx[i] = cont[i] * (1 + features[i])
	}
	s := mustSpectrum(t, wl, fx, nil)

	out, _, err := Normalize(s, lineFree, WithFamily(Polynomial), WithDegree(0))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := make([]float64, len(features))
	for i := range want {
		want[i] = 1 + features[i]
	}
	testutil.RequireSliceNearlyEqual(t, out.Flux(), want, 1e-9)

	zero := mustSpectrum(t, wl, testutil.Polynomial(testutil.Axis(-1, 1, 1001), 0, 1), nil)
	if _, _, err := Normalize(zero, []spectrum.Region{{Low: 5000, High: 6000}}); !errors.Is(err, ErrZeroContinuum) {
		t.Fatalf("expected ErrZeroContinuum, got %v", err)
	}
}

func TestParseFamily(t *testing.T) {
	for in, want := range map[string]Family{
		"linear":     Linear,
		"Polynomial": Polynomial,
		"cheb":       Chebyshev,
		"legendre":   Legendre,
	} {
		got, err := ParseFamily(in)
		if err != nil || got != want {
			t.Fatalf("ParseFamily(%q) = %v, %v", in, got, err)
		}
	}

	if _, err := ParseFamily("spline"); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}
}
