package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-redshift/internal/testutil"
	"github.com/cwbudde/algo-redshift/spectrum"
)

func mustSpectrum(t *testing.T, wl, flux, unc []float64) *spectrum.Spectrum {
	t.Helper()
	s, err := spectrum.New(wl, flux, unc)
	if err != nil {
		t.Fatalf("spectrum.New: %v", err)
	}
	return s
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"linear":          MethodLinear,
		"Spline":          MethodSpline,
		"flux":            MethodFluxConserving,
		"flux-conserving": MethodFluxConserving,
		"":                MethodFluxConserving,
	} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Fatalf("ParseMethod(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseMethod("sinc"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestIdentityResample(t *testing.T) {
	wl := []float64{10, 11, 12, 13, 14, 15}
	flux := []float64{1, 3, 2, 5, 4, 6}
	s := mustSpectrum(t, wl, flux, nil)

	for _, m := range []Method{MethodLinear, MethodSpline, MethodFluxConserving} {
		t.Run(m.String(), func(t *testing.T) {
			out, err := New(m).Resample(s, wl)
			if err != nil {
				t.Fatalf("Resample: %v", err)
			}
			testutil.RequireFinite(t, out.Flux())
			testutil.RequireSliceNearlyEqual(t, out.Flux(), flux, 1e-12)
		})
	}
}

func TestOutOfCoverageIsNaN(t *testing.T) {
	s := mustSpectrum(t, []float64{10, 11, 12, 13}, []float64{1, 1, 1, 1}, nil)
	grid := []float64{8, 9, 10.5, 11.5, 14, 15}

	for _, m := range []Method{MethodLinear, MethodSpline, MethodFluxConserving} {
		t.Run(m.String(), func(t *testing.T) {
			out, err := New(m).Resample(s, grid)
			if err != nil {
				t.Fatalf("Resample: %v", err)
			}
			f := out.Flux()
			for _, i := range []int{0, 1, 4, 5} {
				if !math.IsNaN(f[i]) {
					t.Fatalf("flux[%d] = %v, want NaN", i, f[i])
				}
			}
			for _, i := range []int{2, 3} {
				if math.IsNaN(f[i]) {
					t.Fatalf("flux[%d] is NaN, want covered sample", i)
				}
			}
		})
	}
}

func TestFluxConservingPreservesIntegral(t *testing.T) {
	n := 200
	wl := make([]float64, n)
	flux := make([]float64, n)
	for i := range wl {
		wl[i] = 5000 + float64(i)
		d := (wl[i] - 5100) / 4
		flux[i] = 1 + 10*math.Exp(-0.5*d*d)
	}
	s := mustSpectrum(t, wl, flux, nil)

	grid, err := LinearGrid(5010, 5190, 61)
	if err != nil {
		t.Fatalf("LinearGrid: %v", err)
	}

	out, err := FluxConserving{}.Resample(s, grid)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}

	edgesIn := binEdges(wl)
	edgesOut := binEdges(grid)

	var inTotal float64
	for i := range wl {
		lo := math.Max(edgesIn[i], edgesOut[0])
		hi := math.Min(edgesIn[i+1], edgesOut[len(grid)])
		if hi > lo {
			inTotal += flux[i] * (hi - lo)
		}
	}

	var outTotal float64
	f := out.Flux()
	for k := range grid {
		outTotal += f[k] * (edgesOut[k+1] - edgesOut[k])
	}

	if rel := math.Abs(outTotal-inTotal) / inTotal; rel > 1e-12 {
		t.Fatalf("integrated flux changed: in=%v out=%v", inTotal, outTotal)
	}
}

func TestFluxConservingUncertainty(t *testing.T) {
	s := mustSpectrum(t, []float64{1, 2, 3, 4}, []float64{1, 1, 1, 1}, []float64{1, 1, 1, 1})

	out, err := FluxConserving{}.Resample(s, []float64{1.5, 2.5, 3.5})
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	unc := out.Uncertainty()
	// Middle output bin [2, 3] overlaps input bins 2 and 3 by 0.5 each:
	// sqrt(0.25+0.25)/1.
	if math.Abs(unc[1]-math.Sqrt(0.5)) > 1e-12 {
		t.Fatalf("unc[1] = %v, want %v", unc[1], math.Sqrt(0.5))
	}
}

func TestValidation(t *testing.T) {
	s := mustSpectrum(t, []float64{1, 2, 3}, []float64{1, 1, 1}, nil)

	if _, err := (Linear{}).Resample(s, []float64{2, 1}); !errors.Is(err, ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid, got %v", err)
	}
	if _, err := (FluxConserving{}).Resample(s, []float64{2}); !errors.Is(err, ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid for single-point grid, got %v", err)
	}

	one := mustSpectrum(t, []float64{1}, []float64{1}, nil)
	if _, err := (Linear{}).Resample(one, []float64{1}); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestLogLambdaGrid(t *testing.T) {
	g, err := LogLambdaGrid(1000, 2000, 11)
	if err != nil {
		t.Fatalf("LogLambdaGrid: %v", err)
	}
	if g[0] != 1000 || g[10] != 2000 {
		t.Fatalf("endpoints = %v, %v", g[0], g[10])
	}

	ratio := g[1] / g[0]
	for i := 2; i < len(g); i++ {
		if r := g[i] / g[i-1]; math.Abs(r-ratio) > 1e-12 {
			t.Fatalf("ratio at %d = %v, want %v", i, r, ratio)
		}
	}

	if _, err := LogLambdaGrid(0, 1, 10); !errors.Is(err, ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid, got %v", err)
	}
}
