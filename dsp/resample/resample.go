package resample

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-redshift/dsp/interp"
	"github.com/cwbudde/algo-redshift/spectrum"
)

var (
	// ErrInvalidGrid indicates an output grid that is too short or not
	// strictly increasing.
	ErrInvalidGrid = errors.New("resample: invalid output grid")
	// ErrTooFewSamples indicates an input spectrum with fewer than 2 samples.
	ErrTooFewSamples = errors.New("resample: input needs at least 2 samples")
	// ErrUnknownMethod indicates an unrecognised method name.
	ErrUnknownMethod = errors.New("resample: unknown method")
)

// Method selects a resampling algorithm.
type Method int

const (
	// MethodFluxConserving is the default.
	MethodFluxConserving Method = iota
	MethodLinear
	MethodSpline
)

// String returns the config/CLI name of the method.
func (m Method) String() string {
	switch m {
	case MethodLinear:
		return "linear"
	case MethodSpline:
		return "spline"
	case MethodFluxConserving:
		return "flux"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "linear", "spline" or "flux" (also "flux-conserving").
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return MethodLinear, nil
	case "spline", "cubic":
		return MethodSpline, nil
	case "flux", "flux-conserving", "fluxconserving", "":
		return MethodFluxConserving, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Resampler maps a spectrum onto grid. Implementations are stateless and
// safe for concurrent use.
type Resampler interface {
	Resample(s *spectrum.Spectrum, grid []float64) (*spectrum.Spectrum, error)
}

// New returns the resampler implementing m.
func New(m Method) Resampler {
	switch m {
	case MethodLinear:
		return Linear{}
	case MethodSpline:
		return Spline{}
	default:
		return FluxConserving{}
	}
}

// Linear interpolates flux and uncertainty linearly between input samples.
type Linear struct{}

// Resample implements [Resampler].
func (Linear) Resample(s *spectrum.Spectrum, grid []float64) (*spectrum.Spectrum, error) {
	return pointwise(s, grid, interp.Linear)
}

// Spline interpolates flux with a cubic Hermite spline and uncertainty
// linearly.
type Spline struct{}

// Resample implements [Resampler].
func (Spline) Resample(s *spectrum.Spectrum, grid []float64) (*spectrum.Spectrum, error) {
	return pointwise(s, grid, interp.Cubic)
}

type interpFunc func(x, y []float64, q float64) (float64, bool)

func pointwise(s *spectrum.Spectrum, grid []float64, fn interpFunc) (*spectrum.Spectrum, error) {
	if err := validate(s, grid, 1); err != nil {
		return nil, err
	}

	x := s.Wavelength()
	y := s.Flux()
	sigma := s.Uncertainty()

	flux := make([]float64, len(grid))
	var unc []float64
	if sigma != nil {
		unc = make([]float64, len(grid))
	}

	for i, q := range grid {
		v, ok := fn(x, y, q)
		if !ok {
			v = math.NaN()
		}
		flux[i] = v

		if unc != nil {
			u, ok := interp.Linear(x, sigma, q)
			if !ok {
				u = math.NaN()
			}
			unc[i] = u
		}
	}

	return build(s, grid, flux, unc)
}

func validate(s *spectrum.Spectrum, grid []float64, minGrid int) error {
	if s == nil || s.Len() < 2 {
		return ErrTooFewSamples
	}

	if len(grid) < minGrid {
		return fmt.Errorf("%w: %d points", ErrInvalidGrid, len(grid))
	}

	for i := 1; i < len(grid); i++ {
		if !(grid[i] > grid[i-1]) {
			return fmt.Errorf("%w: not strictly increasing at index %d", ErrInvalidGrid, i)
		}
	}

	return nil
}

func build(s *spectrum.Spectrum, grid, flux, unc []float64) (*spectrum.Spectrum, error) {
	out, err := spectrum.New(grid, flux, unc, spectrum.WithUnit(s.Unit()), spectrum.WithFluxUnit(s.FluxUnit()))
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	return out, nil
}

// LogLambdaGrid returns n points spaced uniformly in ln(lambda) from lo to hi
// inclusive. A shift of k bins on this grid corresponds to a redshift of
// exp(k*step)-1 where step = ln(hi/lo)/(n-1).
func LogLambdaGrid(lo, hi float64, n int) ([]float64, error) {
	if n < 2 || !(lo > 0) || !(hi > lo) {
		return nil, fmt.Errorf("%w: lo=%g hi=%g n=%d", ErrInvalidGrid, lo, hi, n)
	}

	lnLo := math.Log(lo)
	step := (math.Log(hi) - lnLo) / float64(n-1)

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Exp(lnLo + float64(i)*step)
	}
	out[0] = lo
	out[n-1] = hi

	return out, nil
}

// LinearGrid returns n points spaced uniformly from lo to hi inclusive.
func LinearGrid(lo, hi float64, n int) ([]float64, error) {
	if n < 2 || !(hi > lo) {
		return nil, fmt.Errorf("%w: lo=%g hi=%g n=%d", ErrInvalidGrid, lo, hi, n)
	}

	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi

	return out, nil
}
