package continuum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-redshift/spectrum"
	"github.com/cwbudde/algo-redshift/stats/flux"
)

const defaultDegree = 1

type config struct {
	family     Family
	degree     int
	weighted   bool
	clipSigma  float64
	clipRounds int
}

// Option configures continuum fitting.
type Option func(*config)

// WithFamily selects the model family. The default is [Linear].
func WithFamily(f Family) Option {
	return func(c *config) {
		c.family = f
	}
}

// WithDegree sets the model degree. It has no effect on [Linear].
func WithDegree(d int) Option {
	return func(c *config) {
		c.degree = d
	}
}

// WithWeights enables 1/sigma^2 weighting when the spectrum carries
// uncertainty. Samples with zero or NaN uncertainty are then excluded.
func WithWeights(enabled bool) Option {
	return func(c *config) {
		c.weighted = enabled
	}
}

// WithSigmaClip iteratively rejects samples whose residual exceeds k times
// the residual standard deviation, refitting up to rounds times. With
// [WithWeights] the residuals are divided by their uncertainty first.
func WithSigmaClip(k float64, rounds int) Option {
	return func(c *config) {
		if k > 0 && rounds > 0 {
			c.clipSigma = k
			c.clipRounds = rounds
		}
	}
}

func defaultConfig() config {
	return config{
		family: Linear,
		degree: defaultDegree,
	}
}

func (c config) finalized() config {
	if c.family == Linear {
		c.degree = 1
	}

	return c
}

// Fit fits a continuum model to the samples of s that fall inside any of
// regions. Every region must lie within the wavelength range of s.
func Fit(s *spectrum.Spectrum, regions []spectrum.Region, opts ...Option) (*Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg = cfg.finalized()

	if cfg.degree < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, cfg.degree)
	}

	if len(regions) == 0 {
		return nil, ErrNoRegions
	}

	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}

		if !r.Within(s) {
			return nil, fmt.Errorf("%w: %s not within %s", ErrRegionOutOfRange, r, s.Range())
		}
	}

	m := &Model{
		Family: cfg.family,
		Degree: cfg.degree,
		Domain: s.Range(),
	}

	wl := s.Wavelength()
	fx := s.Flux()
	sigma := s.Uncertainty()
	useWeights := cfg.weighted && sigma != nil

	idx := make([]int, 0, len(wl))
	for i, x := range wl {
		if math.IsNaN(fx[i]) || math.IsInf(fx[i], 0) || !inAny(regions, x) {
			continue
		}

		if useWeights && !(sigma[i] > 0) {
			continue
		}

		idx = append(idx, i)
	}

	var weights []float64
	if useWeights {
		weights = make([]float64, len(wl))
		for _, i := range idx {
			weights[i] = 1 / (sigma[i] * sigma[i])
		}
	}

	coeffs, err := solve(m, wl, fx, weights, idx)
	if err != nil {
		return nil, err
	}
	m.Coeffs = coeffs

	for round := 0; round < cfg.clipRounds; round++ {
		// Weighted fits clip on residuals normalised by sigma.
		resid := make([]float64, len(idx))
		for k, i := range idx {
			resid[k] = fx[i] - m.Eval(wl[i])
			if weights != nil {
				resid[k] *= math.Sqrt(weights[i])
			}
		}

		limit := cfg.clipSigma * flux.StdDev(resid)
		if limit == 0 {
			break
		}

		kept := idx[:0:0]
		for k, i := range idx {
			if math.Abs(resid[k]) <= limit {
				kept = append(kept, i)
			}
		}

		if len(kept) == len(idx) {
			break
		}

		m.Rejected += len(idx) - len(kept)
		idx = kept

		coeffs, err := solve(m, wl, fx, weights, idx)
		if err != nil {
			return nil, err
		}
		m.Coeffs = coeffs
	}

	m.Points = len(idx)

	return m, nil
}

// solve runs a (weighted) linear least-squares fit of the basis of m over the
// samples listed in idx.
func solve(m *Model, wl, fx, weights []float64, idx []int) ([]float64, error) {
	p := m.Degree + 1
	n := len(idx)
	if n < p {
		return nil, fmt.Errorf("%w: %d points for %d parameters", ErrDegenerateFit, n, p)
	}

	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	row := make([]float64, p)

	for r, i := range idx {
		m.Family.basis(row, m.normalize(wl[i]))

		sw := 1.0
		if weights != nil {
			sw = math.Sqrt(weights[i])
		}

		for k := range row {
			a.Set(r, k, sw*row[k])
		}
		b.SetVec(r, sw*fx[i])
	}

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}

	out := make([]float64, p)
	for k := range out {
		out[k] = c.AtVec(k)
	}

	return out, nil
}

func inAny(regions []spectrum.Region, x float64) bool {
	for _, r := range regions {
		if r.Contains(x) {
			return true
		}
	}

	return false
}

// Subtract fits a continuum over regions and returns s minus the model
// evaluated at every wavelength of s.
func Subtract(s *spectrum.Spectrum, regions []spectrum.Region, opts ...Option) (*spectrum.Spectrum, *Model, error) {
	m, err := Fit(s, regions, opts...)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.Subtract(m.EvalAll(s.Wavelength()))
	if err != nil {
		return nil, nil, err
	}

	return out, m, nil
}

// Normalize fits a continuum over regions and returns s divided by the model.
// The uncertainty is divided by the model as well. A model that reaches zero
// anywhere on the wavelength axis is rejected.
func Normalize(s *spectrum.Spectrum, regions []spectrum.Region, opts ...Option) (*spectrum.Spectrum, *Model, error) {
	m, err := Fit(s, regions, opts...)
	if err != nil {
		return nil, nil, err
	}

	cont := m.EvalAll(s.Wavelength())
	for i := 1; i < len(cont); i++ {
		if cont[i] == 0 || cont[i-1] == 0 || (cont[i] > 0) != (cont[i-1] > 0) {
			return nil, nil, fmt.Errorf("%w near index %d", ErrZeroContinuum, i)
		}
	}
	if len(cont) == 1 && cont[0] == 0 {
		return nil, nil, ErrZeroContinuum
	}

	fx := s.Flux()
	sigma := s.Uncertainty()
	for i := range fx {
		fx[i] /= cont[i]
		if sigma != nil {
			sigma[i] /= math.Abs(cont[i])
		}
	}

	out, err := s.WithFlux(fx, sigma)
	if err != nil {
		return nil, nil, err
	}

	return out, m, nil
}
