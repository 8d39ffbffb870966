package spectrum

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"
)

// Spectrum is an immutable sampled spectrum.
type Spectrum struct {
	wavelength  []float64
	flux        []float64
	uncertainty []float64
	unit        Unit
	fluxUnit    string
}

// Option configures spectrum construction.
type Option func(*Spectrum)

// WithUnit sets the spectral-axis unit. The default is [Angstrom].
func WithUnit(u Unit) Option {
	return func(s *Spectrum) {
		s.unit = u
	}
}

// WithFluxUnit attaches a free-form flux unit label.
func WithFluxUnit(label string) Option {
	return func(s *Spectrum) {
		s.fluxUnit = label
	}
}

// New validates and copies the inputs into a new Spectrum.
// uncertainty may be nil; otherwise it must match the wavelength length and
// contain no negative values (NaN is allowed and marks an unknown error).
func New(wavelength, flux, uncertainty []float64, opts ...Option) (*Spectrum, error) {
	if len(wavelength) == 0 {
		return nil, ErrEmpty
	}

	if len(flux) != len(wavelength) {
		return nil, fmt.Errorf("%w: wavelength %d, flux %d", ErrLengthMismatch, len(wavelength), len(flux))
	}

	if uncertainty != nil && len(uncertainty) != len(wavelength) {
		return nil, fmt.Errorf("%w: wavelength %d, uncertainty %d", ErrLengthMismatch, len(wavelength), len(uncertainty))
	}

	for i, w := range wavelength {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w at index %d", ErrNonFiniteWavelength, i)
		}

		if i > 0 && !(w > wavelength[i-1]) {
			return nil, fmt.Errorf("%w at index %d", ErrNotMonotonic, i)
		}
	}

	for i, u := range uncertainty {
		if u < 0 {
			return nil, fmt.Errorf("%w at index %d: %v", ErrNegativeUncertainty, i, u)
		}
	}

	s := &Spectrum{
		wavelength: append([]float64(nil), wavelength...),
		flux:       append([]float64(nil), flux...),
		unit:       Angstrom,
	}
	if uncertainty != nil {
		s.uncertainty = append([]float64(nil), uncertainty...)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

// derive builds a spectrum sharing metadata with s. The slices are adopted,
// not copied, so callers must pass freshly allocated data.
func (s *Spectrum) derive(wavelength, flux, uncertainty []float64) *Spectrum {
	return &Spectrum{
		wavelength:  wavelength,
		flux:        flux,
		uncertainty: uncertainty,
		unit:        s.unit,
		fluxUnit:    s.fluxUnit,
	}
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return len(s.wavelength)
}

// Unit returns the spectral-axis unit.
func (s *Spectrum) Unit() Unit {
	return s.unit
}

// FluxUnit returns the flux unit label, if any.
func (s *Spectrum) FluxUnit() string {
	return s.fluxUnit
}

// Wavelength returns a copy of the spectral axis.
func (s *Spectrum) Wavelength() []float64 {
	return append([]float64(nil), s.wavelength...)
}

// Flux returns a copy of the flux values.
func (s *Spectrum) Flux() []float64 {
	return append([]float64(nil), s.flux...)
}

// Uncertainty returns a copy of the uncertainty values, or nil.
func (s *Spectrum) Uncertainty() []float64 {
	if s.uncertainty == nil {
		return nil
	}

	return append([]float64(nil), s.uncertainty...)
}

// HasUncertainty reports whether the spectrum carries per-sample errors.
func (s *Spectrum) HasUncertainty() bool {
	return s.uncertainty != nil
}

// At returns wavelength, flux and uncertainty of sample i.
// The uncertainty is NaN when the spectrum has none.
func (s *Spectrum) At(i int) (wavelength, flux, uncertainty float64) {
	uncertainty = math.NaN()
	if s.uncertainty != nil {
		uncertainty = s.uncertainty[i]
	}

	return s.wavelength[i], s.flux[i], uncertainty
}

// Range returns the first and last wavelength.
func (s *Spectrum) Range() Region {
	return Region{Low: s.wavelength[0], High: s.wavelength[len(s.wavelength)-1]}
}

// ValidCount returns the number of samples with finite flux.
func (s *Spectrum) ValidCount() int {
	n := 0
	for _, f := range s.flux {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			n++
		}
	}

	return n
}

// Extract returns the samples inside the closed region r.
func (s *Spectrum) Extract(r Region) (*Spectrum, error) {
	lo := sort.SearchFloat64s(s.wavelength, r.Low)
	hi := sort.Search(len(s.wavelength), func(i int) bool { return s.wavelength[i] > r.High })
	if lo >= hi {
		return nil, fmt.Errorf("%w: region [%g, %g] selects no samples", ErrNoOverlap, r.Low, r.High)
	}

	var unc []float64
	if s.uncertainty != nil {
		unc = append([]float64(nil), s.uncertainty[lo:hi]...)
	}

	return s.derive(
		append([]float64(nil), s.wavelength[lo:hi]...),
		append([]float64(nil), s.flux[lo:hi]...),
		unc,
	), nil
}

// Redshift returns a copy whose spectral axis is scaled by (1+z).
// Flux and uncertainty are unchanged.
func (s *Spectrum) Redshift(z float64) (*Spectrum, error) {
	if !(z > -1) || math.IsInf(z, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRedshift, z)
	}

	factor := 1 + z
	wl := make([]float64, len(s.wavelength))
	for i, w := range s.wavelength {
		wl[i] = w * factor
	}

	return s.derive(wl, s.Flux(), s.Uncertainty()), nil
}

// Subtract returns a copy with model subtracted from the flux sample by
// sample. model must have the same length as the spectrum.
func (s *Spectrum) Subtract(model []float64) (*Spectrum, error) {
	if len(model) != len(s.flux) {
		return nil, fmt.Errorf("%w: spectrum %d, model %d", ErrLengthMismatch, len(s.flux), len(model))
	}

	out := make([]float64, len(s.flux))
	for i := range out {
		out[i] = s.flux[i] - model[i]
	}

	return s.derive(s.Wavelength(), out, s.Uncertainty()), nil
}

// WithFlux returns a copy carrying new flux values on the same axis.
// The uncertainty is dropped unless unc is non-nil.
func (s *Spectrum) WithFlux(flux, unc []float64) (*Spectrum, error) {
	return New(s.wavelength, flux, unc, WithUnit(s.unit), WithFluxUnit(s.fluxUnit))
}

// Scale returns a copy with flux and uncertainty multiplied by a.
func (s *Spectrum) Scale(a float64) *Spectrum {
	flux := make([]float64, len(s.flux))
	vecmath.ScaleBlock(flux, s.flux, a)

	var unc []float64
	if s.uncertainty != nil {
		unc = make([]float64, len(s.uncertainty))
		for i, u := range s.uncertainty {
			unc[i] = math.Abs(a) * u
		}
	}

	return s.derive(s.Wavelength(), flux, unc)
}

// ToUnit returns a copy with the spectral axis expressed in u.
func (s *Spectrum) ToUnit(u Unit) *Spectrum {
	if u == s.unit {
		return s
	}

	factor := s.unit.Factor(u)
	wl := make([]float64, len(s.wavelength))
	for i, w := range s.wavelength {
		wl[i] = w * factor
	}

	out := s.derive(wl, s.Flux(), s.Uncertainty())
	out.unit = u

	return out
}

// Overlap returns the intersection of the wavelength ranges of a and b.
func Overlap(a, b *Spectrum) (Region, error) {
	if a.unit != b.unit {
		return Region{}, fmt.Errorf("%w: %s vs %s", ErrUnitMismatch, a.unit, b.unit)
	}

	ra, rb := a.Range(), b.Range()
	lo := math.Max(ra.Low, rb.Low)
	hi := math.Min(ra.High, rb.High)
	if lo > hi {
		return Region{}, fmt.Errorf("%w: [%g, %g] and [%g, %g]", ErrNoOverlap, ra.Low, ra.High, rb.Low, rb.High)
	}

	return Region{Low: lo, High: hi}, nil
}
