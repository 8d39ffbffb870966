package spectrum

import (
	"fmt"
	"math"
)

// Region is a closed wavelength interval [Low, High].
type Region struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// NewRegion returns a validated region.
func NewRegion(low, high float64) (Region, error) {
	r := Region{Low: low, High: high}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}

	return r, nil
}

// Validate reports whether the bounds are finite and ordered.
func (r Region) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
		return fmt.Errorf("%w: non-finite bound [%v, %v]", ErrInvalidRegion, r.Low, r.High)
	}

	if r.Low > r.High {
		return fmt.Errorf("%w: low %g > high %g", ErrInvalidRegion, r.Low, r.High)
	}

	return nil
}

// Contains reports whether x lies inside the closed interval.
func (r Region) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

// Within reports whether both endpoints lie inside the wavelength range of s.
func (r Region) Within(s *Spectrum) bool {
	full := s.Range()
	return full.Contains(r.Low) && full.Contains(r.High)
}

// Width returns High - Low.
func (r Region) Width() float64 {
	return r.High - r.Low
}

// String formats the region as "[low, high]".
func (r Region) String() string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}
