package xcorr

import "errors"

var (
	// ErrInvalidGrid is returned for a lag grid with a non-positive step,
	// Max < Min, or Min <= -1.
	ErrInvalidGrid = errors.New("xcorr: invalid lag grid")
	// ErrNoOverlap is returned when every lag on the grid was excluded.
	ErrNoOverlap = errors.New("xcorr: no lag with sufficient overlap")
	// ErrTooFewSamples is returned for spectra with fewer than two samples.
	ErrTooFewSamples = errors.New("xcorr: spectrum needs at least two samples")
)
