package spectrum

import "errors"

// Errors returned by spectrum construction and transformations.
var (
	ErrEmpty               = errors.New("spectrum: empty input")
	ErrLengthMismatch      = errors.New("spectrum: length mismatch")
	ErrNotMonotonic        = errors.New("spectrum: wavelength not strictly increasing")
	ErrNonFiniteWavelength = errors.New("spectrum: non-finite wavelength")
	ErrNegativeUncertainty = errors.New("spectrum: negative uncertainty")
	ErrInvalidRegion       = errors.New("spectrum: invalid region")
	ErrNoOverlap           = errors.New("spectrum: no wavelength overlap")
	ErrUnitMismatch        = errors.New("spectrum: spectral unit mismatch")
	ErrInvalidRedshift     = errors.New("spectrum: redshift must be > -1")
	ErrUnknownUnit         = errors.New("spectrum: unknown unit")
)
