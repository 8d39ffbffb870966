package continuum

import "errors"

// Errors returned by continuum fitting.
var (
	ErrNoRegions        = errors.New("continuum: no fit regions")
	ErrRegionOutOfRange = errors.New("continuum: region outside spectrum range")
	ErrDegenerateFit    = errors.New("continuum: fewer points than model parameters")
	ErrInvalidDegree    = errors.New("continuum: degree must be >= 0")
	ErrUnknownFamily    = errors.New("continuum: unknown model family")
	ErrZeroContinuum    = errors.New("continuum: model crosses zero")
)
