package template

import "errors"

var (
	ErrEmptyLibrary      = errors.New("template: empty library")
	ErrDuplicateTemplate = errors.New("template: duplicate template name")
	ErrNilTemplate       = errors.New("template: nil spectrum")
	ErrTooFewSamples     = errors.New("template: observed spectrum needs at least two samples")
	ErrNoValidPair       = errors.New("template: every (template, redshift) pair was skipped")
)
