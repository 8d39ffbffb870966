// Package spectrum provides the immutable one-dimensional spectrum type shared
// by the continuum, cross-correlation and template-matching packages.
//
// A [Spectrum] pairs a strictly increasing spectral axis (wavelength) with a
// flux sequence of the same length and an optional per-sample uncertainty.
// Inputs are copied on construction and accessors return copies, so a
// Spectrum never changes after [New] returns. Transformations such as
// [Spectrum.Extract], [Spectrum.Redshift] and [Spectrum.Subtract] produce new
// values.
//
// NaN flux marks an undefined sample, for example a sample that falls outside
// the coverage of a resampled template. Downstream analyses skip such samples.
//
// # Regions
//
// A [Region] is a closed wavelength interval used to select line-free
// continuum windows or sub-ranges for analysis:
//
//	r, err := spectrum.NewRegion(6000, 6400)
//	sub, err := s.Extract(r)
package spectrum
