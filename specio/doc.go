// Package specio reads and writes spectra as plain-text tables and loads
// template manifests.
//
// A table holds one sample per line with two or three numeric columns,
// wavelength, flux and optionally uncertainty, separated by commas or
// whitespace. Lines starting with '#' are comments, except for the
// directives
//
//	# unit: um
//	# flux_unit: erg/s/cm2/A
//
// which set the spectral unit and flux unit label of the result. A single
// non-numeric row before the first sample is treated as a column header.
package specio
