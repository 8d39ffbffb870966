// Package template fits a library of rest-frame template spectra to an
// observed spectrum over a set of trial redshifts.
//
// Every (template, redshift) pair is evaluated independently: the template
// is shifted, resampled onto the observed wavelengths and scaled by the
// amplitude that minimises the weighted squared residual. The pair with the
// lowest reduced chi-squared wins. Pairs are evaluated concurrently on a
// bounded pool of workers; the reduction over pairs is performed in
// (template, redshift) order so the outcome does not depend on scheduling.
//
// Pairs that cannot be evaluated (no overlap, too few usable samples, a
// template with no power over the overlap) are recorded as skipped and do
// not abort the sweep.
package template
