// Package xcorr estimates redshift by cross-correlating an observed spectrum
// against a rest-frame template over a grid of trial redshifts (lags).
//
// Two paths are provided. [Correlate] scales the template axis by (1+z) for
// every lag on a [LagGrid] and interpolates it onto the observed wavelengths,
// so it works for arbitrarily sampled spectra and any grid spacing.
// [CorrelateLogLambda] rebins both spectra onto a shared uniform
// ln(lambda) axis, where a redshift is a constant shift, and evaluates every
// lag at once with an FFT.
//
// Lags at which the shifted template covers too little of the observed
// spectrum are excluded: their score is NaN and they never win the peak
// search.
//
//	res, err := xcorr.Correlate(observed, template, xcorr.LagGrid{Min: 0, Max: 1, Step: 0.001})
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Redshift, res.Peak)
package xcorr
