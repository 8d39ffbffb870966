// Package conv provides direct and FFT-based convolution and cross-correlation
// of uniformly sampled sequences.
//
//   - Direct convolution: O(N*M) time-domain convolution, vectorized with
//     vecmath block operations for kernels of 4 samples or more
//   - FFT correlation: zero-padded power-of-two transforms via algo-fft
//
// # Correlation
//
// Cross-correlation computes how similar two signals are as a function of
// displacement:
//
//	corr, err := conv.CorrelateFFT(signal, template)
//	peakIdx, peakVal := conv.FindPeak(corr)
//	lag := conv.LagFromIndex(peakIdx, len(template))
//
// [ParabolicPeak] refines the peak location below one sample, which matters
// when lags map to redshift on a ln-wavelength grid.
package conv
