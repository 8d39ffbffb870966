// Package resample maps a spectrum onto a new spectral axis.
//
// Methods:
//   - MethodLinear: piecewise-linear interpolation of flux and uncertainty
//   - MethodSpline: cubic Hermite interpolation of flux, linear uncertainty
//   - MethodFluxConserving: overlap-weighted bin averaging that preserves
//     integrated flux and propagates uncertainty in quadrature
//
// Output samples that the input does not cover are NaN rather than
// extrapolated, so downstream statistics can exclude them.
//
// Common workflows:
//   - New(method).Resample(s, grid)
//   - LogLambdaGrid(lo, hi, n) for uniform velocity sampling
package resample
