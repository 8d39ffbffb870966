// Package interp provides interpolation primitives on sampled spectral axes.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear]:     2-point linear interpolation on a non-uniform axis
//   - [Hermite4]:   4-point cubic Hermite kernel for uniform spacing
//   - [Cubic]:      cubic Hermite on a non-uniform axis (finite-difference tangents)
//
// All axis-based functions expect x to be strictly increasing and report
// ok == false for queries outside [x[0], x[len(x)-1]] instead of
// extrapolating.
package interp
