package testutil

import (
	"math"
	"math/rand"
)

// Line describes a Gaussian emission (positive Amplitude) or absorption
// (negative Amplitude) feature.
type Line struct {
	Center    float64
	Sigma     float64
	Amplitude float64
}

// Axis returns n points spaced uniformly from lo to hi inclusive.
func Axis(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// GaussianLines evaluates the sum of lines on wavelength, redshifted by z.
// Centres and widths scale with (1+z), as for a physically redshifted source.
func GaussianLines(wavelength []float64, lines []Line, z float64) []float64 {
	out := make([]float64, len(wavelength))
	f := 1 + z
	for _, l := range lines {
		c := l.Center * f
		s := l.Sigma * f
		for i, w := range wavelength {
			d := (w - c) / s
			out[i] += l.Amplitude * math.Exp(-0.5*d*d)
		}
	}
	return out
}

// Polynomial evaluates c[0] + c[1]*x + c[2]*x^2 + ... on x.
func Polynomial(x []float64, c ...float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		acc := 0.0
		for k := len(c) - 1; k >= 0; k-- {
			acc = acc*v + c[k]
		}
		out[i] = acc
	}
	return out
}

// Add returns a + b elementwise.
func Add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
