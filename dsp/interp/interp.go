package interp

import (
	"math"
	"sort"
)

// uniformTol is the relative spacing deviation below which a 4-point
// neighbourhood is treated as uniformly sampled.
const uniformTol = 1e-9

// Bracket returns the index j such that x[j] <= q <= x[j+1].
// ok is false when q is outside the axis or the axis has fewer than 2 points.
func Bracket(x []float64, q float64) (j int, ok bool) {
	n := len(x)
	if n < 2 || math.IsNaN(q) || q < x[0] || q > x[n-1] {
		return 0, false
	}

	j = sort.SearchFloat64s(x, q)
	if j == 0 {
		return 0, true
	}

	if j >= n {
		j = n - 1
	}

	return j - 1, true
}

// Linear interpolates y(x) at q.
func Linear(x, y []float64, q float64) (float64, bool) {
	j, ok := Bracket(x, q)
	if !ok {
		return math.NaN(), false
	}

	x0, x1 := x[j], x[j+1]
	t := (q - x0) / (x1 - x0)

	return y[j] + t*(y[j+1]-y[j]), true
}

// Cubic interpolates y(x) at q with a cubic Hermite segment whose tangents are
// three-point finite differences weighted by the neighbouring spacings. Segments at the axis ends use one-sided
// differences. Uniformly spaced neighbourhoods use [Hermite4] directly.
func Cubic(x, y []float64, q float64) (float64, bool) {
	j, ok := Bracket(x, q)
	if !ok {
		return math.NaN(), false
	}

	n := len(x)
	if n < 4 || j == 0 || j+2 >= n {
		return Linear(x, y, q)
	}

	h := x[j+1] - x[j]
	t := (q - x[j]) / h

	hm := x[j] - x[j-1]
	hp := x[j+2] - x[j+1]
	if math.Abs(hm-h) <= uniformTol*h && math.Abs(hp-h) <= uniformTol*h {
		return Hermite4(t, y[j-1], y[j], y[j+1], y[j+2]), true
	}

	// Interval-weighted three-point derivatives, exact for quadratics.
	sl := (y[j] - y[j-1]) / hm
	sc := (y[j+1] - y[j]) / h
	sr := (y[j+2] - y[j+1]) / hp
	m0 := (h*sl + hm*sc) / (h + hm)
	m1 := (hp*sc + h*sr) / (h + hp)

	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	return h00*y[j] + h10*h*m0 + h01*y[j+1] + h11*h*m1, true
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
