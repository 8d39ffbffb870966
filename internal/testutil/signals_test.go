package testutil

import (
	"math"
	"testing"
)

func TestAxis(t *testing.T) {
	a := Axis(1.0, 1.7, 500)
	if len(a) != 500 {
		t.Fatalf("len = %d, want 500", len(a))
	}
	if a[0] != 1.0 || math.Abs(a[499]-1.7) > 1e-12 {
		t.Fatalf("endpoints = %v, %v", a[0], a[499])
	}
}

func TestGaussianLinesPeak(t *testing.T) {
	wl := Axis(4000, 6000, 2001)
	lines := []Line{{Center: 5000, Sigma: 5, Amplitude: 2}}

	rest := GaussianLines(wl, lines, 0)
	if got := rest[1000]; math.Abs(got-2) > 1e-12 {
		t.Fatalf("peak at 5000 = %v, want 2", got)
	}

	shifted := GaussianLines(wl, lines, 0.1)
	if got := shifted[1500]; math.Abs(got-2) > 1e-12 {
		t.Fatalf("shifted peak at 5500 = %v, want 2", got)
	}
}

func TestPolynomial(t *testing.T) {
	got := Polynomial([]float64{0, 1, 2}, 1, 2, 3)
	want := []float64{1, 6, 17}
	RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestDeterministicNoiseDifferentSeeds(t *testing.T) {
	a := DeterministicNoise(1, 1.0, 16)
	b := DeterministicNoise(2, 1.0, 16)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestDC(t *testing.T) {
	d := DC(0.5, 4)
	for i, v := range d {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}
