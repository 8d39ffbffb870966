package xcorr_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-redshift/measure/xcorr"
	"github.com/cwbudde/algo-redshift/spectrum"
)

func gaussian(wl []float64, center, sigma float64) []float64 {
	out := make([]float64, len(wl))
	for i, w := range wl {
		d := (w - center) / sigma
		out[i] = math.Exp(-0.5 * d * d)
	}
	return out
}

func ExampleCorrelate() {
	wl := make([]float64, 2001)
	for i := range wl {
		wl[i] = 4000 + float64(i)
	}

	template, _ := spectrum.New(wl, gaussian(wl, 5000, 4), nil)
	observed, _ := spectrum.New(wl, gaussian(wl, 5100, 4*1.02), nil)

	res, err := xcorr.Correlate(observed, template, xcorr.LagGrid{Min: 0, Max: 0.05, Step: 0.001})
	if err != nil {
		panic(err)
	}

	fmt.Printf("z=%.3f peak=%.2f\n", res.Redshift, res.Peak)
	// Output:
	// z=0.020 peak=1.00
}
