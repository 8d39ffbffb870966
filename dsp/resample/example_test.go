package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-redshift/dsp/resample"
	"github.com/cwbudde/algo-redshift/spectrum"
)

func ExampleFluxConserving() {
	s, _ := spectrum.New([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, nil)

	out, _ := resample.FluxConserving{}.Resample(s, []float64{1.5, 3.5})
	fmt.Printf("%.1f %.1f\n", out.Flux()[0], out.Flux()[1])
	// Output:
	// 3.0 7.0
}

func ExampleLogLambdaGrid() {
	g, _ := resample.LogLambdaGrid(4000, 8000, 3)
	fmt.Printf("%.1f %.1f %.1f\n", g[0], g[1], g[2])
	// Output:
	// 4000.0 5656.9 8000.0
}
