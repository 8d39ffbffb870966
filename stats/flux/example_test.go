package flux_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-redshift/stats/flux"
)

func ExampleCalculate() {
	st := flux.Calculate([]float64{1, 2, math.NaN(), 3})
	fmt.Printf("count=%d skipped=%d mean=%.2f std=%.3f\n", st.Count, st.Skipped, st.Mean, st.StdDev)
	// Output:
	// count=3 skipped=1 mean=2.00 std=0.816
}
