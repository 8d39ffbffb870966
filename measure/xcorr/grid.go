package xcorr

import (
	"fmt"
	"math"
)

// MaxLags bounds the number of points a [LagGrid] may hold.
const MaxLags = 10_000_000

// LagGrid is a uniform grid of trial redshifts. Its points are Min + i*Step
// up to the last one within half a step of Max, so Max itself may be
// overshot by less than Step/2. Both correlation methods scan that same
// closed range.
type LagGrid struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

// DefaultGrid covers 0 <= z <= 1 in steps of 0.001.
func DefaultGrid() LagGrid {
	return LagGrid{Min: 0, Max: 1, Step: 0.001}
}

// Validate checks that the grid is finite, ordered and physical.
func (g LagGrid) Validate() error {
	for _, v := range []float64{g.Min, g.Max, g.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidGrid, g)
		}
	}

	switch {
	case g.Step <= 0:
		return fmt.Errorf("%w: step %g", ErrInvalidGrid, g.Step)
	case g.Max < g.Min:
		return fmt.Errorf("%w: max %g < min %g", ErrInvalidGrid, g.Max, g.Min)
	case g.Min <= -1:
		return fmt.Errorf("%w: min %g <= -1", ErrInvalidGrid, g.Min)
	case (g.Max-g.Min)/g.Step >= MaxLags:
		return fmt.Errorf("%w: step %g over [%g, %g] exceeds %d lags", ErrInvalidGrid, g.Step, g.Min, g.Max, MaxLags)
	}

	return nil
}

// Values returns Min + i*Step for every i with a value not beyond Max by
// more than half a step.
func (g LagGrid) Values() ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, g.count())
	for i := range out {
		out[i] = g.Min + float64(i)*g.Step
	}

	return out, nil
}

func (g LagGrid) count() int {
	return int(math.Floor((g.Max-g.Min)/g.Step+0.5)) + 1
}

// contains reports whether z lies between Min and the last grid point.
// g must be valid.
func (g LagGrid) contains(z float64) bool {
	last := g.Min + float64(g.count()-1)*g.Step
	return z >= g.Min && z <= last
}
