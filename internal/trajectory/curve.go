package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Curve is a smooth single-valued curve y(x) fitted through anchor
// points. The concrete interpolation method is swappable; the
// synthesizer only needs Fit and Eval.
type Curve interface {
	// Fit fits the curve through the given points. xs must be
	// strictly increasing.
	Fit(xs, ys []float64) error

	// Eval returns the curve's y value at x.
	Eval(x float64) float64
}

// CubicCurve is the default Curve: a natural cubic spline.
type CubicCurve struct {
	spline interp.NaturalCubic
}

// NewCubicCurve returns an unfitted natural cubic spline curve.
func NewCubicCurve() Curve { return &CubicCurve{} }

// Fit validates the anchor set before delegating: gonum panics on
// degenerate input, but a bad anchor geometry (a sharp turn folding
// the local xs back on themselves) must surface as an error, not take
// down the control loop.
func (c *CubicCurve) Fit(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("curve fit: %d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("curve fit needs at least 2 points, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("curve fit xs must be strictly increasing: xs[%d]=%v xs[%d]=%v",
				i-1, xs[i-1], i, xs[i])
		}
	}
	return c.spline.Fit(xs, ys)
}

func (c *CubicCurve) Eval(x float64) float64 {
	return c.spline.Predict(x)
}
