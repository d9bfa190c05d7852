// Package opt fits equation constants to training data using nonlinear
// local optimization. It is the numeric counterpart to the equation
// entity's needs-local-optimization flag: a search loop calls Fit on any
// equation whose constant table grew, and the fitted values are written
// back through the entity's sanctioned setter.
package opt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/symreg/bingo"
)

// Fitter tunes an equation's constant table to minimize squared error
// against a labeled batch.
type Fitter struct {
	// Method is the gonum optimization method. Defaults to Nelder-Mead,
	// which tolerates the flat NaN plateaus produced by the equation's
	// numeric-failure policy.
	Method optimize.Method

	// Settings optionally bounds the optimization run.
	Settings *optimize.Settings
}

// NewFitter returns a Fitter with default settings.
func NewFitter() *Fitter {
	return &Fitter{}
}

// Fit minimizes the sum of squared residuals of g over (x, y) by adjusting
// g's constants, starting from the current table, and stores the result
// through SetLocalOptimizationParams. Equations with no constants have
// their needs-optimization flag cleared and are otherwise unchanged.
func (f *Fitter) Fit(g *bingo.AGraph, x *mat.Dense, y []float64) error {
	rows, _ := x.Dims()
	if len(y) != rows {
		return fmt.Errorf("targets %d, samples %d: %w", len(y), rows, bingo.ErrLengthMismatch)
	}

	initial := g.LocalOptimizationParams()
	if len(initial) == 0 {
		g.SetLocalOptimizationParams(nil)
		return nil
	}

	trial := g.Copy()
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			trial.SetLocalOptimizationParams(params)
			return sumSquaredError(trial, x, y)
		},
	}

	method := f.Method
	if method == nil {
		method = &optimize.NelderMead{}
	}
	var settings optimize.Settings
	if f.Settings != nil {
		settings = *f.Settings
	}

	result, err := optimize.Minimize(problem, initial, &settings, method)
	if err != nil {
		return fmt.Errorf("minimize: %w", err)
	}
	g.SetLocalOptimizationParams(result.X)
	return nil
}

// sumSquaredError returns the SSE of g's predictions, mapping non-finite
// predictions to +Inf so the optimizer retreats from fault regions.
func sumSquaredError(g *bingo.AGraph, x *mat.Dense, y []float64) float64 {
	f, err := g.EvaluateAt(x)
	if err != nil {
		return math.Inf(1)
	}
	var sum float64
	for i := range y {
		d := f.At(i, 0) - y[i]
		sum += d * d
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return math.Inf(1)
	}
	return sum
}
