package bingo

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// FitnessFunc scores an equation against a labeled batch. Lower is better.
type FitnessFunc func(g *AGraph, x *mat.Dense, y []float64) (float64, error)

// RMSE returns the root-mean-square error of the equation's predictions
// against y. NaN predictions from the numeric-failure policy flow through
// as a NaN fitness, which any ordering treats as worst.
func RMSE(g *AGraph, x *mat.Dense, y []float64) (float64, error) {
	rows, _ := x.Dims()
	if len(y) != rows {
		return 0, fmt.Errorf("targets %d, samples %d: %w", len(y), rows, ErrLengthMismatch)
	}
	f, err := g.EvaluateAt(x)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := 0; i < rows; i++ {
		d := f.At(i, 0) - y[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(rows)), nil
}

// EvaluatePopulation scores every equation without a valid cached fitness
// and caches the result. Equations are evaluated concurrently; each is
// touched by exactly one goroutine, so no locking is needed.
func EvaluatePopulation(ctx context.Context, population []*AGraph, x *mat.Dense, y []float64, fn FitnessFunc) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, g := range population {
		if g.IsFitnessSet() {
			continue
		}
		g := g
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fitness, err := fn(g, x, y)
			if err != nil {
				return err
			}
			g.SetFitness(fitness)
			return nil
		})
	}
	return eg.Wait()
}
