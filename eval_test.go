package bingo_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/symreg/bingo"
)

func TestEvaluate(t *testing.T) {
	t.Run("Constant", func(t *testing.T) {
		p := bingo.Program{{Op: bingo.CONSTANT, Arg1: 0, Arg2: 0}}
		x := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
		f, err := bingo.Evaluate(p, x, []float64{3.0})
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 5; i++ {
			if v := f.At(i, 0); v != 3.0 {
				t.Fatalf("unexpected value at row %d: %v", i, v)
			}
		}
	})

	t.Run("Variable", func(t *testing.T) {
		p := bingo.Program{{Op: bingo.VARIABLE, Arg1: 1, Arg2: 1}}
		x := mat.NewDense(2, 2, []float64{1, 10, 2, 20})
		f, err := bingo.Evaluate(p, x, nil)
		if err != nil {
			t.Fatal(err)
		}
		if f.At(0, 0) != 10 || f.At(1, 0) != 20 {
			t.Fatalf("unexpected values: %v, %v", f.At(0, 0), f.At(1, 0))
		}
	})

	t.Run("Composite", func(t *testing.T) {
		// (x0 + c0) * x1 with c0 = 2
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.CONSTANT, Arg1: 0, Arg2: 0},
			{Op: bingo.ADD, Arg1: 0, Arg2: 1},
			{Op: bingo.VARIABLE, Arg1: 1, Arg2: 1},
			{Op: bingo.MUL, Arg1: 2, Arg2: 3},
		}
		x := mat.NewDense(2, 2, []float64{1, 3, 2, 5})
		f, err := bingo.Evaluate(p, x, []float64{2})
		if err != nil {
			t.Fatal(err)
		}
		if f.At(0, 0) != 9 || f.At(1, 0) != 20 {
			t.Fatalf("unexpected values: %v, %v", f.At(0, 0), f.At(1, 0))
		}
	})

	t.Run("ProtectedOps", func(t *testing.T) {
		// log(|x0|) and sqrt(|x0|) at negative input.
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.LOG, Arg1: 0, Arg2: 0},
		}
		x := mat.NewDense(1, 1, []float64{-math.E})
		f, err := bingo.Evaluate(p, x, nil)
		if err != nil {
			t.Fatal(err)
		}
		if v := f.At(0, 0); math.Abs(v-1) > 1e-12 {
			t.Fatalf("unexpected value: %v", v)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		f, err := bingo.Evaluate(bingo.Program{}, mat.NewDense(2, 1, nil), nil)
		if err != nil {
			t.Fatal(err)
		}
		if rows, cols := f.Dims(); rows != 2 || cols != 1 {
			t.Fatalf("unexpected dims: %dx%d", rows, cols)
		}
	})

	t.Run("BadVariable", func(t *testing.T) {
		p := bingo.Program{{Op: bingo.VARIABLE, Arg1: 3, Arg2: 3}}
		x := mat.NewDense(1, 1, []float64{1})
		if _, err := bingo.Evaluate(p, x, nil); !errors.Is(err, bingo.ErrBadReference) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("BadConstantSlot", func(t *testing.T) {
		p := bingo.Program{{Op: bingo.CONSTANT, Arg1: 0, Arg2: 0}}
		x := mat.NewDense(1, 1, []float64{1})
		if _, err := bingo.Evaluate(p, x, nil); !errors.Is(err, bingo.ErrBadReference) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestEvaluate_NumericFaults(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1e10})

	t.Run("ExpOverflow", func(t *testing.T) {
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.EXP, Arg1: 0, Arg2: 0},
		}
		if _, err := bingo.Evaluate(p, x, nil); !errors.Is(err, bingo.ErrOverflow) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ExpUnderflow", func(t *testing.T) {
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.EXP, Arg1: 0, Arg2: 0},
		}
		neg := mat.NewDense(1, 1, []float64{-1e10})
		if _, err := bingo.Evaluate(p, neg, nil); !errors.Is(err, bingo.ErrUnderflow) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("DivideByZero", func(t *testing.T) {
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.CONSTANT, Arg1: 0, Arg2: 0},
			{Op: bingo.DIV, Arg1: 0, Arg2: 1},
		}
		if _, err := bingo.Evaluate(p, x, []float64{0}); !errors.Is(err, bingo.ErrOverflow) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("PowOverflow", func(t *testing.T) {
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.POW, Arg1: 0, Arg2: 1},
		}
		if _, err := bingo.Evaluate(p, x, nil); !errors.Is(err, bingo.ErrOverflow) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestEvaluateWithDerivative(t *testing.T) {
	t.Run("XGradient", func(t *testing.T) {
		// f = x0 * x0, df/dx0 = 2*x0
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.MUL, Arg1: 0, Arg2: 0},
		}
		x := mat.NewDense(3, 1, []float64{1, 2, 3})
		f, df, err := bingo.EvaluateWithDerivative(p, x, nil, true)
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range []float64{1, 4, 9} {
			if v := f.At(i, 0); v != want {
				t.Fatalf("unexpected value at row %d: %v", i, v)
			}
		}
		for i, want := range []float64{2, 4, 6} {
			if v := df.At(i, 0); v != want {
				t.Fatalf("unexpected gradient at row %d: %v", i, v)
			}
		}
	})

	t.Run("XGradientTrig", func(t *testing.T) {
		// f = sin(x0), df/dx0 = cos(x0)
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.SIN, Arg1: 0, Arg2: 0},
		}
		x := mat.NewDense(2, 1, []float64{0, math.Pi / 2})
		_, df, err := bingo.EvaluateWithDerivative(p, x, nil, true)
		if err != nil {
			t.Fatal(err)
		}
		if v := df.At(0, 0); math.Abs(v-1) > 1e-12 {
			t.Fatalf("unexpected gradient: %v", v)
		}
		if v := df.At(1, 0); math.Abs(v) > 1e-12 {
			t.Fatalf("unexpected gradient: %v", v)
		}
	})

	t.Run("ConstantGradient", func(t *testing.T) {
		// f = c0 * x0, df/dc0 = x0
		p := bingo.Program{
			{Op: bingo.CONSTANT, Arg1: 0, Arg2: 0},
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.MUL, Arg1: 0, Arg2: 1},
		}
		x := mat.NewDense(3, 1, []float64{1, 2, 3})
		f, df, err := bingo.EvaluateWithDerivative(p, x, []float64{2.5}, false)
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range []float64{2.5, 5, 7.5} {
			if v := f.At(i, 0); v != want {
				t.Fatalf("unexpected value at row %d: %v", i, v)
			}
		}
		for i, want := range []float64{1, 2, 3} {
			if v := df.At(i, 0); v != want {
				t.Fatalf("unexpected gradient at row %d: %v", i, v)
			}
		}
	})

	t.Run("NoConstants", func(t *testing.T) {
		p := bingo.Program{{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0}}
		x := mat.NewDense(2, 1, []float64{1, 2})
		_, df, err := bingo.EvaluateWithDerivative(p, x, nil, false)
		if err != nil {
			t.Fatal(err)
		}
		if rows, cols := df.Dims(); rows != 2 || cols != 1 {
			t.Fatalf("unexpected dims: %dx%d", rows, cols)
		}
		if df.At(0, 0) != 0 || df.At(1, 0) != 0 {
			t.Fatal("expected zero gradient")
		}
	})

	t.Run("MultiVariable", func(t *testing.T) {
		// f = x0 / x1, df/dx0 = 1/x1, df/dx1 = -x0/x1^2
		p := bingo.Program{
			{Op: bingo.VARIABLE, Arg1: 0, Arg2: 0},
			{Op: bingo.VARIABLE, Arg1: 1, Arg2: 1},
			{Op: bingo.DIV, Arg1: 0, Arg2: 1},
		}
		x := mat.NewDense(1, 2, []float64{6, 2})
		f, df, err := bingo.EvaluateWithDerivative(p, x, nil, true)
		if err != nil {
			t.Fatal(err)
		}
		if v := f.At(0, 0); v != 3 {
			t.Fatalf("unexpected value: %v", v)
		}
		if v := df.At(0, 0); v != 0.5 {
			t.Fatalf("unexpected df/dx0: %v", v)
		}
		if v := df.At(0, 1); v != -1.5 {
			t.Fatalf("unexpected df/dx1: %v", v)
		}
	})
}
