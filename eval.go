package bingo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxExpArg is the largest argument for which math.Exp is finite.
const maxExpArg = 709.782712893384

// Evaluate computes the program over an input batch (rows = samples,
// cols = variables) using the given constant table. The result is a
// rows x 1 matrix holding the final row's value for each sample.
// Numeric faults are reported as ErrOverflow or ErrUnderflow.
func Evaluate(p Program, x *mat.Dense, constants []float64) (*mat.Dense, error) {
	buf, err := forwardEval(p, x, constants)
	if err != nil {
		return nil, err
	}
	rows, _ := x.Dims()
	out := mat.NewDense(rows, 1, nil)
	if len(p) > 0 {
		out.SetCol(0, buf[len(p)-1])
	}
	return out, nil
}

// EvaluateWithDerivative computes the program's value and its gradient by
// reverse-mode accumulation. When wrtInputs is true the gradient is taken
// with respect to the input variables (rows x nvars); otherwise with
// respect to the constants (rows x nconsts, or a single zero column when
// the constant table is empty).
func EvaluateWithDerivative(p Program, x *mat.Dense, constants []float64, wrtInputs bool) (*mat.Dense, *mat.Dense, error) {
	buf, err := forwardEval(p, x, constants)
	if err != nil {
		return nil, nil, err
	}
	nsamples, nvars := x.Dims()

	value := mat.NewDense(nsamples, 1, nil)
	if len(p) > 0 {
		value.SetCol(0, buf[len(p)-1])
	}

	gradCols := nvars
	if !wrtInputs {
		gradCols = len(constants)
		if gradCols == 0 {
			gradCols = 1
		}
	}
	grad := mat.NewDense(nsamples, gradCols, nil)
	if len(p) == 0 {
		return value, grad, nil
	}

	// Adjoint of each program row, per sample.
	adj := make([][]float64, len(p))
	for i := range adj {
		adj[i] = make([]float64, nsamples)
	}
	for k := 0; k < nsamples; k++ {
		adj[len(p)-1][k] = 1
	}

	for i := len(p) - 1; i >= 0; i-- {
		instr := p[i]
		switch {
		case instr.Op == VARIABLE:
			if wrtInputs {
				for k := 0; k < nsamples; k++ {
					grad.Set(k, instr.Arg1, grad.At(k, instr.Arg1)+adj[i][k])
				}
			}
		case instr.Op == CONSTANT:
			if !wrtInputs && len(constants) > 0 {
				for k := 0; k < nsamples; k++ {
					grad.Set(k, instr.Arg1, grad.At(k, instr.Arg1)+adj[i][k])
				}
			}
		case instr.Op.IsUnary():
			a := buf[instr.Arg1]
			for k := 0; k < nsamples; k++ {
				if adj[i][k] == 0 {
					continue
				}
				adj[instr.Arg1][k] += adj[i][k] * unaryPartial(instr.Op, a[k], buf[i][k])
			}
		default:
			a, b := buf[instr.Arg1], buf[instr.Arg2]
			for k := 0; k < nsamples; k++ {
				if adj[i][k] == 0 {
					continue
				}
				da, db := binaryPartials(instr.Op, a[k], b[k], buf[i][k])
				adj[instr.Arg1][k] += adj[i][k] * da
				adj[instr.Arg2][k] += adj[i][k] * db
			}
		}
	}
	return value, grad, nil
}

// forwardEval computes each program row over the batch, returning one value
// slice per row.
func forwardEval(p Program, x *mat.Dense, constants []float64) ([][]float64, error) {
	nsamples, nvars := x.Dims()
	buf := make([][]float64, len(p))
	for i, instr := range p {
		v := make([]float64, nsamples)
		switch {
		case instr.Op == VARIABLE:
			if instr.Arg1 < 0 || instr.Arg1 >= nvars {
				return nil, fmt.Errorf("row %d: input column %d of %d: %w", i, instr.Arg1, nvars, ErrBadReference)
			}
			mat.Col(v, instr.Arg1, x)
		case instr.Op == CONSTANT:
			if instr.Arg1 < 0 || instr.Arg1 >= len(constants) {
				return nil, fmt.Errorf("row %d: constant slot %d of %d: %w", i, instr.Arg1, len(constants), ErrBadReference)
			}
			c := constants[instr.Arg1]
			for k := range v {
				v[k] = c
			}
		case instr.Op.IsUnary():
			if instr.Arg1 < 0 || instr.Arg1 >= i {
				return nil, fmt.Errorf("row %d: operand %d: %w", i, instr.Arg1, ErrBadReference)
			}
			a := buf[instr.Arg1]
			for k := range v {
				r, err := applyUnary(instr.Op, a[k])
				if err != nil {
					return nil, err
				}
				v[k] = r
			}
		case instr.Op.IsBinary():
			if instr.Arg1 < 0 || instr.Arg1 >= i || instr.Arg2 < 0 || instr.Arg2 >= i {
				return nil, fmt.Errorf("row %d: operands %d,%d: %w", i, instr.Arg1, instr.Arg2, ErrBadReference)
			}
			a, b := buf[instr.Arg1], buf[instr.Arg2]
			for k := range v {
				r, err := applyBinary(instr.Op, a[k], b[k])
				if err != nil {
					return nil, err
				}
				v[k] = r
			}
		default:
			return nil, fmt.Errorf("row %d: %s: %w", i, instr.Op, ErrBadReference)
		}
		buf[i] = v
	}
	return buf, nil
}

// applyUnary applies op to a single operand. Logarithm and square root are
// protected: they operate on the operand's absolute value.
func applyUnary(op Op, a float64) (float64, error) {
	switch op {
	case SIN:
		return math.Sin(a), nil
	case COS:
		return math.Cos(a), nil
	case SINH:
		if math.Abs(a) > maxExpArg {
			return 0, ErrOverflow
		}
		return math.Sinh(a), nil
	case COSH:
		if math.Abs(a) > maxExpArg {
			return 0, ErrOverflow
		}
		return math.Cosh(a), nil
	case EXP:
		if a > maxExpArg {
			return 0, ErrOverflow
		} else if a < -maxExpArg {
			return 0, ErrUnderflow
		}
		return math.Exp(a), nil
	case LOG:
		if a == 0 {
			return 0, ErrUnderflow
		}
		return math.Log(math.Abs(a)), nil
	case ABS:
		return math.Abs(a), nil
	case SQRT:
		return math.Sqrt(math.Abs(a)), nil
	default:
		panic("unreachable")
	}
}

// applyBinary applies op to a pair of operands.
func applyBinary(op Op, a, b float64) (float64, error) {
	switch op {
	case ADD:
		return a + b, nil
	case SUB:
		return a - b, nil
	case MUL:
		return a * b, nil
	case DIV:
		if b == 0 {
			return 0, ErrOverflow
		}
		return a / b, nil
	case POW:
		return checkedPow(a, b)
	case SAFEPOW:
		return checkedPow(math.Abs(a), b)
	default:
		panic("unreachable")
	}
}

// checkedPow computes a**b, reporting overflow or underflow when the result
// leaves the finite range on finite operands.
func checkedPow(a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, ErrOverflow
	}
	if a != 0 && !math.IsInf(a, 0) && !math.IsInf(b, 0) {
		if m := b * math.Log(math.Abs(a)); m > maxExpArg {
			return 0, ErrOverflow
		} else if m < -maxExpArg {
			return 0, ErrUnderflow
		}
	}
	return math.Pow(a, b), nil
}

// unaryPartial returns d(op(a))/da. f is the forward value op(a).
func unaryPartial(op Op, a, f float64) float64 {
	switch op {
	case SIN:
		return math.Cos(a)
	case COS:
		return -math.Sin(a)
	case SINH:
		return math.Cosh(a)
	case COSH:
		return math.Sinh(a)
	case EXP:
		return f
	case LOG:
		return 1 / a
	case ABS:
		return sign(a)
	case SQRT:
		if a == 0 {
			return math.Inf(1)
		}
		return sign(a) / (2 * f)
	default:
		panic("unreachable")
	}
}

// binaryPartials returns (d(op(a,b))/da, d(op(a,b))/db). f is the forward
// value op(a, b).
func binaryPartials(op Op, a, b, f float64) (float64, float64) {
	switch op {
	case ADD:
		return 1, 1
	case SUB:
		return 1, -1
	case MUL:
		return b, a
	case DIV:
		return 1 / b, -a / (b * b)
	case POW:
		return b * math.Pow(a, b-1), f * math.Log(a)
	case SAFEPOW:
		if a == 0 {
			return 0, 0
		}
		return b * math.Pow(math.Abs(a), b-1) * sign(a), f * math.Log(math.Abs(a))
	default:
		panic("unreachable")
	}
}

func sign(a float64) float64 {
	if a < 0 {
		return -1
	} else if a > 0 {
		return 1
	}
	return 0
}
