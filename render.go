package bingo

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported render formats.
const (
	FormatConsole = "console"
	FormatLatex   = "latex"
	FormatStack   = "stack"
)

// FormatProgram renders a program in the named format. Constant rows are
// rendered from the table when their slot resolves; otherwise they render
// as the symbolic placeholder "C_k", or "?" for unnumbered slots. Passing
// an unknown format name returns ErrUnknownFormat.
func FormatProgram(format string, p Program, constants []float64) (string, error) {
	switch format {
	case FormatConsole:
		return renderInfix(p, constants, consoleOpText), nil
	case FormatLatex:
		return renderInfix(p, constants, latexOpText), nil
	case FormatStack:
		return renderStack(p, constants), nil
	default:
		return "", fmt.Errorf("format %q: %w", format, ErrUnknownFormat)
	}
}

// opText renders one row given the rendered text of its operands.
type opText func(instr Instruction, a, b string) string

// renderInfix builds the expression for the final row, substituting each
// operand's rendered text bottom-up.
func renderInfix(p Program, constants []float64, text opText) string {
	if len(p) == 0 {
		return ""
	}
	rendered := make([]string, len(p))
	for i, instr := range p {
		switch {
		case instr.Op == VARIABLE:
			rendered[i] = text(instr, "", "")
		case instr.Op == CONSTANT:
			rendered[i] = constantText(instr, constants)
		case instr.Op.IsUnary():
			rendered[i] = text(instr, rendered[instr.Arg1], "")
		default:
			rendered[i] = text(instr, rendered[instr.Arg1], rendered[instr.Arg2])
		}
	}
	return rendered[len(p)-1]
}

// renderStack lists every row in evaluation order, one per line.
func renderStack(p Program, constants []float64) string {
	var sb strings.Builder
	for i, instr := range p {
		fmt.Fprintf(&sb, "(%d) <= ", i)
		switch {
		case instr.Op == VARIABLE:
			fmt.Fprintf(&sb, "X_%d", instr.Arg1)
		case instr.Op == CONSTANT:
			sb.WriteString(constantText(instr, constants))
		case instr.Op.IsUnary():
			fmt.Fprintf(&sb, "%s((%d))", instr.Op, instr.Arg1)
		default:
			fmt.Fprintf(&sb, "(%d) %s (%d)", instr.Arg1, instr.Op, instr.Arg2)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// constantText resolves a constant row against the table, falling back to
// a symbolic placeholder.
func constantText(instr Instruction, constants []float64) string {
	if instr.Arg1 >= 0 && instr.Arg1 < len(constants) {
		return strconv.FormatFloat(constants[instr.Arg1], 'g', -1, 64)
	}
	if instr.Arg1 >= 0 {
		return fmt.Sprintf("C_%d", instr.Arg1)
	}
	return "?"
}

func consoleOpText(instr Instruction, a, b string) string {
	switch instr.Op {
	case VARIABLE:
		return fmt.Sprintf("X_%d", instr.Arg1)
	case ADD, SUB, MUL:
		return fmt.Sprintf("(%s %s %s)", a, instr.Op, b)
	case DIV:
		return fmt.Sprintf("(%s)/(%s)", a, b)
	case POW:
		return fmt.Sprintf("(%s)^(%s)", a, b)
	case SAFEPOW:
		return fmt.Sprintf("(|%s|)^(%s)", a, b)
	case ABS:
		return fmt.Sprintf("|%s|", a)
	case SIN, COS, SINH, COSH, EXP, LOG, SQRT:
		return fmt.Sprintf("%s(%s)", instr.Op, a)
	default:
		panic("unreachable")
	}
}

func latexOpText(instr Instruction, a, b string) string {
	switch instr.Op {
	case VARIABLE:
		return fmt.Sprintf("X_%d", instr.Arg1)
	case ADD, SUB:
		return fmt.Sprintf("%s %s %s", a, instr.Op, b)
	case MUL:
		return fmt.Sprintf("(%s)(%s)", a, b)
	case DIV:
		return fmt.Sprintf("\\frac{%s}{%s}", a, b)
	case POW:
		return fmt.Sprintf("(%s)^{%s}", a, b)
	case SAFEPOW:
		return fmt.Sprintf("(|%s|)^{%s}", a, b)
	case ABS:
		return fmt.Sprintf("|%s|", a)
	case SQRT:
		return fmt.Sprintf("\\sqrt{%s}", a)
	case EXP:
		return fmt.Sprintf("e^{%s}", a)
	case LOG:
		return fmt.Sprintf("\\log{%s}", a)
	case SIN, COS, SINH, COSH:
		return fmt.Sprintf("\\%s(%s)", instr.Op, a)
	default:
		panic("unreachable")
	}
}
