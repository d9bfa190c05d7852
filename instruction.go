package bingo

import (
	"fmt"
)

// Op represents an instruction operation.
type Op int

// Instruction operations. VARIABLE & CONSTANT are terminals; their first
// operand is an input-column index or a constant-slot index, respectively.
// All other operations take row indices of previously computed instructions.
const (
	VARIABLE = Op(iota)
	CONSTANT

	binary_op_begin
	ADD
	SUB
	MUL
	DIV
	POW
	SAFEPOW
	binary_op_end

	unary_op_begin
	SIN
	COS
	SINH
	COSH
	EXP
	LOG
	ABS
	SQRT
	unary_op_end
)

var ops = [...]string{
	VARIABLE: "X",
	CONSTANT: "C",
	ADD:      "+",
	SUB:      "-",
	MUL:      "*",
	DIV:      "/",
	POW:      "pow",
	SAFEPOW:  "spow",
	SIN:      "sin",
	COS:      "cos",
	SINH:     "sinh",
	COSH:     "cosh",
	EXP:      "exp",
	LOG:      "log",
	ABS:      "abs",
	SQRT:     "sqrt",
}

// String returns the string representation of the operation.
func (op Op) String() string {
	if op >= 0 && op < Op(len(ops)) && ops[op] != "" {
		return ops[op]
	}
	return fmt.Sprintf("Op<%d>", int(op))
}

// ParseOp returns the operation named by s, as produced by Op.String.
func ParseOp(s string) (Op, error) {
	for op, name := range ops {
		if name != "" && name == s {
			return Op(op), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownOp)
}

// IsTerminal returns true if op loads a variable or a constant.
func (op Op) IsTerminal() bool {
	return op == VARIABLE || op == CONSTANT
}

// IsBinary returns true if op combines two earlier rows.
func (op Op) IsBinary() bool {
	return op > binary_op_begin && op < binary_op_end
}

// IsUnary returns true if op transforms a single earlier row.
func (op Op) IsUnary() bool {
	return op > unary_op_begin && op < unary_op_end
}

// Instruction represents a single row of an equation program. Terminal rows
// load an input column or a constant slot; non-terminal rows reference the
// results of earlier rows.
type Instruction struct {
	Op   Op
	Arg1 int
	Arg2 int
}

// String returns the string representation of the instruction.
func (instr Instruction) String() string {
	return fmt.Sprintf("(%s %d %d)", instr.Op, instr.Arg1, instr.Arg2)
}

// Program represents an ordered instruction sequence. Row order is
// evaluation order; a row's index is the value it produces.
type Program []Instruction

// Clone returns a copy of the program.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	other := make(Program, len(p))
	copy(other, p)
	return other
}

// Validate returns an error if any non-terminal row references a row at or
// beyond its own position, or if a terminal row carries a negative input
// index. Unnumbered constant slots (Arg1 == -1) are permitted in raw
// programs; renumbering assigns them on the next update.
func (p Program) Validate() error {
	for i, instr := range p {
		switch {
		case instr.Op == VARIABLE:
			if instr.Arg1 < 0 {
				return fmt.Errorf("row %d: variable index %d: %w", i, instr.Arg1, ErrBadReference)
			}
		case instr.Op == CONSTANT:
			if instr.Arg1 < -1 {
				return fmt.Errorf("row %d: constant slot %d: %w", i, instr.Arg1, ErrBadReference)
			}
		case instr.Op.IsUnary():
			if instr.Arg1 < 0 || instr.Arg1 >= i {
				return fmt.Errorf("row %d: operand %d: %w", i, instr.Arg1, ErrBadReference)
			}
		case instr.Op.IsBinary():
			if instr.Arg1 < 0 || instr.Arg1 >= i {
				return fmt.Errorf("row %d: operand %d: %w", i, instr.Arg1, ErrBadReference)
			}
			if instr.Arg2 < 0 || instr.Arg2 >= i {
				return fmt.Errorf("row %d: operand %d: %w", i, instr.Arg2, ErrBadReference)
			}
		default:
			return fmt.Errorf("row %d: %s: %w", i, instr.Op, ErrBadReference)
		}
	}
	return nil
}

// VariableCount returns one more than the highest input column referenced.
func (p Program) VariableCount() int {
	n := 0
	for _, instr := range p {
		if instr.Op == VARIABLE && instr.Arg1 >= n {
			n = instr.Arg1 + 1
		}
	}
	return n
}
