package bingo

// Simplifier reduces a raw program to an equivalent program for evaluation.
// Implementations must be deterministic, must preserve the program's value
// for all finite inputs, and may change row count and row indices.
type Simplifier interface {
	Reduce(p Program) Program
}

// UtilizedCommands returns one flag per row of p, true if the row
// transitively feeds the final row. An empty program yields an empty result.
func UtilizedCommands(p Program) []bool {
	used := make([]bool, len(p))
	if len(p) == 0 {
		return used
	}

	used[len(p)-1] = true
	for i := len(p) - 1; i >= 0; i-- {
		if !used[i] {
			continue
		}
		instr := p[i]
		if instr.Op.IsTerminal() {
			continue
		}
		used[instr.Arg1] = true
		if instr.Op.IsBinary() {
			used[instr.Arg2] = true
		}
	}
	return used
}

// StackSimplifier removes rows that do not contribute to the final row and
// remaps operand indices onto the compacted sequence.
type StackSimplifier struct{}

// Reduce returns p with dead rows eliminated.
func (s *StackSimplifier) Reduce(p Program) Program {
	return compact(p, UtilizedCommands(p))
}

// AlgebraicSimplifier removes dead rows and additionally merges rows that
// compute the same value (duplicate op & operands), redirecting later
// references to the first occurrence. It never invents constant values, so
// reduction is safe before constants have been fitted.
type AlgebraicSimplifier struct{}

// Reduce returns p with dead rows eliminated and duplicate rows merged.
func (s *AlgebraicSimplifier) Reduce(p Program) Program {
	deduped := dedupe(p)
	return compact(deduped, UtilizedCommands(deduped))
}

// compact keeps the rows of p marked in used, remapping operand references.
func compact(p Program, used []bool) Program {
	reduced := make(Program, 0, len(p))
	remap := make([]int, len(p))
	for i, instr := range p {
		if !used[i] {
			continue
		}
		if !instr.Op.IsTerminal() {
			instr.Arg1 = remap[instr.Arg1]
			if instr.Op.IsBinary() {
				instr.Arg2 = remap[instr.Arg2]
			}
		}
		remap[i] = len(reduced)
		reduced = append(reduced, instr)
	}
	return reduced
}

// dedupe redirects references to repeated rows onto their first occurrence.
// Repeated rows become dead and are removed by the following liveness pass.
// Constant rows are never merged: distinct rows are distinct slots even
// when their pre-renumbering operands coincide.
func dedupe(p Program) Program {
	out := p.Clone()
	seen := make(map[Instruction]int, len(p))
	remap := make([]int, len(p))
	for i := range out {
		instr := &out[i]
		if !instr.Op.IsTerminal() {
			instr.Arg1 = remap[instr.Arg1]
			if instr.Op.IsBinary() {
				instr.Arg2 = remap[instr.Arg2]
			}
		}
		if instr.Op == CONSTANT {
			remap[i] = i
			continue
		}
		if j, ok := seen[*instr]; ok {
			remap[i] = j
		} else {
			seen[*instr] = i
			remap[i] = i
		}
	}
	return out
}
