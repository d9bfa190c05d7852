package bingo

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FitnessNotSet is the cached fitness of an equation whose fitness has not
// been computed since its last mutation. The fitness-set flag, not this
// sentinel, is authoritative.
const FitnessNotSet = 1e9

// AGraph represents a candidate equation as a mutable acyclic-graph
// program. Genetic operators edit the raw command array; evaluation,
// formatting, and complexity all run against a lazily maintained
// simplified command array and its constant table.
//
// An AGraph is single-owner: it must not be mutated and read concurrently
// without external locking. Distinct graphs share no mutable state.
type AGraph struct {
	command    Program
	simplified Program
	constants  []float64

	needsOpt   bool
	fitness    float64
	fitnessSet bool
	geneticAge int
	modified   bool

	simplifier Simplifier
}

// NewAGraph returns an empty equation using the stack simplifier.
func NewAGraph() *AGraph {
	return NewAGraphWithSimplifier(&StackSimplifier{})
}

// NewAGraphWithSimplifier returns an empty equation reduced by s.
func NewAGraphWithSimplifier(s Simplifier) *AGraph {
	return &AGraph{
		command:    Program{},
		simplified: Program{},
		constants:  []float64{},
		fitness:    FitnessNotSet,
		simplifier: s,
	}
}

// State is a snapshot of every field of an AGraph. Restoring it reproduces
// the captured equation exactly, including a pending dirty flag.
type State struct {
	Command    Program
	Simplified Program
	Constants  []float64
	NeedsOpt   bool
	Fitness    float64
	FitnessSet bool
	GeneticAge int
	Modified   bool
	Simplifier Simplifier
}

// DumpState captures the equation for later restore. Programs and
// constants are copied out; the snapshot does not alias the equation.
func (g *AGraph) DumpState() State {
	constants := make([]float64, len(g.constants))
	copy(constants, g.constants)
	return State{
		Command:    g.command.Clone(),
		Simplified: g.simplified.Clone(),
		Constants:  constants,
		NeedsOpt:   g.needsOpt,
		Fitness:    g.fitness,
		FitnessSet: g.fitnessSet,
		GeneticAge: g.geneticAge,
		Modified:   g.modified,
		Simplifier: g.simplifier,
	}
}

// RestoreAGraph returns a new equation holding the captured state.
func RestoreAGraph(state State) *AGraph {
	constants := make([]float64, len(state.Constants))
	copy(constants, state.Constants)
	return &AGraph{
		command:    state.Command.Clone(),
		simplified: state.Simplified.Clone(),
		constants:  constants,
		needsOpt:   state.NeedsOpt,
		fitness:    state.Fitness,
		fitnessSet: state.FitnessSet,
		geneticAge: state.GeneticAge,
		modified:   state.Modified,
		simplifier: state.Simplifier,
	}
}

// Copy returns a deep copy of the equation. The simplifier strategy is
// shared; implementations are stateless.
func (g *AGraph) Copy() *AGraph {
	return RestoreAGraph(g.DumpState())
}

// CommandArray returns the raw program. The returned slice is a read-only
// view; use MutableCommandArray or SetCommandArray to modify it.
func (g *AGraph) CommandArray() Program {
	return g.command
}

// MutableCommandArray returns the raw program for in-place mutation. The
// equation is marked modified before returning, since the caller is
// assumed to write through the view.
func (g *AGraph) MutableCommandArray() Program {
	g.notifyModification()
	return g.command
}

// SetCommandArray replaces the raw program and marks the equation modified.
func (g *AGraph) SetCommandArray(p Program) {
	g.command = p.Clone()
	g.notifyModification()
}

// notifyModification invalidates all state derived from the raw program.
func (g *AGraph) notifyModification() {
	g.fitness = FitnessNotSet
	g.fitnessSet = false
	g.modified = true
}

// Fitness returns the cached fitness value. Meaningless unless
// IsFitnessSet returns true.
func (g *AGraph) Fitness() float64 {
	return g.fitness
}

// SetFitness caches a fitness value and marks it valid.
func (g *AGraph) SetFitness(fitness float64) {
	g.fitness = fitness
	g.fitnessSet = true
}

// IsFitnessSet returns true if the cached fitness is valid.
func (g *AGraph) IsFitnessSet() bool {
	return g.fitnessSet
}

// SetFitnessStatus overrides the fitness-valid flag.
func (g *AGraph) SetFitnessStatus(valid bool) {
	g.fitnessSet = valid
}

// GeneticAge returns the generation counter maintained by the search loop.
func (g *AGraph) GeneticAge() int {
	return g.geneticAge
}

// SetGeneticAge sets the generation counter.
func (g *AGraph) SetGeneticAge(age int) {
	g.geneticAge = age
}

// UtilizedCommands returns per-row liveness of the raw program, indexed
// against the original row positions so genetic operators can target live
// rows before simplification renumbers them.
func (g *AGraph) UtilizedCommands() []bool {
	return UtilizedCommands(g.command)
}

// NeedsLocalOptimization returns true if the constant table has grown
// since constants were last fitted.
func (g *AGraph) NeedsLocalOptimization() bool {
	g.ensureUpToDate()
	return g.needsOpt
}

// NumberLocalOptimizationParams returns the constant table length.
func (g *AGraph) NumberLocalOptimizationParams() int {
	g.ensureUpToDate()
	return len(g.constants)
}

// LocalOptimizationParams returns a copy of the constant table.
func (g *AGraph) LocalOptimizationParams() []float64 {
	g.ensureUpToDate()
	params := make([]float64, len(g.constants))
	copy(params, g.constants)
	return params
}

// SetLocalOptimizationParams replaces the constant table with fitted
// values and clears the needs-optimization flag. Constants are independent
// of program structure, so the equation is not marked modified. The table
// length is reconciled on the next recompute; a mismatched length set here
// does not survive a raw-program mutation.
func (g *AGraph) SetLocalOptimizationParams(params []float64) {
	g.constants = make([]float64, len(params))
	copy(g.constants, params)
	g.needsOpt = false
}

// Complexity returns the row count of the simplified program.
func (g *AGraph) Complexity() int {
	g.ensureUpToDate()
	return len(g.simplified)
}

// Distance returns the number of rows that differ positionally between the
// two raw programs. Programs of different length do not have a defined
// distance and report ErrLengthMismatch.
func (g *AGraph) Distance(other *AGraph) (int, error) {
	a, b := g.command, other.CommandArray()
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n, nil
}

// EvaluateAt evaluates the equation over an input batch (rows = samples,
// cols = variables). A numeric overflow or underflow yields a NaN-filled
// matrix shaped like x instead of an error; any other failure propagates.
func (g *AGraph) EvaluateAt(x *mat.Dense) (*mat.Dense, error) {
	g.ensureUpToDate()
	f, err := Evaluate(g.simplified, x, g.constants)
	if isNumericFault(err) {
		return nanMatrix(x), nil
	} else if err != nil {
		return nil, err
	}
	return f, nil
}

// EvaluateWithXGradientAt evaluates the equation and its gradient with
// respect to the input variables. Numeric faults yield NaN-filled value
// and gradient matrices shaped like x.
func (g *AGraph) EvaluateWithXGradientAt(x *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	return g.evaluateWithDerivative(x, true)
}

// EvaluateWithLocalOptGradientAt evaluates the equation and its gradient
// with respect to the constant table. Numeric faults yield NaN-filled
// value and gradient matrices shaped like x.
func (g *AGraph) EvaluateWithLocalOptGradientAt(x *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	return g.evaluateWithDerivative(x, false)
}

func (g *AGraph) evaluateWithDerivative(x *mat.Dense, wrtInputs bool) (*mat.Dense, *mat.Dense, error) {
	g.ensureUpToDate()
	f, df, err := EvaluateWithDerivative(g.simplified, x, g.constants, wrtInputs)
	if isNumericFault(err) {
		return nanMatrix(x), nanMatrix(x), nil
	} else if err != nil {
		return nil, nil, err
	}
	return f, df, nil
}

// FormattedString renders the equation in the named format. When raw is
// true the raw program is rendered with symbolic constant placeholders;
// otherwise the simplified program is rendered with resolved values.
func (g *AGraph) FormattedString(format string, raw bool) (string, error) {
	if raw {
		return FormatProgram(format, g.command, nil)
	}
	g.ensureUpToDate()
	return FormatProgram(format, g.simplified, g.constants)
}

// ConsoleString renders the simplified equation in console format.
func (g *AGraph) ConsoleString() string {
	s, err := g.FormattedString(FormatConsole, false)
	assert(err == nil, "console format: %v", err)
	return s
}

// String returns the console representation of the equation.
func (g *AGraph) String() string {
	return g.ConsoleString()
}

// ensureUpToDate re-derives the simplified program and constant table if
// the raw program changed. Simplification, renumbering, and the constant
// resize run at most once per mutation; every derived-state reader funnels
// through this guard.
func (g *AGraph) ensureUpToDate() {
	if !g.modified {
		return
	}
	g.simplified = g.simplifier.Reduce(g.command)
	n := renumberConstants(g.simplified)
	g.resizeConstants(n)
	g.modified = false
}

// renumberConstants assigns dense zero-based slot indices to constant rows
// in first-appearance order and returns the slot count.
func renumberConstants(p Program) int {
	n := 0
	for i := range p {
		if p[i].Op == CONSTANT {
			p[i].Arg1, p[i].Arg2 = n, n
			n++
		}
	}
	return n
}

// resizeConstants reconciles the constant table with the slot count.
// Shrinking truncates, keeping retained values. Growing keeps existing
// values, seeds new slots with one, and flags the equation for local
// optimization.
func (g *AGraph) resizeConstants(n int) {
	if n <= len(g.constants) {
		g.constants = g.constants[:n]
		return
	}
	grown := make([]float64, n)
	copy(grown, g.constants)
	for i := len(g.constants); i < n; i++ {
		grown[i] = 1
	}
	g.constants = grown
	g.needsOpt = true
}

// isNumericFault returns true for the two recoverable evaluation faults.
func isNumericFault(err error) bool {
	return errors.Is(err, ErrOverflow) || errors.Is(err, ErrUnderflow)
}

// nanMatrix returns a matrix shaped like x filled with NaN.
func nanMatrix(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	m := mat.NewDense(rows, cols, nil)
	nan := math.NaN()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, nan)
		}
	}
	return m
}
