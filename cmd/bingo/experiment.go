package main

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/symreg/bingo"
)

// Experiment describes an equation and its training data, loaded from a
// YAML file.
type Experiment struct {
	Simplifier string      `yaml:"simplifier"`
	Program    []RowConfig `yaml:"program"`
	Constants  []float64   `yaml:"constants"`
	Inputs     [][]float64 `yaml:"inputs"`
	Targets    []float64   `yaml:"targets"`
}

// RowConfig describes a single program row. Omitted args default to zero.
type RowConfig struct {
	Op   string `yaml:"op"`
	Args []int  `yaml:"args"`
}

// LoadExperiment reads and parses an experiment file.
func LoadExperiment(path string) (*Experiment, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var exp Experiment
	if err := yaml.Unmarshal(buf, &exp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &exp, nil
}

// BuildGraph assembles the experiment's equation entity.
func (exp *Experiment) BuildGraph() (*bingo.AGraph, error) {
	program := make(bingo.Program, len(exp.Program))
	for i, row := range exp.Program {
		op, err := bingo.ParseOp(row.Op)
		if err != nil {
			return nil, fmt.Errorf("program row %d: %w", i, err)
		}
		instr := bingo.Instruction{Op: op}
		if len(row.Args) > 0 {
			instr.Arg1 = row.Args[0]
		}
		if len(row.Args) > 1 {
			instr.Arg2 = row.Args[1]
		} else {
			instr.Arg2 = instr.Arg1
		}
		program[i] = instr
	}
	if err := program.Validate(); err != nil {
		return nil, err
	}

	var g *bingo.AGraph
	switch exp.Simplifier {
	case "", "stack":
		g = bingo.NewAGraph()
	case "algebraic":
		g = bingo.NewAGraphWithSimplifier(&bingo.AlgebraicSimplifier{})
	default:
		return nil, fmt.Errorf("unknown simplifier %q", exp.Simplifier)
	}
	g.SetCommandArray(program)

	if len(exp.Constants) > 0 {
		if n := g.NumberLocalOptimizationParams(); n != len(exp.Constants) {
			return nil, fmt.Errorf("equation has %d constant slots, experiment provides %d: %w",
				n, len(exp.Constants), bingo.ErrLengthMismatch)
		}
		g.SetLocalOptimizationParams(exp.Constants)
	}
	return g, nil
}

// InputMatrix assembles the experiment's input batch.
func (exp *Experiment) InputMatrix() (*mat.Dense, error) {
	if len(exp.Inputs) == 0 {
		return nil, fmt.Errorf("experiment has no inputs")
	}
	cols := len(exp.Inputs[0])
	x := mat.NewDense(len(exp.Inputs), cols, nil)
	for i, row := range exp.Inputs {
		if len(row) != cols {
			return nil, fmt.Errorf("input row %d has %d values, want %d: %w",
				i, len(row), cols, bingo.ErrLengthMismatch)
		}
		x.SetRow(i, row)
	}
	return x, nil
}
