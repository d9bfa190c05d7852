package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/symreg/bingo"
)

// EvalCommand represents a command for evaluating an experiment's equation.
type EvalCommand struct{}

// NewEvalCommand returns a new instance of EvalCommand.
func NewEvalCommand() *EvalCommand {
	return &EvalCommand{}
}

// Run executes the "eval" subcommand.
func (cmd *EvalCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bingo-eval", flag.ContinueOnError)
	format := fs.String("format", bingo.FormatConsole, "render format")
	raw := fs.Bool("raw", false, "render the unsimplified program")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("experiment file required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many experiment files specified")
	}

	exp, err := LoadExperiment(fs.Arg(0))
	if err != nil {
		return err
	}
	g, err := exp.BuildGraph()
	if err != nil {
		return err
	}
	x, err := exp.InputMatrix()
	if err != nil {
		return err
	}

	s, err := g.FormattedString(*format, *raw)
	if err != nil {
		return err
	}
	fmt.Printf("f(X) = %s\n", s)
	fmt.Printf("complexity = %d\n\n", g.Complexity())

	f, err := g.EvaluateAt(x)
	if err != nil {
		return err
	}
	rows, _ := x.Dims()
	for i := 0; i < rows; i++ {
		fmt.Printf("%v => %v\n", x.RawRowView(i), f.At(i, 0))
	}
	return nil
}

func (cmd *EvalCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: bingo eval [arguments] [experiment file]

Arguments:

	-format NAME
	    Render format: console, latex, or stack.
	-raw
	    Render the unsimplified program.
`[1:])
}
