package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/symreg/bingo"
	"github.com/symreg/bingo/opt"
)

// FitCommand represents a command for fitting an equation's constants.
type FitCommand struct{}

// NewFitCommand returns a new instance of FitCommand.
func NewFitCommand() *FitCommand {
	return &FitCommand{}
}

// Run executes the "fit" subcommand.
func (cmd *FitCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bingo-fit", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("experiment file required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many experiment files specified")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

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
	if len(exp.Targets) == 0 {
		return fmt.Errorf("experiment has no targets")
	}

	logger.Debug("fitting constants",
		slog.Int("params", g.NumberLocalOptimizationParams()),
		slog.Bool("needs_opt", g.NeedsLocalOptimization()))

	if err := opt.NewFitter().Fit(g, x, exp.Targets); err != nil {
		return err
	}

	fitness, err := bingo.RMSE(g, x, exp.Targets)
	if err != nil {
		return err
	}
	g.SetFitness(fitness)
	logger.Debug("fit complete", slog.Float64("rmse", fitness))

	fmt.Printf("f(X) = %s\n", g.ConsoleString())
	fmt.Printf("constants = %v\n", g.LocalOptimizationParams())
	fmt.Printf("rmse = %v\n", fitness)
	return nil
}

func (cmd *FitCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: bingo fit [arguments] [experiment file]

Arguments:

	-v
	    Enable verbose logging.
`[1:])
}
