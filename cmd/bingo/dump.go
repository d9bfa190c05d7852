package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
)

// DumpCommand represents a command for printing an equation's state.
type DumpCommand struct{}

// NewDumpCommand returns a new instance of DumpCommand.
func NewDumpCommand() *DumpCommand {
	return &DumpCommand{}
}

// Run executes the "dump" subcommand.
func (cmd *DumpCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bingo-dump", flag.ContinueOnError)
	derived := fs.Bool("derived", false, "derive simplified state before dumping")
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
	if *derived {
		g.Complexity() // force recompute
	}
	spew.Fdump(os.Stdout, g.DumpState())
	return nil
}

func (cmd *DumpCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: bingo dump [arguments] [experiment file]

Arguments:

	-derived
	    Recompute the simplified program before dumping.
`[1:])
}
