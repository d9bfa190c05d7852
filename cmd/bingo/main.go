package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "eval":
		return NewEvalCommand().Run(ctx, args)
	case "fit":
		return NewFitCommand().Run(ctx, args)
	case "dump":
		return NewDumpCommand().Run(ctx, args)
	default:
		return fmt.Errorf(`bingo %s: unknown command`, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Bingo is a tool for evaluating symbolic regression equations.

Usage:

	bingo <command> [arguments]

The commands are:

	eval        evaluate an experiment's equation over its inputs
	fit         fit the equation's constants to the experiment targets
	dump        print the equation's internal state
	help        this screen
`[1:])
}
