// Package bingo implements the equation representation used by a
// genetic-programming symbolic regression search. Equations are encoded as
// flat acyclic-graph programs so that genetic operators can manipulate them
// as data and evaluation can proceed row by row without recursion.
package bingo

import (
	"errors"
	"fmt"
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrUnknownFormat  = errors.New("unknown format")
	ErrUnknownOp      = errors.New("unknown operation")
	ErrBadReference   = errors.New("operand references an unavailable row")
	ErrLengthMismatch = errors.New("length mismatch")
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
