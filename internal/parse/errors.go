// Package parse implements the two parsers that share the internal/tree
// node shape: a backtracking top-down parser that works on any
// left-recursion-free grammar, and a table-free predictive recursive-descent
// parser that additionally requires the grammar to be backtrack-free.
package parse

import (
	"fmt"

	"github.com/dekarrin/tinyc/internal/lex"
	"github.com/dekarrin/tinyc/internal/util"
)

// UnexpectedTokenError is returned by the predictive parser when the
// lookahead token does not select any alternative of the current rule.
type UnexpectedTokenError struct {
	RuleName string
	Expected []lex.Kind
	Got      lex.Token
}

func (e *UnexpectedTokenError) Error() string {
	names := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		names[i] = k.Name
	}
	got := e.Got.String()
	if e.Got.Kind == lex.KindEOF {
		got = "end of input"
	}
	return fmt.Sprintf("line %d: while parsing %s, expected %s, got %s",
		e.Got.Line, e.RuleName, util.MakeTextList(names), got)
}

// NoBacktrackLeftError is returned by the backtracking parser when every
// alternative at every level up to the start symbol has been exhausted
// without matching the input.
type NoBacktrackLeftError struct {
	Got lex.Token
}

func (e *NoBacktrackLeftError) Error() string {
	got := e.Got.String()
	if e.Got.Kind == lex.KindEOF {
		got = "end of input"
	}
	return fmt.Sprintf("line %d: no alternative matches remaining input starting at %s", e.Got.Line, got)
}
