package lex

import (
	"fmt"
	"strings"
)

// Error is returned when the scanner encounters text that does not match any
// token in the alphabet: an unterminated string, a digit run glued directly
// to a letter, or a byte that starts nothing recognized.
type Error struct {
	Message  string
	Pos      int
	Line     int
	source   string
	lineText string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexical error at line %d: %s", e.Line, e.Message)
}

// FullMessage renders the error message followed by the offending source
// line and a cursor pointing at the exact column, in the same style the rest
// of the toolkit uses for syntax errors.
func (e *Error) FullMessage() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s\n", e.Line, e.Message)
	sb.WriteString(e.lineText)
	sb.WriteByte('\n')
	col := e.Pos - strings.LastIndex(e.source[:e.Pos], "\n") - 1
	if col < 0 {
		col = 0
	}
	sb.WriteString(strings.Repeat(" ", col))
	sb.WriteByte('^')
	return sb.String()
}

func newError(src string, pos, line int, format string, args ...any) *Error {
	start := strings.LastIndex(src[:pos], "\n") + 1
	end := strings.IndexByte(src[pos:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += pos
	}
	return &Error{
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Line:     line,
		source:   src,
		lineText: src[start:end],
	}
}
