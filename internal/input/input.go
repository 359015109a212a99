// Package input contains the source readers cmd/tinyc's REPL uses to get
// program text from the user, one line — or one brace-balanced statement —
// at a time.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// lineCounter tracks how many lines have been consumed from a reader, so a
// REPL session can report which physical line a parse error started on.
type lineCounter struct {
	n int
}

// LineNo returns the number of raw lines ReadLine has consumed so far,
// including blank lines it skipped, i.e. the line number of the last line
// read.
func (lc *lineCounter) LineNo() int { return lc.n }

// DirectSourceReader reads lines from any generic input stream directly. It
// can be used with any io.Reader but does not sanitize the input of control
// and escape sequences, so it is meant for non-tty sources such as a piped
// file or a test.
//
// DirectSourceReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectSourceReader struct {
	lineCounter
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveSourceReader reads lines from stdin using a Go implementation of
// the GNU Readline library, keeping input clear of typing and editing escape
// sequences and enabling command history. This should in general only be
// used when directly connected to a TTY.
//
// InteractiveSourceReader should not be used directly; instead, create one
// with [NewInteractiveReader].
type InteractiveSourceReader struct {
	lineCounter
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a new DirectSourceReader and initializes a buffered
// reader on r. The returned reader must have Close called on it before
// disposal.
func NewDirectReader(r io.Reader) *DirectSourceReader {
	return &DirectSourceReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates a new InteractiveSourceReader and initializes
// readline, keeping history in memory only (tinyc programs are typically
// short enough that a persistent history file isn't worth the extra state).
// The returned reader must have Close called on it before disposal to
// properly teardown readline resources.
func NewInteractiveReader(prompt string) (*InteractiveSourceReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveSourceReader{
		rl:     rl,
		prompt: prompt,
	}, nil
}

// Close cleans up resources associated with the DirectSourceReader.
func (dcr *DirectSourceReader) Close() error {
	return nil
}

// Close cleans up readline resources associated with the
// InteractiveSourceReader.
func (icr *InteractiveSourceReader) Close() error {
	return icr.rl.Close()
}

func (dcr *DirectSourceReader) rawReadLine() (string, error) {
	return dcr.r.ReadString('\n')
}

func (icr *InteractiveSourceReader) rawReadLine() (string, error) {
	return icr.rl.Readline()
}

// readLine is the blocking-until-non-blank loop shared by both reader types;
// only how a raw line is fetched differs between them.
func readLine(raw func() (string, error), blanksAllowed bool, lc *lineCounter) (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = raw()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		lc.n++

		if line == "" && blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadLine reads the next line of source text from the stream. The returned
// string will only be empty if there is an error reading input, otherwise
// this function blocks until a line containing non-space characters is read
// (unless AllowBlank was set).
//
// At end of input, the returned string will be empty and error will be
// io.EOF. Any other error leaves the returned string empty as well.
func (dcr *DirectSourceReader) ReadLine() (string, error) {
	return readLine(dcr.rawReadLine, dcr.blanksAllowed, &dcr.lineCounter)
}

// ReadLine reads the next line of source text from stdin via readline. See
// DirectSourceReader.ReadLine for the blocking and error-reporting contract.
func (icr *InteractiveSourceReader) ReadLine() (string, error) {
	return readLine(icr.rawReadLine, icr.blanksAllowed, &icr.lineCounter)
}

// AllowBlank sets whether blank lines are returned as-is. By default they
// are skipped.
func (dcr *DirectSourceReader) AllowBlank(allow bool) {
	dcr.blanksAllowed = allow
}

// AllowBlank sets whether blank lines are returned as-is. By default they
// are skipped.
func (icr *InteractiveSourceReader) AllowBlank(allow bool) {
	icr.blanksAllowed = allow
}

// SetPrompt updates the prompt text.
func (icr *InteractiveSourceReader) SetPrompt(p string) {
	icr.prompt = p
	icr.rl.SetPrompt(p)
}

// GetPrompt returns the current prompt text.
func (icr *InteractiveSourceReader) GetPrompt() string {
	return icr.prompt
}

// lineSource is the subset of DirectSourceReader/InteractiveSourceReader that
// ReadStatement needs.
type lineSource interface {
	ReadLine() (string, error)
	LineNo() int
}

// ReadStatement reads and joins consecutive lines from rl until curly-brace
// depth returns to zero, so a REPL user can enter a multi-line function
// definition as a single program instead of one that fails to parse because
// it was cut off mid-block. A single-line statement with no braces is
// returned as soon as it is read. It returns the joined source text and the
// 1-based line number the statement started on.
func ReadStatement(rl lineSource) (src string, startLine int, err error) {
	startLine = rl.LineNo() + 1

	var sb strings.Builder
	depth := 0
	haveContent := false

	for {
		line, err := rl.ReadLine()
		if err != nil {
			if haveContent && err == io.EOF {
				return sb.String(), startLine, nil
			}
			return "", startLine, err
		}
		if !haveContent {
			startLine = rl.LineNo()
		}
		haveContent = true

		sb.WriteString(line)
		sb.WriteByte('\n')
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 {
			return sb.String(), startLine, nil
		}
	}
}
