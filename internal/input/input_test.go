package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DirectSourceReader_skipsBlankLines(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r := NewDirectReader(strings.NewReader("\n\nfn main() {}\n"))
	defer r.Close()

	line, err := r.ReadLine()
	require.NoError(err)
	assert.Equal("fn main() {}", line)
	assert.Equal(3, r.LineNo())
}

func Test_DirectSourceReader_allowBlank(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r := NewDirectReader(strings.NewReader("\nx\n"))
	r.AllowBlank(true)
	defer r.Close()

	line, err := r.ReadLine()
	require.NoError(err)
	assert.Equal("", line)
	assert.Equal(1, r.LineNo())
}

func Test_DirectSourceReader_eof(t *testing.T) {
	r := NewDirectReader(strings.NewReader(""))
	defer r.Close()

	_, err := r.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

func Test_ReadStatement_singleLine(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r := NewDirectReader(strings.NewReader("x = 1;\n"))
	defer r.Close()

	stmt, startLine, err := ReadStatement(r)
	require.NoError(err)
	assert.Equal("x = 1;\n", stmt)
	assert.Equal(1, startLine)
}

func Test_ReadStatement_accumulatesUntilBracesBalance(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	src := "fn main() {\n" +
		"x = 1;\n" +
		"}\n" +
		"return x;\n"
	r := NewDirectReader(strings.NewReader(src))
	defer r.Close()

	stmt, startLine, err := ReadStatement(r)
	require.NoError(err)
	assert.Equal(1, startLine)
	assert.Equal("fn main() {\nx = 1;\n}\n", stmt)

	stmt2, startLine2, err := ReadStatement(r)
	require.NoError(err)
	assert.Equal(4, startLine2)
	assert.Equal("return x;\n", stmt2)
}

func Test_ReadStatement_eofAtStreamEnd(t *testing.T) {
	r := NewDirectReader(strings.NewReader(""))
	defer r.Close()

	_, _, err := ReadStatement(r)
	require.ErrorIs(t, err, io.EOF)
}
