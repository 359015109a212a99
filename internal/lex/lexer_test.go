package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lex_basicProgram(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	src := `fn main() {
	x = 1 + 2;
	return x;
}`

	toks, err := Lex(src)
	require.NoError(err)
	require.NotEmpty(toks)

	assert.Equal(KindEOF, toks[len(toks)-1].Kind)

	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}

	expect := []Kind{
		KindFn, KindID, KindLeftParen, KindRightParen, KindLeftBraces,
		KindID, KindEqual, KindInt, KindPlus, KindInt, KindSemicolon,
		KindReturn, KindID, KindSemicolon,
		KindRightBraces, KindEOF,
	}
	assert.Equal(expect, kinds)
}

func Test_Lex_string(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	toks, err := Lex(`"hello, \"world\""`)
	require.NoError(err)
	require.Len(toks, 2)
	assert.Equal(KindString, toks[0].Kind)
	assert.Equal(`"hello, \"world\""`, toks[0].Text)
}

func Test_Lex_unterminatedString(t *testing.T) {
	_, err := Lex(`"abc`)
	assert.Error(t, err)
	var lexErr *Error
	assert.ErrorAs(t, err, &lexErr)
}

func Test_Lex_digitFollowedByLetter(t *testing.T) {
	_, err := Lex(`123abc`)
	assert.Error(t, err)
}

func Test_Lex_unknownCharacter(t *testing.T) {
	_, err := Lex(`@`)
	assert.Error(t, err)
}

func Test_Stream_rewind(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	toks, err := Lex(`x = 1`)
	require.NoError(err)

	s := NewStream(toks)
	mark := s.Pos()
	first := s.Next()
	assert.Equal(KindID, first.Kind)
	s.Next()
	s.Next()

	s.Seek(mark)
	assert.Equal(first, s.Peek())
	assert.False(s.AtEnd())
}
