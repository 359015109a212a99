package gramcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/tinyc/internal/grammar"
)

const source = `
expressions -> terms + expressions | terms
terms       -> factor * terms | factor
factor      -> INT | ID
`

func Test_SaveLoad_roundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, err := grammar.ParseDescription(source)
	require.NoError(err)
	require.True(grammar.LeftFactor(g))

	dir := t.TempDir()
	path := filepath.Join(dir, "expr.grammar")
	src := []byte(source)

	require.NoError(Save(path, src, g))
	_, statErr := os.Stat(PathFor(path))
	require.NoError(statErr)

	loaded, ok, err := Load(path, src)
	require.NoError(err)
	require.True(ok)
	require.Equal(g.StartSymbol(), loaded.StartSymbol())

	for _, r := range g.Rules() {
		lr, found := loaded.Rule(r.Name)
		require.True(found)
		require.Len(lr.Alternatives, len(r.Alternatives))
		for i, alt := range r.Alternatives {
			assert.Equal(alt.String(), lr.Alternatives[i].String())
		}
	}
}

func Test_Load_missingCacheReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nope.grammar")

	g, ok, err := Load(path, []byte(source))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, g)
}

func Test_Load_staleSourceReturnsNotOK(t *testing.T) {
	require := require.New(t)

	g, err := grammar.ParseDescription(source)
	require.NoError(err)

	dir := t.TempDir()
	path := filepath.Join(dir, "expr.grammar")
	require.NoError(Save(path, []byte(source), g))

	loaded, ok, err := Load(path, []byte(source+"\nextra -> ID\n"))
	require.NoError(err)
	require.False(ok)
	require.Nil(loaded)
}
