package grammar

import (
	"testing"

	"github.com/dekarrin/tinyc/internal/lex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseDescription_basic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, err := ParseDescription("S -> A B\nA -> 'fn'\nB -> 'return' | EPSILON\n")
	require.NoError(err)
	require.NoError(g.Validate())

	assert.Equal("S", g.StartSymbol())
	s, ok := g.Rule("S")
	require.True(ok)
	require.Len(s.Alternatives, 1)

	b, ok := g.Rule("B")
	require.True(ok)
	require.Len(b.Alternatives, 2)
	assert.True(b.Alternatives[1].IsEpsilon())
}

func Test_ParseDescription_skipsCommentsAndBlankLines(t *testing.T) {
	require := require.New(t)

	g, err := ParseDescription("# a comment\n\nS -> 'fn'\n")
	require.NoError(err)
	require.NoError(g.Validate())
}

func Test_Validate_undefinedRule(t *testing.T) {
	g := New()
	g.AddRule("S", Alternative{{Kind: PartRule, RuleName: "Missing"}})
	err := g.Validate()
	require.Error(t, err)
	var invalid *InvalidGrammarError
	require.ErrorAs(t, err, &invalid)
}

func Test_Validate_allAlternativesSelfRecursive(t *testing.T) {
	g := New()
	g.AddRule("S", Alternative{{Kind: PartRule, RuleName: "S"}, {Kind: PartToken, Token: lex.KindID}})
	err := g.Validate()
	require.Error(t, err)
}

func Test_Validate_bareSelfReferenceAlternative(t *testing.T) {
	// A -> A | 'return' is not all-self-recursive (the second alternative
	// bottoms out), but its first alternative is a single-part reference to
	// itself that can never consume a token, so it must still be rejected:
	// left-recursion elimination would otherwise carry it straight into the
	// generated helper rule as an un-validated self-reference.
	g, err := ParseDescription("A -> A | 'return'\n")
	require.NoError(t, err)

	err = g.Validate()
	require.Error(t, err)
	var invalid *InvalidGrammarError
	require.ErrorAs(t, err, &invalid)
}

func Test_EliminateDirectLeftRecursion(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// classic E -> E + T | T
	g := New()
	g.AddRule("E",
		Alternative{{Kind: PartRule, RuleName: "E"}, {Kind: PartToken, Token: lex.KindPlus}, {Kind: PartRule, RuleName: "T"}},
		Alternative{{Kind: PartRule, RuleName: "T"}},
	)
	g.AddRule("T", Alternative{{Kind: PartToken, Token: lex.KindID}})

	changed := EliminateDirectLeftRecursion(g)
	require.True(changed)
	require.NoError(g.Validate())

	e, ok := g.Rule("E")
	require.True(ok)
	require.Len(e.Alternatives, 1)
	assert.Equal(PartRule, e.Alternatives[0][0].Kind)
	assert.Equal("T", e.Alternatives[0][0].RuleName)

	freshName := e.Alternatives[0][1].RuleName
	fresh, ok := g.Rule(freshName)
	require.True(ok)
	require.Len(fresh.Alternatives, 2)
	assert.True(fresh.Alternatives[len(fresh.Alternatives)-1].IsEpsilon())
}

func Test_EliminateLeftRecursion_indirect(t *testing.T) {
	require := require.New(t)

	// S -> A a | b
	// A -> S c | d
	g := New()
	g.AddRule("S",
		Alternative{{Kind: PartRule, RuleName: "A"}, {Kind: PartToken, Token: lex.KindPlus}},
		Alternative{{Kind: PartToken, Token: lex.KindMinus}},
	)
	g.AddRule("A",
		Alternative{{Kind: PartRule, RuleName: "S"}, {Kind: PartToken, Token: lex.KindStar}},
		Alternative{{Kind: PartToken, Token: lex.KindSlash}},
	)

	EliminateLeftRecursion(g)
	require.NoError(g.Validate())
	// Elimination removes left recursion only: S -> A + | - still has two
	// alternatives that can start with '-' (A now begins with '- *' or '/').
	require.Error(CheckBacktrackFree(g))

	for _, r := range g.Rules() {
		for i, alt := range r.Alternatives {
			if len(alt) > 0 && alt[0].Kind == PartRule {
				require.NotEqual(r.Name, alt[0].RuleName, "rule %s alt %d is still directly left recursive", r.Name, i)
			}
		}
	}
}

func Test_LeftFactor(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// S -> fn ID LEFT_PAREN | fn ID LEFT_BRACES
	g := New()
	g.AddRule("S",
		Alternative{{Kind: PartToken, Token: lex.KindFn}, {Kind: PartToken, Token: lex.KindID}, {Kind: PartToken, Token: lex.KindLeftParen}},
		Alternative{{Kind: PartToken, Token: lex.KindFn}, {Kind: PartToken, Token: lex.KindID}, {Kind: PartToken, Token: lex.KindLeftBraces}},
	)

	changed := LeftFactor(g)
	require.True(changed)
	require.NoError(g.Validate())

	s, _ := g.Rule("S")
	require.Len(s.Alternatives, 1)
	require.Len(s.Alternatives[0], 3)
	assert.Equal(PartRule, s.Alternatives[0][2].Kind)
}

func Test_FirstFollowStart(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	g, err := ParseDescription("S -> A 'fn' | 'return'\nA -> ID | EPSILON\n")
	require.NoError(err)

	firstA := First(g, Part{Kind: PartRule, RuleName: "A"})
	assert.True(firstA[lex.KindID])
	assert.True(firstA[lex.KindEpsilon])

	followA := Follow(g, "A")
	assert.True(followA[lex.KindFn])

	startS0 := Start(g, AltRef{Rule: "S", Alt: 0})
	assert.True(startS0[lex.KindID])
	assert.True(startS0[lex.KindFn]) // A is nullable, so FIRST(A 'fn') reaches 'fn'

	require.NoError(CheckBacktrackFree(g))
}

func Test_CheckBacktrackFree_detectsConflict(t *testing.T) {
	g, err := ParseDescription("S -> ID 'fn' | ID 'return'\n")
	require.NoError(t, err)

	err = CheckBacktrackFree(g)
	require.Error(t, err)
	var nbf *NotBacktrackFreeError
	require.ErrorAs(t, err, &nbf)
	assert.Equal(t, "S", nbf.Rule)
}

func Test_TransformDriver_convergesOnAlternatingGrammar(t *testing.T) {
	require := require.New(t)

	g := New()
	g.AddRule("S",
		Alternative{{Kind: PartRule, RuleName: "S"}, {Kind: PartToken, Token: lex.KindPlus}, {Kind: PartToken, Token: lex.KindID}},
		Alternative{{Kind: PartToken, Token: lex.KindID}},
		Alternative{{Kind: PartToken, Token: lex.KindID}, {Kind: PartToken, Token: lex.KindPlus}},
	)

	err := g.Validate()
	require.NoError(err)

	err = TransformDriver(g, 100)
	require.NoError(err)
	require.NoError(CheckBacktrackFree(g))
}
