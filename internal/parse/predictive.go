package parse

import (
	"github.com/dekarrin/tinyc/internal/grammar"
	"github.com/dekarrin/tinyc/internal/lex"
	"github.com/dekarrin/tinyc/internal/tree"
)

// Predictive parses stream against g with one recursive routine per rule,
// choosing an alternative by looking at FIRST(alternative) and, for a
// nullable alternative, FOLLOW(rule) or end of input (§4.8) — never retrying a choice once
// made. g must be backtrack-free (see grammar.CheckBacktrackFree); calling
// Predictive on a grammar that is not is a caller error the function does
// not itself re-validate, since checking it is only worth doing once per
// grammar, not once per parse.
//
// On error, the returned node is the start-symbol root with whatever
// progress had been made still attached, and the error is an
// *UnexpectedTokenError naming the rule parsing failed in and the tokens
// that would have been acceptable there.
func Predictive(g *grammar.Grammar, stream *lex.Stream) (*tree.Node, error) {
	num := 0
	root, err := parseRule(g, g.StartSymbol(), stream, &num)
	if err != nil {
		return root, err
	}
	if !stream.AtEnd() {
		return root, &UnexpectedTokenError{RuleName: g.StartSymbol(), Expected: []lex.Kind{{Name: "<end of input>"}}, Got: stream.Peek()}
	}
	return root, nil
}

func parseRule(g *grammar.Grammar, name string, stream *lex.Stream, num *int) (*tree.Node, error) {
	*num++
	node := tree.NewRuleNode(name, *num)

	rule, _ := g.Rule(name)
	lookahead := stream.Peek()

	altIdx := selectAlternative(g, rule, lookahead.Kind)
	if altIdx < 0 {
		return node, &UnexpectedTokenError{RuleName: name, Expected: expectedKinds(g, rule), Got: lookahead}
	}
	node.AltIndex = altIdx

	for _, part := range rule.Alternatives[altIdx] {
		if part.Kind == grammar.PartToken {
			*num++
			child := tree.NewTerminalNode(part.Token, *num)
			child.Parent = node
			node.Children = append(node.Children, child)

			if part.Token == lex.KindEpsilon {
				continue
			}
			if stream.Peek().Kind != part.Token {
				return node, &UnexpectedTokenError{RuleName: name, Expected: []lex.Kind{part.Token}, Got: stream.Peek()}
			}
			tok := stream.Next()
			child.Token = &tok
			continue
		}

		child, err := parseRule(g, part.RuleName, stream, num)
		child.Parent = node
		node.Children = append(node.Children, child)
		if err != nil {
			return node, err
		}
	}

	return node, nil
}

// selectAlternative returns the index of the alternative whose START set
// contains lookahead. At end of input, where no START set can match because
// FOLLOW never holds an end-of-input marker, it returns the alternative that
// can derive the empty string instead. It returns -1 if neither applies.
func selectAlternative(g *grammar.Grammar, rule *grammar.Rule, lookahead lex.Kind) int {
	for i := range rule.Alternatives {
		if grammar.Start(g, grammar.AltRef{Rule: rule.Name, Alt: i})[lookahead] {
			return i
		}
	}
	if lookahead == lex.KindEOF {
		for i, alt := range rule.Alternatives {
			if grammar.FirstOfSequence(g, alt)[lex.KindEpsilon] {
				return i
			}
		}
	}
	return -1
}

func expectedKinds(g *grammar.Grammar, rule *grammar.Rule) []lex.Kind {
	seen := map[lex.Kind]bool{}
	var out []lex.Kind
	for i := range rule.Alternatives {
		for k := range grammar.Start(g, grammar.AltRef{Rule: rule.Name, Alt: i}) {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
