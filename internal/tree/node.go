// Package tree implements the parse-tree shape both parsers in
// internal/parse build: a node stands either for a rule (with the
// alternative index that was chosen) or for a terminal (with the token, if
// any, it matched).
package tree

import (
	"fmt"
	"strings"

	"github.com/dekarrin/tinyc/internal/grammar"
	"github.com/dekarrin/tinyc/internal/lex"
)

// Node is one node of a parse tree. Parent is a plain pointer rather than a
// weak or index-based reference: Go's garbage collector traces live roots
// instead of reference-counting, so a direct cycle between parent and child
// pointers neither leaks nor needs manual breaking, and still gives O(1)
// access to the parent from anywhere in the tree.
type Node struct {
	Part     grammar.Part
	AltIndex int
	Token    *lex.Token
	Parent   *Node
	Children []*Node

	// Num is a monotonically increasing identifier assigned at node
	// creation time. The backtracking parser uses it to remove an
	// abandoned subtree's nodes from its pending stack in one pass, without
	// needing to compare pointers.
	Num int
}

// NewRuleNode creates a node standing for an as-yet-unexpanded rule.
func NewRuleNode(ruleName string, num int) *Node {
	return &Node{Part: grammar.Part{Kind: grammar.PartRule, RuleName: ruleName}, AltIndex: -1, Num: num}
}

// NewTerminalNode creates a node standing for a terminal of the given kind,
// not yet matched against a token.
func NewTerminalNode(kind lex.Kind, num int) *Node {
	return &Node{Part: grammar.Part{Kind: grammar.PartToken, Token: kind}, Num: num}
}

// IsRule reports whether n stands for a rule rather than a terminal.
func (n *Node) IsRule() bool { return n.Part.Kind == grammar.PartRule }

// IsTerminal reports whether n stands for a terminal.
func (n *Node) IsTerminal() bool { return n.Part.Kind == grammar.PartToken }

// RuleName returns the rule n expands, valid only when IsRule is true.
func (n *Node) RuleName() string { return n.Part.RuleName }

// LeafTokens returns the tokens matched by every terminal leaf in the tree,
// in left-to-right order, skipping epsilon leaves (which matched nothing).
// The result is the run of input tokens this subtree consumed; whitespace
// between them is not part of any token.
func (n *Node) LeafTokens() []lex.Token {
	var out []lex.Token
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.IsTerminal() {
			if cur.Token != nil {
				out = append(out, *cur.Token)
			}
			return
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Equal reports whether n and o have the same structure: same rule/terminal
// identity, same alternative index where applicable, same matched token
// text, and recursively equal children. Parent and Num are bookkeeping, not
// structure, so they are ignored.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if !n.Part.Equal(o.Part) {
		return false
	}
	if n.IsRule() && n.AltIndex != o.AltIndex {
		return false
	}
	if n.IsTerminal() {
		switch {
		case n.Token == nil && o.Token == nil:
		case n.Token != nil && o.Token != nil:
			if n.Token.Text != o.Token.Text {
				return false
			}
		default:
			return false
		}
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// tree-printing layout: an indented-prefix convention with distinct glyphs
// for an ongoing sibling, the last sibling, and the empty continuation.
const (
	treeLevelEmpty     = "        "
	treeLevelOngoing   = "  |     "
	treeLevelPrefix    = "  |-- "
	treeLevelLastPrefix = `  \-- `
)

// String renders the tree in an indented-prefix style, one node
// per line, suitable for human debugging and for line-by-line comparison in
// tests.
func (n *Node) String() string {
	return n.leveledStr("", "")
}

func (n *Node) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder
	sb.WriteString(firstPrefix)

	if n.IsTerminal() {
		if n.Part.Token == lex.KindEpsilon {
			sb.WriteString("(EPSILON)")
		} else if n.Token != nil {
			fmt.Fprintf(&sb, "(%s %q)", n.Part.Token.Name, n.Token.Text)
		} else {
			fmt.Fprintf(&sb, "(%s)", n.Part.Token.Name)
		}
	} else {
		fmt.Fprintf(&sb, "( %s )", n.Part.RuleName)
	}

	for i, c := range n.Children {
		sb.WriteByte('\n')
		var childFirst, childCont string
		if i+1 < len(n.Children) {
			childFirst = contPrefix + treeLevelPrefix
			childCont = contPrefix + treeLevelOngoing
		} else {
			childFirst = contPrefix + treeLevelLastPrefix
			childCont = contPrefix + treeLevelEmpty
		}
		sb.WriteString(c.leveledStr(childFirst, childCont))
	}

	return sb.String()
}

// SExpr renders the tree as a single-line S-expression, an alternate,
// compact view cmd/tinyc offers via --tree sexpr.
func (n *Node) SExpr() string {
	if n.IsTerminal() {
		if n.Part.Token == lex.KindEpsilon {
			return "ε"
		}
		if n.Token != nil {
			return fmt.Sprintf("%s:%s", n.Part.Token.Name, n.Token.Text)
		}
		return n.Part.Token.Name
	}

	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.SExpr()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%s)", n.Part.RuleName)
	}
	return fmt.Sprintf("(%s %s)", n.Part.RuleName, strings.Join(parts, " "))
}
