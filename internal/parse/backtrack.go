package parse

import (
	"github.com/dekarrin/tinyc/internal/grammar"
	"github.com/dekarrin/tinyc/internal/lex"
	"github.com/dekarrin/tinyc/internal/tree"
)

// btFrame remembers, for one rule node currently on the path from the root,
// the stream position its first alternative started matching at and the
// index of the alternative it is currently trying. Both stay fixed across
// retries of that same node except the alternative index, which advances by
// one each time every alternative it selected so far fails.
type btFrame struct {
	streamPos int
	alt       int
}

type btState struct {
	g      *grammar.Grammar
	stream *lex.Stream
	frames map[*tree.Node]btFrame
	pending []*tree.Node
	numCounter int
}

func (st *btState) nextNum() int {
	st.numCounter++
	return st.numCounter
}

func (st *btState) push(n *tree.Node) {
	st.pending = append(st.pending, n)
}

func (st *btState) pop() *tree.Node {
	n := st.pending[len(st.pending)-1]
	st.pending = st.pending[:len(st.pending)-1]
	return n
}

// Backtrack parses stream against g using the explicit-stack backtracking
// algorithm in §4.7: a mutable focus and a pending stack of nodes yet to be
// visited. Rule nodes try their alternatives in order; when a terminal fails
// to match, the parser walks up to the nearest ancestor rule node with an
// untried alternative, discards that node's subtree (removing its
// descendants from the pending stack by Num and rewinding the token stream
// to where the node started), and resumes there.
//
// g need not be backtrack-free, only free of left recursion: trying an
// alternative that turns out wrong is recoverable here, unlike in Predictive.
//
// The returned node is always non-nil, rooted at the grammar's start symbol;
// on error every alternative of the root has been tried and undone, so the
// root is returned with no children.
func Backtrack(g *grammar.Grammar, stream *lex.Stream) (*tree.Node, error) {
	st := &btState{g: g, stream: stream, frames: map[*tree.Node]btFrame{}}

	root := tree.NewRuleNode(g.StartSymbol(), st.nextNum())
	st.push(root)
	var lastVisited *tree.Node

	for {
		if len(st.pending) == 0 {
			if stream.AtEnd() {
				return root, nil
			}
			if lastVisited == nil {
				return root, &NoBacktrackLeftError{Got: stream.Peek()}
			}
			if _, ok := st.backtrackFrom(lastVisited); !ok {
				return root, &NoBacktrackLeftError{Got: stream.Peek()}
			}
			lastVisited = nil
			continue
		}

		node := st.pop()

		if node.IsTerminal() {
			if node.Part.Token == lex.KindEpsilon {
				lastVisited = node
				continue
			}
			if stream.Peek().Kind == node.Part.Token {
				tok := stream.Next()
				node.Token = &tok
				lastVisited = node
				continue
			}
			if _, ok := st.backtrackFrom(node.Parent); !ok {
				return root, &NoBacktrackLeftError{Got: stream.Peek()}
			}
			lastVisited = nil
			continue
		}

		if !st.visitRule(node) {
			if _, ok := st.backtrackFrom(node.Parent); !ok {
				return root, &NoBacktrackLeftError{Got: stream.Peek()}
			}
			lastVisited = nil
			continue
		}
		lastVisited = node
	}
}

// visitRule expands node with whichever alternative its frame currently
// names (alt 0, stream position now, on a never-before-seen node),
// pushing its children onto the pending stack in reverse so the leftmost is
// processed first. It reports false if the node has no more alternatives.
func (st *btState) visitRule(node *tree.Node) bool {
	fr, exists := st.frames[node]
	alt, streamPos := 0, st.stream.Pos()
	if exists {
		alt, streamPos = fr.alt, fr.streamPos
	}

	rule, ok := st.g.Rule(node.RuleName())
	if !ok || alt >= len(rule.Alternatives) {
		return false
	}
	st.frames[node] = btFrame{streamPos: streamPos, alt: alt}
	node.AltIndex = alt

	parts := rule.Alternatives[alt]
	children := make([]*tree.Node, len(parts))
	for i, p := range parts {
		var child *tree.Node
		if p.Kind == grammar.PartRule {
			child = tree.NewRuleNode(p.RuleName, st.nextNum())
		} else {
			child = tree.NewTerminalNode(p.Token, st.nextNum())
		}
		child.Parent = node
		children[i] = child
	}
	node.Children = children

	for i := len(children) - 1; i >= 0; i-- {
		st.push(children[i])
	}
	return true
}

// backtrackFrom walks from start (or start's parent, if start is a
// terminal) up through rule-node ancestors, undoing each one's current
// subtree and advancing to its next alternative, until it finds an
// ancestor with an alternative left to try. It returns that node (already
// pushed back onto the pending stack, ready for visitRule to expand with
// the new alternative) or false if the search reached past the root.
func (st *btState) backtrackFrom(start *tree.Node) (*tree.Node, bool) {
	cur := start
	if cur != nil && cur.IsTerminal() {
		cur = cur.Parent
	}

	for cur != nil {
		fr := st.frames[cur]
		st.undo(cur, fr.streamPos)

		rule, _ := st.g.Rule(cur.RuleName())
		nextAlt := fr.alt + 1
		if nextAlt < len(rule.Alternatives) {
			st.frames[cur] = btFrame{streamPos: fr.streamPos, alt: nextAlt}
			st.push(cur)
			return cur, true
		}
		cur = cur.Parent
	}
	return nil, false
}

// undo discards node's current subtree: every descendant still waiting on
// the pending stack is removed from it (by Num, in one pass over the
// stack), node's children are cleared, and the token stream is rewound to
// seekPos — the position node itself started matching its current
// alternative at, restoring every token the subtree had consumed.
func (st *btState) undo(node *tree.Node, seekPos int) {
	if len(node.Children) > 0 {
		removed := map[int]bool{}
		var collect func(*tree.Node)
		collect = func(n *tree.Node) {
			removed[n.Num] = true
			for _, c := range n.Children {
				collect(c)
			}
		}
		for _, c := range node.Children {
			collect(c)
		}

		filtered := st.pending[:0]
		for _, n := range st.pending {
			if !removed[n.Num] {
				filtered = append(filtered, n)
			}
		}
		st.pending = filtered
		node.Children = nil
	}
	st.stream.Seek(seekPos)
}
