// Package grammar implements the context-free grammar model, its validation
// and transformation passes (left-recursion elimination, left-factoring),
// and the FIRST/FOLLOW/START analysis sets the two parsers in
// internal/parse are built on.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/tinyc/internal/lex"
)

// PartKind distinguishes the two things a RulePart can stand for.
type PartKind int

const (
	// PartToken means the part matches a single terminal of the given kind.
	PartToken PartKind = iota
	// PartRule means the part expands the named rule.
	PartRule
)

// Part is one symbol in a production: either a terminal (by lex.Kind) or a
// reference to another rule (by name). A production consisting of the
// single part {Kind: PartToken, Token: lex.KindEpsilon} is the empty
// alternative.
type Part struct {
	Kind     PartKind
	Token    lex.Kind
	RuleName string
}

// Epsilon is the sole part of an empty alternative.
var Epsilon = Part{Kind: PartToken, Token: lex.KindEpsilon}

// IsEpsilon reports whether p is the epsilon part.
func (p Part) IsEpsilon() bool { return p.Kind == PartToken && p.Token == lex.KindEpsilon }

// Equal reports whether p and o refer to the same terminal kind or the same
// rule name.
func (p Part) Equal(o Part) bool {
	if p.Kind != o.Kind {
		return false
	}
	if p.Kind == PartToken {
		return p.Token == o.Token
	}
	return p.RuleName == o.RuleName
}

func (p Part) String() string {
	if p.Kind == PartToken {
		return p.Token.Name
	}
	return p.RuleName
}

// Alternative is one production right-hand side: a sequence of parts, never
// empty (the empty alternative is represented by the single-part slice
// {Epsilon}).
type Alternative []Part

// IsEpsilon reports whether alt is the empty alternative.
func (alt Alternative) IsEpsilon() bool {
	return len(alt) == 1 && alt[0].IsEpsilon()
}

func (alt Alternative) String() string {
	parts := make([]string, len(alt))
	for i, p := range alt {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func (alt Alternative) copy() Alternative {
	out := make(Alternative, len(alt))
	copy(out, alt)
	return out
}

func equalAlt(a, b Alternative) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Rule is a single nonterminal and its alternatives. RecursionNum records
// the order rules were first introduced in, the ordering Paull's algorithm
// for indirect left-recursion elimination needs.
type Rule struct {
	Name         string
	RecursionNum int
	Alternatives []Alternative
}

func (r *Rule) String() string {
	alts := make([]string, len(r.Alternatives))
	for i, a := range r.Alternatives {
		alts[i] = a.String()
	}
	return fmt.Sprintf("%s -> %s", r.Name, strings.Join(alts, " | "))
}

// AltRef names one alternative of one rule, the unit FIRST/START analysis is
// keyed on.
type AltRef struct {
	Rule string
	Alt  int
}

// Grammar is an arena of rules: a RulePart referencing another rule stores
// only its name and resolves through the owning Grammar rather than a direct
// pointer, so the structure can be arbitrarily (mutually, self-) recursive
// without any cycle-breaking teardown logic — Go's garbage collector
// reclaims it like any other value once it is unreferenced.
type Grammar struct {
	rules    []*Rule
	index    map[string]int
	start    string
	nextRec  int
	freshSeq map[string]int

	firstCache  map[string]kindSet
	followCache map[string]kindSet
}

// New returns an empty grammar.
func New() *Grammar {
	return &Grammar{
		index:    map[string]int{},
		freshSeq: map[string]int{},
	}
}

func (g *Grammar) invalidateCaches() {
	g.firstCache = nil
	g.followCache = nil
}

// AddRule creates the rule if it does not yet exist (assigning it the next
// recursion number and, if it is the first rule added, making it the start
// symbol), or appends alts to its existing alternatives otherwise. It
// returns the rule.
func (g *Grammar) AddRule(name string, alts ...Alternative) *Rule {
	g.invalidateCaches()
	if i, ok := g.index[name]; ok {
		r := g.rules[i]
		r.Alternatives = append(r.Alternatives, alts...)
		return r
	}
	r := &Rule{Name: name, RecursionNum: g.nextRec, Alternatives: append([]Alternative{}, alts...)}
	g.nextRec++
	g.index[name] = len(g.rules)
	g.rules = append(g.rules, r)
	if g.start == "" {
		g.start = name
	}
	return r
}

// insertAfter creates a brand new, empty rule and inserts it directly after
// src in rule order, keeping a generated helper rule next to the rule it
// was factored out of.
func (g *Grammar) insertAfter(src *Rule, name string) *Rule {
	g.invalidateCaches()
	r := &Rule{Name: name, RecursionNum: g.nextRec}
	g.nextRec++

	srcIdx := g.index[src.Name]
	g.rules = append(g.rules, nil)
	copy(g.rules[srcIdx+2:], g.rules[srcIdx+1:])
	g.rules[srcIdx+1] = r

	for i := srcIdx + 1; i < len(g.rules); i++ {
		g.index[g.rules[i].Name] = i
	}
	return r
}

// freshName generates a name of the form "base__N" for the smallest N not
// already in use in the grammar.
func (g *Grammar) freshName(base string) string {
	for {
		n := g.freshSeq[base]
		g.freshSeq[base] = n + 1
		candidate := fmt.Sprintf("%s__%d", base, n)
		if _, exists := g.index[candidate]; !exists {
			return candidate
		}
	}
}

// Rule looks up a rule by name.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.rules[i], true
}

// Rules returns every rule in grammar order: rules added with AddRule in the
// order they were added, with each generated helper rule placed directly
// after the rule it was derived from.
func (g *Grammar) Rules() []*Rule {
	return append([]*Rule{}, g.rules...)
}

// StartSymbol returns the name of the first rule added to the grammar.
func (g *Grammar) StartSymbol() string { return g.start }

// rulesByRecursionNum returns every rule sorted ascending by RecursionNum,
// the ordering Paull's algorithm for indirect left-recursion elimination
// walks in.
func (g *Grammar) rulesByRecursionNum() []*Rule {
	out := append([]*Rule{}, g.rules...)
	sort.Slice(out, func(i, j int) bool { return out[i].RecursionNum < out[j].RecursionNum })
	return out
}

func (g *Grammar) String() string {
	var sb strings.Builder
	for _, r := range g.rules {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
