package grammar

import (
	"github.com/dekarrin/tinyc/internal/lex"
	"github.com/dekarrin/tinyc/internal/util"
)

// kindSet is the concrete set type FIRST/FOLLOW/START are built from,
// reusing internal/util's generic container rather than a bare map.
type kindSet = util.KeySet[lex.Kind]

// ensureSets computes and memoizes the FIRST and FOLLOW set of every rule by
// standard worklist fixpoint iteration (purple dragon book, algorithms
// 4.4-4.5). A fixpoint is used rather than direct recursion specifically so
// that FIRST/FOLLOW can be computed on a grammar that still contains left
// recursion (e.g. for diagnostics, before TransformDriver has run) without
// looping forever chasing a rule's own first alternative.
func (g *Grammar) ensureSets() {
	if g.firstCache != nil {
		return
	}
	g.firstCache = g.computeFirstSets()
	g.followCache = g.computeFollowSets(g.firstCache)
}

func (g *Grammar) computeFirstSets() map[string]kindSet {
	first := make(map[string]kindSet, len(g.rules))
	for _, r := range g.rules {
		first[r.Name] = util.NewKeySet[lex.Kind]()
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			for _, alt := range r.Alternatives {
				seq, nullable := firstOfSequence(first, alt)
				for _, k := range seq.Elements() {
					if !first[r.Name].Has(k) {
						first[r.Name].Add(k)
						changed = true
					}
				}
				if nullable && !first[r.Name].Has(lex.KindEpsilon) {
					first[r.Name].Add(lex.KindEpsilon)
					changed = true
				}
			}
		}
	}
	return first
}

// firstOfSequence computes FIRST of a part sequence given the (possibly
// still-growing) per-rule FIRST sets, returning the terminals seen (never
// including epsilon) and whether the whole sequence can derive epsilon.
func firstOfSequence(first map[string]kindSet, parts []Part) (kindSet, bool) {
	out := util.NewKeySet[lex.Kind]()
	for _, p := range parts {
		if p.IsEpsilon() {
			return out, true
		}
		var partFirst kindSet
		if p.Kind == PartToken {
			partFirst = util.NewKeySet[lex.Kind]()
			partFirst.Add(p.Token)
		} else {
			partFirst = first[p.RuleName]
		}
		nullable := false
		for _, k := range partFirst.Elements() {
			if k == lex.KindEpsilon {
				nullable = true
				continue
			}
			out.Add(k)
		}
		if !nullable {
			return out, false
		}
	}
	return out, true
}

func (g *Grammar) computeFollowSets(first map[string]kindSet) map[string]kindSet {
	follow := make(map[string]kindSet, len(g.rules))
	for _, r := range g.rules {
		follow[r.Name] = util.NewKeySet[lex.Kind]()
	}

	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			for _, alt := range r.Alternatives {
				for i, p := range alt {
					if p.Kind != PartRule {
						continue
					}
					betaFirst, betaNullable := firstOfSequence(first, alt[i+1:])
					for _, k := range betaFirst.Elements() {
						if !follow[p.RuleName].Has(k) {
							follow[p.RuleName].Add(k)
							changed = true
						}
					}
					if betaNullable {
						for _, k := range follow[r.Name].Elements() {
							if !follow[p.RuleName].Has(k) {
								follow[p.RuleName].Add(k)
								changed = true
							}
						}
					}
				}
			}
		}
	}
	return follow
}

// First returns FIRST(X) for a single symbol X: the set of terminals that
// can appear as the first token of some derivation of X, including
// lex.KindEpsilon if X can derive the empty string.
func First(g *Grammar, part Part) kindSet {
	g.ensureSets()
	if part.Kind == PartToken {
		single := util.NewKeySet[lex.Kind]()
		single.Add(part.Token)
		return single
	}
	return g.firstCache[part.RuleName].Copy().(kindSet)
}

// FirstOfSequence returns FIRST of an entire part sequence (an alternative,
// or a suffix of one), including lex.KindEpsilon if the whole sequence can
// derive the empty string.
func FirstOfSequence(g *Grammar, parts []Part) kindSet {
	g.ensureSets()
	seq, nullable := firstOfSequence(g.firstCache, parts)
	if nullable {
		seq.Add(lex.KindEpsilon)
	}
	return seq
}

// Follow returns FOLLOW(A) for the named rule: the set of terminals that can
// appear immediately after A in some derivation from the start symbol. Per
// the Open Question in §9, this implementation does not inject an
// end-of-input marker into FOLLOW(start symbol); both parsers check for
// stream exhaustion independently instead.
func Follow(g *Grammar, ruleName string) kindSet {
	g.ensureSets()
	return g.followCache[ruleName].Copy().(kindSet)
}

// Start returns START(A -> alpha) for one alternative: FIRST(alpha), or, if
// alpha is nullable, FIRST(alpha) union FOLLOW(A) (with epsilon itself never
// included, since START describes which lookahead tokens select the
// alternative, and epsilon is not a token the lexer ever produces).
func Start(g *Grammar, ref AltRef) kindSet {
	r, ok := g.Rule(ref.Rule)
	if !ok || ref.Alt < 0 || ref.Alt >= len(r.Alternatives) {
		return util.NewKeySet[lex.Kind]()
	}
	alt := r.Alternatives[ref.Alt]
	set := FirstOfSequence(g, alt)
	nullable := set.Has(lex.KindEpsilon)
	set.Remove(lex.KindEpsilon)
	if nullable {
		for _, k := range Follow(g, ref.Rule).Elements() {
			set.Add(k)
		}
	}
	return set
}

// CheckBacktrackFree reports, via a *NotBacktrackFreeError, the first pair of
// alternatives in the same rule whose START sets overlap — the condition
// that would make the predictive parser unable to choose between them from
// one token of lookahead. Rules and alternative pairs are checked in
// insertion order, so repeated calls on an unchanged grammar always report
// the same conflict.
func CheckBacktrackFree(g *Grammar) error {
	for _, r := range g.rules {
		for i := 0; i < len(r.Alternatives); i++ {
			si := Start(g, AltRef{Rule: r.Name, Alt: i})
			for j := i + 1; j < len(r.Alternatives); j++ {
				sj := Start(g, AltRef{Rule: r.Name, Alt: j})
				inter := si.Intersection(sj)
				if !inter.Empty() {
					out := make([]lex.Kind, 0, inter.Len())
					out = append(out, inter.(kindSet).Elements()...)
					return &NotBacktrackFreeError{Rule: r.Name, AltI: i, AltJ: j, Intersection: out}
				}
			}
		}
	}
	return nil
}
