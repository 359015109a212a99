package grammar

// EliminateDirectLeftRecursion rewrites every rule of the form
//
//	A -> A alpha1 | A alpha2 | ... | beta1 | beta2 | ...
//
// (at least one non-recursive beta is guaranteed by Validate) into
//
//	A  -> beta1 A__k | beta2 A__k | ...
//	A__k -> alpha1 A__k | alpha2 A__k | ... | epsilon
//
// for a freshly generated A__k, following Algorithm 4.19 (purple dragon
// book) restricted to the direct case. It returns whether any rule changed.
func EliminateDirectLeftRecursion(g *Grammar) bool {
	changed := false
	for _, r := range append([]*Rule{}, g.rules...) {
		if eliminateDirectLeftRecursionOnRule(g, r) {
			changed = true
		}
	}
	if changed {
		g.invalidateCaches()
	}
	return changed
}

func eliminateDirectLeftRecursionOnRule(g *Grammar, r *Rule) bool {
	var recursive, nonrecursive []Alternative
	for _, alt := range r.Alternatives {
		if len(alt) > 0 && alt[0].Kind == PartRule && alt[0].RuleName == r.Name {
			recursive = append(recursive, alt[1:].copy())
		} else {
			nonrecursive = append(nonrecursive, alt)
		}
	}
	if len(recursive) == 0 {
		return false
	}

	freshName := g.freshName(r.Name)
	fresh := g.insertAfter(r, freshName)

	newMain := make([]Alternative, 0, len(nonrecursive))
	for _, beta := range nonrecursive {
		newMain = append(newMain, appendPart(beta, Part{Kind: PartRule, RuleName: freshName}))
	}
	r.Alternatives = newMain

	freshAlts := make([]Alternative, 0, len(recursive)+1)
	for _, alpha := range recursive {
		freshAlts = append(freshAlts, appendPart(alpha, Part{Kind: PartRule, RuleName: freshName}))
	}
	freshAlts = append(freshAlts, Alternative{Epsilon})
	fresh.Alternatives = freshAlts

	return true
}

func appendPart(alt Alternative, p Part) Alternative {
	out := make(Alternative, 0, len(alt)+1)
	out = append(out, alt...)
	out = append(out, p)
	return out
}

// EliminateLeftRecursion removes all direct and indirect left recursion from
// g using Paull's algorithm (Algorithm 4.19): rules are ordered by
// RecursionNum, and any alternative of a rule A_i beginning with a
// lower-numbered A_s is replaced by substituting A_s's alternatives in,
// after which direct left recursion (now possibly reintroduced in A_i) is
// eliminated again. It returns whether the grammar changed.
func EliminateLeftRecursion(g *Grammar) bool {
	changed := false
	for {
		if EliminateDirectLeftRecursion(g) {
			changed = true
		}
		if !eliminateOneIndirectStep(g) {
			break
		}
		changed = true
	}
	return changed
}

// eliminateOneIndirectStep finds the lowest-numbered rule with an
// alternative beginning with a still-lower-numbered rule reference,
// substitutes that rule's alternatives in for the reference, and reports
// whether it found one.
func eliminateOneIndirectStep(g *Grammar) bool {
	ordered := g.rulesByRecursionNum()
	for _, ai := range ordered {
		for k, alt := range ai.Alternatives {
			if len(alt) == 0 || alt[0].Kind != PartRule {
				continue
			}
			as, ok := g.Rule(alt[0].RuleName)
			if !ok || as.RecursionNum >= ai.RecursionNum {
				continue
			}

			gamma := alt[1:]
			newAlts := make([]Alternative, 0, len(ai.Alternatives)-1+len(as.Alternatives))
			newAlts = append(newAlts, ai.Alternatives[:k]...)
			for _, delta := range as.Alternatives {
				if delta.IsEpsilon() {
					if len(gamma) == 0 {
						newAlts = append(newAlts, Alternative{Epsilon})
					} else {
						newAlts = append(newAlts, gamma.copy())
					}
					continue
				}
				newAlts = append(newAlts, concatParts(delta, gamma))
			}
			newAlts = append(newAlts, ai.Alternatives[k+1:]...)
			ai.Alternatives = moveEpsilonLast(newAlts)
			g.invalidateCaches()
			return true
		}
	}
	return false
}

func concatParts(a, b Alternative) Alternative {
	out := make(Alternative, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// moveEpsilonLast moves any epsilon alternative to the end of the slice and
// drops duplicate epsilon alternatives, keeping the ordering of everything
// else stable.
func moveEpsilonLast(alts []Alternative) []Alternative {
	out := make([]Alternative, 0, len(alts))
	sawEpsilon := false
	for _, a := range alts {
		if a.IsEpsilon() {
			sawEpsilon = true
			continue
		}
		out = append(out, a)
	}
	if sawEpsilon {
		out = append(out, Alternative{Epsilon})
	}
	return out
}

// LeftFactor repeatedly finds, for each rule, the longest common prefix
// shared by two or more alternatives and factors it out into a fresh rule
// (Algorithm 4.21), until no rule has any remaining common prefix. It
// returns whether the grammar changed.
func LeftFactor(g *Grammar) bool {
	changed := false
	for leftFactorOnePass(g) {
		changed = true
	}
	return changed
}

func leftFactorOnePass(g *Grammar) bool {
	for _, r := range append([]*Rule{}, g.rules...) {
		var bestPrefix Alternative
		for i := 0; i < len(r.Alternatives); i++ {
			for j := i + 1; j < len(r.Alternatives); j++ {
				p := commonPrefix(r.Alternatives[i], r.Alternatives[j])
				if len(p) > len(bestPrefix) {
					bestPrefix = p
				}
			}
		}
		if len(bestPrefix) == 0 {
			continue
		}

		freshName := g.freshName(r.Name)
		fresh := g.insertAfter(r, freshName)

		var keep []Alternative
		var freshAlts []Alternative
		replaced := false
		for _, alt := range r.Alternatives {
			if !hasPrefix(alt, bestPrefix) {
				keep = append(keep, alt)
				continue
			}
			suffix := alt[len(bestPrefix):].copy()
			if len(suffix) == 0 {
				suffix = Alternative{Epsilon}
			}
			freshAlts = append(freshAlts, suffix)
			if !replaced {
				keep = append(keep, appendPart(bestPrefix.copy(), Part{Kind: PartRule, RuleName: freshName}))
				replaced = true
			}
		}

		r.Alternatives = moveEpsilonLast(keep)
		fresh.Alternatives = moveEpsilonLast(freshAlts)
		g.invalidateCaches()
		return true
	}
	return false
}

func commonPrefix(a, b Alternative) Alternative {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var out Alternative
	for i := 0; i < n; i++ {
		if !a[i].Equal(b[i]) {
			break
		}
		out = append(out, a[i])
	}
	return out
}

func hasPrefix(alt, prefix Alternative) bool {
	if len(prefix) > len(alt) {
		return false
	}
	for i := range prefix {
		if !alt[i].Equal(prefix[i]) {
			return false
		}
	}
	return true
}

// TransformDriver alternates EliminateLeftRecursion and LeftFactor, since
// each can reintroduce the condition the other removes, until a round
// produces no change in either. If the grammar has not stabilized within
// maxRounds rounds, it returns a *TransformationNotConvergingError.
func TransformDriver(g *Grammar, maxRounds int) error {
	for round := 0; round < maxRounds; round++ {
		lr := EliminateLeftRecursion(g)
		lf := LeftFactor(g)
		if !lr && !lf {
			return g.Validate()
		}
	}
	return &TransformationNotConvergingError{Rounds: maxRounds}
}
