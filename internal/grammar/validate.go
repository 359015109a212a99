package grammar

import "fmt"

// Validate checks the structural invariants from §4.2 and returns an
// *InvalidGrammarError collecting every violation found, or nil if the
// grammar is well-formed. It does not look at FIRST/FOLLOW/START at all;
// CheckBacktrackFree is the separate, stronger check a predictive parse
// requires.
func (g *Grammar) Validate() error {
	var reasons []string

	if g.start == "" {
		reasons = append(reasons, "grammar has no rules")
	}

	for _, r := range g.rules {
		if len(r.Alternatives) == 0 {
			reasons = append(reasons, fmt.Sprintf("rule %q has no alternatives", r.Name))
			continue
		}

		allSelfRecursive := true
		for i, alt := range r.Alternatives {
			if len(alt) == 0 {
				reasons = append(reasons, fmt.Sprintf("rule %q alternative %d is empty (use the epsilon part instead)", r.Name, i))
				continue
			}

			for j, p := range alt {
				if p.IsEpsilon() {
					if len(alt) > 1 {
						reasons = append(reasons, fmt.Sprintf("rule %q alternative %d mixes epsilon with other parts", r.Name, i))
					}
					continue
				}
				if p.Kind == PartRule {
					if _, ok := g.index[p.RuleName]; !ok {
						reasons = append(reasons, fmt.Sprintf("rule %q alternative %d part %d references undefined rule %q", r.Name, i, j, p.RuleName))
					}
				}
			}

			if !(alt[0].Kind == PartRule && alt[0].RuleName == r.Name) {
				allSelfRecursive = false
			}

			if len(alt) == 1 && alt[0].Kind == PartRule && alt[0].RuleName == r.Name {
				reasons = append(reasons, fmt.Sprintf("rule %q alternative %d is a bare self-reference with no parts of its own to consume input, so it can never bottom out even alongside other alternatives", r.Name, i))
			}
		}

		if allSelfRecursive && len(r.Alternatives) > 0 {
			reasons = append(reasons, fmt.Sprintf("rule %q has no non-recursive alternative to bottom out on (every alternative starts with itself)", r.Name))
		}
	}

	if len(reasons) == 0 {
		return nil
	}
	return &InvalidGrammarError{Reasons: reasons}
}

// HasUnreachableRules reports whether any rule other than the start symbol
// cannot be reached from it.
func (g *Grammar) HasUnreachableRules() bool {
	return len(g.UnreachableRules()) > 0
}

// UnreachableRules returns the names of every rule that cannot be reached
// from the start symbol by following rule references.
func (g *Grammar) UnreachableRules() []string {
	reached := map[string]bool{}
	var visit func(name string)
	visit = func(name string) {
		if reached[name] {
			return
		}
		reached[name] = true
		r, ok := g.Rule(name)
		if !ok {
			return
		}
		for _, alt := range r.Alternatives {
			for _, p := range alt {
				if p.Kind == PartRule {
					visit(p.RuleName)
				}
			}
		}
	}
	if g.start != "" {
		visit(g.start)
	}

	var unreached []string
	for _, r := range g.rules {
		if !reached[r.Name] {
			unreached = append(unreached, r.Name)
		}
	}
	return unreached
}
