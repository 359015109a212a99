package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/tinyc/internal/lex"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ParseDescription parses the textual grammar description language defined
// by §4.1 (GrammarDesc := (Line "\n")*, Line := Name "->" Alt ("|" Alt)*)
// into a *Grammar. Rules are assigned recursion numbers in the order their
// name is first seen on the left-hand side of a Line; the first such rule
// becomes the start symbol.
//
// Two conveniences beyond §4.1, grounded in how the original rule tables in
// _examples/original_source/src/lang/parser/rules.rs are laid out: blank
// lines and lines starting with "#" are skipped, and a token may be spelled
// literally in single quotes (e.g. '(') when its spelling would otherwise
// read as a rule name.
func ParseDescription(src string) (*Grammar, error) {
	g := New()
	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseDescLine(g, line, i+1); err != nil {
			return nil, err
		}
	}
	if g.StartSymbol() == "" {
		return nil, &InvalidGrammarError{Reasons: []string{"grammar description has no rules"}}
	}
	return g, nil
}

func parseDescLine(g *Grammar, line string, lineNo int) error {
	sides := strings.SplitN(line, "->", 2)
	if len(sides) != 2 {
		return fmt.Errorf("line %d: expected \"Name -> ...\", got %q", lineNo, line)
	}

	name := strings.TrimSpace(sides[0])
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("line %d: invalid rule name %q", lineNo, name)
	}

	var alts []Alternative
	for _, altText := range strings.Split(sides[1], "|") {
		alt, err := parseDescAlt(altText, lineNo)
		if err != nil {
			return err
		}
		alts = append(alts, alt)
	}

	g.AddRule(name, alts...)
	return nil
}

func parseDescAlt(text string, lineNo int) (Alternative, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Alternative{Epsilon}, nil
	}

	var parts Alternative
	for _, word := range strings.Fields(text) {
		if word == "EPSILON" || word == "ε" {
			return Alternative{Epsilon}, nil
		}

		if len(word) >= 2 && strings.HasPrefix(word, "'") && strings.HasSuffix(word, "'") {
			spelling := word[1 : len(word)-1]
			kind, ok := lex.KindBySpelling(spelling)
			if !ok {
				return nil, fmt.Errorf("line %d: no token has spelling %q", lineNo, spelling)
			}
			parts = append(parts, Part{Kind: PartToken, Token: kind})
			continue
		}

		if kind, ok := lex.KindBySpelling(word); ok {
			parts = append(parts, Part{Kind: PartToken, Token: kind})
			continue
		}
		if kind, ok := lex.KindByName(word); ok {
			parts = append(parts, Part{Kind: PartToken, Token: kind})
			continue
		}

		if !identifierPattern.MatchString(word) {
			return nil, fmt.Errorf("line %d: invalid symbol %q", lineNo, word)
		}
		parts = append(parts, Part{Kind: PartRule, RuleName: word})
	}

	if len(parts) == 0 {
		return Alternative{Epsilon}, nil
	}
	return parts, nil
}
