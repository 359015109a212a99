// Package gramcache persists a transformed Grammar to a sidecar file next to
// its source, so a CLI user re-running the same grammar file during
// grammar-authoring does not pay the cost of left-recursion elimination and
// left-factoring on every invocation. Only the rules are stored; the
// FIRST/FOLLOW/START sets of a loaded grammar are computed again on first
// use. Encoding uses github.com/dekarrin/rezi's binary codec.
package gramcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/tinyc/internal/grammar"
	"github.com/dekarrin/tinyc/internal/lex"
)

// Suffix is appended to a grammar's file path to name its cache file.
const Suffix = ".tcache"

type partDTO struct {
	IsRule   bool
	TokenName string
	RuleName string
}

type ruleDTO struct {
	Name         string
	RecursionNum int
	Alternatives [][]partDTO
}

type fileDTO struct {
	SourceHash string
	Start      string
	Rules      []ruleDTO
}

// PathFor returns the cache file path for a grammar source file path.
func PathFor(grammarPath string) string {
	return grammarPath + Suffix
}

func hashSource(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Save encodes g's current (presumably already-transformed) rule set, keyed
// by a content hash of src, to the cache file for grammarPath.
func Save(grammarPath string, src []byte, g *grammar.Grammar) error {
	dto := fileDTO{
		SourceHash: hashSource(src),
		Start:      g.StartSymbol(),
	}
	for _, r := range g.Rules() {
		rd := ruleDTO{Name: r.Name, RecursionNum: r.RecursionNum}
		for _, alt := range r.Alternatives {
			var parts []partDTO
			for _, p := range alt {
				if p.Kind == grammar.PartRule {
					parts = append(parts, partDTO{IsRule: true, RuleName: p.RuleName})
				} else {
					parts = append(parts, partDTO{TokenName: p.Token.Name})
				}
			}
			rd.Alternatives = append(rd.Alternatives, parts)
		}
		dto.Rules = append(dto.Rules, rd)
	}

	data, err := rezi.Enc(dto)
	if err != nil {
		return fmt.Errorf("encode grammar cache: %w", err)
	}
	if err := os.WriteFile(PathFor(grammarPath), data, 0o644); err != nil {
		return fmt.Errorf("write grammar cache: %w", err)
	}
	return nil
}

// Load reads the cache file for grammarPath and rebuilds the grammar it
// holds, reporting ok=false (with no error) whenever the cache is absent or
// its stored hash no longer matches src, so the caller transparently falls
// back to re-deriving the grammar from source.
func Load(grammarPath string, src []byte) (g *grammar.Grammar, ok bool, err error) {
	data, err := os.ReadFile(PathFor(grammarPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read grammar cache: %w", err)
	}

	var dto fileDTO
	if _, err := rezi.Dec(data, &dto); err != nil {
		return nil, false, fmt.Errorf("decode grammar cache: %w", err)
	}

	if dto.SourceHash != hashSource(src) {
		return nil, false, nil
	}

	built := grammar.New()
	for _, rd := range dto.Rules {
		var alts []grammar.Alternative
		for _, partList := range rd.Alternatives {
			var alt grammar.Alternative
			for _, pd := range partList {
				if pd.IsRule {
					alt = append(alt, grammar.Part{Kind: grammar.PartRule, RuleName: pd.RuleName})
					continue
				}
				kind, found := lex.KindByName(pd.TokenName)
				if !found {
					return nil, false, fmt.Errorf("grammar cache: unknown token kind %q", pd.TokenName)
				}
				alt = append(alt, grammar.Part{Kind: grammar.PartToken, Token: kind})
			}
			alts = append(alts, alt)
		}
		built.AddRule(rd.Name, alts...)
	}

	return built, true, nil
}
