package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/tinyc/internal/lex"
)

// InvalidGrammarError is returned by Validate when a grammar violates one of
// the structural invariants in §4.2: an alternative referencing an unknown
// rule, an empty alternatives list, a rule every alternative of which begins
// with a self-reference, or an epsilon part appearing alongside other parts
// in the same alternative.
type InvalidGrammarError struct {
	Reasons []string
}

func (e *InvalidGrammarError) Error() string {
	return fmt.Sprintf("invalid grammar: %s", strings.Join(e.Reasons, "; "))
}

// TransformationNotConvergingError is returned by TransformDriver when
// alternating left-recursion elimination and left-factoring has not reached
// a fixpoint within the caller-supplied round budget.
type TransformationNotConvergingError struct {
	Rounds int
}

func (e *TransformationNotConvergingError) Error() string {
	return fmt.Sprintf("grammar transformation did not converge within %d rounds", e.Rounds)
}

// NotBacktrackFreeError is returned by CheckBacktrackFree when two
// alternatives of the same rule have overlapping START sets, meaning the
// predictive parser cannot choose between them on one token of lookahead.
type NotBacktrackFreeError struct {
	Rule         string
	AltI, AltJ   int
	Intersection []lex.Kind
}

func (e *NotBacktrackFreeError) Error() string {
	names := make([]string, len(e.Intersection))
	for i, k := range e.Intersection {
		names[i] = k.Name
	}
	return fmt.Sprintf("rule %q is not backtrack-free: alternatives %d and %d both start with {%s}",
		e.Rule, e.AltI, e.AltJ, strings.Join(names, ", "))
}
