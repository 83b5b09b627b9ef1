package match

import (
	"fmt"
	"regexp"

	"github.com/treegrep/treegrep/pkg/tree"
)

// RegexMatcher accepts nodes whose source text contains a match of the
// expression. It cannot narrow candidate kinds.
type RegexMatcher struct {
	re *regexp.Regexp
}

// NewRegexMatcher compiles the expression.
func NewRegexMatcher(expr string) (*RegexMatcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("regex matcher: %w", err)
	}

	return &RegexMatcher{re: re}, nil
}

// MatchWithEnv implements Matcher. No captures are produced.
func (m *RegexMatcher) MatchWithEnv(node *tree.Node, _ *MetaVarEnv) *tree.Node {
	if m.re.MatchString(node.Text()) {
		return node
	}

	return nil
}

// PotentialKinds implements Matcher.
func (m *RegexMatcher) PotentialKinds() *KindSet {
	return nil
}
