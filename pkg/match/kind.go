package match

import (
	"fmt"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/tree"
)

// KindMatcher accepts nodes of exactly one grammar kind. The reserved ERROR
// kind additionally accepts any node the parser flagged as an error.
type KindMatcher struct {
	kind language.KindID
}

// NewKindMatcher resolves a kind name against the grammar.
func NewKindMatcher(lang *language.Language, kind string) (*KindMatcher, error) {
	id := lang.KindID(kind)
	if id == language.KindEnd {
		return nil, fmt.Errorf("%w: %q in %s", ErrInvalidKind, kind, lang.Name())
	}

	return &KindMatcher{kind: id}, nil
}

// KindMatcherFromID wraps an already-resolved kind id.
func KindMatcherFromID(kind language.KindID) *KindMatcher {
	return &KindMatcher{kind: kind}
}

// MatchWithEnv implements Matcher. No captures are produced.
func (m *KindMatcher) MatchWithEnv(node *tree.Node, _ *MetaVarEnv) *tree.Node {
	if kindsMatch(m.kind, node) {
		return node
	}

	return nil
}

// PotentialKinds implements Matcher.
func (m *KindMatcher) PotentialKinds() *KindSet {
	return NewKindSet(m.kind)
}
