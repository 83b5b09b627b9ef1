package match

import (
	"slices"

	"github.com/treegrep/treegrep/pkg/tree"
)

// And requires both sub-matchers to accept the node. The right side sees
// the captures the left side produced, so shared names must bind consistent
// text. Kinds are intersected lazily on each call.
type And struct {
	left  Matcher
	right Matcher
}

// NewAnd combines two matchers conjunctively.
func NewAnd(left, right Matcher) *And {
	return &And{left: left, right: right}
}

// MatchWithEnv implements Matcher.
func (m *And) MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node {
	matched := m.left.MatchWithEnv(node, env)
	if matched == nil {
		return nil
	}

	return m.right.MatchWithEnv(matched, env)
}

// PotentialKinds implements Matcher.
func (m *And) PotentialKinds() *KindSet {
	return m.left.PotentialKinds().Intersect(m.right.PotentialKinds())
}

// Or accepts the node when either sub-matcher does. A failed left branch may
// leave partial captures in env before the right branch runs; match results
// remain correct because acceptance never depends on absent bindings.
type Or struct {
	left  Matcher
	right Matcher
}

// NewOr combines two matchers disjunctively.
func NewOr(left, right Matcher) *Or {
	return &Or{left: left, right: right}
}

// MatchWithEnv implements Matcher.
func (m *Or) MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node {
	if matched := m.left.MatchWithEnv(node, env); matched != nil {
		return matched
	}

	return m.right.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher.
func (m *Or) PotentialKinds() *KindSet {
	return m.left.PotentialKinds().Union(m.right.PotentialKinds())
}

// All requires every sub-matcher to accept the node, in order. The kind set
// is intersected once at construction; the sub-matcher slice is copied and
// never mutated afterwards.
type All struct {
	matchers []Matcher
	kinds    *KindSet
}

// NewAll builds a conjunction over a matcher list. An empty list matches
// everything.
func NewAll(matchers []Matcher) *All {
	all := &All{matchers: slices.Clone(matchers)}

	for idx, m := range all.matchers {
		if idx == 0 {
			all.kinds = m.PotentialKinds()

			continue
		}

		all.kinds = all.kinds.Intersect(m.PotentialKinds())
	}

	return all
}

// MatchWithEnv implements Matcher.
func (m *All) MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node {
	matched := node
	for _, sub := range m.matchers {
		matched = sub.MatchWithEnv(matched, env)
		if matched == nil {
			return nil
		}
	}

	return matched
}

// PotentialKinds implements Matcher.
func (m *All) PotentialKinds() *KindSet {
	return m.kinds
}

// Any accepts the node when at least one sub-matcher does, trying them in
// order. The kind set is unioned once at construction.
type Any struct {
	matchers []Matcher
	kinds    *KindSet
}

// NewAny builds a disjunction over a matcher list. An empty list matches
// nothing.
func NewAny(matchers []Matcher) *Any {
	any := &Any{matchers: slices.Clone(matchers)}

	if len(any.matchers) == 0 {
		any.kinds = NewKindSet()

		return any
	}

	for idx, m := range any.matchers {
		if idx == 0 {
			any.kinds = m.PotentialKinds()

			continue
		}

		any.kinds = any.kinds.Union(m.PotentialKinds())
	}

	return any
}

// MatchWithEnv implements Matcher.
func (m *Any) MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node {
	for _, sub := range m.matchers {
		if matched := sub.MatchWithEnv(node, env); matched != nil {
			return matched
		}
	}

	return nil
}

// PotentialKinds implements Matcher.
func (m *Any) PotentialKinds() *KindSet {
	return m.kinds
}

// Not accepts nodes its inner matcher rejects. It produces no captures and
// cannot narrow kinds: any kind the inner matcher would reject is fair game.
type Not struct {
	inner Matcher
}

// NewNot negates a matcher.
func NewNot(inner Matcher) *Not {
	return &Not{inner: inner}
}

// Inner returns the negated matcher.
func (m *Not) Inner() Matcher {
	return m.inner
}

// MatchWithEnv implements Matcher. The inner matcher probes a scratch env so
// its captures never leak into the caller's bindings.
func (m *Not) MatchWithEnv(node *tree.Node, _ *MetaVarEnv) *tree.Node {
	if m.inner.MatchWithEnv(node, NewEnv()) != nil {
		return nil
	}

	return node
}

// PotentialKinds implements Matcher.
func (m *Not) PotentialKinds() *KindSet {
	return nil
}

// MatchAll accepts every node.
type MatchAll struct{}

// MatchWithEnv implements Matcher.
func (MatchAll) MatchWithEnv(node *tree.Node, _ *MetaVarEnv) *tree.Node {
	return node
}

// PotentialKinds implements Matcher. nil means no narrowing.
func (MatchAll) PotentialKinds() *KindSet {
	return nil
}

// MatchNone rejects every node. Its kind set is empty rather than nil, which
// tells scans the matcher can be dropped from every bucket.
type MatchNone struct{}

// MatchWithEnv implements Matcher.
func (MatchNone) MatchWithEnv(*tree.Node, *MetaVarEnv) *tree.Node {
	return nil
}

// PotentialKinds implements Matcher.
func (MatchNone) PotentialKinds() *KindSet {
	return NewKindSet()
}
