package match

import "github.com/treegrep/treegrep/pkg/tree"

// Matcher is the contract every pattern, atomic matcher, combinator, and
// rule satisfies.
//
// MatchWithEnv reports whether the matcher accepts node, returning the
// matched node (usually node itself) and extending env with any captures.
// A nil return means no match; env may then hold partial bindings, so
// callers composing matchers speculatively must clone first.
//
// PotentialKinds returns the set of node kinds the matcher could possibly
// accept, or nil when it cannot be narrowed. Scans use it to bucket rules;
// it must over-approximate, never exclude a kind the matcher would accept.
type Matcher interface {
	MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node
	PotentialKinds() *KindSet
}

// MatchLener is implemented by matchers that can report how many bytes of a
// matched node they actually consumed. Replacement uses it to leave trailing
// trivia in place.
type MatchLener interface {
	GetMatchLen(node *tree.Node) (int, bool)
}

// MatchLen reports the consumed byte length of node under m, falling back to
// the node's full span when m cannot say.
func MatchLen(m Matcher, node *tree.Node) int {
	if lener, ok := m.(MatchLener); ok {
		if length, found := lener.GetMatchLen(node); found {
			return length
		}
	}

	return node.EndByte() - node.StartByte()
}

// NodeMatch pairs a matched node with the bindings that matched it.
type NodeMatch struct {
	node *tree.Node
	env  *MetaVarEnv
}

// NewNodeMatch wraps a node and its environment.
func NewNodeMatch(node *tree.Node, env *MetaVarEnv) *NodeMatch {
	return &NodeMatch{node: node, env: env}
}

// Node returns the matched node.
func (m *NodeMatch) Node() *tree.Node {
	return m.node
}

// Env returns the bindings produced by the match.
func (m *NodeMatch) Env() *MetaVarEnv {
	return m.env
}

// Text returns the matched node's source text.
func (m *NodeMatch) Text() string {
	return m.node.Text()
}

// MatchNode tries m against a single node with a fresh environment.
func MatchNode(m Matcher, node *tree.Node) *NodeMatch {
	env := NewEnv()
	if matched := m.MatchWithEnv(node, env); matched != nil {
		return NewNodeMatch(matched, env)
	}

	return nil
}

// FindNode returns the first match of m in the subtree rooted at node, in
// pre-order, or nil.
func FindNode(m Matcher, node *tree.Node) *NodeMatch {
	var found *NodeMatch

	kinds := m.PotentialKinds()

	node.VisitPreOrder(func(cur *tree.Node) {
		if found != nil || !kinds.Contains(cur.KindID()) {
			return
		}

		found = MatchNode(m, cur)
	})

	return found
}

// FindAllNodes returns every match of m in the subtree rooted at node, in
// pre-order. Each match gets its own environment.
func FindAllNodes(m Matcher, node *tree.Node) []*NodeMatch {
	var out []*NodeMatch

	kinds := m.PotentialKinds()

	node.VisitPreOrder(func(cur *tree.Node) {
		if !kinds.Contains(cur.KindID()) {
			return
		}

		if matched := MatchNode(m, cur); matched != nil {
			out = append(out, matched)
		}
	})

	return out
}
