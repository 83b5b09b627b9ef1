package rule

import (
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/tree"
)

// StopByKind selects how far a relational search ranges.
type StopByKind int

const (
	// StopNeighbor inspects only the immediate relation: the parent, the
	// direct children, or the adjacent sibling.
	StopNeighbor StopByKind = iota
	// StopEnd searches to the tree root, the leaves, or the end of the
	// sibling list.
	StopEnd
	// StopRule searches until a boundary rule matches. The boundary node
	// itself is excluded from the search.
	StopRule
)

// StopBy bounds a relational search. The boundary rule, when present, is
// probed with a fresh environment on every node so boundary captures never
// leak into the match; only the target rule extends the caller's env. That
// also means the boundary comparison ignores whatever strictness the target
// pattern carries: the boundary rule brings its own.
type StopBy struct {
	Kind StopByKind
	Rule Rule
}

// StopByNeighbor is the default policy.
func StopByNeighbor() StopBy {
	return StopBy{Kind: StopNeighbor}
}

// StopByEnd searches unbounded.
func StopByEnd() StopBy {
	return StopBy{Kind: StopEnd}
}

// StopByRule searches until boundary matches.
func StopByRule(boundary Rule) StopBy {
	return StopBy{Kind: StopRule, Rule: boundary}
}

func (s StopBy) isBoundary(node *tree.Node) bool {
	return s.Kind == StopRule && s.Rule.MatchWithEnv(node, match.NewEnv()) != nil
}

// findInChain runs the target rule along a node chain produced by next,
// honoring the stop-by policy. Returns the first node the target accepted.
func (s StopBy) findInChain(start *tree.Node, next func(*tree.Node) *tree.Node, target Rule, env *match.MetaVarEnv) *tree.Node {
	if s.Kind == StopNeighbor {
		if start == nil {
			return nil
		}

		return target.MatchWithEnv(start, env)
	}

	for cur := start; cur != nil; cur = next(cur) {
		if s.isBoundary(cur) {
			return nil
		}

		if matched := target.MatchWithEnv(cur, env); matched != nil {
			return matched
		}
	}

	return nil
}

// Inside matches a node located within a node the target rule accepts,
// searching the ancestor chain. It returns the accepting ancestor.
type Inside struct {
	target Rule
	stopBy StopBy
	field  string
}

// NewInside builds the constraint. field, when non-empty, additionally
// requires the node to sit under that grammar field of its parent.
func NewInside(target Rule, stopBy StopBy, field string) *Inside {
	return &Inside{target: target, stopBy: stopBy, field: field}
}

// MatchWithEnv implements Matcher.
func (r *Inside) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	if r.field != "" && node.FieldName() != r.field {
		return nil
	}

	return r.stopBy.findInChain(node.Parent(), (*tree.Node).Parent, r.target, env)
}

// PotentialKinds implements Matcher. The constraint speaks about ancestors,
// so the node's own kind cannot be narrowed.
func (r *Inside) PotentialKinds() *match.KindSet {
	return nil
}

// Children implements Rule.
func (r *Inside) Children() []Rule {
	return relationalChildren(r.target, r.stopBy)
}

// Has matches a node containing a node the target rule accepts, searching
// descendants. It returns the accepting descendant.
type Has struct {
	target Rule
	stopBy StopBy
	field  string
}

// NewHas builds the constraint. field, when non-empty, restricts the search
// to children under that grammar field.
func NewHas(target Rule, stopBy StopBy, field string) *Has {
	return &Has{target: target, stopBy: stopBy, field: field}
}

// MatchWithEnv implements Matcher.
func (r *Has) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	starts := node.Children()
	if r.field != "" {
		starts = node.FieldChildren(r.field)
	}

	if r.stopBy.Kind == StopNeighbor {
		for _, child := range starts {
			if matched := r.target.MatchWithEnv(child, env); matched != nil {
				return matched
			}
		}

		return nil
	}

	// Depth-first over descendants; a boundary match prunes the subtree
	// below it, boundary node excluded.
	stack := make([]*tree.Node, len(starts))
	for idx := range starts {
		stack[len(starts)-1-idx] = starts[idx]
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.stopBy.isBoundary(cur) {
			continue
		}

		if matched := r.target.MatchWithEnv(cur, env); matched != nil {
			return matched
		}

		children := cur.Children()
		for idx := len(children) - 1; idx >= 0; idx-- {
			stack = append(stack, children[idx])
		}
	}

	return nil
}

// PotentialKinds implements Matcher.
func (r *Has) PotentialKinds() *match.KindSet {
	return nil
}

// Children implements Rule.
func (r *Has) Children() []Rule {
	return relationalChildren(r.target, r.stopBy)
}

// Precedes matches a node followed (somewhere after it, per stop-by) by a
// node the target rule accepts. It returns the accepting sibling.
type Precedes struct {
	target Rule
	stopBy StopBy
}

// NewPrecedes builds the constraint.
func NewPrecedes(target Rule, stopBy StopBy) *Precedes {
	return &Precedes{target: target, stopBy: stopBy}
}

// MatchWithEnv implements Matcher.
func (r *Precedes) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	return r.stopBy.findInChain(node.Next(), (*tree.Node).Next, r.target, env)
}

// PotentialKinds implements Matcher.
func (r *Precedes) PotentialKinds() *match.KindSet {
	return nil
}

// Children implements Rule.
func (r *Precedes) Children() []Rule {
	return relationalChildren(r.target, r.stopBy)
}

// Follows matches a node preceded by a node the target rule accepts. It
// returns the accepting sibling.
type Follows struct {
	target Rule
	stopBy StopBy
}

// NewFollows builds the constraint.
func NewFollows(target Rule, stopBy StopBy) *Follows {
	return &Follows{target: target, stopBy: stopBy}
}

// MatchWithEnv implements Matcher.
func (r *Follows) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	return r.stopBy.findInChain(node.Prev(), (*tree.Node).Prev, r.target, env)
}

// PotentialKinds implements Matcher.
func (r *Follows) PotentialKinds() *match.KindSet {
	return nil
}

// Children implements Rule.
func (r *Follows) Children() []Rule {
	return relationalChildren(r.target, r.stopBy)
}

func relationalChildren(target Rule, stopBy StopBy) []Rule {
	children := []Rule{target}
	if stopBy.Rule != nil {
		children = append(children, stopBy.Rule)
	}

	return children
}
