// Package rule combines matchers into composable rules: boolean operators,
// relational constraints over the tree, references to named rules through a
// registry, and the RuleCore that packages a rule with meta-variable
// constraints and transforms. Every rule satisfies match.Matcher; a rule is
// read-only after construction and safe to share across concurrent scans.
package rule

import (
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/tree"
)

// Rule is a Matcher that also exposes its sub-rules, so the registry can
// walk referent edges at registration time.
type Rule interface {
	match.Matcher
	// Children returns sub-rules reachable from this rule, including
	// relational targets and stop-by boundary rules.
	Children() []Rule
}

// Atomic adapts a plain matcher (pattern, kind, regex) into a Rule.
type Atomic struct {
	matcher match.Matcher
}

// NewAtomic wraps a matcher.
func NewAtomic(m match.Matcher) *Atomic {
	return &Atomic{matcher: m}
}

// MatchWithEnv implements Matcher.
func (r *Atomic) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	return r.matcher.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher.
func (r *Atomic) PotentialKinds() *match.KindSet {
	return r.matcher.PotentialKinds()
}

// Children implements Rule.
func (r *Atomic) Children() []Rule {
	return nil
}

// conjunction matches every part against the same node and returns that
// node. It backs the implicit combination of multiple keys on one rule
// document, where the reported match must stay the node under test. The
// explicit all operator chains instead.
type conjunction struct {
	rules []Rule
	kinds *match.KindSet
}

func newConjunction(rules []Rule) *conjunction {
	c := &conjunction{rules: rules}

	for idx, r := range rules {
		if idx == 0 {
			c.kinds = r.PotentialKinds()

			continue
		}

		c.kinds = c.kinds.Intersect(r.PotentialKinds())
	}

	return c
}

func (c *conjunction) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	for _, r := range c.rules {
		if r.MatchWithEnv(node, env) == nil {
			return nil
		}
	}

	return node
}

func (c *conjunction) PotentialKinds() *match.KindSet {
	return c.kinds
}

func (c *conjunction) Children() []Rule {
	return c.rules
}

// All matches when every sub-rule matches, chaining the node each sub-rule
// returns into the next. Kinds are intersected once at construction.
type All struct {
	op    *match.All
	rules []Rule
}

// NewAll builds the conjunction.
func NewAll(rules []Rule) *All {
	matchers := make([]match.Matcher, len(rules))
	for idx, r := range rules {
		matchers[idx] = r
	}

	return &All{op: match.NewAll(matchers), rules: rules}
}

// MatchWithEnv implements Matcher.
func (r *All) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	return r.op.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher.
func (r *All) PotentialKinds() *match.KindSet {
	return r.op.PotentialKinds()
}

// Children implements Rule.
func (r *All) Children() []Rule {
	return r.rules
}

// Any matches when at least one sub-rule matches.
type Any struct {
	op    *match.Any
	rules []Rule
}

// NewAny builds the disjunction.
func NewAny(rules []Rule) *Any {
	matchers := make([]match.Matcher, len(rules))
	for idx, r := range rules {
		matchers[idx] = r
	}

	return &Any{op: match.NewAny(matchers), rules: rules}
}

// MatchWithEnv implements Matcher.
func (r *Any) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	return r.op.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher.
func (r *Any) PotentialKinds() *match.KindSet {
	return r.op.PotentialKinds()
}

// Children implements Rule.
func (r *Any) Children() []Rule {
	return r.rules
}

// Not matches when its sub-rule does not. Referents under a Not still count
// for cycle detection.
type Not struct {
	op    *match.Not
	inner Rule
}

// NewNot negates a rule.
func NewNot(inner Rule) *Not {
	return &Not{op: match.NewNot(inner), inner: inner}
}

// MatchWithEnv implements Matcher.
func (r *Not) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	return r.op.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher.
func (r *Not) PotentialKinds() *match.KindSet {
	return r.op.PotentialKinds()
}

// Children implements Rule.
func (r *Not) Children() []Rule {
	return []Rule{r.inner}
}
