package rule

import (
	"maps"
	"slices"

	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/rule/transform"
	"github.com/treegrep/treegrep/pkg/tree"
)

// Core packages a rule with per-meta-variable constraints and a transform
// pipeline. The potential-kind set is computed once at construction. A Core
// is immutable afterwards and shared read-only across concurrent scans; it
// holds its registry so utility rules stay resolvable for its lifetime.
type Core struct {
	rule        Rule
	constraints map[string]match.Matcher
	names       []string
	transforms  *transform.Pipeline
	utils       *Registry
	kinds       *match.KindSet
	kindsKnown  bool
}

// CoreOption configures a Core.
type CoreOption func(*Core)

// WithConstraints attaches matchers that each named capture must satisfy.
func WithConstraints(constraints map[string]match.Matcher) CoreOption {
	return func(c *Core) {
		c.constraints = maps.Clone(constraints)
	}
}

// WithTransforms attaches a transform pipeline run after each match.
func WithTransforms(pipeline *transform.Pipeline) CoreOption {
	return func(c *Core) {
		c.transforms = pipeline
	}
}

// WithUtils pins the registry the rule's referents resolve against.
func WithUtils(reg *Registry) CoreOption {
	return func(c *Core) {
		c.utils = reg
	}
}

// NewCore builds the package. A cyclic transform pipeline fails here, before
// any matching.
func NewCore(r Rule, opts ...CoreOption) (*Core, error) {
	core := &Core{rule: r}
	for _, opt := range opts {
		opt(core)
	}

	if core.transforms != nil {
		if err := core.transforms.Validate(); err != nil {
			return nil, err
		}
	}

	core.names = slices.Sorted(maps.Keys(core.constraints))
	core.kinds = r.PotentialKinds()
	core.kindsKnown = true

	return core, nil
}

// MatchWithEnv implements Matcher. The rule must accept the node, every
// constrained capture must satisfy its matcher, and then transforms extend
// the environment with derived text.
func (c *Core) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	matched := c.rule.MatchWithEnv(node, env)
	if matched == nil {
		return nil
	}

	for _, name := range c.names {
		bound, ok := env.Get(name)
		if !ok {
			continue
		}

		if c.constraints[name].MatchWithEnv(bound, env) == nil {
			return nil
		}
	}

	if c.transforms != nil {
		if err := c.transforms.Apply(env); err != nil {
			return nil
		}
	}

	return matched
}

// PotentialKinds implements Matcher, answering from the cached set.
func (c *Core) PotentialKinds() *match.KindSet {
	if c.kindsKnown {
		return c.kinds
	}

	return c.rule.PotentialKinds()
}

// Children implements Rule, so a Core registered as a global utility still
// participates in cycle detection.
func (c *Core) Children() []Rule {
	return []Rule{c.rule}
}

// Rule returns the wrapped rule.
func (c *Core) Rule() Rule {
	return c.rule
}
