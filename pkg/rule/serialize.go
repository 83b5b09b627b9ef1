package rule

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/rule/transform"
)

// SerializablePattern accepts either a plain pattern string or the object
// form with a context and selector.
type SerializablePattern struct {
	Source     string
	Context    string
	Selector   string
	Strictness string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *SerializablePattern) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Source = node.Value

		return nil
	}

	var obj struct {
		Context    string `yaml:"context"`
		Selector   string `yaml:"selector"`
		Strictness string `yaml:"strictness"`
	}

	if err := node.Decode(&obj); err != nil {
		return err
	}

	p.Context = obj.Context
	p.Selector = obj.Selector
	p.Strictness = obj.Strictness

	return nil
}

// SerializableStopBy accepts "neighbor", "end", or an inline boundary rule.
type SerializableStopBy struct {
	Neighbor bool
	End      bool
	Rule     *SerializableRule
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SerializableStopBy) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case "neighbor":
			s.Neighbor = true

			return nil
		case "end":
			s.End = true

			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownStopBy, node.Value)
		}
	}

	var r SerializableRule
	if err := node.Decode(&r); err != nil {
		return err
	}

	s.Rule = &r

	return nil
}

// SerializableRelation is the document form of inside/has/precedes/follows:
// a rule with stopBy and field riding along.
type SerializableRelation struct {
	SerializableRule `yaml:",inline"`
	StopBy           *SerializableStopBy `yaml:"stopBy"`
	Field            string              `yaml:"field"`
}

// SerializableRule is the document form of a rule. Multiple keys on one
// object combine conjunctively.
type SerializableRule struct {
	Pattern  *SerializablePattern  `yaml:"pattern"`
	Kind     string                `yaml:"kind"`
	Regex    string                `yaml:"regex"`
	Inside   *SerializableRelation `yaml:"inside"`
	Has      *SerializableRelation `yaml:"has"`
	Precedes *SerializableRelation `yaml:"precedes"`
	Follows  *SerializableRelation `yaml:"follows"`
	All      []SerializableRule    `yaml:"all"`
	Any      []SerializableRule    `yaml:"any"`
	Not      *SerializableRule     `yaml:"not"`
	Matches  string                `yaml:"matches"`
}

// HasPositive reports whether the rule contains at least one matcher that
// can only accept a bounded set of nodes on its own.
func (sr *SerializableRule) HasPositive() bool {
	if sr.Pattern != nil || sr.Kind != "" || sr.Regex != "" || sr.Matches != "" {
		return true
	}

	for idx := range sr.All {
		if sr.All[idx].HasPositive() {
			return true
		}
	}

	if len(sr.Any) > 0 {
		for idx := range sr.Any {
			if !sr.Any[idx].HasPositive() {
				return false
			}
		}

		return true
	}

	return false
}

// Build compiles the document form into a Rule.
func (sr *SerializableRule) Build(lang *language.Language, reg *Registry) (Rule, error) {
	var parts []Rule

	add := func(r Rule, err error) error {
		if err != nil {
			return err
		}

		parts = append(parts, r)

		return nil
	}

	if sr.Pattern != nil {
		if err := add(buildPattern(sr.Pattern, lang)); err != nil {
			return nil, err
		}
	}

	if sr.Kind != "" {
		m, err := match.NewKindMatcher(lang, sr.Kind)
		if err := add(NewAtomic(m), err); err != nil {
			return nil, err
		}
	}

	if sr.Regex != "" {
		m, err := match.NewRegexMatcher(sr.Regex)
		if err := add(NewAtomic(m), err); err != nil {
			return nil, err
		}
	}

	if sr.Matches != "" {
		parts = append(parts, NewReferent(sr.Matches, reg))
	}

	if sr.Inside != nil {
		target, stopBy, err := sr.Inside.build(lang, reg)
		if err := add(NewInside(target, stopBy, sr.Inside.Field), err); err != nil {
			return nil, err
		}
	}

	if sr.Has != nil {
		target, stopBy, err := sr.Has.build(lang, reg)
		if err := add(NewHas(target, stopBy, sr.Has.Field), err); err != nil {
			return nil, err
		}
	}

	if sr.Precedes != nil {
		target, stopBy, err := sr.Precedes.build(lang, reg)
		if err := add(NewPrecedes(target, stopBy), err); err != nil {
			return nil, err
		}
	}

	if sr.Follows != nil {
		target, stopBy, err := sr.Follows.build(lang, reg)
		if err := add(NewFollows(target, stopBy), err); err != nil {
			return nil, err
		}
	}

	if len(sr.All) > 0 {
		subs, err := buildList(sr.All, lang, reg)
		if err := add(NewAll(subs), err); err != nil {
			return nil, err
		}
	}

	if len(sr.Any) > 0 {
		subs, err := buildList(sr.Any, lang, reg)
		if err := add(NewAny(subs), err); err != nil {
			return nil, err
		}
	}

	if sr.Not != nil {
		inner, err := sr.Not.Build(lang, reg)
		if err := add(NewNot(inner), err); err != nil {
			return nil, err
		}
	}

	switch len(parts) {
	case 0:
		return nil, ErrEmptyRule
	case 1:
		return parts[0], nil
	default:
		return newConjunction(parts), nil
	}
}

func buildList(docs []SerializableRule, lang *language.Language, reg *Registry) ([]Rule, error) {
	rules := make([]Rule, 0, len(docs))

	for idx := range docs {
		r, err := docs[idx].Build(lang, reg)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	return rules, nil
}

func buildPattern(doc *SerializablePattern, lang *language.Language) (Rule, error) {
	strictness := match.StrictnessSmart

	if doc.Strictness != "" {
		parsed, err := match.ParseStrictness(doc.Strictness)
		if err != nil {
			return nil, err
		}

		strictness = parsed
	}

	if doc.Context != "" {
		pattern, err := match.NewContextualPattern(lang, doc.Context, doc.Selector, match.WithStrictness(strictness))
		if err != nil {
			return nil, err
		}

		return NewAtomic(pattern), nil
	}

	pattern, err := match.CachedPattern(lang, doc.Source, strictness)
	if err != nil {
		return nil, err
	}

	return NewAtomic(pattern), nil
}

func (rel *SerializableRelation) build(lang *language.Language, reg *Registry) (Rule, StopBy, error) {
	target, err := rel.SerializableRule.Build(lang, reg)
	if err != nil {
		return nil, StopBy{}, err
	}

	stopBy := StopByNeighbor()

	if rel.StopBy != nil {
		switch {
		case rel.StopBy.End:
			stopBy = StopByEnd()
		case rel.StopBy.Neighbor:
		case rel.StopBy.Rule != nil:
			boundary, err := rel.StopBy.Rule.Build(lang, reg)
			if err != nil {
				return nil, StopBy{}, err
			}

			stopBy = StopByRule(boundary)
		}
	}

	return target, stopBy, nil
}

// SerializableTrans accepts either the compact string form or the object
// form of a transform.
type SerializableTrans struct {
	trans transform.Trans
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (st *SerializableTrans) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t, err := transform.Parse(node.Value)
		if err != nil {
			return err
		}

		st.trans = t

		return nil
	}

	var obj struct {
		Substring *struct {
			Source    string `yaml:"source"`
			StartChar *int   `yaml:"startChar"`
			EndChar   *int   `yaml:"endChar"`
		} `yaml:"substring"`
		Replace *struct {
			Source  string `yaml:"source"`
			Replace string `yaml:"replace"`
			By      string `yaml:"by"`
		} `yaml:"replace"`
		Convert *struct {
			Source string `yaml:"source"`
			ToCase string `yaml:"toCase"`
		} `yaml:"convert"`
	}

	if err := node.Decode(&obj); err != nil {
		return err
	}

	var (
		t   transform.Trans
		err error
	)

	switch {
	case obj.Substring != nil:
		t, err = transform.NewSubstring(obj.Substring.Source, obj.Substring.StartChar, obj.Substring.EndChar)
	case obj.Replace != nil:
		t, err = transform.NewReplace(obj.Replace.Source, obj.Replace.Replace, obj.Replace.By)
	case obj.Convert != nil:
		t, err = transform.NewConvert(obj.Convert.Source, obj.Convert.ToCase)
	default:
		err = fmt.Errorf("%w: transform object needs substring, replace, or convert", transform.ErrParse)
	}

	if err != nil {
		return err
	}

	st.trans = t

	return nil
}
