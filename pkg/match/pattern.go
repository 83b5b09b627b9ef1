package match

import (
	"context"
	"fmt"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/tree"
)

// PatternNodeKind tags the three shapes a compiled pattern node can take.
type PatternNodeKind int

const (
	// PatternTerminal is a leaf with fixed text, e.g. an identifier or `(`.
	PatternTerminal PatternNodeKind = iota
	// PatternMetaVar is a leaf that binds or skips candidate nodes.
	PatternMetaVar
	// PatternInternal is a node with a kind and ordered children.
	PatternInternal
)

// PatternNode is one node of a compiled pattern.
type PatternNode struct {
	Kind     PatternNodeKind
	KindID   language.KindID
	Text     string
	Named    bool
	MetaVar  MetaVariable
	Children []*PatternNode
}

func (p *PatternNode) isEllipsis() bool {
	return p.Kind == PatternMetaVar &&
		(p.MetaVar.Kind == MetaVarMultiple || p.MetaVar.Kind == MetaVarMultiCapture)
}

// Pattern is a compiled structural query. Compilation parses the pattern
// text with the target grammar, strips the scaffolding the parser wraps
// around a fragment, and converts the remaining tree into pattern nodes.
// A compiled Pattern is read-only and safe for concurrent matching.
type Pattern struct {
	node       *PatternNode
	rootKind   *language.KindID
	strictness Strictness
	lang       *language.Language
	source     string
}

// PatternOption adjusts pattern compilation.
type PatternOption func(*Pattern)

// WithStrictness overrides the default smart policy.
func WithStrictness(s Strictness) PatternOption {
	return func(p *Pattern) {
		p.strictness = s
	}
}

// NewPattern compiles pattern source against a language grammar.
func NewPattern(lang *language.Language, source string, opts ...PatternOption) (*Pattern, error) {
	pattern := &Pattern{strictness: StrictnessSmart, lang: lang, source: source}
	for _, opt := range opts {
		opt(pattern)
	}

	goal, err := parseGoalNode(lang, source)
	if err != nil {
		return nil, err
	}

	pattern.node = convertPatternNode(goal, lang)
	pattern.rootKind = rootKindOf(pattern.node)

	return pattern, nil
}

// NewContextualPattern compiles a pattern whose text only parses inside a
// larger context, e.g. a class method. selector names the kind of the node
// inside the parsed context that becomes the goal.
func NewContextualPattern(lang *language.Language, contextSrc, selector string, opts ...PatternOption) (*Pattern, error) {
	pattern := &Pattern{strictness: StrictnessSmart, lang: lang, source: contextSrc}
	for _, opt := range opts {
		opt(pattern)
	}

	root, err := parsePatternTree(lang, contextSrc)
	if err != nil {
		return nil, err
	}

	goals := root.Find(func(n *tree.Node) bool { return n.KindName() == selector })
	if len(goals) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSelectorInContext, selector)
	}

	pattern.node = convertPatternNode(goals[0], lang)
	pattern.rootKind = rootKindOf(pattern.node)

	return pattern, nil
}

func parsePatternTree(lang *language.Language, source string) (*tree.Node, error) {
	processed := lang.PreProcessPattern(source)

	root, err := tree.Parse(context.Background(), lang, []byte(processed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPatternParse, err)
	}

	return root.Node(), nil
}

// parseGoalNode parses pattern text and descends past single-child wrapper
// nodes to the node the pattern is really about.
func parseGoalNode(lang *language.Language, source string) (*tree.Node, error) {
	root, err := parsePatternTree(lang, source)
	if err != nil {
		return nil, err
	}

	switch len(root.Children()) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNoContent, source)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %q", ErrMultipleNode, source)
	}

	goal := root.Child(0)
	for len(goal.Children()) == 1 {
		goal = goal.Child(0)
	}

	return goal, nil
}

func convertPatternNode(node *tree.Node, lang *language.Language) *PatternNode {
	if node.IsLeaf() {
		if mv, ok := ExtractMetaVar(node.Text(), lang.ExpandoChar()); ok {
			return &PatternNode{Kind: PatternMetaVar, MetaVar: mv, Named: node.IsNamed()}
		}

		return &PatternNode{
			Kind:   PatternTerminal,
			KindID: node.KindID(),
			Text:   node.Text(),
			Named:  node.IsNamed(),
		}
	}

	// A node with children whose whole text is a meta-variable still
	// compiles to the meta-variable, e.g. a member expression holding $$$.
	if mv, ok := ExtractMetaVar(node.Text(), lang.ExpandoChar()); ok {
		return &PatternNode{Kind: PatternMetaVar, MetaVar: mv, Named: node.IsNamed()}
	}

	converted := &PatternNode{
		Kind:   PatternInternal,
		KindID: node.KindID(),
		Named:  node.IsNamed(),
	}
	for _, child := range node.Children() {
		if child.IsMissing() {
			continue
		}

		converted.Children = append(converted.Children, convertPatternNode(child, lang))
	}

	return converted
}

func rootKindOf(node *PatternNode) *language.KindID {
	if node.Kind == PatternMetaVar {
		return nil
	}

	kind := node.KindID

	return &kind
}

// Strictness reports the policy the pattern matches under.
func (p *Pattern) Strictness() Strictness {
	return p.strictness
}

// Source returns the original pattern text.
func (p *Pattern) Source() string {
	return p.source
}

// Root returns the compiled pattern root.
func (p *Pattern) Root() *PatternNode {
	return p.node
}

// MatchWithEnv reports whether the pattern matches node, extending env with
// the captures on success. env may hold partial bindings on failure.
func (p *Pattern) MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node {
	if p.rootKind != nil && !kindsMatch(*p.rootKind, node) {
		return nil
	}

	if res, _ := matchOneNode(p.node, node, env, p.strictness); res != matchedBoth {
		return nil
	}

	return node
}

// PotentialKinds narrows candidates to the pattern's root kind, or reports
// nil when the root is a meta-variable that can match anything.
func (p *Pattern) PotentialKinds() *KindSet {
	if p.rootKind == nil {
		return nil
	}

	return NewKindSet(*p.rootKind)
}

// GetMatchLen reports how many bytes of node the pattern actually consumed,
// excluding trailing candidate trivia the strictness policy skipped. Used by
// replacement to avoid eating punctuation the pattern never mentioned.
func (p *Pattern) GetMatchLen(node *tree.Node) (int, bool) {
	if p.rootKind != nil && !kindsMatch(*p.rootKind, node) {
		return 0, false
	}

	if p.node.Kind != PatternInternal {
		if res, _ := matchOneNode(p.node, node, NewEnv(), p.strictness); res != matchedBoth {
			return 0, false
		}

		return node.EndByte() - node.StartByte(), true
	}

	if !kindsMatch(p.node.KindID, node) {
		return 0, false
	}

	end, ok := matchNodes(p.node.Children, node.Children(), NewEnv(), p.strictness)
	if !ok {
		return 0, false
	}

	if end < 0 {
		end = node.EndByte()
	}

	return end - node.StartByte(), true
}
