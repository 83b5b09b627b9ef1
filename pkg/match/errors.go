package match

import "errors"

var (
	// ErrPatternParse reports pattern text the grammar could not parse at all.
	ErrPatternParse = errors.New("pattern parse failed")
	// ErrNoContent reports pattern text that produced no syntax nodes.
	ErrNoContent = errors.New("pattern has no content")
	// ErrMultipleNode reports pattern text that produced more than one
	// top-level node. Patterns must compile to a single goal node.
	ErrMultipleNode = errors.New("pattern has multiple root nodes")
	// ErrInvalidKind reports a kind name the grammar does not define.
	ErrInvalidKind = errors.New("kind not defined by grammar")
	// ErrNoSelectorInContext reports a contextual pattern whose selector
	// kind never occurs inside the parsed context.
	ErrNoSelectorInContext = errors.New("selector not found in pattern context")
	// ErrUnknownStrictness reports an unrecognized strictness policy name.
	ErrUnknownStrictness = errors.New("unknown strictness")
)
