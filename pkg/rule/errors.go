package rule

import "errors"

var (
	// ErrDuplicateRule reports an id registered twice. The first
	// registration stays in effect.
	ErrDuplicateRule = errors.New("rule id already registered")
	// ErrCyclicRule reports a rule that reaches itself through referent
	// edges. Detected at registration, never at match time.
	ErrCyclicRule = errors.New("cyclic rule reference")
	// ErrUndefinedUtil reports a referent id with no registered definition.
	ErrUndefinedUtil = errors.New("undefined utility rule")
	// ErrMissingPositiveMatcher reports a rule built only from negated or
	// relational parts, which could match unboundedly many nodes.
	ErrMissingPositiveMatcher = errors.New("rule needs a positive matcher")
	// ErrUnknownStopBy reports an unrecognized stop-by policy document.
	ErrUnknownStopBy = errors.New("unknown stop-by policy")
	// ErrEmptyRule reports a rule document with no recognized keys.
	ErrEmptyRule = errors.New("rule document is empty")
	// ErrUnknownSeverity reports an unrecognized severity name.
	ErrUnknownSeverity = errors.New("unknown severity")
	// ErrInvalidRuleDoc reports a rule document that failed schema
	// validation.
	ErrInvalidRuleDoc = errors.New("invalid rule document")
)
