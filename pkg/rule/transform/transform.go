// Package transform derives new meta-variable text from captured bindings:
// substring extraction, regex replacement, and case conversion. Transforms
// are declared per rule, may consume each other's output, and run in
// dependency order after a successful match.
package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/treegrep/treegrep/pkg/match"
)

var (
	// ErrParse reports an unparsable transform expression.
	ErrParse = errors.New("cannot parse transform")
	// ErrCyclic reports transforms that depend on each other.
	ErrCyclic = errors.New("cyclic transform dependency")
	// ErrAlreadyDefined reports a transform name declared twice.
	ErrAlreadyDefined = errors.New("transform already defined")
	// ErrMalformedVar reports a source that is not a $VARIABLE reference.
	ErrMalformedVar = errors.New("malformed meta-variable reference")
	// ErrUnknownCase reports an unrecognized case conversion name.
	ErrUnknownCase = errors.New("unknown case conversion")
)

// Trans computes derived text from an environment.
type Trans interface {
	// Source returns the meta-variable name the transform reads.
	Source() string
	// Apply computes the derived text. A source with no binding yields
	// empty text rather than an error.
	Apply(env *match.MetaVarEnv) string
}

// parseSource validates a $VAR reference and strips the marker.
func parseSource(src string) (string, error) {
	name, ok := strings.CutPrefix(src, "$")
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedVar, src)
	}

	return name, nil
}

// Substring extracts a character range. Negative indices count from the end,
// out-of-range indices clamp.
type Substring struct {
	source    string
	startChar *int
	endChar   *int
}

// NewSubstring builds the transform. Nil bounds mean the string's ends.
func NewSubstring(source string, startChar, endChar *int) (*Substring, error) {
	name, err := parseSource(source)
	if err != nil {
		return nil, err
	}

	return &Substring{source: name, startChar: startChar, endChar: endChar}, nil
}

// Source implements Trans.
func (t *Substring) Source() string {
	return t.source
}

// Apply implements Trans.
func (t *Substring) Apply(env *match.MetaVarEnv) string {
	text, _ := env.GetVarText(t.source)
	runes := []rune(text)

	start := clampIndex(t.startChar, 0, len(runes))
	end := clampIndex(t.endChar, len(runes), len(runes))

	if start >= end {
		return ""
	}

	return string(runes[start:end])
}

func clampIndex(idx *int, fallback, length int) int {
	if idx == nil {
		return fallback
	}

	val := *idx
	if val < 0 {
		val += length
	}

	if val < 0 {
		return 0
	}

	if val > length {
		return length
	}

	return val
}

// Replace substitutes every match of a regex with replacement text.
type Replace struct {
	source string
	re     *regexp.Regexp
	by     string
}

// NewReplace builds the transform.
func NewReplace(source, pattern, by string) (*Replace, error) {
	name, err := parseSource(source)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return &Replace{source: name, re: re, by: by}, nil
}

// Source implements Trans.
func (t *Replace) Source() string {
	return t.source
}

// Apply implements Trans.
func (t *Replace) Apply(env *match.MetaVarEnv) string {
	text, _ := env.GetVarText(t.source)

	return t.re.ReplaceAllString(text, t.by)
}

// Convert changes the case style of the source text.
type Convert struct {
	source string
	toCase string
}

var caseConverters = map[string]func(string) string{
	"lowerCase":  strings.ToLower,
	"upperCase":  strings.ToUpper,
	"capitalize": capitalize,
	"camelCase":  toCamel,
	"pascalCase": toPascal,
	"snakeCase":  toSnake,
	"kebabCase":  toKebab,
}

// NewConvert builds the transform.
func NewConvert(source, toCase string) (*Convert, error) {
	name, err := parseSource(source)
	if err != nil {
		return nil, err
	}

	if _, ok := caseConverters[toCase]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCase, toCase)
	}

	return &Convert{source: name, toCase: toCase}, nil
}

// Source implements Trans.
func (t *Convert) Source() string {
	return t.source
}

// Apply implements Trans.
func (t *Convert) Apply(env *match.MetaVarEnv) string {
	text, _ := env.GetVarText(t.source)

	return caseConverters[t.toCase](text)
}

// splitWords breaks an identifier into words at underscores, hyphens,
// spaces, and lower-to-upper case boundaries.
func splitWords(text string) []string {
	var words []string

	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	prevLower := false

	for _, r := range text {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
			prevLower = false
		case unicode.IsUpper(r) && prevLower:
			flush()
			cur = append(cur, r)
			prevLower = false
		default:
			cur = append(cur, r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}

	flush()

	return words
}

func capitalize(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	return string(unicode.ToUpper(runes[0])) + string(runes[1:])
}

func toCamel(text string) string {
	words := splitWords(text)

	var b strings.Builder

	for idx, word := range words {
		if idx == 0 {
			b.WriteString(strings.ToLower(word))

			continue
		}

		b.WriteString(capitalize(strings.ToLower(word)))
	}

	return b.String()
}

func toPascal(text string) string {
	var b strings.Builder

	for _, word := range splitWords(text) {
		b.WriteString(capitalize(strings.ToLower(word)))
	}

	return b.String()
}

func joinWords(text, sep string) string {
	words := splitWords(text)
	for idx, word := range words {
		words[idx] = strings.ToLower(word)
	}

	return strings.Join(words, sep)
}

func toSnake(text string) string {
	return joinWords(text, "_")
}

func toKebab(text string) string {
	return joinWords(text, "-")
}
