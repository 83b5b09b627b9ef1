// Package language wraps tree-sitter grammars behind a stable, engine-facing
// surface: a kind-name registry, meta-variable syntax configuration, and a
// pooled parser per language.
package language

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// KindID is a per-language numeric id of a grammar production.
type KindID = uint16

// Two reserved tree-sitter symbol values are load-bearing: 0 is the
// "end of symbols" sentinel returned for unknown kind names, 65535 is the
// builtin ERROR symbol shared by every grammar.
const (
	KindEnd   KindID = 0
	KindError KindID = 65535
)

// Sentinel errors for language loading.
var (
	errLanguageNotAvailable = errors.New("tree-sitter language not available")
	errParserPoolType       = errors.New("language: pool returned unexpected type")
	errNoRootNode           = errors.New("language: no root node")
)

// Language binds a tree-sitter grammar to the meta-variable conventions the
// pattern compiler needs. A Language is immutable after New and safe for
// concurrent use.
type Language struct {
	name        string
	ts          *sitter.Language
	kinds       map[string]KindID
	fields      map[string]uint16
	metaVarChar rune
	expandoChar rune
	parserPool  sync.Pool
}

// Option customizes a Language during construction.
type Option func(*Language)

// WithMetaVarChar overrides the leading meta-variable marker (default '$').
func WithMetaVarChar(c rune) Option {
	return func(l *Language) { l.metaVarChar = c }
}

// WithExpandoChar sets the run-time substitute for the marker character, for
// grammars where the marker is not a legal identifier character.
func WithExpandoChar(c rune) Option {
	return func(l *Language) { l.expandoChar = c }
}

// New loads the named grammar from the embedded forest and builds its kind
// registry.
func New(name string, opts ...Option) (*Language, error) {
	ts := getTSLanguage(name)
	if ts == nil {
		return nil, fmt.Errorf("%w: %s", errLanguageNotAvailable, name)
	}

	lang := &Language{
		name:        name,
		ts:          ts,
		metaVarChar: '$',
		expandoChar: '$',
	}

	for _, opt := range opts {
		opt(lang)
	}

	lang.kinds = buildKindRegistry(ts)
	lang.fields = buildFieldRegistry(ts)
	lang.parserPool = sync.Pool{
		New: func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(ts)

			return parser
		},
	}

	return lang, nil
}

// getTSLanguage looks up a grammar with panic recovery; forest panics on
// unknown names in some versions.
func getTSLanguage(name string) (ts *sitter.Language) {
	defer func() {
		_ = recover() //nolint:errcheck // recover() returns any, not error
	}()

	ts = forest.GetLanguage(name)

	return ts
}

// buildKindRegistry maps kind names to symbol ids. Named grammar symbols win
// over anonymous ones when both share a name, matching how rule authors
// reference kinds.
func buildKindRegistry(ts *sitter.Language) map[string]KindID {
	count := ts.SymbolCount()
	kinds := make(map[string]KindID, count)

	for sym := uint32(1); sym < count; sym++ {
		id := sitter.Symbol(sym)
		name := ts.SymbolName(id)

		named := ts.SymbolType(id) == sitter.SymbolTypeRegular
		if prev, exists := kinds[name]; exists {
			if named && ts.SymbolType(sitter.Symbol(prev)) != sitter.SymbolTypeRegular {
				kinds[name] = KindID(sym)
			}

			continue
		}

		kinds[name] = KindID(sym)
	}

	kinds["ERROR"] = KindError

	return kinds
}

func buildFieldRegistry(ts *sitter.Language) map[string]uint16 {
	count := ts.FieldCount()
	fields := make(map[string]uint16, count)

	for id := uint32(1); id <= count; id++ {
		fields[ts.FieldName(int(id))] = uint16(id)
	}

	return fields
}

// Name returns the grammar name, e.g. "javascript".
func (l *Language) Name() string {
	return l.name
}

// KindID resolves a kind name to its numeric id. Unknown names return
// KindEnd, which no real node carries.
func (l *Language) KindID(kind string) KindID {
	return l.kinds[kind]
}

// FieldID resolves a field name, reporting whether the grammar defines it.
func (l *Language) FieldID(field string) (uint16, bool) {
	id, ok := l.fields[field]

	return id, ok
}

// MetaVarChar is the leading marker of meta-variables in pattern text.
func (l *Language) MetaVarChar() rune {
	return l.metaVarChar
}

// ExpandoChar is the character substituted for the marker before the pattern
// text reaches the grammar parser.
func (l *Language) ExpandoChar() rune {
	return l.expandoChar
}

// PreProcessPattern rewrites meta-variable markers to the expando character
// so the grammar can parse them as plain identifiers. Runs of the marker are
// replaced one-for-one; everything else passes through untouched.
func (l *Language) PreProcessPattern(query string) string {
	if l.metaVarChar == l.expandoChar {
		return query
	}

	return strings.ReplaceAll(query, string(l.metaVarChar), string(l.expandoChar))
}

// ParseCST parses content into a raw tree-sitter tree. Callers own the
// returned tree and must Close it.
func (l *Language) ParseCST(ctx context.Context, content []byte) (*sitter.Tree, error) {
	parser, ok := l.parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errParserPoolType
	}

	defer l.parserPool.Put(parser)

	tree, err := parser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("language %s: parse: %w", l.name, err)
	}

	if tree.RootNode().IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	return tree, nil
}
