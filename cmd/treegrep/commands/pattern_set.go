package commands

import (
	"github.com/treegrep/treegrep/pkg/match"
)

// patternSet compiles one pattern source per grammar on demand. Files in
// different languages compile against their own grammar; the compiled
// pattern cache deduplicates repeat grammars.
type patternSet struct {
	source     string
	strictness string
}

func newPatternSet(source, strictness string) *patternSet {
	return &patternSet{source: source, strictness: strictness}
}

func (p *patternSet) get(file *parsedFile) (*match.Pattern, error) {
	strictness := match.StrictnessSmart
	if p.strictness != "" {
		parsed, err := match.ParseStrictness(p.strictness)
		if err != nil {
			return nil, err
		}

		strictness = parsed
	}

	return match.CachedPattern(file.root.Lang(), p.source, strictness)
}
