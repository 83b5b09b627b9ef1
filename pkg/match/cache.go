package match

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/treegrep/treegrep/pkg/language"
)

const patternCacheSize = 512

type patternCacheKey struct {
	lang       string
	source     string
	strictness Strictness
}

// patternCache memoizes compiled patterns across rules and files. Scans over
// many files recompile the same handful of patterns otherwise. The cache is
// safe for concurrent use.
var patternCache, _ = lru.New[patternCacheKey, *Pattern](patternCacheSize)

// CachedPattern compiles source once per language and strictness and reuses
// the compiled pattern on later calls. Compilation errors are not cached.
func CachedPattern(lang *language.Language, source string, s Strictness) (*Pattern, error) {
	key := patternCacheKey{lang: lang.Name(), source: source, strictness: s}
	if pattern, ok := patternCache.Get(key); ok {
		return pattern, nil
	}

	pattern, err := NewPattern(lang, source, WithStrictness(s))
	if err != nil {
		return nil, err
	}

	patternCache.Add(key, pattern)

	return pattern, nil
}
