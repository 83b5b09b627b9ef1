package match

import "github.com/treegrep/treegrep/pkg/tree"

// Str is a plain pattern string used directly as a matcher. It compiles
// itself lazily against the candidate's grammar under smart strictness, so
// one value can match nodes from any language. Compiled forms are shared
// through the pattern cache.
type Str string

// MatchWithEnv implements Matcher. A string that fails to compile under the
// candidate's grammar matches nothing.
func (s Str) MatchWithEnv(node *tree.Node, env *MetaVarEnv) *tree.Node {
	pattern, err := CachedPattern(node.Lang(), string(s), StrictnessSmart)
	if err != nil {
		return nil
	}

	return pattern.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher. The kind cannot be narrowed before a
// candidate supplies the language.
func (s Str) PotentialKinds() *KindSet {
	return nil
}

// GetMatchLen implements MatchLener by delegating to the compiled pattern.
func (s Str) GetMatchLen(node *tree.Node) (int, bool) {
	pattern, err := CachedPattern(node.Lang(), string(s), StrictnessSmart)
	if err != nil {
		return 0, false
	}

	return pattern.GetMatchLen(node)
}
