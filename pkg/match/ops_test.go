package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/pkg/match"
)

func TestAndIntersectsBehavior(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)
	root := parseJS(t, "log(a); log(a + b);\n")

	callKind, err := match.NewKindMatcher(lang, "call_expression")
	require.NoError(t, err)

	hasBinary, err := match.NewRegexMatcher(`\+`)
	require.NoError(t, err)

	and := match.NewAnd(callKind, hasBinary)

	all := match.FindAllNodes(and, root.Node())
	require.Len(t, all, 1)
	assert.Equal(t, "log(a + b)", all[0].Text())

	kinds := and.PotentialKinds()
	require.NotNil(t, kinds)
	assert.Equal(t, 1, kinds.Len())
}

func TestOrUnionsBehavior(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)
	root := parseJS(t, "if (x) {} while (y) {}\n")

	ifKind, err := match.NewKindMatcher(lang, "if_statement")
	require.NoError(t, err)

	whileKind, err := match.NewKindMatcher(lang, "while_statement")
	require.NoError(t, err)

	or := match.NewOr(ifKind, whileKind)

	all := match.FindAllNodes(or, root.Node())
	assert.Len(t, all, 2)

	kinds := or.PotentialKinds()
	require.NotNil(t, kinds)
	assert.Equal(t, 2, kinds.Len())
}

func TestAllRequiresEvery(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)
	root := parseJS(t, "foo(1); bar(1); foo(2);\n")

	callKind, err := match.NewKindMatcher(lang, "call_expression")
	require.NoError(t, err)

	fooCall := mustPattern(t, "foo($A)")

	all := match.NewAll([]match.Matcher{callKind, fooCall})

	found := match.FindAllNodes(all, root.Node())
	assert.Len(t, found, 2)

	kinds := all.PotentialKinds()
	require.NotNil(t, kinds)
	assert.Equal(t, 1, kinds.Len())
}

func TestAllSharesEnvAcrossBranches(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "check(x, x); check(x, y);\n")

	first := mustPattern(t, "check($V, $$$)")
	second := mustPattern(t, "check($$$, $V)")

	all := match.NewAll([]match.Matcher{first, second})

	found := match.FindAllNodes(all, root.Node())
	require.Len(t, found, 1)
	assert.Equal(t, "check(x, x)", found[0].Text())
}

func TestAnyFirstWins(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "foo(1);\n")

	foo := mustPattern(t, "foo($A)")
	bar := mustPattern(t, "bar($B)")

	any := match.NewAny([]match.Matcher{bar, foo})

	found := match.FindNode(any, root.Node())
	require.NotNil(t, found)

	_, ok := found.Env().GetVarText("A")
	assert.True(t, ok)
}

func TestEmptyAnyMatchesNothing(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "foo(1);\n")

	any := match.NewAny(nil)
	assert.Nil(t, match.FindNode(any, root.Node()))

	kinds := any.PotentialKinds()
	require.NotNil(t, kinds)
	assert.Equal(t, 0, kinds.Len())
}

func TestNotInvertsAndDropsCaptures(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "foo(1);\n")

	foo := mustPattern(t, "foo($A)")
	not := match.NewNot(foo)

	found := match.MatchNode(not, root.Node())
	require.NotNil(t, found)
	assert.Empty(t, found.Env().SingleNames())

	assert.Nil(t, not.PotentialKinds())
}

func TestMatchAllAndMatchNone(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "x;\n")

	require.NotNil(t, match.MatchNode(match.MatchAll{}, root.Node()))
	assert.Nil(t, match.MatchNode(match.MatchNone{}, root.Node()))

	assert.Nil(t, match.MatchAll{}.PotentialKinds())

	none := match.MatchNone{}.PotentialKinds()
	require.NotNil(t, none)
	assert.Equal(t, 0, none.Len())
}
