package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/match"
)

func TestKindSetMembership(t *testing.T) {
	t.Parallel()

	set := match.NewKindSet(3, 70, 65535)

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(3))
	assert.True(t, set.Contains(70))
	assert.True(t, set.Contains(65535))
	assert.False(t, set.Contains(4))

	set.Add(70)
	assert.Equal(t, 3, set.Len())

	var members []language.KindID

	set.Each(func(kind language.KindID) { members = append(members, kind) })
	assert.Equal(t, []language.KindID{3, 70, 65535}, members)
}

func TestNilKindSetMeansEverything(t *testing.T) {
	t.Parallel()

	var set *match.KindSet

	assert.True(t, set.Contains(0))
	assert.True(t, set.Contains(12345))

	set.Each(func(language.KindID) { t.Fatal("nil set has no members to visit") })
}

func TestKindSetUnionIntersect(t *testing.T) {
	t.Parallel()

	left := match.NewKindSet(1, 2, 3)
	right := match.NewKindSet(3, 4)

	union := left.Union(right)
	require.NotNil(t, union)
	assert.Equal(t, 4, union.Len())

	inter := left.Intersect(right)
	require.NotNil(t, inter)
	assert.Equal(t, 1, inter.Len())
	assert.True(t, inter.Contains(3))

	assert.Nil(t, left.Union(nil))
	assert.Equal(t, left, left.Intersect(nil))
	assert.Equal(t, right, (*match.KindSet)(nil).Intersect(right))
}

func TestKindMatcherErrors(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)

	_, err := match.NewKindMatcher(lang, "not_a_kind")
	assert.ErrorIs(t, err, match.ErrInvalidKind)

	m, err := match.NewKindMatcher(lang, "call_expression")
	require.NoError(t, err)

	root := parseJS(t, "foo();\n")
	found := match.FindNode(m, root.Node())
	require.NotNil(t, found)
	assert.Equal(t, "foo()", found.Text())
}

func TestStrictnessParse(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"exact", "smart", "syntax", "relaxed", "signature"} {
		s, err := match.ParseStrictness(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.String())
	}

	_, err := match.ParseStrictness("fuzzy")
	assert.ErrorIs(t, err, match.ErrUnknownStrictness)
}

func TestErrorKindMatchesOnlyParseErrors(t *testing.T) {
	t.Parallel()

	matcher, err := match.NewKindMatcher(jsLang(t), "ERROR")
	require.NoError(t, err)

	broken := parseJS(t, "let = ;\nlet ok = 1;\n")

	found := match.FindAllNodes(matcher, broken.Node())
	require.NotEmpty(t, found)

	for _, m := range found {
		assert.True(t, m.Node().IsError())
	}

	clean := parseJS(t, "let ok = 1;\n")
	assert.Empty(t, match.FindAllNodes(matcher, clean.Node()))
}
