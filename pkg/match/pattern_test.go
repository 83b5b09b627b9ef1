package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/tree"
)

func jsLang(t *testing.T) *language.Language {
	t.Helper()

	lang, err := language.New("javascript")
	require.NoError(t, err)

	return lang
}

func parseJS(t *testing.T, source string) *tree.Root {
	t.Helper()

	root, err := tree.Parse(context.Background(), jsLang(t), []byte(source))
	require.NoError(t, err)

	return root
}

func collectIdents(node *tree.Node) []*tree.Node {
	return node.Find(func(n *tree.Node) bool { return n.KindName() == "identifier" })
}

func mustPattern(t *testing.T, source string, opts ...match.PatternOption) *match.Pattern {
	t.Helper()

	pattern, err := match.NewPattern(jsLang(t), source, opts...)
	require.NoError(t, err)

	return pattern
}

func TestPatternCaptures(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "$A = $B")
	root := parseJS(t, "x = compute();\n")

	found := match.FindNode(pattern, root.Node())
	require.NotNil(t, found)

	text, ok := found.Env().GetVarText("A")
	require.True(t, ok)
	assert.Equal(t, "x", text)

	text, ok = found.Env().GetVarText("B")
	require.True(t, ok)
	assert.Equal(t, "compute()", text)
}

func TestPatternFunctionWithEllipsis(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "function $NAME($$$ARGS) { $$$BODY }")
	root := parseJS(t, "function add(a, b) { return a + b; }\n")

	found := match.FindNode(pattern, root.Node())
	require.NotNil(t, found)
	assert.Equal(t, "function_declaration", found.Node().KindName())

	name, ok := found.Env().GetVarText("NAME")
	require.True(t, ok)
	assert.Equal(t, "add", name)

	args, ok := found.Env().GetVarText("ARGS")
	require.True(t, ok)
	assert.Equal(t, "a, b", args)

	body, ok := found.Env().GetVarText("BODY")
	require.True(t, ok)
	assert.Equal(t, "return a + b;", body)
}

func TestEllipsisMatchesEmptyRun(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "function $NAME() { $$$ }")
	root := parseJS(t, "function noop() {}\n")

	require.NotNil(t, match.FindNode(pattern, root.Node()))
}

func TestAnonymousEllipsisDoesNotBind(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "foo($$$)")
	root := parseJS(t, "foo(a, b);\n")

	found := match.FindNode(pattern, root.Node())
	require.NotNil(t, found)
	assert.Empty(t, found.Env().MultiNames())
}

func TestCaptureConsistency(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "$A == $A")

	same := parseJS(t, "x == x;\n")
	require.NotNil(t, match.FindNode(pattern, same.Node()))

	diff := parseJS(t, "x == y;\n")
	assert.Nil(t, match.FindNode(pattern, diff.Node()))
}

func TestDroppedVariableSkipsConsistency(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "$_ == $_")
	root := parseJS(t, "x == y;\n")

	found := match.FindNode(pattern, root.Node())
	require.NotNil(t, found)
	assert.Empty(t, found.Env().SingleNames())
}

func TestSmartSkipsTrailingSemicolon(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "let a = 1;\n")

	smart := mustPattern(t, "let $A = $B")
	require.NotNil(t, match.FindNode(smart, root.Node()))

	exact := mustPattern(t, "let $A = $B", match.WithStrictness(match.StrictnessExact))
	assert.Nil(t, match.FindNode(exact, root.Node()))
}

func TestRelaxedSkipsComments(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "foo(a, /* second */ b);\n")
	src := "foo(a, b)"

	smart := mustPattern(t, src)
	assert.Nil(t, match.FindNode(smart, root.Node()))

	relaxed := mustPattern(t, src, match.WithStrictness(match.StrictnessRelaxed))
	require.NotNil(t, match.FindNode(relaxed, root.Node()))
}

func TestSignatureIgnoresTerminalText(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "bar();\n")

	smart := mustPattern(t, "foo()")
	assert.Nil(t, match.FindNode(smart, root.Node()))

	signature := mustPattern(t, "foo()", match.WithStrictness(match.StrictnessSignature))
	require.NotNil(t, match.FindNode(signature, root.Node()))
}

func TestMatchIsDeterministic(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "foo($$$ARGS)")
	root := parseJS(t, "foo(a, b, c);\n")

	first := match.FindNode(pattern, root.Node())
	require.NotNil(t, first)

	for range 5 {
		again := match.FindNode(pattern, root.Node())
		require.NotNil(t, again)

		want, _ := first.Env().GetVarText("ARGS")
		got, _ := again.Env().GetVarText("ARGS")
		assert.Equal(t, want, got)
	}
}

func TestFindAllNodes(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "log($A)")
	root := parseJS(t, "log(a); skip(b); log(c);\n")

	all := match.FindAllNodes(pattern, root.Node())
	require.Len(t, all, 2)

	first, _ := all[0].Env().GetVarText("A")
	second, _ := all[1].Env().GetVarText("A")
	assert.Equal(t, "a", first)
	assert.Equal(t, "c", second)
}

func TestPatternErrors(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)

	_, err := match.NewPattern(lang, "")
	assert.ErrorIs(t, err, match.ErrNoContent)

	_, err = match.NewPattern(lang, "a; b;")
	assert.ErrorIs(t, err, match.ErrMultipleNode)
}

func TestContextualPattern(t *testing.T) {
	t.Parallel()

	pattern, err := match.NewContextualPattern(
		jsLang(t), "class $C { $M() { $$$ } }", "method_definition")
	require.NoError(t, err)

	root := parseJS(t, "class Greeter { hello() { say(); } }\n")

	found := match.FindNode(pattern, root.Node())
	require.NotNil(t, found)
	assert.Equal(t, "method_definition", found.Node().KindName())

	name, ok := found.Env().GetVarText("M")
	require.True(t, ok)
	assert.Equal(t, "hello", name)
}

func TestContextualPatternBadSelector(t *testing.T) {
	t.Parallel()

	_, err := match.NewContextualPattern(jsLang(t), "class $C { $M() {} }", "no_such_kind")
	assert.ErrorIs(t, err, match.ErrNoSelectorInContext)
}

func TestGetMatchLenExcludesSkippedTrailing(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "let $A = $B")
	root := parseJS(t, "let a = 1;\n")

	found := match.FindNode(pattern, root.Node())
	require.NotNil(t, found)

	length, ok := pattern.GetMatchLen(found.Node())
	require.True(t, ok)
	assert.Equal(t, len("let a = 1"), length)

	assert.Equal(t, len("let a = 1"), match.MatchLen(pattern, found.Node()))
}

func TestPotentialKinds(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)

	pattern := mustPattern(t, "foo($A)")
	kinds := pattern.PotentialKinds()
	require.NotNil(t, kinds)
	assert.Equal(t, 1, kinds.Len())
	assert.True(t, kinds.Contains(lang.KindID("call_expression")))

	bare := mustPattern(t, "$A")
	assert.Nil(t, bare.PotentialKinds())
}

func TestCachedPatternReused(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)

	first, err := match.CachedPattern(lang, "foo($A)", match.StrictnessSmart)
	require.NoError(t, err)

	second, err := match.CachedPattern(lang, "foo($A)", match.StrictnessSmart)
	require.NoError(t, err)
	assert.Same(t, first, second)

	exact, err := match.CachedPattern(lang, "foo($A)", match.StrictnessExact)
	require.NoError(t, err)
	assert.NotSame(t, first, exact)
}

func TestSmartToleratesTrailingComment(t *testing.T) {
	t.Parallel()

	py, err := language.New("python")
	require.NoError(t, err)

	root, err := tree.Parse(context.Background(), py, []byte("if a:\n    b\n    # note\n"))
	require.NoError(t, err)

	smart, err := match.NewPattern(py, "if $C:\n    $B")
	require.NoError(t, err)

	found := match.FindNode(smart, root.Node())
	require.NotNil(t, found)
	assert.Equal(t, "if_statement", found.Node().KindName())

	exact, err := match.NewPattern(py, "if $C:\n    $B", match.WithStrictness(match.StrictnessExact))
	require.NoError(t, err)
	assert.Nil(t, match.FindNode(exact, root.Node()))
}

func TestSyntaxSkipsTrailingAnonymousCapture(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "return\n")
	src := "return $$A"

	smart := mustPattern(t, src)
	assert.Nil(t, match.FindNode(smart, root.Node()))

	syntax := mustPattern(t, src, match.WithStrictness(match.StrictnessSyntax))
	require.NotNil(t, match.FindNode(syntax, root.Node()))
}

func TestStringPatternCompilesLazily(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "log(a); skip(b); log(c);\n")

	all := match.FindAllNodes(match.Str("log($A)"), root.Node())
	require.Len(t, all, 2)

	text, ok := all[0].Env().GetVarText("A")
	require.True(t, ok)
	assert.Equal(t, "a", text)

	// The same value matches under whatever grammar the candidate carries.
	py, err := language.New("python")
	require.NoError(t, err)

	pyRoot, err := tree.Parse(context.Background(), py, []byte("log(x)\n"))
	require.NoError(t, err)
	require.NotNil(t, match.FindNode(match.Str("log($A)"), pyRoot.Node()))

	assert.Nil(t, match.FindNode(match.Str(""), root.Node()))
}

func TestRecompiledPatternMatchesIdentically(t *testing.T) {
	t.Parallel()

	lang := jsLang(t)
	root := parseJS(t, "foo(a, b, c); bar(); foo(x, y);\n")

	first, err := match.NewPattern(lang, "foo($A, $$$REST)")
	require.NoError(t, err)

	second, err := match.NewPattern(lang, "foo($A, $$$REST)")
	require.NoError(t, err)
	require.NotSame(t, first, second)

	lhs := match.FindAllNodes(first, root.Node())
	rhs := match.FindAllNodes(second, root.Node())
	require.Len(t, lhs, 2)
	require.Len(t, rhs, len(lhs))

	for idx := range lhs {
		assert.Equal(t, lhs[idx].Node().StartByte(), rhs[idx].Node().StartByte())
		assert.Equal(t, lhs[idx].Node().EndByte(), rhs[idx].Node().EndByte())

		require.Equal(t, lhs[idx].Env().SingleNames(), rhs[idx].Env().SingleNames())
		require.Equal(t, lhs[idx].Env().MultiNames(), rhs[idx].Env().MultiNames())

		for _, name := range lhs[idx].Env().SingleNames() {
			want, _ := lhs[idx].Env().GetVarText(name)
			got, _ := rhs[idx].Env().GetVarText(name)
			assert.Equal(t, want, got)
		}

		for _, name := range lhs[idx].Env().MultiNames() {
			want, _ := lhs[idx].Env().GetVarText(name)
			got, _ := rhs[idx].Env().GetVarText(name)
			assert.Equal(t, want, got)
		}
	}
}

func TestCaptureNextToLiteral(t *testing.T) {
	t.Parallel()

	pattern := mustPattern(t, "$A = 0")

	matched := match.FindNode(pattern, parseJS(t, "a = 0;\n").Node())
	require.NotNil(t, matched)

	bound, ok := matched.Env().Get("A")
	require.True(t, ok)
	assert.Equal(t, "a", bound.Text())

	// The literal operand must agree too.
	assert.Nil(t, match.FindNode(pattern, parseJS(t, "a = 1;\n").Node()))
}
