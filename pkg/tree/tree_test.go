package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/tree"
)

func parseJS(t *testing.T, source string) *tree.Root {
	t.Helper()

	lang, err := language.New("javascript")
	require.NoError(t, err)

	root, err := tree.Parse(context.Background(), lang, []byte(source))
	require.NoError(t, err)

	return root
}

func TestParseBuildsView(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "const answer = 42;\n")

	node := root.Node()
	require.NotNil(t, node)
	assert.Equal(t, "program", node.KindName())
	assert.True(t, node.IsNamed())
	assert.Nil(t, node.Parent())
	assert.Greater(t, root.NodeCount(), 1)
	assert.Equal(t, "const answer = 42;", root.Node().Child(0).Text())
}

func TestChildrenAndFields(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "function greet(name) { return name; }\n")

	funcs := root.Node().Find(func(n *tree.Node) bool {
		return n.KindName() == "function_declaration"
	})
	require.Len(t, funcs, 1)

	fn := funcs[0]

	name := fn.Field("name")
	require.NotNil(t, name)
	assert.Equal(t, "greet", name.Text())
	assert.Equal(t, "name", name.FieldName())

	body := fn.Field("body")
	require.NotNil(t, body)
	assert.Equal(t, "statement_block", body.KindName())

	assert.Nil(t, fn.Field("no_such_field"))
}

func TestSiblingTraversal(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "let a = 1;\nlet b = 2;\nlet c = 3;\n")

	children := root.Node().Children()
	require.Len(t, children, 3)

	first := children[0]
	assert.Nil(t, first.Prev())
	require.NotNil(t, first.Next())
	assert.Equal(t, "let b = 2;", first.Next().Text())

	var after []string

	first.NextAll(func(n *tree.Node) bool {
		after = append(after, n.Text())

		return true
	})
	assert.Equal(t, []string{"let b = 2;", "let c = 3;"}, after)

	last := children[2]

	var before []string

	last.PrevAll(func(n *tree.Node) bool {
		before = append(before, n.Text())

		return true
	})
	assert.Equal(t, []string{"let b = 2;", "let a = 1;"}, before)
}

func TestAncestors(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "function outer() { function inner() {} }\n")

	inners := root.Node().Find(func(n *tree.Node) bool {
		return n.KindName() == "function_declaration" && n.Field("name").Text() == "inner"
	})
	require.Len(t, inners, 1)

	var kinds []string

	inners[0].Ancestors(func(n *tree.Node) bool {
		kinds = append(kinds, n.KindName())

		return true
	})
	assert.Equal(t, []string{"statement_block", "function_declaration", "program"}, kinds)
}

func TestVisitPreOrderIsDepthFirst(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "a(b)\n")

	var order []string

	root.Node().VisitPreOrder(func(n *tree.Node) {
		if n.IsNamed() {
			order = append(order, n.KindName())
		}
	})

	assert.Equal(t, []string{
		"program", "expression_statement", "call_expression",
		"identifier", "arguments", "identifier",
	}, order)
}

func TestLineOf(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "let a = 1;\nlet b = 2;\n")

	children := root.Node().Children()
	require.Len(t, children, 2)

	assert.Equal(t, 0, children[0].StartLine())
	assert.Equal(t, 1, children[1].StartLine())
}

func TestErrorNodes(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "let let let\n")

	errs := root.Node().Find(func(n *tree.Node) bool { return n.IsError() })
	assert.NotEmpty(t, errs)
}

func TestKindIDsStable(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "let a = 1; let b = 2;\n")

	idents := root.Node().Find(func(n *tree.Node) bool {
		return n.KindName() == "identifier"
	})
	require.Len(t, idents, 2)
	assert.Equal(t, idents[0].KindID(), idents[1].KindID())

	want := root.Lang().KindID("identifier")
	assert.NotEqual(t, language.KindEnd, want)
	assert.Equal(t, want, idents[0].KindID())
}
