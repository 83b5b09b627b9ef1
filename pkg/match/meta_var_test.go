package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/pkg/match"
)

func TestExtractMetaVar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want match.MetaVariable
		ok   bool
	}{
		{"$NAME", match.MetaVariable{Kind: match.MetaVarCapture, Name: "NAME", Named: true}, true},
		{"$A_B2", match.MetaVariable{Kind: match.MetaVarCapture, Name: "A_B2", Named: true}, true},
		{"$$NAME", match.MetaVariable{Kind: match.MetaVarCapture, Name: "NAME", Named: false}, true},
		{"$_", match.MetaVariable{Kind: match.MetaVarDropped, Named: true}, true},
		{"$_SKIP", match.MetaVariable{Kind: match.MetaVarDropped, Named: true}, true},
		{"$$_", match.MetaVariable{Kind: match.MetaVarDropped, Named: false}, true},
		{"$$$", match.MetaVariable{Kind: match.MetaVarMultiple}, true},
		{"$$$_", match.MetaVariable{Kind: match.MetaVarMultiple}, true},
		{"$$$ARGS", match.MetaVariable{Kind: match.MetaVarMultiCapture, Name: "ARGS"}, true},
		{"$name", match.MetaVariable{Kind: match.MetaVarDropped, Named: true}, true},
		{"$", match.MetaVariable{}, false},
		{"$NA-ME", match.MetaVariable{}, false},
		{"plain", match.MetaVariable{}, false},
		{"", match.MetaVariable{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			got, ok := match.ExtractMetaVar(tt.src, '$')
			assert.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEnvInsertConsistency(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "x + x + y;\n")

	idents := collectIdents(root.Node())
	require.Len(t, idents, 3)

	env := match.NewEnv()
	assert.True(t, env.Insert("A", idents[0]))
	assert.True(t, env.Insert("A", idents[1]))
	assert.False(t, env.Insert("A", idents[2]))

	node, ok := env.Get("A")
	require.True(t, ok)
	assert.Equal(t, "x", node.Text())
}

func TestEnvCloneIsIndependent(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "a + b;\n")

	idents := collectIdents(root.Node())
	require.Len(t, idents, 2)

	env := match.NewEnv()
	require.True(t, env.Insert("A", idents[0]))

	clone := env.Clone()
	require.True(t, clone.Insert("B", idents[1]))

	_, ok := env.Get("B")
	assert.False(t, ok)

	_, ok = clone.Get("A")
	assert.True(t, ok)
}

func TestEnvMultiConsistency(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "a + b;\n")

	idents := collectIdents(root.Node())
	require.Len(t, idents, 2)

	env := match.NewEnv()
	assert.True(t, env.InsertMulti("M", idents))
	assert.True(t, env.InsertMulti("M", idents))
	assert.False(t, env.InsertMulti("M", idents[:1]))
}

func TestEnvTransformedWinsLookup(t *testing.T) {
	t.Parallel()

	root := parseJS(t, "a;\n")

	idents := collectIdents(root.Node())
	require.Len(t, idents, 1)

	env := match.NewEnv()
	require.True(t, env.Insert("A", idents[0]))
	env.InsertTransformation("A", []byte("rewritten"))

	text, ok := env.GetVarText("A")
	require.True(t, ok)
	assert.Equal(t, "rewritten", text)
}
