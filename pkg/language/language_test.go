package language_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/pkg/language"
)

func TestNewLoadsGrammar(t *testing.T) {
	t.Parallel()

	lang, err := language.New("javascript")
	require.NoError(t, err)
	assert.Equal(t, "javascript", lang.Name())

	_, err = language.New("no-such-grammar")
	assert.Error(t, err)
}

func TestKindRegistry(t *testing.T) {
	t.Parallel()

	lang, err := language.New("javascript")
	require.NoError(t, err)

	assert.NotEqual(t, language.KindEnd, lang.KindID("identifier"))
	assert.NotEqual(t, language.KindEnd, lang.KindID("call_expression"))
	assert.Equal(t, language.KindError, lang.KindID("ERROR"))
	assert.Equal(t, language.KindEnd, lang.KindID("not_a_kind"))
}

func TestFieldRegistry(t *testing.T) {
	t.Parallel()

	lang, err := language.New("javascript")
	require.NoError(t, err)

	_, ok := lang.FieldID("name")
	assert.True(t, ok)

	_, ok = lang.FieldID("no_such_field")
	assert.False(t, ok)
}

func TestPreProcessPattern(t *testing.T) {
	t.Parallel()

	plain, err := language.New("javascript")
	require.NoError(t, err)
	// Marker and expando agree; the pattern passes through.
	assert.Equal(t, "f($A)", plain.PreProcessPattern("f($A)"))

	expando, err := language.New("javascript", language.WithExpandoChar('µ'))
	require.NoError(t, err)
	assert.Equal(t, "f(µA, µµµREST)", expando.PreProcessPattern("f($A, $$$REST)"))
}

func TestParseCST(t *testing.T) {
	t.Parallel()

	lang, err := language.New("javascript")
	require.NoError(t, err)

	tree, err := lang.ParseCST(context.Background(), []byte("let x = 1;"))
	require.NoError(t, err)

	defer tree.Close()

	assert.False(t, tree.RootNode().IsNull())
	assert.Equal(t, "program", tree.RootNode().Type())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path    string
		source  string
		grammar string
		ok      bool
	}{
		{"main.go", "", "go", true},
		{"app.jsx", "", "javascript", true},
		{"lib.rs", "", "rust", true},
		{"component.tsx", "", "tsx", true},
		{"build.sh", "#!/bin/sh\n", "bash", true},
		{"script", "#!/usr/bin/env python\nprint(1)\n", "python", true},
		{"LICENSE", "whatever", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			grammar, ok := language.Detect(tc.path, []byte(tc.source))
			assert.Equal(t, tc.ok, ok)

			if tc.ok {
				assert.Equal(t, tc.grammar, grammar)
			}
		})
	}
}
