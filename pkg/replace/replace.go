// Package replace generates replacement text for matched nodes from fix
// templates. Templates interpolate meta-variables bound during matching
// ($VAR for single captures, $$$VARS for multi captures) and preserve the
// relative indentation of multi-line captures when they are re-inserted at
// a different column.
package replace

import (
	"bytes"
	"slices"
	"strings"

	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/tree"
)

// Replacer generates replacement bytes for a matched node.
type Replacer interface {
	Generate(m *match.NodeMatch) []byte
}

// part is one compiled template segment: either literal text or a
// meta-variable reference with the column it is inserted at.
type part struct {
	literal []byte
	name    string
	indent  int
}

// Template is a compiled fix template. Compile once, generate per match;
// a Template is immutable and safe for concurrent use.
type Template struct {
	parts []part
}

// NewTemplate compiles a fix template. $NAME and $$$NAME are variable
// references; transformNames lists transform outputs, which count as
// variables even when their spelling would otherwise read as ordinary
// text. Dollar runs that do not form a valid variable stay literal.
func NewTemplate(source string, transformNames []string) *Template {
	t := &Template{}
	lit := []byte{}

	for i := 0; i < len(source); {
		if source[i] != '$' {
			lit = append(lit, source[i])
			i++

			continue
		}

		name, width, ok := scanVar(source[i:], transformNames)
		if !ok {
			lit = append(lit, source[i])
			i++

			continue
		}

		if len(lit) > 0 {
			t.parts = append(t.parts, part{literal: lit})
			lit = []byte{}
		}

		t.parts = append(t.parts, part{name: name, indent: indentAtOffset([]byte(source[:i]))})
		i += width
	}

	if len(lit) > 0 {
		t.parts = append(t.parts, part{literal: lit})
	}

	return t
}

// scanVar reads a meta-variable reference at the start of src. It accepts
// the same names the pattern compiler does, plus transform output names.
func scanVar(src string, transformNames []string) (string, int, bool) {
	markers := 1
	for markers < 3 && markers < len(src) && src[markers] == '$' {
		markers++
	}

	end := markers
	for end < len(src) && isVarChar(src[end]) {
		end++
	}

	name := src[markers:end]
	if name == "" {
		return "", 0, false
	}

	if slices.Contains(transformNames, name) {
		return name, end, true
	}

	mv, ok := match.ExtractMetaVar(src[:end], '$')
	if !ok || mv.Name == "" {
		return "", 0, false
	}

	return mv.Name, end, true
}

func isVarChar(c byte) bool {
	return c == '_' ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9')
}

// Generate renders the template against the bindings of m. Unbound
// variables render as empty text. Multi-line bindings are de-indented
// from their source column and re-indented to the insertion column.
func (t *Template) Generate(m *match.NodeMatch) []byte {
	env := m.Env()
	source := m.Node().Root().Source()

	var buf bytes.Buffer

	for _, p := range t.parts {
		if p.name == "" {
			buf.Write(p.literal)

			continue
		}

		text, ok := env.GetVarText(p.name)
		if !ok {
			continue
		}

		buf.WriteString(indentLines(p.indent, sourceIndent(env, p.name, source), text))
	}

	return buf.Bytes()
}

// sourceIndent reports the column the variable's text originally sat at.
// Transformed text has no source node and is treated as column zero.
func sourceIndent(env *match.MetaVarEnv, name string, source []byte) int {
	if _, ok := env.GetTransformed(name); ok {
		return 0
	}

	var node *tree.Node
	if n, ok := env.Get(name); ok {
		node = n
	} else if ns, ok := env.GetMulti(name); ok && len(ns) > 0 {
		node = ns[0]
	}

	if node == nil {
		return 0
	}

	return indentAtOffset(source[:node.StartByte()])
}

// ReplacedRange reports the byte range of source the replacement covers.
// Matchers that report a match length leave trailing trivia outside the
// range so punctuation after a $$$ run survives the rewrite.
func ReplacedRange(m *match.NodeMatch, matcher match.Matcher) (int, int) {
	node := m.Node()
	start := node.StartByte()

	return start, start + match.MatchLen(matcher, node)
}

// indentAtOffset counts the spaces between the last newline in src and its
// end. Any other character resets the count, so mid-line offsets report
// zero.
func indentAtOffset(src []byte) int {
	indent := 0

	for i := len(src) - 1; i >= 0; i-- {
		switch src[i] {
		case '\n':
			return indent
		case ' ':
			indent++
		default:
			indent = 0
		}
	}

	return indent
}

// indentLines moves text from its source column to the target column. The
// first line is never touched; it lands wherever the template put it.
func indentLines(target, source int, text string) string {
	if !strings.Contains(text, "\n") || target == source {
		return text
	}

	lines := strings.Split(text, "\n")
	if target > source {
		pad := strings.Repeat(" ", target-source)
		for i := 1; i < len(lines); i++ {
			lines[i] = pad + lines[i]
		}
	} else {
		pad := strings.Repeat(" ", source-target)
		for i := 1; i < len(lines); i++ {
			lines[i] = strings.TrimPrefix(lines[i], pad)
		}
	}

	return strings.Join(lines, "\n")
}
