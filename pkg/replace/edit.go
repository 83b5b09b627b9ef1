package replace

import (
	"bytes"
	"slices"

	"github.com/treegrep/treegrep/pkg/match"
)

// Edit is a single byte-range rewrite against a source buffer.
type Edit struct {
	StartByte int
	EndByte   int
	Inserted  []byte
}

// MakeEdit builds the edit for one match: the replacer generates the new
// text, the matcher bounds the replaced range.
func MakeEdit(m *match.NodeMatch, matcher match.Matcher, r Replacer) Edit {
	start, end := ReplacedRange(m, matcher)

	return Edit{StartByte: start, EndByte: end, Inserted: r.Generate(m)}
}

// ApplyEdits splices edits into source, earliest first. Edits overlapping
// an already applied one are dropped; first writer wins.
func ApplyEdits(source []byte, edits []Edit) []byte {
	ordered := slices.Clone(edits)
	slices.SortStableFunc(ordered, func(a, b Edit) int { return a.StartByte - b.StartByte })

	var buf bytes.Buffer

	pos := 0

	for _, e := range ordered {
		if e.StartByte < pos {
			continue
		}

		buf.Write(source[pos:e.StartByte])
		buf.Write(e.Inserted)
		pos = e.EndByte
	}

	buf.Write(source[pos:])

	return buf.Bytes()
}
