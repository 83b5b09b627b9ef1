package scan

import (
	"slices"
	"strings"

	"github.com/treegrep/treegrep/pkg/tree"
)

// ignoreMarker is the annotation recognized inside comments. Bare, it
// suppresses every rule on the targeted line; followed by a colon and a
// comma-separated id list it suppresses only those rules.
const ignoreMarker = "treegrep-ignore"

// Suppression is one ignore annotation found in a file.
type Suppression struct {
	// Line is the 0-based line the annotation targets. A comment alone on
	// its line targets the next line; a trailing comment targets its own.
	Line int
	// RuleIDs lists the suppressed rules; empty means all rules.
	RuleIDs []string

	used bool
}

// Covers reports whether the suppression applies to the given rule.
func (s *Suppression) Covers(ruleID string) bool {
	return len(s.RuleIDs) == 0 || slices.Contains(s.RuleIDs, ruleID)
}

type suppressions struct {
	byLine map[int]*Suppression
}

// collectSuppressions walks the tree's comments once and indexes ignore
// annotations by the line they target.
func collectSuppressions(root *tree.Root) *suppressions {
	sup := &suppressions{byLine: map[int]*Suppression{}}

	root.Node().VisitPreOrder(func(n *tree.Node) {
		if !strings.Contains(n.KindName(), "comment") {
			return
		}

		text := n.Text()

		idx := strings.Index(text, ignoreMarker)
		if idx < 0 {
			return
		}

		line := n.StartLine()
		if commentAloneOnLine(root, n) {
			line++
		}

		sup.byLine[line] = &Suppression{
			Line:    line,
			RuleIDs: parseRuleIDs(text[idx+len(ignoreMarker):]),
		}
	})

	return sup
}

func commentAloneOnLine(root *tree.Root, comment *tree.Node) bool {
	source := root.Source()

	for i := comment.StartByte() - 1; i >= 0 && source[i] != '\n'; i-- {
		if source[i] != ' ' && source[i] != '\t' {
			return false
		}
	}

	return true
}

func parseRuleIDs(rest string) []string {
	rest = strings.TrimSpace(rest)

	rest, ok := strings.CutPrefix(rest, ":")
	if !ok {
		return nil
	}

	var ids []string

	for _, id := range strings.Split(rest, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}

// at returns the suppression targeting a line, if any.
func (s *suppressions) at(line int) *Suppression {
	return s.byLine[line]
}

// unused returns annotations no match ever consumed, in line order.
func (s *suppressions) unused() []*Suppression {
	var out []*Suppression

	for _, sup := range s.byLine {
		if !sup.used {
			out = append(out, sup)
		}
	}

	slices.SortFunc(out, func(a, b *Suppression) int { return a.Line - b.Line })

	return out
}
