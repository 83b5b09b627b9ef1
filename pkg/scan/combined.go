// Package scan evaluates many compiled rules over one tree in a single
// traversal. Rules are bucketed by the node kinds they can possibly match,
// so each visited node only runs the rules that could apply to it. Bucketing
// is an optimization only: a combined scan produces exactly the union of
// what each rule would find on its own. A Combined is immutable after
// construction and shared across files; parallelism happens by scanning
// independent files concurrently, never inside one traversal.
package scan

import (
	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/rule"
	"github.com/treegrep/treegrep/pkg/tree"
)

// Combined indexes an ordered rule list by potential kind.
type Combined struct {
	rules []*rule.Compiled
	// buckets holds rule indices per kind id, each list already merged
	// with the universal rules and ascending by original index.
	buckets map[language.KindID][]int
	// universal rules report no kind narrowing and run on every node kind
	// that has no bucket of its own.
	universal []int
}

// Result is the outcome of scanning one tree.
type Result struct {
	// Matches keys findings by the rule's index in the combined list.
	Matches map[int][]*match.NodeMatch
	// UnusedSuppressions lists ignore annotations that never suppressed
	// anything.
	UnusedSuppressions []*Suppression
}

// NewCombined builds the kind index once for a rule set.
func NewCombined(rules []*rule.Compiled) *Combined {
	c := &Combined{
		rules:   rules,
		buckets: map[language.KindID][]int{},
	}

	for idx, r := range rules {
		kinds := r.Core.PotentialKinds()
		if kinds == nil {
			c.universal = append(c.universal, idx)

			continue
		}

		kinds.Each(func(kind language.KindID) {
			c.buckets[kind] = append(c.buckets[kind], idx)
		})
	}

	for kind, bucket := range c.buckets {
		c.buckets[kind] = mergeAscending(bucket, c.universal)
	}

	return c
}

// mergeAscending interleaves two ascending index lists, preserving original
// rule order.
func mergeAscending(a, b []int) []int {
	if len(b) == 0 {
		return a
	}

	out := make([]int, 0, len(a)+len(b))

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}

	out = append(out, a[i:]...)

	return append(out, b[j:]...)
}

func (c *Combined) bucketFor(kind language.KindID) []int {
	if bucket, ok := c.buckets[kind]; ok {
		return bucket
	}

	return c.universal
}

// Rules returns the rule list in index order.
func (c *Combined) Rules() []*rule.Compiled {
	return c.rules
}

// Scan visits every node of the tree once, running each bucketed rule
// against it. Findings on suppressed lines are dropped and consume the
// suppression; annotations left unconsumed are reported for "unused
// suppression" diagnostics.
func (c *Combined) Scan(root *tree.Root) *Result {
	result := &Result{Matches: map[int][]*match.NodeMatch{}}
	sup := collectSuppressions(root)

	root.Node().VisitPreOrder(func(node *tree.Node) {
		for _, idx := range c.bucketFor(node.KindID()) {
			matched := match.MatchNode(c.rules[idx].Core, node)
			if matched == nil {
				continue
			}

			if s := sup.at(node.StartLine()); s != nil && s.Covers(c.rules[idx].ID) {
				s.used = true

				continue
			}

			result.Matches[idx] = append(result.Matches[idx], matched)
		}
	})

	result.UnusedSuppressions = sup.unused()

	return result
}
