package match

import (
	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/tree"
)

// matchOneResult classifies one pattern-node-versus-candidate comparison.
type matchOneResult int

const (
	matchedBoth matchOneResult = iota
	skipBoth
	onlySkipGoal
	onlySkipCandidate
	noMatch
)

// kindsMatch accepts equal kind ids and lets an ERROR goal match any
// candidate the parser flagged as an error.
func kindsMatch(goal language.KindID, candidate *tree.Node) bool {
	return goal == candidate.KindID() ||
		(goal == language.KindError && candidate.IsError())
}

// matchOneNode compares one pattern node against one candidate node. The
// returned byte offset is the end of the consumed candidate and is only
// meaningful on matchedBoth.
func matchOneNode(goal *PatternNode, candidate *tree.Node, env *MetaVarEnv, s Strictness) (matchOneResult, int) {
	switch goal.Kind {
	case PatternTerminal:
		// Some grammars report wrong spans for unnamed tokens, so their text
		// is unreliable. Unnamed terminals compare by kind alone.
		if kindsMatch(goal.KindID, candidate) && (!goal.Named || goal.Text == candidate.Text()) {
			return matchedBoth, candidate.EndByte()
		}

		return s.matchTerminal(goal.Named, uint16(goal.KindID), candidate), candidate.EndByte()
	case PatternMetaVar:
		return matchLeafMetaVar(goal.MetaVar, candidate, env, s), candidate.EndByte()
	case PatternInternal:
		if !kindsMatch(goal.KindID, candidate) {
			if s.canSkipCandidate(candidate) {
				return onlySkipCandidate, 0
			}

			return noMatch, 0
		}

		if _, ok := matchNodes(goal.Children, candidate.Children(), env, s); !ok {
			return noMatch, 0
		}

		return matchedBoth, candidate.EndByte()
	default:
		return noMatch, 0
	}
}

// canSkipCandidate reports whether a structurally surplus candidate node may
// be stepped over while aligning siblings.
func (s Strictness) canSkipCandidate(candidate *tree.Node) bool {
	switch s {
	case StrictnessExact:
		return false
	case StrictnessSmart, StrictnessSyntax:
		return !candidate.IsNamed()
	case StrictnessRelaxed, StrictnessSignature:
		return isCommentOrUnnamed(candidate)
	default:
		return false
	}
}

func matchLeafMetaVar(mv MetaVariable, candidate *tree.Node, env *MetaVarEnv, s Strictness) matchOneResult {
	switch mv.Kind {
	case MetaVarCapture:
		if mv.Named && !candidate.IsNamed() {
			return skipOrFail(s, candidate)
		}

		if !env.Insert(mv.Name, candidate) {
			return noMatch
		}

		return matchedBoth
	case MetaVarDropped:
		if mv.Named && !candidate.IsNamed() {
			return skipOrFail(s, candidate)
		}

		return matchedBoth
	case MetaVarMultiple:
		// A lone ellipsis used where a single node is expected matches
		// anything without binding. Sibling runs are handled upstream.
		return matchedBoth
	case MetaVarMultiCapture:
		if !env.InsertMulti(mv.Name, []*tree.Node{candidate}) {
			return noMatch
		}

		return matchedBoth
	default:
		return noMatch
	}
}

func skipOrFail(s Strictness, candidate *tree.Node) matchOneResult {
	if s.canSkipCandidate(candidate) {
		return onlySkipCandidate
	}

	return noMatch
}

// matchNodes aligns a pattern child sequence against a candidate child
// sequence. On success it returns the end byte of the last candidate a
// pattern node consumed, or -1 when nothing concrete was consumed. The env
// may hold partial bindings after a failure; callers that need clean state
// clone before calling.
func matchNodes(goals []*PatternNode, candidates []*tree.Node, env *MetaVarEnv, s Strictness) (int, bool) {
	gi, ci := 0, 0
	lastEnd := -1

	for {
		if gi >= len(goals) {
			for ; ci < len(candidates); ci++ {
				if !s.shouldSkipTrailing(candidates[ci]) {
					return 0, false
				}
			}

			return lastEnd, true
		}

		goal := goals[gi]
		if goal.isEllipsis() {
			return matchEllipsis(goals[gi+1:], candidates[ci:], goal.MetaVar.Name, env, s, lastEnd)
		}

		if ci >= len(candidates) {
			for ; gi < len(goals); gi++ {
				if !s.shouldSkipGoal(goals[gi]) {
					return 0, false
				}
			}

			return lastEnd, true
		}

		res, end := matchOneNode(goal, candidates[ci], env, s)
		switch res {
		case matchedBoth:
			gi++
			ci++
			lastEnd = end
		case skipBoth:
			gi++
			ci++
		case onlySkipGoal:
			gi++
		case onlySkipCandidate:
			ci++
		case noMatch:
			return 0, false
		}
	}
}

// matchEllipsis finds the shortest run of candidates the ellipsis can absorb
// such that the remaining pattern matches the remaining candidates. Binding
// attempts run on a cloned env so failed alignments leave no residue; the
// first success is committed.
func matchEllipsis(restGoals []*PatternNode, candidates []*tree.Node, captureName string, env *MetaVarEnv, s Strictness, lastEnd int) (int, bool) {
	for take := 0; take <= len(candidates); take++ {
		trial := env.Clone()

		if captureName != "" {
			if !trial.InsertMulti(captureName, candidates[:take]) {
				continue
			}
		}

		end, ok := matchNodes(restGoals, candidates[take:], trial, s)
		if !ok {
			continue
		}

		*env = *trial

		consumed := lastEnd
		if take > 0 {
			consumed = candidates[take-1].EndByte()
		}

		if end > consumed {
			consumed = end
		}

		return consumed, true
	}

	return 0, false
}
