package match

import (
	"fmt"
	"strings"

	"github.com/treegrep/treegrep/pkg/tree"
)

// Strictness controls which structural mismatches the matcher tolerates.
// From least to most permissive about skipping extra structure.
type Strictness int

const (
	// StrictnessExact matches the concrete tree verbatim, trivia included.
	StrictnessExact Strictness = iota
	// StrictnessSmart is the default. Pattern structure is kept in full
	// while unnamed candidate nodes the pattern omitted may be skipped,
	// and anything left after the pattern ends is tolerated.
	StrictnessSmart
	// StrictnessSyntax skips unnamed nodes on both sides.
	StrictnessSyntax
	// StrictnessRelaxed additionally skips comment nodes on the candidate
	// side.
	StrictnessRelaxed
	// StrictnessSignature is relaxed matching with terminal text ignored.
	// Kind equality alone matches a terminal.
	StrictnessSignature
)

var strictnessNames = map[string]Strictness{
	"exact":     StrictnessExact,
	"smart":     StrictnessSmart,
	"syntax":    StrictnessSyntax,
	"relaxed":   StrictnessRelaxed,
	"signature": StrictnessSignature,
}

// ParseStrictness resolves a policy name used in rule documents.
func ParseStrictness(name string) (Strictness, error) {
	if s, ok := strictnessNames[name]; ok {
		return s, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownStrictness, name)
}

func (s Strictness) String() string {
	switch s {
	case StrictnessExact:
		return "exact"
	case StrictnessSmart:
		return "smart"
	case StrictnessSyntax:
		return "syntax"
	case StrictnessRelaxed:
		return "relaxed"
	case StrictnessSignature:
		return "signature"
	default:
		return "unknown"
	}
}

func isCommentOrUnnamed(candidate *tree.Node) bool {
	return !candidate.IsNamed() || strings.Contains(candidate.KindName(), "comment")
}

// matchTerminal classifies a failed terminal comparison: which side, if any,
// may be skipped so matching can continue. Under signature strictness a kind
// match alone counts as a full match.
func (s Strictness) matchTerminal(goalNamed bool, goalKind uint16, candidate *tree.Node) matchOneResult {
	var skipGoal, skipCandidate bool

	switch s {
	case StrictnessExact:
	case StrictnessSmart:
		skipCandidate = !candidate.IsNamed()
	case StrictnessSyntax:
		skipGoal = !goalNamed
		skipCandidate = !candidate.IsNamed()
	case StrictnessRelaxed:
		skipGoal = !goalNamed
		skipCandidate = isCommentOrUnnamed(candidate)
	case StrictnessSignature:
		if goalKind == uint16(candidate.KindID()) {
			return matchedBoth
		}

		skipGoal = !goalNamed
		skipCandidate = isCommentOrUnnamed(candidate)
	}

	switch {
	case skipGoal && skipCandidate:
		return skipBoth
	case skipGoal:
		return onlySkipGoal
	case skipCandidate:
		return onlySkipCandidate
	default:
		return noMatch
	}
}

// shouldSkipTrailing reports whether an unmatched trailing candidate child is
// tolerable once the pattern is exhausted.
func (s Strictness) shouldSkipTrailing(candidate *tree.Node) bool {
	switch s {
	case StrictnessExact, StrictnessSyntax:
		return false
	case StrictnessSmart:
		return true
	case StrictnessRelaxed, StrictnessSignature:
		return isCommentOrUnnamed(candidate)
	default:
		return false
	}
}

// shouldSkipGoal reports whether an unmatched pattern node is tolerable once
// candidates are exhausted. Ellipsis nodes never reach here; matchNodes lets
// them absorb an empty run instead.
func (s Strictness) shouldSkipGoal(goal *PatternNode) bool {
	switch s {
	case StrictnessSyntax, StrictnessRelaxed, StrictnessSignature:
	default:
		return false
	}

	switch goal.Kind {
	case PatternTerminal:
		return !goal.Named
	case PatternMetaVar:
		// $$VAR and $$_ accept unnamed nodes, so they may also accept none.
		return !goal.MetaVar.Named &&
			(goal.MetaVar.Kind == MetaVarCapture || goal.MetaVar.Kind == MetaVarDropped)
	default:
		return false
	}
}
