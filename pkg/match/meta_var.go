package match

import "strings"

// MetaVarKind distinguishes the forms a meta-variable can take in a pattern.
type MetaVarKind int

const (
	// MetaVarCapture binds exactly one node under a name, e.g. $NAME.
	MetaVarCapture MetaVarKind = iota
	// MetaVarDropped matches one node without binding it, e.g. $_IGNORED.
	MetaVarDropped
	// MetaVarMultiple matches zero or more sibling nodes anonymously, $$$.
	MetaVarMultiple
	// MetaVarMultiCapture binds zero or more sibling nodes, e.g. $$$ARGS.
	MetaVarMultiCapture
)

// MetaVariable is one parsed meta-variable occurrence.
type MetaVariable struct {
	Kind MetaVarKind
	Name string
	// Named restricts single-node captures to named grammar nodes. The
	// double-marker form ($$VAR) lifts the restriction.
	Named bool
}

// ExtractMetaVar parses pattern node text into a meta-variable, if it is one.
// marker is the language's meta-variable character after pre-processing,
// usually the expando char. Returns false when the text is ordinary code.
func ExtractMetaVar(src string, marker rune) (MetaVariable, bool) {
	ellipsis := strings.Repeat(string(marker), 3)
	if src == ellipsis {
		return MetaVariable{Kind: MetaVarMultiple}, true
	}

	if name, ok := strings.CutPrefix(src, ellipsis); ok {
		if !validMetaVarName(name) {
			return MetaVariable{}, false
		}

		if droppedName(name) {
			return MetaVariable{Kind: MetaVarMultiple}, true
		}

		return MetaVariable{Kind: MetaVarMultiCapture, Name: name}, true
	}

	double := strings.Repeat(string(marker), 2)
	if name, ok := strings.CutPrefix(src, double); ok {
		return classifySingle(name, false)
	}

	if name, ok := strings.CutPrefix(src, string(marker)); ok {
		return classifySingle(name, true)
	}

	return MetaVariable{}, false
}

func classifySingle(name string, named bool) (MetaVariable, bool) {
	if !validMetaVarName(name) {
		return MetaVariable{}, false
	}

	if droppedName(name) {
		return MetaVariable{Kind: MetaVarDropped, Named: named}, true
	}

	return MetaVariable{Kind: MetaVarCapture, Name: name, Named: named}, true
}

// droppedName marks a variable as match-only: a leading underscore or
// lowercase letter means the binding is discarded.
func droppedName(name string) bool {
	c := name[0]

	return c == '_' || (c >= 'a' && c <= 'z')
}

// validMetaVarName accepts ASCII letters, digits, and underscores. Empty
// names are rejected so a lone marker stays ordinary text.
func validMetaVarName(name string) bool {
	if name == "" {
		return false
	}

	for _, c := range name {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}

	return true
}
