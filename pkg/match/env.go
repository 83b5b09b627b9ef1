package match

import (
	"maps"
	"slices"

	"github.com/treegrep/treegrep/pkg/tree"
)

// MetaVarEnv accumulates meta-variable bindings during one match attempt.
// Single captures bind one node, multi captures bind a sibling run, and
// transformed variables hold derived text produced after matching. An env is
// not safe for concurrent use; Clone before speculative work that may be
// discarded.
type MetaVarEnv struct {
	single      map[string]*tree.Node
	multi       map[string][]*tree.Node
	transformed map[string][]byte
}

// NewEnv returns an empty environment.
func NewEnv() *MetaVarEnv {
	return &MetaVarEnv{
		single: map[string]*tree.Node{},
		multi:  map[string][]*tree.Node{},
	}
}

// Clone returns an independent copy. Bindings share the underlying nodes,
// which are immutable.
func (e *MetaVarEnv) Clone() *MetaVarEnv {
	clone := &MetaVarEnv{
		single: maps.Clone(e.single),
		multi:  maps.Clone(e.multi),
	}
	if e.transformed != nil {
		clone.transformed = maps.Clone(e.transformed)
	}

	return clone
}

// Insert binds name to node. When the name is already bound, the new node
// must carry identical text or the insert fails, which rejects the match.
func (e *MetaVarEnv) Insert(name string, node *tree.Node) bool {
	if prev, ok := e.single[name]; ok {
		return prev.Text() == node.Text()
	}

	e.single[name] = node

	return true
}

// InsertMulti binds name to a run of sibling nodes, with the same
// text-consistency requirement as Insert, position by position.
func (e *MetaVarEnv) InsertMulti(name string, nodes []*tree.Node) bool {
	if prev, ok := e.multi[name]; ok {
		if len(prev) != len(nodes) {
			return false
		}

		for idx, node := range nodes {
			if prev[idx].Text() != node.Text() {
				return false
			}
		}

		return true
	}

	e.multi[name] = nodes

	return true
}

// InsertTransformation records derived text under name.
func (e *MetaVarEnv) InsertTransformation(name string, text []byte) {
	if e.transformed == nil {
		e.transformed = map[string][]byte{}
	}

	e.transformed[name] = text
}

// Get returns the node bound to a single-capture name.
func (e *MetaVarEnv) Get(name string) (*tree.Node, bool) {
	node, ok := e.single[name]

	return node, ok
}

// GetMulti returns the sibling run bound to a multi-capture name.
func (e *MetaVarEnv) GetMulti(name string) ([]*tree.Node, bool) {
	nodes, ok := e.multi[name]

	return nodes, ok
}

// GetTransformed returns derived text recorded under name.
func (e *MetaVarEnv) GetTransformed(name string) ([]byte, bool) {
	text, ok := e.transformed[name]

	return text, ok
}

// GetVarText resolves a name against transformed, single, then multi
// bindings, in that order. Multi runs join the covered source span.
func (e *MetaVarEnv) GetVarText(name string) (string, bool) {
	if text, ok := e.transformed[name]; ok {
		return string(text), true
	}

	if node, ok := e.single[name]; ok {
		return node.Text(), true
	}

	if nodes, ok := e.multi[name]; ok {
		return joinSpan(nodes), true
	}

	return "", false
}

func joinSpan(nodes []*tree.Node) string {
	if len(nodes) == 0 {
		return ""
	}

	first, last := nodes[0], nodes[len(nodes)-1]

	return string(first.Root().Source()[first.StartByte():last.EndByte()])
}

// SingleNames lists bound single-capture names in sorted order.
func (e *MetaVarEnv) SingleNames() []string {
	return slices.Sorted(maps.Keys(e.single))
}

// MultiNames lists bound multi-capture names in sorted order.
func (e *MetaVarEnv) MultiNames() []string {
	return slices.Sorted(maps.Keys(e.multi))
}
