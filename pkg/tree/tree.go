// Package tree provides a read-only view over a parsed concrete syntax tree.
// The view is built once per parse and owns its structure; node text is
// sliced from the original source on demand. It exposes kind ids, named
// flags, byte spans, field lookup, and the traversals the matching engine
// needs. A Root and every Node reachable from it are immutable and safe to
// share across goroutines.
package tree

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/treegrep/treegrep/pkg/language"
	"github.com/treegrep/treegrep/pkg/safeconv"
)

// Root owns one parsed tree and its source text.
type Root struct {
	lang      *language.Language
	source    []byte
	node      *Node
	lineStart []int
	nodeCount int
}

// Node is one syntax node in the view.
type Node struct {
	root       *Root
	parent     *Node
	childIndex int
	children   []*Node
	kind       language.KindID
	kindName   string
	field      string
	startByte  int
	endByte    int
	named      bool
	missing    bool
	isError    bool
}

// Parse parses source text with the given language and builds the view.
func Parse(ctx context.Context, lang *language.Language, source []byte) (*Root, error) {
	cst, err := lang.ParseCST(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}

	defer cst.Close()

	root := &Root{
		lang:      lang,
		source:    source,
		lineStart: buildLineIndex(source),
	}
	root.node = root.convert(cst.RootNode(), nil, 0, "")

	return root, nil
}

func buildLineIndex(source []byte) []int {
	starts := []int{0}

	for offset, b := range source {
		if b == '\n' {
			starts = append(starts, offset+1)
		}
	}

	return starts
}

// convert copies the structure of one sitter node. Recursion depth is bounded
// by source nesting depth.
func (r *Root) convert(ts sitter.Node, parent *Node, childIndex int, field string) *Node {
	node := &Node{
		root:       r,
		parent:     parent,
		childIndex: childIndex,
		kind:       language.KindID(ts.Symbol()),
		kindName:   ts.Type(),
		field:      field,
		startByte:  safeconv.MustUint32ToInt(uint32(ts.StartByte())),
		endByte:    safeconv.MustUint32ToInt(uint32(ts.EndByte())),
		named:      ts.IsNamed(),
		missing:    ts.IsMissing(),
		isError:    ts.IsError(),
	}
	r.nodeCount++

	count := ts.ChildCount()
	if count > 0 {
		node.children = make([]*Node, 0, count)
	}

	for idx := range count {
		child := ts.Child(idx)
		name := ts.FieldNameForChild(int(idx))
		node.children = append(node.children, r.convert(child, node, int(idx), name))
	}

	return node
}

// Lang returns the language the tree was parsed with.
func (r *Root) Lang() *language.Language {
	return r.lang
}

// Source returns the original source bytes.
func (r *Root) Source() []byte {
	return r.source
}

// Node returns the root syntax node.
func (r *Root) Node() *Node {
	return r.node
}

// NodeCount reports how many nodes the view holds.
func (r *Root) NodeCount() int {
	return r.nodeCount
}

// LineOf maps a byte offset to its 0-based line number.
func (r *Root) LineOf(offset int) int {
	idx := sort.SearchInts(r.lineStart, offset+1)

	return idx - 1
}

// KindID returns the numeric grammar kind of the node.
func (n *Node) KindID() language.KindID {
	return n.kind
}

// KindName returns the grammar kind name, e.g. "function_declaration".
func (n *Node) KindName() string {
	return n.kindName
}

// IsNamed reports whether the node is a named grammar production, as opposed
// to anonymous punctuation or keywords.
func (n *Node) IsNamed() bool {
	return n.named
}

// IsMissing reports whether the parser inserted this node to recover from an
// error.
func (n *Node) IsMissing() bool {
	return n.missing
}

// IsError reports whether this node is a parse error.
func (n *Node) IsError() bool {
	return n.isError
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// StartByte returns the inclusive start of the node's span.
func (n *Node) StartByte() int {
	return n.startByte
}

// EndByte returns the exclusive end of the node's span.
func (n *Node) EndByte() int {
	return n.endByte
}

// StartLine returns the 0-based line the node starts on.
func (n *Node) StartLine() int {
	return n.root.LineOf(n.startByte)
}

// Text slices the node's source text.
func (n *Node) Text() string {
	return string(n.root.source[n.startByte:n.endByte])
}

// Root returns the owning tree.
func (n *Node) Root() *Root {
	return n.root
}

// Lang returns the language of the owning tree.
func (n *Node) Lang() *language.Language {
	return n.root.lang
}

// FieldName returns the grammar field this node occupies under its parent,
// or "" when it has none.
func (n *Node) FieldName() string {
	return n.field
}

// Parent returns the parent node, or nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the ordered child nodes. Callers must not mutate the
// returned slice.
func (n *Node) Children() []*Node {
	return n.children
}

// Child returns the idx-th child, or nil when out of range.
func (n *Node) Child(idx int) *Node {
	if idx < 0 || idx >= len(n.children) {
		return nil
	}

	return n.children[idx]
}

// Field returns the first child occupying the named grammar field.
func (n *Node) Field(name string) *Node {
	for _, child := range n.children {
		if child.field == name {
			return child
		}
	}

	return nil
}

// FieldChildren returns every child occupying the named grammar field.
func (n *Node) FieldChildren(name string) []*Node {
	var out []*Node

	for _, child := range n.children {
		if child.field == name {
			out = append(out, child)
		}
	}

	return out
}

// Next returns the following sibling, or nil.
func (n *Node) Next() *Node {
	if n.parent == nil {
		return nil
	}

	return n.parent.Child(n.childIndex + 1)
}

// Prev returns the preceding sibling, or nil.
func (n *Node) Prev() *Node {
	if n.parent == nil {
		return nil
	}

	return n.parent.Child(n.childIndex - 1)
}

// NextAll visits following siblings in order until fn returns false.
func (n *Node) NextAll(fn func(*Node) bool) {
	for sib := n.Next(); sib != nil; sib = sib.Next() {
		if !fn(sib) {
			return
		}
	}
}

// PrevAll visits preceding siblings, nearest first, until fn returns false.
func (n *Node) PrevAll(fn func(*Node) bool) {
	for sib := n.Prev(); sib != nil; sib = sib.Prev() {
		if !fn(sib) {
			return
		}
	}
}

// Ancestors visits the parent chain from the immediate parent to the root
// until fn returns false.
func (n *Node) Ancestors(fn func(*Node) bool) {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if !fn(cur) {
			return
		}
	}
}

// VisitPreOrder visits the node and all descendants depth-first,
// left-to-right, using an explicit stack.
func (n *Node) VisitPreOrder(fn func(*Node)) {
	stack := []*Node{n}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn(curr)

		for idx := len(curr.children) - 1; idx >= 0; idx-- {
			stack = append(stack, curr.children[idx])
		}
	}
}

// Find returns all nodes in the subtree for which predicate returns true,
// in pre-order.
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var out []*Node

	n.VisitPreOrder(func(cur *Node) {
		if predicate(cur) {
			out = append(out, cur)
		}
	})

	return out
}

// String renders a short diagnostic form of the node.
func (n *Node) String() string {
	return fmt.Sprintf("%s@%d..%d", n.kindName, n.startByte, n.endByte)
}
