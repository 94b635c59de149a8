package hierarchy

import "fmt"

// NodeKind tags which element of the hierarchy a Node refers to.
type NodeKind uint8

const (
	// KindRoot is the invisible root. It is the zero value of Node.
	KindRoot NodeKind = iota
	// KindGroup is a category node.
	KindGroup
	// KindLeaf is a payload reference.
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGroup:
		return "group"
	case KindLeaf:
		return "leaf"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// Node is a handle to any element of the hierarchy. Callers switch on Kind
// instead of inspecting concrete types.
type Node struct {
	kind  NodeKind
	group *Group
	leaf  *Leaf
}

// RootNode returns the handle of the invisible root.
func RootNode() Node { return Node{} }

// GroupNode wraps g.
func GroupNode(g *Group) Node { return Node{kind: KindGroup, group: g} }

// LeafNode wraps l.
func LeafNode(l *Leaf) Node { return Node{kind: KindLeaf, leaf: l} }

// Kind returns the tag.
func (n Node) Kind() NodeKind { return n.kind }

// IsRoot reports whether n is the invisible root.
func (n Node) IsRoot() bool { return n.kind == KindRoot }

// Group returns the group when n is a group node.
func (n Node) Group() (*Group, bool) {
	if n.kind != KindGroup {
		return nil, false
	}
	return n.group, true
}

// Leaf returns the leaf when n is a leaf node.
func (n Node) Leaf() (*Leaf, bool) {
	if n.kind != KindLeaf {
		return nil, false
	}
	return n.leaf, true
}

// Row returns the position of n within its parent. The root has no parent and
// reports -1.
func (n Node) Row() (int, error) {
	switch n.kind {
	case KindGroup:
		return n.group.Row()
	case KindLeaf:
		return n.leaf.Row()
	default:
		return -1, nil
	}
}

// Parent returns the containing node. Leaves return their group, groups and
// the root return the root. A detached leaf returns the root.
func (n Node) Parent() Node {
	if n.kind == KindLeaf {
		if g := n.leaf.Group(); g != nil {
			return GroupNode(g)
		}
	}
	return RootNode()
}

// ChildCount returns the number of rows below n.
func (n Node) ChildCount(r *Root) int {
	switch n.kind {
	case KindRoot:
		return r.Len()
	case KindGroup:
		return n.group.LeafCount()
	default:
		return 0
	}
}

func (n Node) String() string {
	switch n.kind {
	case KindGroup:
		return fmt.Sprintf("group(%s)", n.group.Category())
	case KindLeaf:
		return fmt.Sprintf("leaf(%s)", n.leaf.Identity())
	default:
		return "root"
	}
}
