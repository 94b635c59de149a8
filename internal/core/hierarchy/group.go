package hierarchy

import (
	"errors"
	"fmt"
	"iter"

	"github.com/example/dqview/internal/core/index"
)

// Group is the node for one category. It holds leaves keyed by identity in
// insertion order.
type Group struct {
	category  Category
	leaves    *index.Index[Identity, *Leaf]
	root      *Root
	observers observers
}

func newGroup(category Category, root *Root) *Group {
	return &Group{
		category: category,
		leaves:   index.New[Identity, *Leaf](),
		root:     root,
	}
}

// Category returns the category this group represents.
func (g *Group) Category() Category { return g.category }

// Root returns the owning root, or nil once the group was removed.
func (g *Group) Root() *Root { return g.root }

// Row returns the group's position within the root.
func (g *Group) Row() (int, error) {
	if g.root == nil {
		return -1, fmt.Errorf("%w: group %s", ErrDetached, g.category)
	}
	return g.root.groups.RowOf(g.category)
}

// LeafCount returns the number of leaves in the group.
func (g *Group) LeafCount() int { return g.leaves.Len() }

// LeafAt returns the leaf at row.
func (g *Group) LeafAt(row int) (*Leaf, error) {
	return g.leaves.ValueAt(row)
}

// Leaves iterates the group's leaves in row order.
func (g *Group) Leaves() iter.Seq[*Leaf] {
	return func(yield func(*Leaf) bool) {
		for _, l := range g.leaves.All() {
			if !yield(l) {
				return
			}
		}
	}
}

// Subscribe registers fn for notifications concerning this group. Group
// observers run before the root's. The returned func unsubscribes.
func (g *Group) Subscribe(fn Observer) func() {
	return g.observers.add(fn)
}

func (g *Group) emit(root *Root, e Event) {
	g.observers.emit(e)
	if root != nil {
		root.observers.emit(e)
	}
}

// insertLeaf appends a leaf for payload and records it in the root's
// identity index before announcing it.
func (g *Group) insertLeaf(id Identity, payload Payload) (*Leaf, error) {
	if g.leaves.Has(id) {
		return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateLeaf, id, g.category)
	}
	leaf := &Leaf{id: id, category: g.category, payload: payload, group: g}
	row := g.leaves.Len()
	parent := GroupNode(g)

	g.emit(g.root, Event{Kind: BeforeInsert, Parent: parent, First: row, Last: row, Node: LeafNode(leaf)})
	if _, err := g.leaves.Insert(id, leaf); err != nil {
		return nil, err
	}
	g.root.byID[id] = leaf
	g.emit(g.root, Event{Kind: AfterInsert, Parent: parent, First: row, Last: row, Node: LeafNode(leaf)})

	return leaf, nil
}

// removeLeaf drops the leaf from the group and from the root's identity
// index, then detaches it.
func (g *Group) removeLeaf(id Identity) (*Leaf, error) {
	row, err := g.leaves.RowOf(id)
	if err != nil {
		if errors.Is(err, index.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s in %s", ErrLeafNotFound, id, g.category)
		}
		return nil, err
	}
	leaf, _ := g.leaves.Get(id)
	parent := GroupNode(g)

	g.emit(g.root, Event{Kind: BeforeRemove, Parent: parent, First: row, Last: row, Node: LeafNode(leaf)})
	if _, _, err := g.leaves.Remove(id); err != nil {
		return nil, err
	}
	delete(g.root.byID, id)
	leaf.group = nil
	g.emit(g.root, Event{Kind: AfterRemove, Parent: parent, First: row, Last: row, Node: LeafNode(leaf)})
	g.emit(g.root, Event{Kind: NodeDeleted, Parent: parent, First: row, Last: row, Node: LeafNode(leaf)})

	return leaf, nil
}
