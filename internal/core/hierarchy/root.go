// Package hierarchy contains the two-level ordered tree behind the frame
// viewer: a root of category groups, each holding payload leaves.
//
// Every element has an O(1) row, insertion order is preserved, and each
// structural change is bracketed by before/after notifications so a view can
// track rows incrementally.
package hierarchy

import (
	"fmt"
	"iter"

	"github.com/example/dqview/internal/core/index"
)

// Identity uniquely identifies a payload while it is in the hierarchy.
type Identity string

// Category groups payloads under one group node.
type Category string

// Payload is any record stored in the hierarchy.
type Payload interface {
	Identity() Identity
	Category() Category
}

// Named is implemented by payloads with a display name.
type Named interface {
	Name() string
}

// FieldSetter is implemented by payloads with editable fields. SetField
// returns false for fields that are not editable.
type FieldSetter interface {
	SetField(field, value string) bool
}

// NoNewGroup is AddResult.NewGroupRow when Add reused an existing group.
const NoNewGroup = -1

// AddResult is returned by Root.Add.
type AddResult struct {
	Leaf  *Leaf
	Group *Group

	// NewGroupRow is the row of a group created by this Add, or NoNewGroup.
	NewGroupRow int
}

// Option configures a Root.
type Option func(*Root)

// WithPruneEmptyGroups removes a group as soon as its last leaf is removed.
// Off by default: emptied groups stay at their row until RemoveCategory.
func WithPruneEmptyGroups(prune bool) Option {
	return func(r *Root) { r.pruneEmpty = prune }
}

// Root is the single entry point for adding and removing payloads.
// It is not safe for concurrent use.
type Root struct {
	groups     *index.Index[Category, *Group]
	byID       map[Identity]*Leaf
	observers  observers
	mutating   bool
	pruneEmpty bool
}

// New returns an empty hierarchy.
func New(opts ...Option) *Root {
	r := &Root{
		groups: index.New[Category, *Group](),
		byID:   make(map[Identity]*Leaf),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn for every notification in the hierarchy, in
// registration order. The returned func unsubscribes.
func (r *Root) Subscribe(fn Observer) func() {
	return r.observers.add(fn)
}

// PruneEmptyGroups reports whether emptied groups are removed automatically.
func (r *Root) PruneEmptyGroups() bool { return r.pruneEmpty }

// Len returns the number of groups.
func (r *Root) Len() int { return r.groups.Len() }

// LeafCount returns the number of leaves across all groups.
func (r *Root) LeafCount() int { return len(r.byID) }

// GroupAt returns the group at row.
func (r *Root) GroupAt(row int) (*Group, error) {
	return r.groups.ValueAt(row)
}

// Groups iterates groups in row order.
func (r *Root) Groups() iter.Seq[*Group] {
	return func(yield func(*Group) bool) {
		for _, g := range r.groups.All() {
			if !yield(g) {
				return
			}
		}
	}
}

// Categories returns the group categories in row order.
func (r *Root) Categories() []Category { return r.groups.Keys() }

// begin opens a mutation bracket.
func (r *Root) begin() error {
	if r.mutating {
		return ErrReentrantMutation
	}
	r.mutating = true
	return nil
}

func (r *Root) end() { r.mutating = false }

// Add inserts payload under the group for its category, creating the group
// if needed.
func (r *Root) Add(payload Payload) (AddResult, error) {
	res := AddResult{NewGroupRow: NoNewGroup}
	if err := r.begin(); err != nil {
		return res, err
	}
	defer r.end()

	id := payload.Identity()
	if _, ok := r.byID[id]; ok {
		return res, fmt.Errorf("%w: %s", ErrDuplicateIdentity, id)
	}

	category := payload.Category()
	g, ok := r.groups.Get(category)
	if !ok {
		var err error
		g, res.NewGroupRow, err = r.insertGroup(category)
		if err != nil {
			return res, err
		}
	}

	leaf, err := g.insertLeaf(id, payload)
	if err != nil {
		return res, err
	}
	res.Leaf = leaf
	res.Group = g
	return res, nil
}

// Remove deletes the leaf with identity id.
func (r *Root) Remove(id Identity) error {
	if err := r.begin(); err != nil {
		return err
	}
	defer r.end()

	leaf, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}
	g := leaf.group
	if _, err := g.removeLeaf(id); err != nil {
		return err
	}
	if r.pruneEmpty && g.LeafCount() == 0 {
		return r.removeGroup(g)
	}
	return nil
}

// Find returns the leaf with identity id.
func (r *Root) Find(id Identity) (*Leaf, error) {
	leaf, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}
	return leaf, nil
}

// CategoryNode returns the group for category. When create is set and no
// group exists yet, an empty one is appended with the same notifications
// Add would emit for a new category.
func (r *Root) CategoryNode(category Category, create bool) (*Group, error) {
	if g, ok := r.groups.Get(category); ok {
		return g, nil
	}
	if !create {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	if err := r.begin(); err != nil {
		return nil, err
	}
	defer r.end()

	g, _, err := r.insertGroup(category)
	return g, err
}

// RemoveCategory removes the group for category together with its leaves.
// Leaves go first, last row to first, each with its own notifications.
func (r *Root) RemoveCategory(category Category) error {
	if err := r.begin(); err != nil {
		return err
	}
	defer r.end()

	g, ok := r.groups.Get(category)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	for g.LeafCount() > 0 {
		last, err := g.LeafAt(g.LeafCount() - 1)
		if err != nil {
			return err
		}
		if _, err := g.removeLeaf(last.id); err != nil {
			return err
		}
	}
	return r.removeGroup(g)
}

// SetField edits a field of the leaf's payload and emits ValueChanged. It
// returns false, without notifying, for detached or foreign leaves, payloads
// without editable fields and unknown fields.
func (r *Root) SetField(leaf *Leaf, field, value string) bool {
	if leaf == nil || leaf.group == nil || leaf.group.root != r {
		return false
	}
	setter, ok := leaf.payload.(FieldSetter)
	if !ok || !setter.SetField(field, value) {
		return false
	}
	row, err := leaf.Row()
	if err != nil {
		return false
	}
	g := leaf.group
	g.emit(r, Event{Kind: ValueChanged, Parent: GroupNode(g), First: row, Last: row, Node: LeafNode(leaf), Field: field})
	return true
}

func (r *Root) insertGroup(category Category) (*Group, int, error) {
	g := newGroup(category, r)
	row := r.groups.Len()

	r.observers.emit(Event{Kind: BeforeInsert, Parent: RootNode(), First: row, Last: row, Node: GroupNode(g)})
	if _, err := r.groups.Insert(category, g); err != nil {
		return nil, NoNewGroup, err
	}
	r.observers.emit(Event{Kind: AfterInsert, Parent: RootNode(), First: row, Last: row, Node: GroupNode(g)})

	return g, row, nil
}

// removeGroup drops an empty group from the root and detaches it.
func (r *Root) removeGroup(g *Group) error {
	row, err := r.groups.RowOf(g.category)
	if err != nil {
		return err
	}
	node := GroupNode(g)

	r.observers.emit(Event{Kind: BeforeRemove, Parent: RootNode(), First: row, Last: row, Node: node})
	if _, _, err := r.groups.Remove(g.category); err != nil {
		return err
	}
	g.root = nil
	r.observers.emit(Event{Kind: AfterRemove, Parent: RootNode(), First: row, Last: row, Node: node})
	g.emit(r, Event{Kind: NodeDeleted, Parent: RootNode(), First: row, Last: row, Node: node})

	return nil
}
