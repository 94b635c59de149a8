// Package treemodel exposes a hierarchy.Root through the row/column item
// model a tree view consumes: indexes, parents, row counts, display data,
// edits and item flags.
package treemodel

import (
	"errors"
	"fmt"

	"github.com/example/dqview/internal/core/hierarchy"
)

// ErrNotLeaf indicates a leaf-only operation on a group or root index.
var ErrNotLeaf = errors.New("index does not refer to a frame")

// Columns
const (
	ColumnName     = 0
	ColumnIdentity = 1
)

var headers = []string{"Name", "uuid"}

// ItemFlags describe how a view may interact with an index.
type ItemFlags uint8

const (
	FlagEnabled ItemFlags = 1 << iota
	FlagSelectable
	FlagEditable
	FlagDragEnabled
	FlagDropEnabled

	NoItemFlags ItemFlags = 0
)

// Index addresses one cell. The zero Index is invalid and stands for the
// invisible root.
type Index struct {
	Row    int
	Column int
	Node   hierarchy.Node
	valid  bool
}

// IsValid reports whether the index refers to a group or leaf cell.
func (i Index) IsValid() bool { return i.valid }

// Model is a read/write item model over a Root.
type Model struct {
	root *hierarchy.Root
}

// New returns a model over root.
func New(root *hierarchy.Root) *Model {
	return &Model{root: root}
}

// Root returns the underlying hierarchy.
func (m *Model) Root() *hierarchy.Root { return m.root }

// ColumnCount returns the number of columns.
func (m *Model) ColumnCount() int { return len(headers) }

// HeaderData returns the header label for section.
func (m *Model) HeaderData(section int) (string, bool) {
	if section < 0 || section >= len(headers) {
		return "", false
	}
	return headers[section], true
}

func (m *Model) node(parent Index) hierarchy.Node {
	if !parent.valid {
		return hierarchy.RootNode()
	}
	return parent.Node
}

// HasIndex reports whether row and column exist below parent.
func (m *Model) HasIndex(row, column int, parent Index) bool {
	if row < 0 || column < 0 || column >= m.ColumnCount() {
		return false
	}
	return row < m.RowCount(parent)
}

// Index returns the cell at row, column below parent, or an invalid index.
func (m *Model) Index(row, column int, parent Index) Index {
	if !m.HasIndex(row, column, parent) {
		return Index{}
	}
	p := m.node(parent)
	switch p.Kind() {
	case hierarchy.KindRoot:
		g, err := m.root.GroupAt(row)
		if err != nil {
			return Index{}
		}
		return Index{Row: row, Column: column, Node: hierarchy.GroupNode(g), valid: true}
	case hierarchy.KindGroup:
		g, _ := p.Group()
		l, err := g.LeafAt(row)
		if err != nil {
			return Index{}
		}
		return Index{Row: row, Column: column, Node: hierarchy.LeafNode(l), valid: true}
	default:
		return Index{}
	}
}

// IndexOf returns the column-0 index of node.
func (m *Model) IndexOf(node hierarchy.Node) (Index, error) {
	if node.IsRoot() {
		return Index{}, nil
	}
	row, err := node.Row()
	if err != nil {
		return Index{}, err
	}
	return Index{Row: row, Node: node, valid: true}, nil
}

// Parent returns the index of child's container. Groups and invalid indexes
// have the invisible root as parent.
func (m *Model) Parent(child Index) Index {
	if !child.valid || child.Node.Kind() != hierarchy.KindLeaf {
		return Index{}
	}
	parent, err := m.IndexOf(child.Node.Parent())
	if err != nil {
		return Index{}
	}
	return parent
}

// RowCount returns the number of rows below parent.
func (m *Model) RowCount(parent Index) int {
	return m.node(parent).ChildCount(m.root)
}

// HasChildren reports whether parent can have rows. Groups can, even when
// empty.
func (m *Model) HasChildren(parent Index) bool {
	return m.node(parent).Kind() != hierarchy.KindLeaf
}

// Data returns the display text of a cell.
func (m *Model) Data(idx Index) (string, bool) {
	if !idx.valid {
		return "", false
	}
	switch idx.Node.Kind() {
	case hierarchy.KindGroup:
		g, _ := idx.Node.Group()
		if idx.Column == ColumnName {
			return string(g.Category()), true
		}
	case hierarchy.KindLeaf:
		l, _ := idx.Node.Leaf()
		switch idx.Column {
		case ColumnName:
			return l.Name(), true
		case ColumnIdentity:
			return string(l.Identity()), true
		}
	}
	return "", false
}

// SetData edits a cell. Only the name column of a leaf is editable.
func (m *Model) SetData(idx Index, value string) bool {
	if !idx.valid || idx.Column != ColumnName {
		return false
	}
	l, ok := idx.Node.Leaf()
	if !ok {
		return false
	}
	return m.root.SetField(l, "name", value)
}

// Flags returns the interaction flags of idx.
func (m *Model) Flags(idx Index) ItemFlags {
	if !idx.valid {
		return NoItemFlags
	}
	switch idx.Node.Kind() {
	case hierarchy.KindLeaf:
		return FlagEnabled | FlagSelectable | FlagEditable | FlagDragEnabled | FlagDropEnabled
	case hierarchy.KindGroup:
		return FlagEnabled
	default:
		return FlagEnabled | FlagSelectable
	}
}

// CategoryIndex returns the index of the group for category, creating the
// group when create is set.
func (m *Model) CategoryIndex(category hierarchy.Category, create bool) (Index, error) {
	g, err := m.root.CategoryNode(category, create)
	if err != nil {
		return Index{}, err
	}
	return m.IndexOf(hierarchy.GroupNode(g))
}

// AddPayload adds p and returns the index of its group.
func (m *Model) AddPayload(p hierarchy.Payload) (Index, error) {
	res, err := m.root.Add(p)
	if err != nil {
		return Index{}, err
	}
	return m.IndexOf(hierarchy.GroupNode(res.Group))
}

// DeleteIndex removes the leaf at idx.
func (m *Model) DeleteIndex(idx Index) error {
	l, ok := idx.Node.Leaf()
	if !idx.valid || !ok {
		return fmt.Errorf("%w: %s", ErrNotLeaf, idx.Node)
	}
	return m.root.Remove(l.Identity())
}

// DeleteIndexes removes every leaf in idxs. Non-leaf indexes are skipped.
// Identities are resolved up front because each removal renumbers rows.
func (m *Model) DeleteIndexes(idxs []Index) error {
	var ids []hierarchy.Identity
	seen := make(map[hierarchy.Identity]bool)
	for _, idx := range idxs {
		l, ok := idx.Node.Leaf()
		if !idx.valid || !ok || seen[l.Identity()] {
			continue
		}
		seen[l.Identity()] = true
		ids = append(ids, l.Identity())
	}
	for _, id := range ids {
		if err := m.root.Remove(id); err != nil {
			return err
		}
	}
	return nil
}
