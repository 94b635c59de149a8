package treemodel

import (
	"fmt"
	"slices"

	"github.com/example/dqview/internal/core/hierarchy"
)

// GroupLayout is one group row and the identities of its leaf rows.
type GroupLayout struct {
	Category   hierarchy.Category
	Identities []hierarchy.Identity
}

// Layout is the row layout of a whole hierarchy.
type Layout []GroupLayout

// Snapshot reads the current layout of root from scratch.
func Snapshot(root *hierarchy.Root) Layout {
	out := make(Layout, 0, root.Len())
	for g := range root.Groups() {
		gl := GroupLayout{Category: g.Category()}
		for l := range g.Leaves() {
			gl.Identities = append(gl.Identities, l.Identity())
		}
		out = append(out, gl)
	}
	return out
}

// Mirror keeps a shadow Layout in step with a Root using only notifications,
// the way a view keeps its row bookkeeping. A notification that contradicts
// the shadow is recorded as a divergence instead of being applied.
type Mirror struct {
	layout   Layout
	err      error
	events   int
	onChange func(hierarchy.Event)
	cancel   func()
}

// NewMirror snapshots root and subscribes to its notifications. onChange, if
// set, is called after each notification was applied.
func NewMirror(root *hierarchy.Root, onChange func(hierarchy.Event)) *Mirror {
	m := &Mirror{
		layout:   Snapshot(root),
		onChange: onChange,
	}
	m.cancel = root.Subscribe(m.apply)
	return m
}

// Close stops tracking.
func (m *Mirror) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Layout returns a copy of the shadow layout. Empty groups carry a nil
// identity slice, as in Snapshot.
func (m *Mirror) Layout() Layout {
	out := make(Layout, len(m.layout))
	for i, g := range m.layout {
		out[i] = GroupLayout{Category: g.Category}
		if len(g.Identities) > 0 {
			out[i].Identities = slices.Clone(g.Identities)
		}
	}
	return out
}

// Err returns the first divergence seen, if any.
func (m *Mirror) Err() error { return m.err }

// Events returns the number of notifications applied.
func (m *Mirror) Events() int { return m.events }

func (m *Mirror) fail(format string, args ...any) {
	if m.err == nil {
		m.err = fmt.Errorf("mirror diverged: "+format, args...)
	}
}

func (m *Mirror) apply(e hierarchy.Event) {
	m.events++
	switch e.Kind {
	case hierarchy.AfterInsert:
		m.applyInsert(e)
	case hierarchy.BeforeRemove:
		m.checkRemove(e)
	case hierarchy.AfterRemove:
		m.applyRemove(e)
	}
	if m.onChange != nil {
		m.onChange(e)
	}
}

// groupRow resolves the shadow row of a group parent.
func (m *Mirror) groupRow(parent hierarchy.Node) (int, bool) {
	g, ok := parent.Group()
	if !ok {
		return -1, false
	}
	row, err := g.Row()
	if err != nil || row >= len(m.layout) || m.layout[row].Category != g.Category() {
		m.fail("group %s has no shadow row", g.Category())
		return -1, false
	}
	return row, true
}

func (m *Mirror) applyInsert(e hierarchy.Event) {
	if e.First != e.Last {
		m.fail("insert of rows %d:%d, expected a single row", e.First, e.Last)
		return
	}
	if e.Parent.IsRoot() {
		g, ok := e.Node.Group()
		if !ok {
			m.fail("group insert at %d carries no group", e.First)
			return
		}
		if e.First != len(m.layout) {
			m.fail("group insert at %d, shadow has %d rows", e.First, len(m.layout))
			return
		}
		m.layout = append(m.layout, GroupLayout{Category: g.Category()})
		return
	}

	gRow, ok := m.groupRow(e.Parent)
	if !ok {
		return
	}
	l, ok := e.Node.Leaf()
	if !ok {
		m.fail("leaf insert at %d carries no leaf", e.First)
		return
	}
	ids := m.layout[gRow].Identities
	if e.First > len(ids) {
		m.fail("leaf insert at %d, shadow group %s has %d rows", e.First, m.layout[gRow].Category, len(ids))
		return
	}
	m.layout[gRow].Identities = slices.Insert(ids, e.First, l.Identity())
}

func (m *Mirror) checkRemove(e hierarchy.Event) {
	if e.Parent.IsRoot() {
		g, _ := e.Node.Group()
		if e.First >= len(m.layout) || g == nil || m.layout[e.First].Category != g.Category() {
			m.fail("group remove at %d does not match shadow", e.First)
		}
		return
	}
	gRow, ok := m.groupRow(e.Parent)
	if !ok {
		return
	}
	l, _ := e.Node.Leaf()
	ids := m.layout[gRow].Identities
	if e.First >= len(ids) || l == nil || ids[e.First] != l.Identity() {
		m.fail("leaf remove at %d does not match shadow", e.First)
	}
}

func (m *Mirror) applyRemove(e hierarchy.Event) {
	if m.err != nil {
		return
	}
	if e.Parent.IsRoot() {
		m.layout = slices.Delete(m.layout, e.First, e.Last+1)
		return
	}
	gRow, ok := m.groupRow(e.Parent)
	if !ok {
		return
	}
	m.layout[gRow].Identities = slices.Delete(m.layout[gRow].Identities, e.First, e.Last+1)
}
