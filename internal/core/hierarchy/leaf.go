package hierarchy

import "fmt"

// Leaf references one payload inside its group. The hierarchy owns the
// payload for as long as the leaf is attached.
type Leaf struct {
	id       Identity
	category Category
	payload  Payload
	group    *Group
}

// Identity returns the key the leaf was inserted under.
func (l *Leaf) Identity() Identity { return l.id }

// Category returns the category derived when the leaf was inserted.
func (l *Leaf) Category() Category { return l.category }

// Payload returns the referenced record.
func (l *Leaf) Payload() Payload { return l.payload }

// Group returns the owning group, or nil once the leaf was removed.
func (l *Leaf) Group() *Group { return l.group }

// Detached reports whether the leaf was removed from the hierarchy.
func (l *Leaf) Detached() bool { return l.group == nil }

// Row returns the leaf's position inside its group.
func (l *Leaf) Row() (int, error) {
	if l.group == nil {
		return -1, fmt.Errorf("%w: leaf %s", ErrDetached, l.id)
	}
	return l.group.leaves.RowOf(l.id)
}

// Name returns the payload's display name, falling back to the identity.
func (l *Leaf) Name() string {
	if n, ok := l.payload.(Named); ok {
		return n.Name()
	}
	return string(l.id)
}
