package hierarchy

import "fmt"

// EventKind identifies a change notification.
type EventKind uint8

const (
	// BeforeInsert fires before rows First..Last appear under Parent.
	BeforeInsert EventKind = iota + 1
	// AfterInsert fires once the inserted rows are in place.
	AfterInsert
	// BeforeRemove fires while rows First..Last under Parent still exist.
	BeforeRemove
	// AfterRemove fires once the rows are gone and later rows renumbered.
	AfterRemove
	// ValueChanged fires after an editable field of a leaf changed.
	ValueChanged
	// NodeDeleted is the last notification of a removal. Node is already
	// detached when it fires.
	NodeDeleted
)

func (k EventKind) String() string {
	switch k {
	case BeforeInsert:
		return "before_insert"
	case AfterInsert:
		return "after_insert"
	case BeforeRemove:
		return "before_remove"
	case AfterRemove:
		return "after_remove"
	case ValueChanged:
		return "value_changed"
	case NodeDeleted:
		return "node_deleted"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event describes one notification.
type Event struct {
	Kind EventKind

	// Parent is the container whose rows change.
	Parent Node

	// First and Last bound the affected rows, inclusive.
	First int
	Last  int

	// Node is the inserted, removed, changed or deleted element.
	Node Node

	// Field names the edited field for ValueChanged.
	Field string
}

func (e Event) String() string {
	if e.Kind == ValueChanged {
		return fmt.Sprintf("%s %s[%d] %s.%s", e.Kind, e.Parent, e.First, e.Node, e.Field)
	}
	if e.Kind == NodeDeleted {
		return fmt.Sprintf("%s %s", e.Kind, e.Node)
	}
	return fmt.Sprintf("%s %s[%d:%d] %s", e.Kind, e.Parent, e.First, e.Last, e.Node)
}

// Observer receives notifications synchronously.
type Observer func(Event)

type subscription struct {
	id int
	fn Observer
}

// observers is a registration-ordered callback list.
type observers struct {
	nextID int
	subs   []subscription
}

func (o *observers) add(fn Observer) func() {
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

func (o *observers) emit(e Event) {
	if len(o.subs) == 0 {
		return
	}
	// Snapshot so observers may unsubscribe while being notified.
	subs := make([]subscription, len(o.subs))
	copy(subs, o.subs)
	for _, s := range subs {
		s.fn(e)
	}
}
