package structures

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/example/dqview/internal/core/hierarchy"
)

// FieldName is the only editable field of a Frame.
const FieldName = "name"

// Frame is one measurement record. Its identity is a UUID and its category
// is the structure label.
type Frame struct {
	id        uuid.UUID
	kind      string
	metadata  map[string]string
	createdAt time.Time
}

// NewFrame creates a frame of a registered kind with a fresh UUID. The
// kind's default metadata is copied in, then name is set.
func NewFrame(kind, name string) (*Frame, error) {
	md, err := defaultMetadata(kind, name)
	if err != nil {
		return nil, err
	}
	return &Frame{id: uuid.New(), kind: kind, metadata: md, createdAt: time.Now()}, nil
}

func defaultMetadata(kind, name string) (map[string]string, error) {
	s, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	md := maps.Clone(s.Metadata)
	if md == nil {
		md = map[string]string{}
	}
	md[FieldName] = name
	return md, nil
}

// RestoreFrame rebuilds a frame from stored fields.
func RestoreFrame(id, kind, name string, createdAt time.Time) (*Frame, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	md, err := defaultMetadata(kind, name)
	if err != nil {
		return nil, err
	}
	return &Frame{id: parsed, kind: kind, metadata: md, createdAt: createdAt}, nil
}

// UUID returns the frame's UUID.
func (f *Frame) UUID() uuid.UUID { return f.id }

// Kind returns the structure label.
func (f *Frame) Kind() string { return f.kind }

// CreatedAt returns when the frame was created.
func (f *Frame) CreatedAt() time.Time { return f.createdAt }

// Identity implements hierarchy.Payload.
func (f *Frame) Identity() hierarchy.Identity { return hierarchy.Identity(f.id.String()) }

// Category implements hierarchy.Payload.
func (f *Frame) Category() hierarchy.Category { return hierarchy.Category(f.kind) }

// Name returns the name metadata.
func (f *Frame) Name() string { return f.metadata[FieldName] }

// Metadata returns a copy of the frame's metadata.
func (f *Frame) Metadata() map[string]string { return maps.Clone(f.metadata) }

// SetField implements hierarchy.FieldSetter. Only the name is editable.
func (f *Frame) SetField(field, value string) bool {
	if field != FieldName {
		return false
	}
	f.metadata[FieldName] = value
	return true
}
