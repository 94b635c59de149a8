package app

import (
	"context"
	"fmt"

	"github.com/example/dqview/internal/ports/secondary"
)

// Ensure mockFrameCatalog implements the interface
var _ secondary.FrameCatalog = (*mockFrameCatalog)(nil)

// mockFrameCatalog implements secondary.FrameCatalog for testing.
type mockFrameCatalog struct {
	frames    map[string]*secondary.FrameRecord
	order     []string
	createErr error
	listErr   error
	updateErr error
	deleteErr error
	deleted   []string
}

func newMockFrameCatalog() *mockFrameCatalog {
	return &mockFrameCatalog{
		frames: make(map[string]*secondary.FrameRecord),
	}
}

func (m *mockFrameCatalog) Create(ctx context.Context, frame *secondary.FrameRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.frames[frame.ID] = frame
	m.order = append(m.order, frame.ID)
	return nil
}

func (m *mockFrameCatalog) GetByID(ctx context.Context, id string) (*secondary.FrameRecord, error) {
	if f, ok := m.frames[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", secondary.ErrFrameNotFound, id)
}

func (m *mockFrameCatalog) List(ctx context.Context) ([]*secondary.FrameRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.FrameRecord
	for _, id := range m.order {
		if f, ok := m.frames[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFrameCatalog) UpdateName(ctx context.Context, id, name string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	f, ok := m.frames[id]
	if !ok {
		return fmt.Errorf("%w: %s", secondary.ErrFrameNotFound, id)
	}
	f.Name = name
	return nil
}

func (m *mockFrameCatalog) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.frames[id]; !ok {
		return fmt.Errorf("%w: %s", secondary.ErrFrameNotFound, id)
	}
	delete(m.frames, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// seed stores a record directly, bypassing the service.
func (m *mockFrameCatalog) seed(id, kind, name string) {
	m.frames[id] = &secondary.FrameRecord{ID: id, Kind: kind, Name: name, CreatedAt: "2026-01-02T03:04:05Z"}
	m.order = append(m.order, id)
}
