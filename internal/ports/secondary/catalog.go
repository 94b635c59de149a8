// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrFrameNotFound is returned by catalogs for unknown frame IDs.
var ErrFrameNotFound = errors.New("frame not found in catalog")

// FrameCatalog defines the secondary port for the frame record source.
// It stores frame records only; tree order is never persisted.
type FrameCatalog interface {
	// Create stores a new frame record.
	Create(ctx context.Context, frame *FrameRecord) error

	// GetByID retrieves a frame record by UUID.
	GetByID(ctx context.Context, id string) (*FrameRecord, error)

	// List retrieves all frame records in creation order.
	List(ctx context.Context) ([]*FrameRecord, error)

	// UpdateName changes the stored name of a frame.
	UpdateName(ctx context.Context, id, name string) error

	// Delete removes a frame record.
	Delete(ctx context.Context, id string) error
}

// FrameRecord represents a frame as stored in the catalog.
type FrameRecord struct {
	ID        string
	Kind      string
	Name      string
	CreatedAt string
}
