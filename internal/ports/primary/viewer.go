// Package primary defines the primary ports (driving adapters) for the application.
package primary

import "context"

// ViewerService defines the primary port for the frame viewer session.
type ViewerService interface {
	// AddFrame creates a frame of a registered kind and adds it to the tree.
	AddFrame(ctx context.Context, req AddFrameRequest) (*AddFrameResponse, error)

	// GetFrame retrieves a frame by UUID.
	GetFrame(ctx context.Context, frameID string) (*Frame, error)

	// RenameFrame edits a frame's name.
	RenameFrame(ctx context.Context, req RenameFrameRequest) error

	// DeleteFrame removes a frame from the tree and the catalog.
	DeleteFrame(ctx context.Context, frameID string) error

	// GetTree returns the current two-level tree.
	GetTree(ctx context.Context) (*Tree, error)

	// EnsureCategory makes the group for a kind visible, creating it empty if needed.
	EnsureCategory(ctx context.Context, kind string) (*Category, error)

	// PruneCategory removes a group and every frame in it.
	PruneCategory(ctx context.Context, kind string) error

	// SyncCatalog reconciles the tree with the frame catalog.
	SyncCatalog(ctx context.Context) (*SyncResult, error)

	// Subscribe registers fn for tree change notifications.
	Subscribe(fn func(Change)) (cancel func())
}

// AddFrameRequest contains parameters for adding a frame.
type AddFrameRequest struct {
	Kind string
	Name string
}

// AddFrameResponse contains the result of adding a frame.
type AddFrameResponse struct {
	Frame *Frame

	// CategoryCreated is true when the frame's kind had no group yet.
	CategoryCreated bool
}

// RenameFrameRequest contains parameters for renaming a frame.
type RenameFrameRequest struct {
	FrameID string
	NewName string
}

// Frame represents a frame at the port boundary.
type Frame struct {
	ID          string
	Kind        string
	Name        string
	Row         int
	CategoryRow int
	CreatedAt   string
}

// Category represents one group row.
type Category struct {
	Name   string
	Row    int
	Frames []*Frame
}

// Tree is the full two-level tree in row order.
type Tree struct {
	Categories []*Category
}

// FrameCount returns the number of frames across all categories.
func (t *Tree) FrameCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Frames)
	}
	return n
}

// SyncResult summarises a catalog reconciliation.
type SyncResult struct {
	Added   int
	Removed int
	Skipped int
}

// Change describes one tree notification.
type Change struct {
	// Kind is one of before_insert, after_insert, before_remove,
	// after_remove, value_changed, node_deleted.
	Kind   string
	Parent string
	First  int
	Last   int
	Node   string
	Field  string
}
