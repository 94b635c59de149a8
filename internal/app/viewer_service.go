package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/dqview/internal/core/hierarchy"
	"github.com/example/dqview/internal/ports/primary"
	"github.com/example/dqview/internal/ports/secondary"
	"github.com/example/dqview/internal/structures"
)

// ViewerServiceImpl implements the ViewerService interface on top of one
// in-memory hierarchy fed from a frame catalog.
type ViewerServiceImpl struct {
	root    *hierarchy.Root
	catalog secondary.FrameCatalog
	logger  *zap.Logger

	// catalog keys of synced records whose stored UUID text is not canonical
	catalogIDs map[hierarchy.Identity]string
}

// NewViewerService creates a new ViewerService with injected dependencies.
func NewViewerService(
	root *hierarchy.Root,
	catalog secondary.FrameCatalog,
	logger *zap.Logger,
) *ViewerServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewerServiceImpl{
		root:       root,
		catalog:    catalog,
		logger:     logger,
		catalogIDs: make(map[hierarchy.Identity]string),
	}
}

// identityOf maps any accepted UUID spelling to the leaf identity.
func identityOf(id string) hierarchy.Identity {
	if parsed, err := uuid.Parse(id); err == nil {
		return hierarchy.Identity(parsed.String())
	}
	return hierarchy.Identity(id)
}

// catalogID returns the key the catalog stores a frame under.
func (s *ViewerServiceImpl) catalogID(id hierarchy.Identity) string {
	if raw, ok := s.catalogIDs[id]; ok {
		return raw
	}
	return string(id)
}

// Root exposes the hierarchy backing the service.
func (s *ViewerServiceImpl) Root() *hierarchy.Root { return s.root }

// AddFrame creates a frame and adds it to the tree and the catalog.
func (s *ViewerServiceImpl) AddFrame(ctx context.Context, req primary.AddFrameRequest) (*primary.AddFrameResponse, error) {
	frame, err := structures.NewFrame(req.Kind, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame: %w", err)
	}

	res, err := s.root.Add(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to add frame: %w", err)
	}

	record := &secondary.FrameRecord{
		ID:        frame.UUID().String(),
		Kind:      frame.Kind(),
		Name:      frame.Name(),
		CreatedAt: frame.CreatedAt().UTC().Format(time.RFC3339),
	}
	if err := s.catalog.Create(ctx, record); err != nil {
		// Keep tree and catalog in step
		s.rollbackAdd(res)
		s.logger.Warn("catalog rejected frame", zap.String("frame_id", record.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to store frame: %w", err)
	}

	s.logger.Debug("frame added",
		zap.String("frame_id", record.ID),
		zap.String("kind", record.Kind),
		zap.Int("new_category_row", res.NewGroupRow),
	)

	out, err := toFrame(res.Leaf)
	if err != nil {
		return nil, err
	}
	return &primary.AddFrameResponse{
		Frame:           out,
		CategoryCreated: res.NewGroupRow != hierarchy.NoNewGroup,
	}, nil
}

// rollbackAdd undoes a tree insert, including a group the insert created.
func (s *ViewerServiceImpl) rollbackAdd(res hierarchy.AddResult) {
	id := res.Leaf.Identity()
	if err := s.root.Remove(id); err != nil {
		s.logger.Error("rollback of frame add failed", zap.String("frame_id", string(id)), zap.Error(err))
		return
	}
	if res.NewGroupRow == hierarchy.NoNewGroup || res.Group.Root() == nil || res.Group.LeafCount() > 0 {
		return
	}
	if err := s.root.RemoveCategory(res.Group.Category()); err != nil {
		s.logger.Error("rollback of category failed", zap.String("kind", string(res.Group.Category())), zap.Error(err))
	}
}

// GetFrame retrieves a frame by UUID.
func (s *ViewerServiceImpl) GetFrame(ctx context.Context, frameID string) (*primary.Frame, error) {
	leaf, err := s.root.Find(identityOf(frameID))
	if err != nil {
		return nil, err
	}
	return toFrame(leaf)
}

// RenameFrame edits a frame's name in the catalog and the tree.
func (s *ViewerServiceImpl) RenameFrame(ctx context.Context, req primary.RenameFrameRequest) error {
	leaf, err := s.root.Find(identityOf(req.FrameID))
	if err != nil {
		return err
	}

	if err := s.catalog.UpdateName(ctx, s.catalogID(leaf.Identity()), req.NewName); err != nil {
		return fmt.Errorf("failed to rename frame: %w", err)
	}
	if !s.root.SetField(leaf, structures.FieldName, req.NewName) {
		return fmt.Errorf("frame %s has no editable name", req.FrameID)
	}

	s.logger.Debug("frame renamed", zap.String("frame_id", req.FrameID), zap.String("name", req.NewName))
	return nil
}

// DeleteFrame removes a frame from the catalog and then from the tree. A
// catalog failure leaves the tree untouched.
func (s *ViewerServiceImpl) DeleteFrame(ctx context.Context, frameID string) error {
	leaf, err := s.root.Find(identityOf(frameID))
	if err != nil {
		return err
	}
	id := leaf.Identity()

	if err := s.deleteRecord(ctx, id); err != nil {
		return err
	}
	if err := s.root.Remove(id); err != nil {
		return err
	}

	s.logger.Debug("frame deleted", zap.String("frame_id", frameID))
	return nil
}

// GetTree returns the current tree in row order.
func (s *ViewerServiceImpl) GetTree(ctx context.Context) (*primary.Tree, error) {
	tree := &primary.Tree{}
	row := 0
	for g := range s.root.Groups() {
		c := &primary.Category{Name: string(g.Category()), Row: row}
		for leaf := range g.Leaves() {
			f, err := toFrame(leaf)
			if err != nil {
				return nil, err
			}
			c.Frames = append(c.Frames, f)
		}
		tree.Categories = append(tree.Categories, c)
		row++
	}
	return tree, nil
}

// EnsureCategory shows an empty group for a registered kind.
func (s *ViewerServiceImpl) EnsureCategory(ctx context.Context, kind string) (*primary.Category, error) {
	if _, err := structures.Lookup(kind); err != nil {
		return nil, err
	}
	g, err := s.root.CategoryNode(hierarchy.Category(kind), true)
	if err != nil {
		return nil, err
	}
	row, err := g.Row()
	if err != nil {
		return nil, err
	}
	c := &primary.Category{Name: kind, Row: row}
	for leaf := range g.Leaves() {
		f, err := toFrame(leaf)
		if err != nil {
			return nil, err
		}
		c.Frames = append(c.Frames, f)
	}
	return c, nil
}

// PruneCategory removes a group and its frames from the tree and catalog.
func (s *ViewerServiceImpl) PruneCategory(ctx context.Context, kind string) error {
	g, err := s.root.CategoryNode(hierarchy.Category(kind), false)
	if err != nil {
		return err
	}
	var ids []hierarchy.Identity
	for leaf := range g.Leaves() {
		ids = append(ids, leaf.Identity())
	}

	for i, id := range ids {
		if err := s.deleteRecord(ctx, id); err != nil {
			// Drop only the frames the catalog already let go of
			for _, gone := range ids[:i] {
				if rmErr := s.root.Remove(gone); rmErr != nil {
					s.logger.Error("failed to drop pruned frame", zap.String("frame_id", string(gone)), zap.Error(rmErr))
				}
			}
			return err
		}
	}
	if err := s.root.RemoveCategory(hierarchy.Category(kind)); err != nil {
		return err
	}

	s.logger.Debug("category pruned", zap.String("kind", kind), zap.Int("frames", len(ids)))
	return nil
}

// deleteRecord deletes a frame's catalog record. A record that is already
// gone counts as deleted.
func (s *ViewerServiceImpl) deleteRecord(ctx context.Context, id hierarchy.Identity) error {
	if err := s.catalog.Delete(ctx, s.catalogID(id)); err != nil && !errors.Is(err, secondary.ErrFrameNotFound) {
		return fmt.Errorf("failed to delete frame from catalog: %w", err)
	}
	delete(s.catalogIDs, id)
	return nil
}

// SyncCatalog adds catalog frames missing from the tree and removes tree
// frames the catalog no longer has. Frames of unregistered kinds are skipped.
func (s *ViewerServiceImpl) SyncCatalog(ctx context.Context) (*primary.SyncResult, error) {
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	result := &primary.SyncResult{}
	present := make(map[hierarchy.Identity]bool, len(records))

	for _, rec := range records {
		createdAt, _ := time.Parse(time.RFC3339, rec.CreatedAt)
		frame, err := structures.RestoreFrame(rec.ID, rec.Kind, rec.Name, createdAt)
		if err != nil {
			s.logger.Warn("skipping catalog frame", zap.String("frame_id", rec.ID), zap.String("kind", rec.Kind), zap.Error(err))
			result.Skipped++
			continue
		}

		id := frame.Identity()
		if present[id] {
			s.logger.Warn("skipping duplicate catalog frame", zap.String("frame_id", rec.ID))
			result.Skipped++
			continue
		}
		present[id] = true
		if string(id) != rec.ID {
			s.catalogIDs[id] = rec.ID
		}
		if _, err := s.root.Find(id); err == nil {
			continue
		}
		if _, err := s.root.Add(frame); err != nil {
			return result, fmt.Errorf("failed to add frame %s: %w", rec.ID, err)
		}
		result.Added++
	}

	var stale []hierarchy.Identity
	for g := range s.root.Groups() {
		for leaf := range g.Leaves() {
			if !present[leaf.Identity()] {
				stale = append(stale, leaf.Identity())
			}
		}
	}
	for _, id := range stale {
		if err := s.root.Remove(id); err != nil {
			return result, fmt.Errorf("failed to remove frame %s: %w", id, err)
		}
		delete(s.catalogIDs, id)
		result.Removed++
	}

	s.logger.Info("catalog synced",
		zap.Int("added", result.Added),
		zap.Int("removed", result.Removed),
		zap.Int("skipped", result.Skipped),
		zap.Int("frames", s.root.LeafCount()),
	)
	return result, nil
}

// Subscribe forwards tree notifications as port-level changes.
func (s *ViewerServiceImpl) Subscribe(fn func(primary.Change)) func() {
	return s.root.Subscribe(func(e hierarchy.Event) {
		fn(toChange(e))
	})
}

func toFrame(leaf *hierarchy.Leaf) (*primary.Frame, error) {
	row, err := leaf.Row()
	if err != nil {
		return nil, err
	}
	groupRow, err := leaf.Group().Row()
	if err != nil {
		return nil, err
	}
	f := &primary.Frame{
		ID:          string(leaf.Identity()),
		Kind:        string(leaf.Category()),
		Name:        leaf.Name(),
		Row:         row,
		CategoryRow: groupRow,
	}
	if frame, ok := leaf.Payload().(*structures.Frame); ok {
		f.CreatedAt = frame.CreatedAt().UTC().Format(time.RFC3339)
	}
	return f, nil
}

func toChange(e hierarchy.Event) primary.Change {
	return primary.Change{
		Kind:   e.Kind.String(),
		Parent: e.Parent.String(),
		First:  e.First,
		Last:   e.Last,
		Node:   e.Node.String(),
		Field:  e.Field,
	}
}

var _ primary.ViewerService = (*ViewerServiceImpl)(nil)
