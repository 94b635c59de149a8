package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/dqview/internal/core/hierarchy"
	"github.com/example/dqview/internal/ports/primary"
	"github.com/example/dqview/internal/ports/secondary"
	"github.com/example/dqview/internal/structures"
)

func newTestViewerService(opts ...hierarchy.Option) (*ViewerServiceImpl, *mockFrameCatalog) {
	catalog := newMockFrameCatalog()
	return NewViewerService(hierarchy.New(opts...), catalog, zap.NewNop()), catalog
}

// ============================================================================
// AddFrame Tests
// ============================================================================

func TestAddFrame_CreatesCategoryAndStoresRecord(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	resp, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "sample A"})
	require.NoError(t, err)

	assert.True(t, resp.CategoryCreated)
	assert.Equal(t, "VSM", resp.Frame.Kind)
	assert.Equal(t, "sample A", resp.Frame.Name)
	assert.Equal(t, 0, resp.Frame.Row)
	assert.Equal(t, 0, resp.Frame.CategoryRow)
	assert.NotEmpty(t, resp.Frame.CreatedAt)

	rec, err := catalog.GetByID(ctx, resp.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, "sample A", rec.Name)

	second, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "sample B"})
	require.NoError(t, err)
	assert.False(t, second.CategoryCreated)
	assert.Equal(t, 1, second.Frame.Row)
}

func TestAddFrame_UnknownKind(t *testing.T) {
	service, catalog := newTestViewerService()

	_, err := service.AddFrame(context.Background(), primary.AddFrameRequest{Kind: "NMR", Name: "x"})
	assert.ErrorIs(t, err, structures.ErrUnknownKind)
	assert.Empty(t, catalog.frames)
	assert.Equal(t, 0, service.Root().Len())
}

func TestAddFrame_CatalogFailureRollsBackTree(t *testing.T) {
	service, catalog := newTestViewerService()
	catalog.createErr = errors.New("disk full")

	_, err := service.AddFrame(context.Background(), primary.AddFrameRequest{Kind: "VSM", Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, 0, service.Root().LeafCount())
	assert.Equal(t, 0, service.Root().Len(), "group created by the failed add is removed again")
}

func TestAddFrame_CatalogFailureKeepsExistingCategory(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	_, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "kept"})
	require.NoError(t, err)

	catalog.createErr = errors.New("disk full")
	_, err = service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "lost"})
	require.Error(t, err)

	assert.Equal(t, 1, service.Root().Len())
	assert.Equal(t, 1, service.Root().LeafCount())
}

// ============================================================================
// GetFrame / RenameFrame / DeleteFrame Tests
// ============================================================================

func TestGetFrame(t *testing.T) {
	service, _ := newTestViewerService()
	ctx := context.Background()

	added, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "PowderDiffraction", Name: "xrd"})
	require.NoError(t, err)

	got, err := service.GetFrame(ctx, added.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, added.Frame, got)

	_, err = service.GetFrame(ctx, uuid.NewString())
	assert.ErrorIs(t, err, hierarchy.ErrIdentityNotFound)
}

func TestRenameFrame(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	added, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "old"})
	require.NoError(t, err)

	var changes []primary.Change
	cancel := service.Subscribe(func(c primary.Change) { changes = append(changes, c) })
	defer cancel()

	err = service.RenameFrame(ctx, primary.RenameFrameRequest{FrameID: added.Frame.ID, NewName: "new"})
	require.NoError(t, err)

	got, err := service.GetFrame(ctx, added.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, "new", catalog.frames[added.Frame.ID].Name)

	require.Len(t, changes, 1)
	assert.Equal(t, "value_changed", changes[0].Kind)
	assert.Equal(t, "name", changes[0].Field)
	assert.Equal(t, "group(VSM)", changes[0].Parent)
}

func TestRenameFrame_CatalogFailureLeavesNameUnchanged(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	added, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "old"})
	require.NoError(t, err)
	catalog.updateErr = errors.New("locked")

	err = service.RenameFrame(ctx, primary.RenameFrameRequest{FrameID: added.Frame.ID, NewName: "new"})
	require.Error(t, err)

	got, _ := service.GetFrame(ctx, added.Frame.ID)
	assert.Equal(t, "old", got.Name)
}

func TestDeleteFrame(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	a, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "a"})
	b, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "b"})

	require.NoError(t, service.DeleteFrame(ctx, a.Frame.ID))

	assert.NotContains(t, catalog.frames, a.Frame.ID)
	got, err := service.GetFrame(ctx, b.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Row, "later rows shift up")

	err = service.DeleteFrame(ctx, a.Frame.ID)
	assert.ErrorIs(t, err, hierarchy.ErrIdentityNotFound)
}

func TestDeleteFrame_KeepsEmptyGroupByDefault(t *testing.T) {
	service, _ := newTestViewerService()
	ctx := context.Background()

	a, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "a"})
	require.NoError(t, service.DeleteFrame(ctx, a.Frame.ID))

	tree, err := service.GetTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Categories, 1)
	assert.Empty(t, tree.Categories[0].Frames)
}

func TestDeleteFrame_PrunesEmptyGroupWhenConfigured(t *testing.T) {
	service, _ := newTestViewerService(hierarchy.WithPruneEmptyGroups(true))
	ctx := context.Background()

	a, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "a"})
	require.NoError(t, service.DeleteFrame(ctx, a.Frame.ID))

	tree, err := service.GetTree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree.Categories)
}

func TestDeleteFrame_MissingCatalogRecordIsIgnored(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	a, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "a"})
	delete(catalog.frames, a.Frame.ID)

	assert.NoError(t, service.DeleteFrame(ctx, a.Frame.ID))
}

func TestDeleteFrame_CatalogFailureKeepsFrame(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	a, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "a"})
	require.NoError(t, err)
	catalog.deleteErr = errors.New("disk full")

	err = service.DeleteFrame(ctx, a.Frame.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	got, err := service.GetFrame(ctx, a.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
	assert.Contains(t, catalog.frames, a.Frame.ID)

	result, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, primary.SyncResult{}, *result)
}

// ============================================================================
// Tree / Category Tests
// ============================================================================

func TestGetTree_RowOrder(t *testing.T) {
	service, _ := newTestViewerService()
	ctx := context.Background()

	_, _ = service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "v1"})
	_, _ = service.AddFrame(ctx, primary.AddFrameRequest{Kind: "PowderDiffraction", Name: "x1"})
	_, _ = service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "v2"})

	tree, err := service.GetTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Categories, 2)
	assert.Equal(t, 3, tree.FrameCount())

	assert.Equal(t, "VSM", tree.Categories[0].Name)
	assert.Equal(t, 0, tree.Categories[0].Row)
	assert.Equal(t, "PowderDiffraction", tree.Categories[1].Name)
	assert.Equal(t, 1, tree.Categories[1].Row)

	require.Len(t, tree.Categories[0].Frames, 2)
	assert.Equal(t, "v1", tree.Categories[0].Frames[0].Name)
	assert.Equal(t, "v2", tree.Categories[0].Frames[1].Name)
	assert.Equal(t, 1, tree.Categories[0].Frames[1].Row)
}

func TestEnsureCategory(t *testing.T) {
	service, _ := newTestViewerService()
	ctx := context.Background()

	c, err := service.EnsureCategory(ctx, "PowderDiffraction")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Row)
	assert.Empty(t, c.Frames)

	again, err := service.EnsureCategory(ctx, "PowderDiffraction")
	require.NoError(t, err)
	assert.Equal(t, c.Row, again.Row)
	assert.Equal(t, 1, service.Root().Len())

	_, err = service.EnsureCategory(ctx, "NMR")
	assert.ErrorIs(t, err, structures.ErrUnknownKind)
}

func TestPruneCategory(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	v1, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "v1"})
	v2, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "v2"})
	x1, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "PowderDiffraction", Name: "x1"})

	var kinds []string
	cancel := service.Subscribe(func(c primary.Change) { kinds = append(kinds, c.Kind) })
	defer cancel()

	require.NoError(t, service.PruneCategory(ctx, "VSM"))

	assert.ElementsMatch(t, []string{v1.Frame.ID, v2.Frame.ID}, catalog.deleted)
	assert.Contains(t, catalog.frames, x1.Frame.ID)

	got, err := service.GetFrame(ctx, x1.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CategoryRow)

	// two leaves then the group, three notifications each
	assert.Len(t, kinds, 9)

	err = service.PruneCategory(ctx, "VSM")
	assert.ErrorIs(t, err, hierarchy.ErrCategoryNotFound)
}

func TestPruneCategory_CatalogFailureKeepsTreeInStep(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	v1, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "v1"})
	v2, _ := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "v2"})
	catalog.deleteErr = errors.New("disk full")

	require.Error(t, service.PruneCategory(ctx, "VSM"))

	for _, id := range []string{v1.Frame.ID, v2.Frame.ID} {
		_, err := service.GetFrame(ctx, id)
		assert.NoError(t, err)
		assert.Contains(t, catalog.frames, id)
	}
	assert.Equal(t, []hierarchy.Category{"VSM"}, service.Root().Categories())
}

// ============================================================================
// SyncCatalog Tests
// ============================================================================

func TestSyncCatalog_AddsRemovesAndSkips(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	stale, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "stale"})
	require.NoError(t, err)
	delete(catalog.frames, stale.Frame.ID)

	kept, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "kept"})
	require.NoError(t, err)

	fresh := uuid.NewString()
	catalog.seed(fresh, "PowderDiffraction", "fresh")
	catalog.seed(uuid.NewString(), "NMR", "unknown kind")
	catalog.seed("not-a-uuid", "VSM", "bad id")

	result, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, primary.SyncResult{Added: 1, Removed: 1, Skipped: 2}, *result)

	_, err = service.GetFrame(ctx, stale.Frame.ID)
	assert.ErrorIs(t, err, hierarchy.ErrIdentityNotFound)

	got, err := service.GetFrame(ctx, kept.Frame.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Row)

	restored, err := service.GetFrame(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, "fresh", restored.Name)
	assert.Equal(t, "2026-01-02T03:04:05Z", restored.CreatedAt)
}

func TestSyncCatalog_Idempotent(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	catalog.seed(uuid.NewString(), "VSM", "a")
	catalog.seed(uuid.NewString(), "VSM", "b")

	first, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, primary.SyncResult{}, *second)
	assert.Equal(t, 2, service.Root().LeafCount())
}

func TestSyncCatalog_ListError(t *testing.T) {
	service, catalog := newTestViewerService()
	catalog.listErr = errors.New("closed")

	_, err := service.SyncCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestSyncCatalog_NonCanonicalIDs(t *testing.T) {
	service, catalog := newTestViewerService()
	ctx := context.Background()

	upper := strings.ToUpper(uuid.NewString())
	braced := "{" + uuid.NewString() + "}"
	catalog.seed(upper, "VSM", "upper")
	catalog.seed(braced, "VSM", "braced")

	first, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, primary.SyncResult{Added: 2}, *first)

	second, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, primary.SyncResult{}, *second)
	assert.Equal(t, 2, service.Root().LeafCount())

	got, err := service.GetFrame(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(upper), got.ID)

	// writes reach the record under the key the catalog stores
	require.NoError(t, service.RenameFrame(ctx, primary.RenameFrameRequest{FrameID: got.ID, NewName: "renamed"}))
	assert.Equal(t, "renamed", catalog.frames[upper].Name)
	require.NoError(t, service.DeleteFrame(ctx, got.ID))
	assert.Equal(t, []string{upper}, catalog.deleted)

	third, err := service.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, primary.SyncResult{}, *third)
	assert.Equal(t, 1, service.Root().LeafCount())
}

// ============================================================================
// Subscribe Tests
// ============================================================================

func TestSubscribe_ForwardsInsertNotifications(t *testing.T) {
	service, _ := newTestViewerService()
	ctx := context.Background()

	var changes []primary.Change
	cancel := service.Subscribe(func(c primary.Change) { changes = append(changes, c) })

	_, err := service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "a"})
	require.NoError(t, err)

	require.Len(t, changes, 4)
	assert.Equal(t, "before_insert", changes[0].Kind)
	assert.Equal(t, "root", changes[0].Parent)
	assert.Equal(t, "group(VSM)", changes[0].Node)
	assert.Equal(t, "after_insert", changes[1].Kind)
	assert.Equal(t, "before_insert", changes[2].Kind)
	assert.Equal(t, "group(VSM)", changes[2].Parent)
	assert.Equal(t, 0, changes[2].First)
	assert.Equal(t, "after_insert", changes[3].Kind)

	cancel()
	_, err = service.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "b"})
	require.NoError(t, err)
	assert.Len(t, changes, 4)
}

func TestMockCatalog_NotFound(t *testing.T) {
	catalog := newMockFrameCatalog()
	_, err := catalog.GetByID(context.Background(), "x")
	assert.ErrorIs(t, err, secondary.ErrFrameNotFound)
}
