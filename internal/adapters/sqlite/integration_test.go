package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/dqview/internal/adapters/sqlite"
	"github.com/example/dqview/internal/app"
	"github.com/example/dqview/internal/core/hierarchy"
	"github.com/example/dqview/internal/core/treemodel"
	"github.com/example/dqview/internal/db"
	"github.com/example/dqview/internal/ports/primary"
)

// Integration tests run the viewer service against a file-backed catalog.

func openService(t *testing.T, path string) (*app.ViewerServiceImpl, func()) {
	t.Helper()
	conn, err := db.Open(path)
	require.NoError(t, err)
	service := app.NewViewerService(hierarchy.New(), sqlite.NewFrameCatalog(conn), zap.NewNop())
	return service, func() { conn.Close() }
}

// ============================================================================
// Reload Tests
// ============================================================================

func TestIntegration_ReloadRebuildsGroupsInFirstAppearanceOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	first, closeFirst := openService(t, path)
	var ids []string
	for _, req := range []primary.AddFrameRequest{
		{Kind: "PowderDiffraction", Name: "x1"},
		{Kind: "VSM", Name: "v1"},
		{Kind: "PowderDiffraction", Name: "x2"},
	} {
		resp, err := first.AddFrame(ctx, req)
		require.NoError(t, err)
		ids = append(ids, resp.Frame.ID)
	}
	before := treemodel.Snapshot(first.Root())
	closeFirst()

	second, closeSecond := openService(t, path)
	defer closeSecond()
	result, err := second.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)

	assert.Equal(t, before, treemodel.Snapshot(second.Root()))
	assert.Equal(t, []hierarchy.Category{"PowderDiffraction", "VSM"}, second.Root().Categories())

	got, err := second.GetFrame(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, "x2", got.Name)
	assert.Equal(t, 1, got.Row)
}

func TestIntegration_RenameAndDeleteSurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	first, closeFirst := openService(t, path)
	keep, err := first.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "old"})
	require.NoError(t, err)
	drop, err := first.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "dropped"})
	require.NoError(t, err)
	require.NoError(t, first.RenameFrame(ctx, primary.RenameFrameRequest{FrameID: keep.Frame.ID, NewName: "new"}))
	require.NoError(t, first.DeleteFrame(ctx, drop.Frame.ID))
	closeFirst()

	second, closeSecond := openService(t, path)
	defer closeSecond()
	_, err = second.SyncCatalog(ctx)
	require.NoError(t, err)

	tree, err := second.GetTree(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tree.FrameCount())
	assert.Equal(t, "new", tree.Categories[0].Frames[0].Name)
}

func TestIntegration_TwoViewersConvergeThroughSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	a, closeA := openService(t, path)
	defer closeA()
	b, closeB := openService(t, path)
	defer closeB()

	added, err := a.AddFrame(ctx, primary.AddFrameRequest{Kind: "VSM", Name: "from a"})
	require.NoError(t, err)

	res, err := b.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	require.NoError(t, b.DeleteFrame(ctx, added.Frame.ID))
	res, err = a.SyncCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 0, a.Root().LeafCount())
}
