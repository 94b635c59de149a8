// Package wire provides dependency injection for the dqview application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"

	cliadapter "github.com/example/dqview/internal/adapters/cli"
	"github.com/example/dqview/internal/adapters/sqlite"
	"github.com/example/dqview/internal/app"
	"github.com/example/dqview/internal/config"
	"github.com/example/dqview/internal/core/hierarchy"
	"github.com/example/dqview/internal/core/treemodel"
	"github.com/example/dqview/internal/db"
	"github.com/example/dqview/internal/ports/primary"
)

var (
	cfg           *config.Config
	logger        *zap.Logger
	catalogPath   string
	viewerService *app.ViewerServiceImpl
	initErr       error
	once          sync.Once
)

// ViewerService returns the singleton ViewerService instance, already
// synced with the catalog.
func ViewerService() (primary.ViewerService, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return viewerService, nil
}

// Model returns a tree model over the service's hierarchy.
func Model() (*treemodel.Model, error) {
	once.Do(initServices)
	if initErr != nil {
		return nil, initErr
	}
	return treemodel.New(viewerService.Root()), nil
}

// Logger returns the application logger. Before initialization succeeds it
// is a no-op logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// CatalogPath returns the resolved catalog file location.
func CatalogPath() (string, error) {
	once.Do(initServices)
	return catalogPath, initErr
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir, err := os.Getwd()
	if err != nil {
		initErr = fmt.Errorf("failed to get working directory: %w", err)
		return
	}

	cfg, err = config.LoadConfig(dir)
	if err != nil {
		initErr = err
		return
	}
	if !cfg.Color {
		color.NoColor = true
	}

	logger, err = NewLogger(cfg)
	if err != nil {
		initErr = err
		return
	}

	catalogPath, err = cfg.ResolveCatalogPath(dir)
	if err != nil {
		initErr = err
		return
	}

	database, err := db.GetDB(catalogPath)
	if err != nil {
		initErr = fmt.Errorf("failed to initialize catalog: %w", err)
		return
	}

	// Create catalog adapter (secondary port) with injected DB
	catalog := sqlite.NewFrameCatalog(database)

	root := hierarchy.New(hierarchy.WithPruneEmptyGroups(cfg.PruneEmptyGroups))
	viewerService = app.NewViewerService(root, catalog, logger.Named("viewer"))

	if _, err := viewerService.SyncCatalog(context.Background()); err != nil {
		initErr = fmt.Errorf("failed to load catalog: %w", err)
		return
	}
}

// Shutdown flushes the logger and closes the catalog if they were set up.
func Shutdown() {
	if logger != nil {
		_ = logger.Sync()
	}
	_ = db.Close()
}

// TreeAdapterWithOutput returns a new TreeAdapter writing to the given output.
// Each call creates a new adapter (adapters are stateless translators).
func TreeAdapterWithOutput(out io.Writer) (*cliadapter.TreeAdapter, error) {
	service, err := ViewerService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewTreeAdapter(service, out), nil
}
