package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cliadapter "github.com/example/dqview/internal/adapters/cli"
	"github.com/example/dqview/internal/adapters/filesystem"
	"github.com/example/dqview/internal/core/hierarchy"
	"github.com/example/dqview/internal/core/treemodel"
	"github.com/example/dqview/internal/ports/primary"
	"github.com/example/dqview/internal/wire"
)

// SessionCmd returns the session command
func SessionCmd() *cobra.Command {
	var watch bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Interactive viewer session over the catalog",
		Long: `Start an interactive session. The tree lives in memory for the whole
session; every change is printed as it happens.

Commands: tree, model, add, rm, rename, find, category, prune, sync, kinds,
check, help, quit.

Examples:
  dqview session
  dqview session --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := wire.ViewerService()
			if err != nil {
				return err
			}
			model, err := wire.Model()
			if err != nil {
				return err
			}
			logger := wire.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var changes <-chan struct{}
			if watch {
				path, err := wire.CatalogPath()
				if err != nil {
					return err
				}
				watcher, err := filesystem.NewCatalogWatcher(path, filesystem.DefaultDebounce, logger)
				if err != nil {
					return err
				}
				defer watcher.Close()
				changes = watcher.Changes()
			}

			s := NewSession(service, model.Root(), cmd.OutOrStdout(), logger)
			s.ShowChanges = !quiet
			return s.Run(ctx, cmd.InOrStdin(), changes)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Resync when another process changes the catalog")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the change log")

	return cmd
}

// Session runs viewer commands against one in-memory tree. Commands and
// catalog change signals are handled on a single goroutine.
type Session struct {
	ShowChanges bool

	service primary.ViewerService
	root    *hierarchy.Root
	model   *treemodel.Model
	adapter *cliadapter.TreeAdapter
	out     io.Writer
	logger  *zap.Logger
	mirror  *treemodel.Mirror
}

// NewSession creates a session over service and the root it manages.
func NewSession(service primary.ViewerService, root *hierarchy.Root, out io.Writer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ShowChanges: true,
		service:     service,
		root:        root,
		model:       treemodel.New(root),
		adapter:     cliadapter.NewTreeAdapter(service, out),
		out:         out,
		logger:      logger,
	}
}

// Run reads commands from in until EOF, quit or ctx is done. A signal on
// changes resyncs the tree with the catalog. If in is an io.Closer it is
// closed on return so the reader goroutine ends with the session.
func (s *Session) Run(ctx context.Context, in io.Reader, changes <-chan struct{}) error {
	s.mirror = treemodel.NewMirror(s.root, nil)
	defer s.mirror.Close()
	if c, ok := in.(io.Closer); ok {
		defer c.Close()
	}
	if s.ShowChanges {
		cancel := s.service.Subscribe(s.adapter.PrintChange)
		defer cancel()
	}

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	fmt.Fprintln(s.out, "dqview session. Type help for commands.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := s.resync(ctx); err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := s.Exec(ctx, line)
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Exec runs one command line. It reports whether the session should end.
func (s *Session) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]
	rest := strings.Join(args, " ")
	s.logger.Debug("session command", zap.String("command", name), zap.Int("args", len(args)))

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		s.help()
	case "tree":
		_, err := s.adapter.Show(ctx)
		return false, err
	case "model":
		s.adapter.ShowModel(s.model)
	case "kinds":
		s.adapter.Kinds()
	case "add":
		if len(args) < 2 {
			return false, fmt.Errorf("usage: add KIND NAME")
		}
		_, err := s.adapter.Add(ctx, args[0], strings.Join(args[1:], " "))
		return false, err
	case "rm":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: rm ID...")
		}
		for _, id := range args {
			if _, err := s.adapter.Delete(ctx, id); err != nil {
				return false, err
			}
		}
	case "rename":
		if len(args) < 2 {
			return false, fmt.Errorf("usage: rename ID NAME")
		}
		_, err := s.adapter.Rename(ctx, args[0], strings.Join(args[1:], " "))
		return false, err
	case "find":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: find ID")
		}
		_, err := s.adapter.Find(ctx, args[0])
		return false, err
	case "category":
		if rest == "" {
			return false, fmt.Errorf("usage: category KIND")
		}
		_, err := s.adapter.Ensure(ctx, rest)
		return false, err
	case "prune":
		if rest == "" {
			return false, fmt.Errorf("usage: prune KIND")
		}
		return false, s.adapter.Prune(ctx, rest)
	case "sync":
		_, err := s.adapter.Sync(ctx)
		return false, err
	case "check":
		return false, s.check()
	default:
		return false, fmt.Errorf("unknown command %q, type help", name)
	}
	return false, nil
}

func (s *Session) resync(ctx context.Context) error {
	res, err := s.service.SyncCatalog(ctx)
	if err != nil {
		return err
	}
	if res.Added+res.Removed > 0 {
		fmt.Fprintf(s.out, "catalog changed: %d added, %d removed\n", res.Added, res.Removed)
	}
	return nil
}

// check compares the layout rebuilt from notifications with the tree.
func (s *Session) check() error {
	if err := s.mirror.Err(); err != nil {
		return err
	}
	if !reflect.DeepEqual(s.mirror.Layout(), treemodel.Snapshot(s.root)) {
		return fmt.Errorf("change log out of step with tree")
	}
	fmt.Fprintf(s.out, "✓ change log in step with tree (%d notifications)\n", s.mirror.Events())
	return nil
}

func (s *Session) help() {
	fmt.Fprintln(s.out, "  tree                  show frames grouped by kind")
	fmt.Fprintln(s.out, "  model                 show rows and columns of the item model")
	fmt.Fprintln(s.out, "  add KIND NAME         add a frame")
	fmt.Fprintln(s.out, "  rm ID...              remove frames")
	fmt.Fprintln(s.out, "  rename ID NAME        rename a frame")
	fmt.Fprintln(s.out, "  find ID               show a frame")
	fmt.Fprintln(s.out, "  category KIND         show a kind's group, creating it empty")
	fmt.Fprintln(s.out, "  prune KIND            remove a kind and its frames")
	fmt.Fprintln(s.out, "  sync                  reconcile with the catalog")
	fmt.Fprintln(s.out, "  kinds                 list structure kinds")
	fmt.Fprintln(s.out, "  check                 verify the change log against the tree")
	fmt.Fprintln(s.out, "  quit")
}
