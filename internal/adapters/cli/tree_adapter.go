package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/dqview/internal/core/treemodel"
	"github.com/example/dqview/internal/ports/primary"
	"github.com/example/dqview/internal/structures"
)

var (
	categoryColor = color.New(color.FgCyan, color.Bold)
	idColor       = color.New(color.FgHiBlack)
	okColor       = color.New(color.FgGreen)
	changeColor   = color.New(color.FgYellow)
)

// TreeAdapter is a thin adapter that translates CLI operations to ViewerService calls.
// It depends only on the ViewerService interface, enabling easy testing with mocks.
type TreeAdapter struct {
	service primary.ViewerService
	out     io.Writer
}

// NewTreeAdapter creates a new TreeAdapter with the given service.
func NewTreeAdapter(service primary.ViewerService, out io.Writer) *TreeAdapter {
	return &TreeAdapter{
		service: service,
		out:     out,
	}
}

// Show renders the two-level tree.
func (a *TreeAdapter) Show(ctx context.Context) (*primary.Tree, error) {
	tree, err := a.service.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	if len(tree.Categories) == 0 {
		fmt.Fprintln(a.out, "No frames loaded.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Add your first frame:")
		fmt.Fprintln(a.out, "  dqview add VSM \"sample A\"")
		return tree, nil
	}

	for _, c := range tree.Categories {
		fmt.Fprintf(a.out, "%s %s\n", categoryColor.Sprint(c.Name), idColor.Sprintf("(%d)", len(c.Frames)))
		w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
		for i, f := range c.Frames {
			branch := "├──"
			if i == len(c.Frames)-1 {
				branch = "└──"
			}
			fmt.Fprintf(w, "  %s %s\t%s\n", branch, f.Name, idColor.Sprint(f.ID))
		}
		w.Flush()
	}

	return tree, nil
}

// ShowModel renders the tree through the item model, one line per row with
// every column.
func (a *TreeAdapter) ShowModel(m *treemodel.Model) int {
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)

	headers := make([]string, m.ColumnCount())
	for col := range headers {
		headers[col], _ = m.HeaderData(col)
	}
	fmt.Fprintf(w, "ROW\t%s\n", strings.ToUpper(strings.Join(headers, "\t")))

	rows := 0
	root := treemodel.Index{}
	for gr := 0; gr < m.RowCount(root); gr++ {
		group := m.Index(gr, treemodel.ColumnName, root)
		name, _ := m.Data(group)
		fmt.Fprintf(w, "%d\t%s\t\n", gr, categoryColor.Sprint(name))
		rows++
		for lr := 0; lr < m.RowCount(group); lr++ {
			cells := make([]string, m.ColumnCount())
			for col := range cells {
				cells[col], _ = m.Data(m.Index(lr, col, group))
			}
			fmt.Fprintf(w, "%d.%d\t  %s\n", gr, lr, strings.Join(cells, "\t"))
			rows++
		}
	}
	w.Flush()
	return rows
}

// Add creates a frame and reports where it landed.
func (a *TreeAdapter) Add(ctx context.Context, kind, name string) (*primary.AddFrameResponse, error) {
	resp, err := a.service.AddFrame(ctx, primary.AddFrameRequest{Kind: kind, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to add frame: %w", err)
	}

	fmt.Fprintf(a.out, "%s Frame %s added to %s (row %d)\n",
		okColor.Sprint("✓"), resp.Frame.ID, resp.Frame.Kind, resp.Frame.Row)
	if resp.CategoryCreated {
		fmt.Fprintf(a.out, "  new category at row %d\n", resp.Frame.CategoryRow)
	}
	return resp, nil
}

// Find displays details for a single frame.
func (a *TreeAdapter) Find(ctx context.Context, frameID string) (*primary.Frame, error) {
	frame, err := a.service.GetFrame(ctx, frameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}

	fmt.Fprintf(a.out, "\nFrame: %s\n", frame.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", frame.Name)
	fmt.Fprintf(a.out, "Kind:     %s\n", frame.Kind)
	fmt.Fprintf(a.out, "Position: %d/%d\n", frame.CategoryRow, frame.Row)
	fmt.Fprintf(a.out, "Created:  %s\n", frame.CreatedAt)
	fmt.Fprintln(a.out)

	return frame, nil
}

// Rename edits a frame's name.
func (a *TreeAdapter) Rename(ctx context.Context, frameID, newName string) (oldName string, err error) {
	frame, err := a.service.GetFrame(ctx, frameID)
	if err != nil {
		return "", fmt.Errorf("failed to get frame: %w", err)
	}
	oldName = frame.Name

	err = a.service.RenameFrame(ctx, primary.RenameFrameRequest{
		FrameID: frameID,
		NewName: newName,
	})
	if err != nil {
		return "", err
	}

	fmt.Fprintf(a.out, "%s Frame %s renamed\n", okColor.Sprint("✓"), frameID)
	fmt.Fprintf(a.out, "  %s → %s\n", oldName, newName)

	return oldName, nil
}

// Delete removes a frame.
func (a *TreeAdapter) Delete(ctx context.Context, frameID string) (*primary.Frame, error) {
	frame, err := a.service.GetFrame(ctx, frameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}

	if err := a.service.DeleteFrame(ctx, frameID); err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "%s Frame %s deleted\n", okColor.Sprint("✓"), frameID)
	fmt.Fprintf(a.out, "  Name: %s\n", frame.Name)

	return frame, nil
}

// Ensure shows the category for kind, creating it empty if needed.
func (a *TreeAdapter) Ensure(ctx context.Context, kind string) (*primary.Category, error) {
	c, err := a.service.EnsureCategory(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to show category: %w", err)
	}
	fmt.Fprintf(a.out, "%s Category %s at row %d (%d frames)\n", okColor.Sprint("✓"), c.Name, c.Row, len(c.Frames))
	return c, nil
}

// Prune removes a category and its frames.
func (a *TreeAdapter) Prune(ctx context.Context, kind string) error {
	if err := a.service.PruneCategory(ctx, kind); err != nil {
		return fmt.Errorf("failed to prune category: %w", err)
	}
	fmt.Fprintf(a.out, "%s Category %s pruned\n", okColor.Sprint("✓"), kind)
	return nil
}

// Sync reconciles the tree with the catalog and reports the counts.
func (a *TreeAdapter) Sync(ctx context.Context) (*primary.SyncResult, error) {
	res, err := a.service.SyncCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync catalog: %w", err)
	}
	fmt.Fprintf(a.out, "%s Synced: %d added, %d removed, %d skipped\n",
		okColor.Sprint("✓"), res.Added, res.Removed, res.Skipped)
	return res, nil
}

// Kinds lists the registered structures.
func (a *TreeAdapter) Kinds() []string {
	kinds := structures.Kinds()

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KIND\tX\tY\tCOLUMNS")
	fmt.Fprintln(w, "----\t-\t-\t-------")
	for _, kind := range kinds {
		s, err := structures.Lookup(kind)
		if err != nil {
			continue
		}
		cols := make([]string, 0, len(s.Columns))
		for _, c := range s.Columns {
			cols = append(cols, fmt.Sprintf("%s [%s]", c.Name, c.Unit))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Label, s.X, s.Y, strings.Join(cols, ", "))
	}
	w.Flush()

	return kinds
}

// PrintChange writes one line of the change log.
func (a *TreeAdapter) PrintChange(c primary.Change) {
	switch c.Kind {
	case "value_changed":
		fmt.Fprintf(a.out, "%s %s[%d] %s.%s\n", changeColor.Sprint(c.Kind), c.Parent, c.First, c.Node, c.Field)
	case "node_deleted":
		fmt.Fprintf(a.out, "%s %s\n", changeColor.Sprint(c.Kind), c.Node)
	default:
		fmt.Fprintf(a.out, "%s %s[%d:%d] %s\n", changeColor.Sprint(c.Kind), c.Parent, c.First, c.Last, c.Node)
	}
}
