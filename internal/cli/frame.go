package cli

import (
	"strings"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/dqview/internal/adapters/cli"
	"github.com/example/dqview/internal/wire"
)

// TreeCmd returns the tree command
func TreeCmd() *cobra.Command {
	var viaModel bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show frames grouped by structure kind",
		Long: `Show every frame in the catalog, grouped by structure kind in the order
the kinds first appeared.

Examples:
  dqview tree
  dqview tree --model`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TreeAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if viaModel {
				model, err := wire.Model()
				if err != nil {
					return err
				}
				adapter.ShowModel(model)
				return nil
			}
			_, err = adapter.Show(cmd.Context())
			return err
		},
	}

	cmd.Flags().BoolVar(&viaModel, "model", false, "Render rows and columns through the item model")

	return cmd
}

// AddCmd returns the add command
func AddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [kind] [name]",
		Short: "Add a frame of a registered structure kind",
		Long: `Add a frame to the catalog. The frame gets a fresh UUID and the kind's
default metadata.

Examples:
  dqview add VSM "sample A"
  dqview add PowderDiffraction quartz`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TreeAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.Add(cmd.Context(), args[0], strings.Join(args[1:], " "))
			return err
		},
	}
}

// RmCmd returns the rm command
func RmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [frame-id]...",
		Short: "Remove frames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TreeAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			for _, id := range args {
				if _, err := adapter.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// RenameCmd returns the rename command
func RenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [frame-id] [new-name]",
		Short: "Rename a frame",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TreeAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.Rename(cmd.Context(), args[0], strings.Join(args[1:], " "))
			return err
		},
	}
}

// FindCmd returns the find command
func FindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [frame-id]",
		Short: "Show where a frame sits in the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TreeAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			_, err = adapter.Find(cmd.Context(), args[0])
			return err
		},
	}
}

// PruneCmd returns the prune command
func PruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune [kind]",
		Short: "Remove a structure kind and all of its frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := wire.TreeAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Prune(cmd.Context(), args[0])
		},
	}
}

// KindsCmd returns the kinds command
func KindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List registered structure kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The registry is static; no catalog needed.
			cliadapter.NewTreeAdapter(nil, cmd.OutOrStdout()).Kinds()
			return nil
		},
	}
}
