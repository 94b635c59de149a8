package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dqview/internal/config"
	"github.com/example/dqview/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var catalogPath string
	var prune bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize dqview in the current directory",
		Long: `Write .dqview/config.yaml in the current directory and create the frame
catalog with the required schema. An existing config is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return err
			}
			_, statErr := os.Stat(config.Path(dir))
			if errors.Is(statErr, os.ErrNotExist) {
				cfg.CatalogPath = catalogPath
				cfg.PruneEmptyGroups = prune
				if err := config.SaveConfig(dir, cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Config written to %s\n", config.Path(dir))
			} else {
				fmt.Fprintf(out, "ℹ️  Using existing config at %s\n", config.Path(dir))
			}

			path, err := cfg.ResolveCatalogPath(dir)
			if err != nil {
				return err
			}
			conn, err := db.Open(path)
			if err != nil {
				return err
			}
			defer conn.Close()
			version, err := db.CurrentVersion(conn)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✓ Catalog ready at %s (schema v%d)\n", path, version)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  dqview add VSM \"sample A\"")
			fmt.Fprintln(out, "  dqview tree")

			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file (default ~/.dqview/catalog.db)")
	cmd.Flags().BoolVar(&prune, "prune-empty-groups", false, "Remove a kind's group when its last frame goes")

	return cmd
}
