package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dqview/internal/cli"
	"github.com/example/dqview/internal/version"
	"github.com/example/dqview/internal/wire"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dqview",
		Short:   "dqview - browse measurement frames grouped by structure kind",
		Version: version.String(),
		Long: `dqview keeps measurement frames from a catalog in a two-level tree:
one group per structure kind, frames below in insertion order.`,
		SilenceUsage: true,
		// main reports the error once
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.TreeCmd())
	rootCmd.AddCommand(cli.AddCmd())
	rootCmd.AddCommand(cli.RmCmd())
	rootCmd.AddCommand(cli.RenameCmd())
	rootCmd.AddCommand(cli.FindCmd())
	rootCmd.AddCommand(cli.PruneCmd())
	rootCmd.AddCommand(cli.KindsCmd())
	rootCmd.AddCommand(cli.SessionCmd())

	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	wire.Shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
