package commands

import (
	"github.com/spf13/cobra"

	"github.com/johnbendi/kubeplane/cmd/kubeplane/handlers"
)

// Status returns the command that reports the node's last convergence
// outcome.
func Status() *cobra.Command {
	var dataDir string
	var plain bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the result of the last convergence pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.OutOrStdout(), dataDir, plain)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", handlers.DefaultDataDir, "Node state directory")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable styled output")

	return cmd
}
