package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/johnbendi/kubeplane/cmd/kubeplane/handlers"
)

// Converge returns the command that runs convergence passes.
//
// A single pass runs the full ordered step sequence: install, certificate
// requests, credential materialization, signing key, auth webhook, load
// balancer front-ends, cluster identity, kubeconfigs, service configuration,
// and credential distribution. Passes are idempotent, so re-running after
// any interruption is always safe.
//
// Optional flags:
//
//	--config, -c:  Path to node configuration YAML (default: auto-detect kubeplane.yaml)
//	--relations:   Path to the relation snapshot file
//	--data-dir:    Node state directory for credentials and kubeconfigs
//	--kube-home:   Admin home directory for the bootstrap kubeconfig
//	--interval:    Re-run passes at this interval (default: run once)
//	--metrics-addr: Serve prometheus metrics on this address
func Converge() *cobra.Command {
	opts := handlers.DefaultConvergeOptions()

	cmd := &cobra.Command{
		Use:   "converge",
		Short: "Run convergence passes for this node",
		Long: `Drive this control-plane node toward the desired cluster configuration.

Each pass re-reads the relation snapshot and node configuration, then runs
the full step sequence from scratch. Missing collaborator data leaves the
node waiting or blocked; the next pass picks up where the data appears.

Examples:
  # Run a single pass with defaults
  kubeplane converge

  # Run a pass against explicit inputs
  kubeplane converge -c node.yaml --relations relations.yaml

  # Keep converging every 30 seconds
  kubeplane converge --interval 30s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Converge(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: kubeplane.yaml)")
	cmd.Flags().StringVar(&opts.RelationsPath, "relations", opts.RelationsPath, "Path to the relation snapshot file")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", opts.DataDir, "Node state directory")
	cmd.Flags().StringVar(&opts.KubeHome, "kube-home", opts.KubeHome, "Admin home directory")
	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Duration(0), "Re-run passes at this interval (0 runs once)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")

	return cmd
}
