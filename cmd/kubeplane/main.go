// Package main is the entry point for the kubeplane CLI.
//
// kubeplane converges a Kubernetes control-plane node toward the desired
// cluster configuration: it consumes the relation data published by the
// deployment's collaborators (certificate authority, etcd, load balancers,
// container runtime, network plugin) and idempotently drives the local
// services, credentials, and published facts into line.
//
// Commands: converge, status, version.
//
// For detailed usage information, run:
//
//	kubeplane --help
package main

import (
	"fmt"
	"os"

	"github.com/johnbendi/kubeplane/cmd/kubeplane/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
