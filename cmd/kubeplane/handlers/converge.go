// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johnbendi/kubeplane/internal/authwebhook"
	"github.com/johnbendi/kubeplane/internal/config"
	"github.com/johnbendi/kubeplane/internal/converge"
	"github.com/johnbendi/kubeplane/internal/kubeconfig"
	"github.com/johnbendi/kubeplane/internal/kubecontrol"
	"github.com/johnbendi/kubeplane/internal/peers"
	"github.com/johnbendi/kubeplane/internal/pki"
	"github.com/johnbendi/kubeplane/internal/relation"
	"github.com/johnbendi/kubeplane/internal/services"
)

// Default filesystem layout of a control-plane node.
const (
	DefaultDataDir  = "/root/cdk"
	DefaultKubeHome = "/root/.kube"

	defaultConfigFile = "kubeplane.yaml"
	relationsFile     = "relations.yaml"
	knownTokensFile   = "known_tokens.csv"
)

// ConvergeOptions select the inputs and layout for convergence passes.
type ConvergeOptions struct {
	ConfigPath    string
	RelationsPath string
	DataDir       string
	KubeHome      string
	// Interval between passes; zero runs a single pass.
	Interval time.Duration
	// MetricsAddr, when set, serves the prometheus registry on /metrics.
	MetricsAddr string
}

// DefaultConvergeOptions returns options for the standard node layout.
func DefaultConvergeOptions() ConvergeOptions {
	return ConvergeOptions{
		DataDir:  DefaultDataDir,
		KubeHome: DefaultKubeHome,
	}
}

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	newLogger = func() (logr.Logger, func()) {
		zl, err := zap.NewProduction()
		if err != nil {
			return logr.Discard(), func() {}
		}
		return zapr.NewLogger(zl), func() { _ = zl.Sync() }
	}

	localNodeFacts = func() services.NodeFacts { return services.LocalFacts{} }
)

// Converge runs convergence passes until the context is done, or exactly one
// pass when no interval is set. The relation snapshot is re-read before
// every pass so newly published collaborator data is always picked up.
func Converge(ctx context.Context, opts ConvergeOptions) error {
	log, flush := newLogger()
	defer flush()

	if opts.RelationsPath == "" {
		opts.RelationsPath = filepath.Join(opts.DataDir, relationsFile)
	}

	cfg, err := loadNodeConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		srv := newMetricsServer(opts.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err, "metrics server failed")
			}
		}()
		defer srv.Close()
	}

	for {
		engine, err := buildEngine(cfg, opts, log)
		if err != nil {
			return err
		}

		st, passErr := engine.Converge(ctx)
		if err := writeLastStatus(opts.DataDir, st, passErr); err != nil {
			log.Error(err, "failed to record pass outcome")
		}
		if passErr != nil {
			if opts.Interval == 0 {
				return passErr
			}
			log.Error(passErr, "convergence pass failed")
		}

		if opts.Interval == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func loadNodeConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.Default(), nil
}

func buildEngine(cfg *config.Config, opts ConvergeOptions, log logr.Logger) (*converge.Engine, error) {
	rel, err := relation.Load(opts.RelationsPath)
	if err != nil {
		return nil, err
	}

	tokens := authwebhook.NewFileStore(filepath.Join(opts.DataDir, knownTokensFile))
	facts := peers.NewFacts(rel.PeerStore(), rel.LegacyStore(), rel,
		authwebhook.GenerateToken, log.WithName("peers"))
	kubeControl := rel.KubeControl()

	deps := converge.Deps{
		CertAuthority: rel.CertAuthority(),
		Etcd:          rel.Etcd(),
		Authority:     tokens,
		Facts:         facts,
		Leadership:    rel,
		Node:          localNodeFacts(),
		Services:      services.NewFileManager(opts.DataDir, log.WithName("services")),
		Runtime:       rel.Runtime(),
		CNI:           rel.CNI(),
		DNS:           rel.DNS(),
		ExternalLB:    rel.ExternalLB(),
		InternalLB:    rel.InternalLB(),
		KubeControl:   kubeControl,
		Distributor:   kubecontrol.NewDistributor(kubeControl, tokens, log.WithName("distributor")),
		Materializer:  pki.NewMaterializer(filepath.Join(opts.DataDir, "pki")),
		Kubeconfigs:   kubeconfig.DefaultPaths(opts.KubeHome, opts.DataDir),
		WebhookDir:    filepath.Join(opts.DataDir, "auth-webhook"),

		ExternalCloudProvider: rel.ExternalCloudProvider(),
	}
	return converge.New(cfg, deps, log.WithName("converge")), nil
}
