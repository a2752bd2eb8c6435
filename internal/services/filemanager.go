package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"
)

// FileManager is a Manager that renders each service's configuration to a
// YAML argument file under <dir>/args. Service process supervision reads
// those files; restarting and packaging are handled out-of-band.
type FileManager struct {
	dir string
	log logr.Logger
}

// NewFileManager returns a FileManager rooted at dir.
func NewFileManager(dir string, log logr.Logger) *FileManager {
	return &FileManager{dir: dir, log: log}
}

// Install is a no-op beyond ensuring the render directory exists; package
// installation happens out-of-band.
func (m *FileManager) Install(_ context.Context, channel string) error {
	if err := os.MkdirAll(m.argsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create args directory: %w", err)
	}
	m.log.V(1).Info("node software install ensured", "channel", channel)
	return nil
}

// EnsureRestartAlways is handled by the service supervisor; recorded here so
// the engine step stays idempotent and observable.
func (m *FileManager) EnsureRestartAlways() error {
	m.log.V(1).Info("service restart policy ensured")
	return nil
}

func (m *FileManager) ConfigureAPIServer(cfg APIServerConfig) error {
	return m.render("kube-apiserver", cfg)
}

func (m *FileManager) ConfigureControllerManager(cfg ControllerManagerConfig) error {
	return m.render("kube-controller-manager", cfg)
}

func (m *FileManager) ConfigureScheduler(cfg SchedulerConfig) error {
	return m.render("kube-scheduler", cfg)
}

func (m *FileManager) ConfigureKubelet(cfg KubeletConfig) error {
	return m.render("kubelet", cfg)
}

func (m *FileManager) ConfigureProxy(cfg ProxyConfig) error {
	return m.render("kube-proxy", cfg)
}

// ConfigureDefaultCNI writes the default CNI conf file selection.
func (m *FileManager) ConfigureDefaultCNI(confFile string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.dir, err)
	}
	path := filepath.Join(m.dir, "default-cni-conf-file")
	if err := os.WriteFile(path, []byte(confFile+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ConfigureKernelParameters writes an ordered sysctl conf file.
func (m *FileManager) ConfigureKernelParameters(params map[string]string) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s = %s\n", k, params[k])
	}

	path := filepath.Join(m.dir, "sysctl.conf")
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.dir, err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ArgsPath returns the rendered argument file path for a service.
func (m *FileManager) ArgsPath(service string) string {
	return filepath.Join(m.argsDir(), service+".yaml")
}

func (m *FileManager) argsDir() string {
	return filepath.Join(m.dir, "args")
}

func (m *FileManager) render(service string, cfg any) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s config: %w", service, err)
	}
	if err := os.MkdirAll(m.argsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create args directory: %w", err)
	}
	path := m.ArgsPath(service)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
