// Package kubeconfig renders client configuration files binding an identity
// token to the API server endpoint and authority certificate.
//
// Two write policies exist: the bootstrap admin config is created only if
// absent, so an already-bootstrapped node is never clobbered; every other
// destination is overwritten on each ready pass so configuration drift
// self-heals.
package kubeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// Stable names used inside generated files; external consumers rely on the
// format staying put.
const (
	clusterName = "kubeplane-cluster"
	contextName = "kubeplane-context"
)

// Params describe one client configuration file.
type Params struct {
	Path   string
	CA     string // PEM-encoded authority certificate
	Server string // API endpoint URL
	User   string
	Token  string
}

// Write renders the config and overwrites the destination.
func Write(p Params) error {
	cfg := clientcmdapi.NewConfig()
	cfg.Clusters[clusterName] = &clientcmdapi.Cluster{
		Server:                   p.Server,
		CertificateAuthorityData: []byte(p.CA),
	}
	cfg.AuthInfos[p.User] = &clientcmdapi.AuthInfo{
		Token: p.Token,
	}
	cfg.Contexts[contextName] = &clientcmdapi.Context{
		Cluster:  clusterName,
		AuthInfo: p.User,
	}
	cfg.CurrentContext = contextName

	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p.Path, err)
	}
	if err := clientcmd.WriteToFile(*cfg, p.Path); err != nil {
		return fmt.Errorf("failed to write kubeconfig %s: %w", p.Path, err)
	}
	// clientcmd writes 0600 for new files but we normalize in case the
	// destination pre-existed with looser permissions.
	if err := os.Chmod(p.Path, 0o600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", p.Path, err)
	}
	return nil
}

// WriteIfAbsent renders the config only when the destination does not exist
// yet. Returns true when the file was created.
func WriteIfAbsent(p Params) (bool, error) {
	if _, err := os.Stat(p.Path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", p.Path, err)
	}
	if err := Write(p); err != nil {
		return false, err
	}
	return true, nil
}

// Paths is the fixed set of client configuration destinations on a
// control-plane node.
type Paths struct {
	// Bootstrap is the first local admin config; create-if-absent.
	Bootstrap string
	// Admin is the externally-reachable admin config; overwritten.
	Admin             string
	ControllerManager string
	Scheduler         string
	Kubelet           string
	Proxy             string
}

// DefaultPaths lays the destinations out under the admin home and the node
// data directory.
func DefaultPaths(kubeHome, dataDir string) Paths {
	return Paths{
		Bootstrap:         filepath.Join(kubeHome, "config"),
		Admin:             filepath.Join(dataDir, "adminconfig"),
		ControllerManager: filepath.Join(dataDir, "kubecontrollermanagerconfig"),
		Scheduler:         filepath.Join(dataDir, "kubeschedulerconfig"),
		Kubelet:           filepath.Join(dataDir, "kubeconfig"),
		Proxy:             filepath.Join(dataDir, "kubeproxyconfig"),
	}
}
