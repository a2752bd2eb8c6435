// Package relation exchanges integration data with the rest of the
// deployment through a single YAML snapshot file.
//
// The snapshot is the node's view of its relations: what the certificate
// authority, datastore, peers, and network collaborators have published, and
// what this node publishes back (certificate requests, cluster facts, signed
// credential bundles). The integration layer maintains the inbound sections;
// the convergence pass maintains the outbound ones. Every outbound write is
// persisted immediately so an interrupted pass leaves no unpublished state.
package relation

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/johnbendi/kubeplane/internal/cni"
	"github.com/johnbendi/kubeplane/internal/cri"
	"github.com/johnbendi/kubeplane/internal/dns"
	"github.com/johnbendi/kubeplane/internal/etcd"
	"github.com/johnbendi/kubeplane/internal/kubecontrol"
	"github.com/johnbendi/kubeplane/internal/lb"
	"github.com/johnbendi/kubeplane/internal/pki"
)

// Snapshot is the serialized relation state. A nil section means the
// relation is not established.
type Snapshot struct {
	Leader bool `json:"leader,omitempty"`

	CertificateAuthority *CAData          `json:"certificateAuthority,omitempty"`
	Etcd                 *EtcdData        `json:"etcd,omitempty"`
	KubeControl          *KubeControlData `json:"kubeControl,omitempty"`
	DNS                  *DNSData         `json:"dns,omitempty"`
	ExternalLB           *LBData          `json:"externalLoadBalancer,omitempty"`
	InternalLB           *LBData          `json:"internalLoadBalancer,omitempty"`
	Runtime              *RuntimeData     `json:"containerRuntime,omitempty"`
	CNI                  *CNIData         `json:"cni,omitempty"`

	// Peers is the replicated cluster-scoped fact store.
	Peers map[string]string `json:"peers,omitempty"`
	// Legacy holds records from the previous protocol version, cleared
	// once migrated.
	Legacy map[string]string `json:"legacy,omitempty"`

	ExternalCloudProvider string `json:"externalCloudProvider,omitempty"`
}

// CAData is the certificate authority section.
type CAData struct {
	CA         string              `json:"ca,omitempty"`
	ClientCert map[string]CertData `json:"clientCerts,omitempty"`
	ServerCert map[string]CertData `json:"serverCerts,omitempty"`

	// Outbound requests, keyed by identity or common name.
	ClientRequests []string            `json:"clientRequests,omitempty"`
	ServerRequests map[string][]string `json:"serverRequests,omitempty"`
}

// CertData is one issued certificate pair.
type CertData struct {
	Cert string `json:"cert"`
	Key  string `json:"key"`
}

// EtcdData is the datastore section.
type EtcdData struct {
	ConnectionString string `json:"connectionString,omitempty"`
	CA               string `json:"ca,omitempty"`
	Cert             string `json:"cert,omitempty"`
	Key              string `json:"key,omitempty"`
}

// KubeControlData is the worker-facing section.
type KubeControlData struct {
	IngressAddresses []string                  `json:"ingressAddresses,omitempty"`
	AuthRequests     []kubecontrol.AuthRequest `json:"authRequests,omitempty"`

	// Outbound.
	Published *kubecontrol.Facts                      `json:"published,omitempty"`
	Signed    map[string]kubecontrol.CredentialBundle `json:"signed,omitempty"`
}

// DNSData is the cluster DNS section.
type DNSData struct {
	Address string `json:"address,omitempty"`
	Domain  string `json:"domain,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// LBData is one load balancer section.
type LBData struct {
	Address string `json:"address,omitempty"`

	// Outbound front-end requests keyed by name.
	Requests map[string]lb.Request `json:"requests,omitempty"`
}

// RuntimeData is the container runtime section.
type RuntimeData struct {
	Socket string `json:"socket,omitempty"`

	// Outbound.
	SandboxImage string `json:"sandboxImage,omitempty"`
}

// CNIData is the network plugin section.
type CNIData struct {
	CIDR     string `json:"cidr,omitempty"`
	ConfFile string `json:"confFile,omitempty"`

	// Outbound.
	ImageRegistry  string `json:"imageRegistry,omitempty"`
	ServiceCIDR    string `json:"serviceCIDR,omitempty"`
	KubeconfigHash string `json:"kubeconfigHash,omitempty"`
}

// File is a Snapshot bound to its backing file. Adapter methods expose the
// sections through the interfaces the convergence engine consumes; outbound
// writes persist synchronously.
type File struct {
	path string

	mu   sync.Mutex
	snap Snapshot
}

// Load reads the snapshot at path. A missing file yields an empty snapshot,
// which presents every relation as not established.
func Load(path string) (*File, error) {
	f := &File{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read relation snapshot: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &f.snap); err != nil {
		return nil, fmt.Errorf("failed to parse relation snapshot %s: %w", path, err)
	}
	return f, nil
}

// Snapshot returns a copy of the current state.
func (f *File) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *File) save() error {
	data, err := yaml.Marshal(f.snap)
	if err != nil {
		return fmt.Errorf("failed to marshal relation snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write relation snapshot: %w", err)
	}
	return nil
}

// update runs fn under the lock and persists the result.
func (f *File) update(fn func(*Snapshot)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.snap)
	return f.save()
}

// IsLeader implements peers.Leadership.
func (f *File) IsLeader() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Leader
}

// ExternalCloudProvider returns the configured out-of-tree cloud provider
// name, or "".
func (f *File) ExternalCloudProvider() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.ExternalCloudProvider
}

// CertAuthority returns the certificate authority adapter.
func (f *File) CertAuthority() pki.CertificateAuthority { return caAdapter{f} }

// Etcd returns the datastore adapter.
func (f *File) Etcd() etcd.Client { return etcdAdapter{f} }

// KubeControl returns the worker-facing relation adapter.
func (f *File) KubeControl() kubecontrol.Provider { return kubeControlAdapter{f} }

// DNS returns the cluster DNS adapter.
func (f *File) DNS() dns.Provider { return dnsAdapter{f} }

// ExternalLB returns the external load balancer adapter.
func (f *File) ExternalLB() lb.Provider {
	return lbAdapter{f, func(s *Snapshot) *LBData { return s.ExternalLB }}
}

// InternalLB returns the internal load balancer adapter.
func (f *File) InternalLB() lb.Provider {
	return lbAdapter{f, func(s *Snapshot) *LBData { return s.InternalLB }}
}

// Runtime returns the container runtime adapter.
func (f *File) Runtime() cri.Runtime { return runtimeAdapter{f} }

// CNI returns the network plugin adapter.
func (f *File) CNI() cni.Provider { return cniAdapter{f} }

// PeerStore returns the replicated fact store.
func (f *File) PeerStore() *PeerStore { return &PeerStore{f: f, legacy: false} }

// LegacyStore returns the deprecated single-writer store.
func (f *File) LegacyStore() *PeerStore { return &PeerStore{f: f, legacy: true} }

// PeerStore is a peers.Store backed by a snapshot section.
type PeerStore struct {
	f      *File
	legacy bool
}

func (p *PeerStore) section(s *Snapshot) map[string]string {
	if p.legacy {
		return s.Legacy
	}
	return s.Peers
}

// Get returns the stored value, or "" when absent.
func (p *PeerStore) Get(key string) (string, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	return p.section(&p.f.snap)[key], nil
}

// Set stores value under key; an empty value clears the entry.
func (p *PeerStore) Set(key, value string) error {
	return p.f.update(func(s *Snapshot) {
		section := p.section(s)
		if section == nil {
			section = make(map[string]string)
			if p.legacy {
				s.Legacy = section
			} else {
				s.Peers = section
			}
		}
		if value == "" {
			delete(section, key)
			return
		}
		section[key] = value
	})
}
