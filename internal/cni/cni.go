// Package cni is the narrow view of the network-plugin relation: the cluster
// CIDR the plugin manages, plus the facts the engine publishes back to it.
package cni

// Provider is the external network plugin relation.
type Provider interface {
	// CIDR returns the cluster pod CIDR, or "" if not published yet.
	CIDR() string
	// ConfFile returns the plugin's CNI conf file name, or "" if none.
	ConfFile() string

	SetImageRegistry(registry string) error
	SetServiceCIDR(cidr string) error
	// SetKubeconfigHash publishes a hash of the node's kubeconfig so the
	// plugin can detect credential rotation.
	SetKubeconfigHash(hash string) error
}

// Mock is an in-memory Provider for tests.
type Mock struct {
	ClusterCIDR string
	Conf        string

	Registry       string
	ServiceCIDR    string
	KubeconfigHash string
}

func (m *Mock) CIDR() string {
	return m.ClusterCIDR
}

func (m *Mock) ConfFile() string {
	return m.Conf
}

func (m *Mock) SetImageRegistry(registry string) error {
	m.Registry = registry
	return nil
}

func (m *Mock) SetServiceCIDR(cidr string) error {
	m.ServiceCIDR = cidr
	return nil
}

func (m *Mock) SetKubeconfigHash(hash string) error {
	m.KubeconfigHash = hash
	return nil
}
