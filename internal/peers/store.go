package peers

import "sync"

// Well-known fact keys in the replicated store.
const (
	KeyClusterName = "cluster-name"
	KeySigningKey  = "service-account-key"
)

// Keys used by the deprecated leader-scoped store.
const (
	LegacyClusterTag = "cluster_tag"
	LegacySigningKey = "/root/cdk/serviceaccount.key"
)

// Store is the replicated cluster-scoped key/value mapping. Writes are
// restricted to the leader by the callers in this package; implementations
// do not enforce that themselves.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// LegacyStore holds single-writer records from the previous protocol
// version. Values are read once by the leader during migration and cleared.
type LegacyStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Leadership reports whether this node currently holds the cluster-wide
// writer role. It is consulted fresh on every convergence pass.
type Leadership interface {
	IsLeader() bool
}

// Memory is an in-memory Store and LegacyStore with controllable leadership,
// for tests and for single-node operation.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	leader bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the stored value for key, or "" when absent.
func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

// Set stores value under key. An empty value clears the entry.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.data, key)
		return nil
	}
	m.data[key] = value
	return nil
}

// SetLeader controls what IsLeader reports.
func (m *Memory) SetLeader(leader bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leader = leader
}

// IsLeader implements Leadership.
func (m *Memory) IsLeader() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leader
}
