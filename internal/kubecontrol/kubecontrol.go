// Package kubecontrol answers join requests from cluster nodes and
// publishes the cluster-facing facts they need.
//
// Token handout is leader-only: the single writer mints credentials for a
// fixed set of standing identities plus one per pending join request, and
// answers each request with a complete bundle in one round-trip. A node that
// loses leadership clears its published credentials on the very next pass so
// no stale issued-state stays visible.
package kubecontrol

// AuthRequest is one pending join request from a node.
type AuthRequest struct {
	// RequesterID uniquely identifies the requesting node.
	RequesterID string
	User        string
	Group       string
}

// CredentialBundle answers one AuthRequest: the requester's own token plus
// the standing client and proxy tokens, so joining needs a single
// round-trip.
type CredentialBundle struct {
	ClientToken  string
	KubeletToken string
	ProxyToken   string
}

// Facts are the cluster-facing values published to every related node.
type Facts struct {
	APIEndpoints     []string
	ClusterName      string
	DefaultCNI       string
	DNSAddress       string
	DNSDomain        string
	DNSEnabled       bool
	DNSPort          int
	HasExternalCloud bool
	ImageRegistry    string
	Labels           []string
	Taints           []string
}

// Provider is the external kube-control relation.
type Provider interface {
	// IngressAddresses returns this node's addresses on the relation.
	IngressAddresses() []string
	// AuthRequests returns the pending join requests.
	AuthRequests() ([]AuthRequest, error)
	// SignAuthRequest answers one request with a credential bundle.
	SignAuthRequest(req AuthRequest, bundle CredentialBundle) error
	// ClearCreds withdraws previously published credentials.
	ClearCreds() error
	// PublishFacts publishes the cluster-facing facts.
	PublishFacts(f Facts) error
}
