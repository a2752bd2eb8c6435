// Package etcd defines the narrow view of the etcd datastore relation the
// convergence engine consumes: readiness, the connection string for the API
// server, and the client credentials to persist locally.
package etcd

// Credentials are the PEM-encoded client credentials for the etcd cluster.
type Credentials struct {
	CA   string
	Cert string
	Key  string
}

// Client is the external etcd relation.
type Client interface {
	// Connected reports whether an etcd cluster is related at all.
	// False means blocked, not waiting.
	Connected() bool
	// Ready reports whether the related cluster has published its
	// connection data yet.
	Ready() bool

	ConnectionString() string
	ClientCredentials() (Credentials, error)
}
