// Package pki consumes the certificate authority and lands the issued
// material on the local filesystem for the control-plane services.
//
// The authority itself is an external collaborator: certificates are
// requested by identity or common name and arrive asynchronously on later
// passes. This package only sequences requests and persists what has been
// issued.
package pki

// CertPair is an issued certificate with its private key, both PEM-encoded.
type CertPair struct {
	Cert string
	Key  string
}

// CertificateAuthority is the narrow view of the external CA the engine
// consumes. Requests are idempotent; issued material shows up on a later
// pass via the lookup methods.
type CertificateAuthority interface {
	// Connected reports whether a certificate authority is related at
	// all. False means blocked, not waiting.
	Connected() bool

	RequestClientCert(identity string) error
	RequestServerCert(commonName string, sans []string) error

	// CA returns the authority's root certificate, or "" if not issued.
	CA() string
	// ClientCert returns the issued client pair for an identity.
	ClientCert(identity string) (CertPair, bool)
	// ServerCert returns the issued server pair for a common name.
	ServerCert(commonName string) (CertPair, bool)
}

// APIServerClientIdentity is the identity the API server's client
// certificate is requested for.
const APIServerClientIdentity = "system:kube-apiserver"
