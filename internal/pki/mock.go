package pki

// MockAuthority is an in-memory CertificateAuthority for tests. Requests are
// recorded; material becomes visible once the test sets it, mimicking the
// asynchronous issue cycle of the real relation.
type MockAuthority struct {
	Related bool

	RootCA      string
	ClientCerts map[string]CertPair
	ServerCerts map[string]CertPair

	ClientRequests []string
	ServerRequests map[string][]string
}

// NewMockAuthority returns a connected mock with no issued material.
func NewMockAuthority() *MockAuthority {
	return &MockAuthority{
		Related:        true,
		ClientCerts:    make(map[string]CertPair),
		ServerCerts:    make(map[string]CertPair),
		ServerRequests: make(map[string][]string),
	}
}

func (m *MockAuthority) Connected() bool {
	return m.Related
}

func (m *MockAuthority) RequestClientCert(identity string) error {
	m.ClientRequests = append(m.ClientRequests, identity)
	return nil
}

func (m *MockAuthority) RequestServerCert(commonName string, sans []string) error {
	m.ServerRequests[commonName] = sans
	return nil
}

func (m *MockAuthority) CA() string {
	return m.RootCA
}

func (m *MockAuthority) ClientCert(identity string) (CertPair, bool) {
	pair, ok := m.ClientCerts[identity]
	return pair, ok
}

func (m *MockAuthority) ServerCert(commonName string) (CertPair, bool) {
	pair, ok := m.ServerCerts[commonName]
	return pair, ok
}

// Issue populates the mock with a full set of material for a node, as if the
// authority had answered the outstanding requests.
func (m *MockAuthority) Issue(commonName string) {
	m.RootCA = "-----BEGIN CERTIFICATE-----\nmock-ca\n-----END CERTIFICATE-----\n"
	m.ClientCerts[APIServerClientIdentity] = CertPair{Cert: "mock-client-cert", Key: "mock-client-key"}
	m.ServerCerts[commonName] = CertPair{Cert: "mock-server-cert", Key: "mock-server-key"}
}
