package etcd

// MockClient is an in-memory etcd relation for tests.
type MockClient struct {
	Related    bool
	IsReady    bool
	Connection string
	Creds      Credentials
}

// NewMockClient returns a connected, ready mock with placeholder
// credentials.
func NewMockClient() *MockClient {
	return &MockClient{
		Related:    true,
		IsReady:    true,
		Connection: "https://10.0.0.10:2379",
		Creds: Credentials{
			CA:   "mock-etcd-ca",
			Cert: "mock-etcd-cert",
			Key:  "mock-etcd-key",
		},
	}
}

func (m *MockClient) Connected() bool {
	return m.Related
}

func (m *MockClient) Ready() bool {
	return m.IsReady
}

func (m *MockClient) ConnectionString() string {
	return m.Connection
}

func (m *MockClient) ClientCredentials() (Credentials, error) {
	return m.Creds, nil
}
