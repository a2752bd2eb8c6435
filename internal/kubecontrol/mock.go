package kubecontrol

// Mock is an in-memory Provider for tests.
type Mock struct {
	Ingress  []string
	Requests []AuthRequest

	Signed      map[string]CredentialBundle // requesterID -> bundle
	Cleared     bool
	Published   *Facts
	RequestsErr error
	SignErr     error
}

// NewMock returns a Mock with no pending requests.
func NewMock() *Mock {
	return &Mock{
		Ingress: []string{"10.0.0.5"},
		Signed:  make(map[string]CredentialBundle),
	}
}

func (m *Mock) IngressAddresses() []string {
	return m.Ingress
}

func (m *Mock) AuthRequests() ([]AuthRequest, error) {
	if m.RequestsErr != nil {
		return nil, m.RequestsErr
	}
	return m.Requests, nil
}

func (m *Mock) SignAuthRequest(req AuthRequest, bundle CredentialBundle) error {
	if m.SignErr != nil {
		return m.SignErr
	}
	m.Signed[req.RequesterID] = bundle
	m.Cleared = false
	return nil
}

func (m *Mock) ClearCreds() error {
	m.Signed = make(map[string]CredentialBundle)
	m.Cleared = true
	return nil
}

func (m *Mock) PublishFacts(f Facts) error {
	m.Published = &f
	return nil
}
