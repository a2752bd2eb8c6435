// Package lb upserts API server front-ends on the load-balancer relations.
// Requests are keyed by name; sending the same request again is an upsert,
// so the leader can safely re-send every pass.
package lb

// Protocol of a front-end or health check.
type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolHTTP Protocol = "http"
)

// HealthCheck probes a backend port.
type HealthCheck struct {
	Protocol Protocol
	Port     int
	Path     string
}

// Request describes one named front-end.
type Request struct {
	Name         string
	Protocol     Protocol
	PortMapping  map[int]int // frontend port -> backend port
	Public       bool
	HealthChecks []HealthCheck
}

// Provider is one load-balancer relation (external or internal).
type Provider interface {
	// Available reports whether the relation can accept requests.
	Available() bool
	// GetRequest returns the existing named request, or a new empty one.
	GetRequest(name string) (Request, error)
	// SendRequest submits the request; same-name submission is an upsert.
	SendRequest(req Request) error
	// Address returns the provisioned front-end address, or "" while the
	// balancer is still coming up.
	Address() string
}

// EnsureAPIServerFrontend upserts the standard API server front-end on a
// provider. The health check is added only when the request has none, so an
// operator-tuned check survives convergence.
func EnsureAPIServerFrontend(provider Provider, name string, frontendPort, backendPort int, public bool) error {
	if !provider.Available() {
		return nil
	}

	req, err := provider.GetRequest(name)
	if err != nil {
		return err
	}
	req.Name = name
	req.Protocol = ProtocolTCP
	req.PortMapping = map[int]int{frontendPort: backendPort}
	req.Public = public
	if len(req.HealthChecks) == 0 {
		req.HealthChecks = []HealthCheck{{Protocol: ProtocolHTTP, Port: backendPort, Path: "/livez"}}
	}
	return provider.SendRequest(req)
}

// None is a Provider with no relation; never available.
type None struct{}

func (None) Available() bool                       { return false }
func (None) GetRequest(name string) (Request, error) { return Request{Name: name}, nil }
func (None) SendRequest(Request) error             { return nil }
func (None) Address() string                       { return "" }

// Mock is an in-memory Provider for tests.
type Mock struct {
	IsAvailable bool
	Requests    map[string]Request
	// Addr is what the provisioned front-end resolves to.
	Addr string
}

// NewMock returns an available mock with no requests.
func NewMock() *Mock {
	return &Mock{IsAvailable: true, Requests: make(map[string]Request)}
}

func (m *Mock) Available() bool {
	return m.IsAvailable
}

func (m *Mock) GetRequest(name string) (Request, error) {
	if req, ok := m.Requests[name]; ok {
		return req, nil
	}
	return Request{Name: name}, nil
}

func (m *Mock) SendRequest(req Request) error {
	m.Requests[req.Name] = req
	return nil
}

func (m *Mock) Address() string {
	return m.Addr
}
