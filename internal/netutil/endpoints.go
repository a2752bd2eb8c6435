package netutil

import (
	"fmt"
	"net"
)

// APIServerPort is the port the API server binds locally.
const APIServerPort = 6443

// EndpointSources are the address sources an endpoint URL can be built from,
// in order of preference per audience.
type EndpointSources struct {
	// ExternalLBAddress is the externally reachable load balancer
	// front-end, when one has been provisioned.
	ExternalLBAddress string
	// InternalLBAddress is the cluster-internal load balancer front-end.
	InternalLBAddress string
	// IngressAddresses are this node's ingress addresses.
	IngressAddresses []string
	// PublicAddress is this node's public address.
	PublicAddress string
}

// Local returns the loopback API endpoint used by control-plane services on
// this node.
func (s EndpointSources) Local() string {
	return endpointURL("127.0.0.1", APIServerPort)
}

// Internal returns the endpoint cluster members should use: the internal
// load balancer when present, otherwise this node's ingress address.
func (s EndpointSources) Internal() string {
	if s.InternalLBAddress != "" {
		return endpointURL(s.InternalLBAddress, APIServerPort)
	}
	if len(s.IngressAddresses) > 0 {
		return endpointURL(s.IngressAddresses[0], APIServerPort)
	}
	return s.Local()
}

// External returns the endpoint external clients should use: the external
// load balancer (which fronts 443) when present, otherwise the node's public
// address.
func (s EndpointSources) External() string {
	if s.ExternalLBAddress != "" {
		return endpointURL(s.ExternalLBAddress, 443)
	}
	if s.PublicAddress != "" {
		return endpointURL(s.PublicAddress, APIServerPort)
	}
	return s.Local()
}

func endpointURL(host string, port int) string {
	return fmt.Sprintf("https://%s", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
}
