// Package netutil computes the network-facing facts of a control-plane node:
// the API server certificate SAN set, cluster service addresses derived from
// the service CIDRs, and the API endpoint URLs handed to clients.
package netutil

import (
	"fmt"
	"net"

	"k8s.io/apimachinery/pkg/util/sets"
)

// SANInputs are the sources merged into the API server certificate SAN set.
// The set is recomputed fresh on every convergence pass; ordering of the
// result is not significant.
type SANInputs struct {
	// CommonName is the certificate CN. The CN is checked as a hostname,
	// so if it is an IP it must also appear in the SANs to match.
	CommonName string

	Hostname string
	FQDN     string

	// Domain is the cluster DNS domain (for kubernetes.default.svc.<domain>).
	Domain string

	BindAddresses    []string
	IngressAddresses []string

	// ServiceCIDRs contribute the first address of each range, which is
	// where the kubernetes.default service is exposed.
	ServiceCIDRs []string

	ExtraSANs []string
}

// APIServerSANs returns the deduplicated, sorted SAN set for the API server
// certificate.
func APIServerSANs(in SANInputs) ([]string, error) {
	sans := sets.New(
		in.CommonName,
		"127.0.0.1",
		in.Hostname,
		in.FQDN,
		"kubernetes",
		fmt.Sprintf("kubernetes.%s", in.Domain),
		"kubernetes.default",
		"kubernetes.default.svc",
		fmt.Sprintf("kubernetes.default.svc.%s", in.Domain),
	)

	sans.Insert(in.BindAddresses...)
	sans.Insert(in.IngressAddresses...)
	sans.Insert(in.ExtraSANs...)

	serviceAddrs, err := ServiceAddresses(in.ServiceCIDRs)
	if err != nil {
		return nil, err
	}
	sans.Insert(serviceAddrs...)

	sans.Delete("")
	return sets.List(sans), nil
}

// ServiceAddresses returns the first usable address of each service CIDR.
// Kubernetes reserves that address for the kubernetes.default service.
func ServiceAddresses(cidrs []string) ([]string, error) {
	var addrs []string
	for _, cidr := range cidrs {
		addr, err := FirstServiceAddress(cidr)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// FirstServiceAddress returns the first usable address in a CIDR.
func FirstServiceAddress(cidr string) (string, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", fmt.Errorf("invalid service CIDR %q: %w", cidr, err)
	}

	ip := network.IP
	addr := make(net.IP, len(ip))
	copy(addr, ip)
	for i := len(addr) - 1; i >= 0; i-- {
		addr[i]++
		if addr[i] != 0 {
			break
		}
	}
	return addr.String(), nil
}
