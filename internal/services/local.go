package services

import (
	"net"
	"os"
	"strings"
)

// LocalFacts derives NodeFacts from the host's network configuration.
// Every method re-reads the host so address changes are picked up on the
// next convergence pass.
type LocalFacts struct {
	// PublicAddressOverride, when set, is returned as the public address
	// instead of the first global unicast address.
	PublicAddressOverride string
}

func (l LocalFacts) Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hostname
}

func (l LocalFacts) FQDN() string {
	hostname := l.Hostname()
	addrs, err := net.LookupHost(hostname)
	if err != nil || len(addrs) == 0 {
		return hostname
	}
	names, err := net.LookupAddr(addrs[0])
	if err != nil || len(names) == 0 {
		return hostname
	}
	return strings.TrimSuffix(names[0], ".")
}

func (l LocalFacts) PublicAddress() string {
	if l.PublicAddressOverride != "" {
		return l.PublicAddressOverride
	}
	if addrs := l.BindAddresses(); len(addrs) > 0 {
		return addrs[0]
	}
	return "127.0.0.1"
}

func (l LocalFacts) BindAddresses() []string {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var addrs []string
	for _, addr := range ifaceAddrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ipNet.IP.IsGlobalUnicast() {
			addrs = append(addrs, ipNet.IP.String())
		}
	}
	return addrs
}
