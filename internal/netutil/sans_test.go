package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIServerSANs(t *testing.T) {
	sans, err := APIServerSANs(SANInputs{
		CommonName:       "10.0.0.5",
		Hostname:         "cp-0",
		FQDN:             "cp-0.maas",
		Domain:           "cluster.local",
		BindAddresses:    []string{"10.0.0.5"},
		IngressAddresses: []string{"10.0.0.5"},
		ServiceCIDRs:     []string{"10.152.183.0/24"},
		ExtraSANs:        []string{"foo.example"},
	})
	require.NoError(t, err)

	assert.Contains(t, sans, "127.0.0.1")
	assert.Contains(t, sans, "kubernetes")
	assert.Contains(t, sans, "kubernetes.cluster.local")
	assert.Contains(t, sans, "kubernetes.default")
	assert.Contains(t, sans, "kubernetes.default.svc")
	assert.Contains(t, sans, "kubernetes.default.svc.cluster.local")
	assert.Contains(t, sans, "10.152.183.1")
	assert.Contains(t, sans, "foo.example")
	assert.Contains(t, sans, "cp-0")
	assert.Contains(t, sans, "cp-0.maas")

	// 10.0.0.5 appears as CN, bind, and ingress address: exactly once here.
	count := 0
	for _, san := range sans {
		if san == "10.0.0.5" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAPIServerSANsDropsEmpty(t *testing.T) {
	sans, err := APIServerSANs(SANInputs{Domain: "cluster.local"})
	require.NoError(t, err)
	assert.NotContains(t, sans, "")
}

func TestAPIServerSANsBadCIDR(t *testing.T) {
	_, err := APIServerSANs(SANInputs{Domain: "d", ServiceCIDRs: []string{"bogus"}})
	assert.Error(t, err)
}

func TestFirstServiceAddress(t *testing.T) {
	tests := []struct {
		cidr string
		want string
	}{
		{"10.152.183.0/24", "10.152.183.1"},
		{"10.96.0.0/12", "10.96.0.1"},
		{"fd00::/108", "fd00::1"},
	}
	for _, tt := range tests {
		got, err := FirstServiceAddress(tt.cidr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.cidr)
	}

	_, err := FirstServiceAddress("not-a-cidr")
	assert.Error(t, err)
}

func TestEndpointSelection(t *testing.T) {
	s := EndpointSources{
		ExternalLBAddress: "lb.example",
		InternalLBAddress: "10.0.0.100",
		IngressAddresses:  []string{"10.0.0.5"},
		PublicAddress:     "198.51.100.7",
	}

	assert.Equal(t, "https://127.0.0.1:6443", s.Local())
	assert.Equal(t, "https://10.0.0.100:6443", s.Internal())
	assert.Equal(t, "https://lb.example:443", s.External())

	// Fallbacks without load balancers.
	s.ExternalLBAddress = ""
	s.InternalLBAddress = ""
	assert.Equal(t, "https://10.0.0.5:6443", s.Internal())
	assert.Equal(t, "https://198.51.100.7:6443", s.External())

	// Last-resort loopback.
	s.IngressAddresses = nil
	s.PublicAddress = ""
	assert.Equal(t, "https://127.0.0.1:6443", s.Internal())
	assert.Equal(t, "https://127.0.0.1:6443", s.External())
}
