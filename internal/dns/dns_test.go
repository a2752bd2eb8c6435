package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFallbacks(t *testing.T) {
	f := Resolve(None{}, "cluster.local")
	assert.Equal(t, "cluster.local", f.Domain)
	assert.Equal(t, 53, f.Port)
	assert.Empty(t, f.Address)
	assert.False(t, f.Enabled)
}

func TestResolveRelationWins(t *testing.T) {
	f := Resolve(Static{Addr: "10.152.183.10", DomainName: "internal.example", PortNum: 5353}, "cluster.local")
	assert.Equal(t, "10.152.183.10", f.Address)
	assert.Equal(t, "internal.example", f.Domain)
	assert.Equal(t, 5353, f.Port)
	assert.True(t, f.Enabled)
}

func TestResolvePartialRelation(t *testing.T) {
	f := Resolve(Static{Addr: "10.152.183.10"}, "cluster.local")
	assert.Equal(t, "cluster.local", f.Domain)
	assert.Equal(t, 53, f.Port)
	assert.True(t, f.Enabled)
}
