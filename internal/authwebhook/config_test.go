package authwebhook

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestWriteWebhookConfigDefaultEndpoint(t *testing.T) {
	path, err := WriteWebhookConfig(t.TempDir(), "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg webhookConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.Len(t, cfg.Clusters, 1)
	assert.Equal(t, DefaultEndpoint, cfg.Clusters[0].Cluster.Server)
	assert.Equal(t, "webhook", cfg.CurrentContext)
}

func TestWriteWebhookConfigCustomEndpoint(t *testing.T) {
	path, err := WriteWebhookConfig(t.TempDir(), "https://authn.example:8443/authenticate")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg webhookConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "https://authn.example:8443/authenticate", cfg.Clusters[0].Cluster.Server)
}
