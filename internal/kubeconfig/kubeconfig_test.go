package kubeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
)

func testParams(path string) Params {
	return Params{
		Path:   path,
		CA:     "-----BEGIN CERTIFICATE-----\nfake\n-----END CERTIFICATE-----\n",
		Server: "https://127.0.0.1:6443",
		User:   "admin",
		Token:  "token-1",
	}
}

func TestWriteProducesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, Write(testParams(path)))

	cfg, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)

	cluster := cfg.Clusters["kubeplane-cluster"]
	require.NotNil(t, cluster)
	assert.Equal(t, "https://127.0.0.1:6443", cluster.Server)
	assert.Contains(t, string(cluster.CertificateAuthorityData), "BEGIN CERTIFICATE")

	user := cfg.AuthInfos["admin"]
	require.NotNil(t, user)
	assert.Equal(t, "token-1", user.Token)

	assert.Equal(t, "kubeplane-context", cfg.CurrentContext)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, Write(testParams(path)))

	p := testParams(path)
	p.Token = "token-2"
	require.NoError(t, Write(p))

	cfg, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "token-2", cfg.AuthInfos["admin"].Token)
}

func TestWriteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, Write(testParams(path)))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Write(testParams(path)))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteIfAbsentProtectsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")

	created, err := WriteIfAbsent(testParams(path))
	require.NoError(t, err)
	assert.True(t, created)

	// A later pass with a different token must not touch the file.
	p := testParams(path)
	p.Token = "token-2"
	created, err = WriteIfAbsent(p)
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "token-1", cfg.AuthInfos["admin"].Token)
}

func TestDefaultPaths(t *testing.T) {
	p := DefaultPaths("/root/.kube", "/root/cdk")
	assert.Equal(t, "/root/.kube/config", p.Bootstrap)
	assert.Equal(t, "/root/cdk/kubecontrollermanagerconfig", p.ControllerManager)
	assert.Equal(t, "/root/cdk/kubeschedulerconfig", p.Scheduler)
	assert.Equal(t, "/root/cdk/kubeconfig", p.Kubelet)
	assert.Equal(t, "/root/cdk/kubeproxyconfig", p.Proxy)
}
