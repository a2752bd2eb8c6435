package relation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnbendi/kubeplane/internal/kubecontrol"
	"github.com/johnbendi/kubeplane/internal/lb"
	"github.com/johnbendi/kubeplane/internal/pki"
)

func TestLoadMissingFileYieldsEmptySnapshot(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "relations.yaml"))
	require.NoError(t, err)

	assert.False(t, f.IsLeader())
	assert.False(t, f.CertAuthority().Connected())
	assert.False(t, f.Etcd().Connected())
	assert.False(t, f.ExternalLB().Available())
	assert.False(t, f.Runtime().Connected())
	assert.Empty(t, f.DNS().Address())
	assert.Empty(t, f.CNI().CIDR())
}

func TestLoadEstablishedRelations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.yaml")
	content := `
leader: true
certificateAuthority:
  ca: root-pem
  clientCerts:
    system:kube-apiserver:
      cert: client-pem
      key: client-key
etcd:
  connectionString: https://10.0.0.10:2379
  ca: etcd-ca
  cert: etcd-cert
  key: etcd-key
containerRuntime:
  socket: unix:///run/containerd/containerd.sock
dns:
  address: 10.152.183.10
kubeControl:
  ingressAddresses: [10.0.0.5]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	assert.True(t, f.IsLeader())

	ca := f.CertAuthority()
	assert.True(t, ca.Connected())
	assert.Equal(t, "root-pem", ca.CA())
	pair, ok := ca.ClientCert(pki.APIServerClientIdentity)
	require.True(t, ok)
	assert.Equal(t, "client-pem", pair.Cert)
	_, ok = ca.ServerCert("10.0.0.5")
	assert.False(t, ok)

	assert.True(t, f.Etcd().Connected())
	assert.True(t, f.Etcd().Ready())
	assert.Equal(t, "https://10.0.0.10:2379", f.Etcd().ConnectionString())

	assert.Equal(t, "unix:///run/containerd/containerd.sock", f.Runtime().Socket())
	assert.Equal(t, "10.152.183.10", f.DNS().Address())
	assert.Equal(t, []string{"10.0.0.5"}, f.KubeControl().IngressAddresses())
}

func TestOutboundWritesPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("certificateAuthority: {}\nexternalLoadBalancer: {}\n"), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, f.CertAuthority().RequestServerCert("10.0.0.5", []string{"127.0.0.1", "10.0.0.5"}))
	require.NoError(t, lb.EnsureAPIServerFrontend(f.ExternalLB(), "api-server-external", 443, 6443, true))
	require.NoError(t, f.KubeControl().SignAuthRequest(
		kubecontrol.AuthRequest{RequesterID: "node/2"},
		kubecontrol.CredentialBundle{ClientToken: "c", KubeletToken: "k", ProxyToken: "p"},
	))

	reloaded, err := Load(path)
	require.NoError(t, err)
	snap := reloaded.Snapshot()

	require.NotNil(t, snap.CertificateAuthority)
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.5"}, snap.CertificateAuthority.ServerRequests["10.0.0.5"])

	require.NotNil(t, snap.ExternalLB)
	req := snap.ExternalLB.Requests["api-server-external"]
	assert.Equal(t, map[int]int{443: 6443}, req.PortMapping)

	require.NotNil(t, snap.KubeControl)
	assert.Equal(t, "k", snap.KubeControl.Signed["node/2"].KubeletToken)
}

func TestPeerStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.yaml")
	f, err := Load(path)
	require.NoError(t, err)

	store := f.PeerStore()
	require.NoError(t, store.Set("cluster-name", "kubernetes-abcd"))

	value, err := store.Get("cluster-name")
	require.NoError(t, err)
	assert.Equal(t, "kubernetes-abcd", value)

	reloaded, err := Load(path)
	require.NoError(t, err)
	value, err = reloaded.PeerStore().Get("cluster-name")
	require.NoError(t, err)
	assert.Equal(t, "kubernetes-abcd", value)

	// Clearing removes the entry entirely.
	require.NoError(t, store.Set("cluster-name", ""))
	value, err = store.Get("cluster-name")
	require.NoError(t, err)
	assert.Empty(t, value)
}
