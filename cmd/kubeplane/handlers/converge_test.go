package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnbendi/kubeplane/internal/services"
)

const readyRelations = `
leader: true
certificateAuthority:
  ca: root-pem
  clientCerts:
    system:kube-apiserver:
      cert: client-pem
      key: client-key
  serverCerts:
    10.0.0.5:
      cert: server-pem
      key: server-key
etcd:
  connectionString: https://10.0.0.10:2379
  ca: etcd-ca
  cert: etcd-cert
  key: etcd-key
containerRuntime:
  socket: unix:///run/containerd/containerd.sock
cni:
  cidr: 10.1.0.0/16
kubeControl:
  ingressAddresses: [10.0.0.5]
`

func testOptions(t *testing.T) ConvergeOptions {
	t.Helper()
	dir := t.TempDir()
	return ConvergeOptions{
		DataDir:       filepath.Join(dir, "data"),
		KubeHome:      filepath.Join(dir, "home"),
		RelationsPath: filepath.Join(dir, "relations.yaml"),
	}
}

func quietLogger(t *testing.T) {
	t.Helper()
	orig := newLogger
	newLogger = func() (logr.Logger, func()) { return logr.Discard(), func() {} }
	t.Cleanup(func() { newLogger = orig })
}

func staticNode(t *testing.T) {
	t.Helper()
	orig := localNodeFacts
	localNodeFacts = func() services.NodeFacts {
		return services.StaticFacts{
			Host:   "node-1",
			Fqdn:   "node-1.example.com",
			Public: "10.0.0.5",
			Binds:  []string{"10.0.0.5"},
		}
	}
	t.Cleanup(func() { localNodeFacts = orig })
}

func TestConvergeSinglePassReachesReady(t *testing.T) {
	quietLogger(t)
	staticNode(t)
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.RelationsPath, []byte(readyRelations), 0o600))

	require.NoError(t, Converge(context.Background(), opts))

	record, err := os.ReadFile(filepath.Join(opts.DataDir, lastStatusFile))
	require.NoError(t, err)
	assert.Contains(t, string(record), "status: ready")

	assert.FileExists(t, filepath.Join(opts.KubeHome, "config"))
	assert.FileExists(t, filepath.Join(opts.DataDir, "adminconfig"))
	assert.FileExists(t, filepath.Join(opts.DataDir, knownTokensFile))
	assert.FileExists(t, filepath.Join(opts.DataDir, "pki", "ca.crt"))
}

func TestConvergeRecordsBlockedOutcome(t *testing.T) {
	quietLogger(t)
	staticNode(t)
	opts := testOptions(t)

	require.NoError(t, Converge(context.Background(), opts))

	record, err := os.ReadFile(filepath.Join(opts.DataDir, lastStatusFile))
	require.NoError(t, err)
	assert.Contains(t, string(record), "missing relation to certificate authority")
	assert.Contains(t, string(record), "level: blocked")
}

func TestMetricsServerServesRegistry(t *testing.T) {
	quietLogger(t)
	staticNode(t)
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.RelationsPath, []byte(readyRelations), 0o600))
	require.NoError(t, Converge(context.Background(), opts))

	srv := newMetricsServer("127.0.0.1:0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "kubeplane_converge_node_ready")
	assert.Contains(t, body, "kubeplane_converge_passes_total")
	assert.Contains(t, body, "kubeplane_authwebhook_tokens_issued_total")
}

func TestConvergeRejectsBadConfig(t *testing.T) {
	quietLogger(t)
	staticNode(t)
	opts := testOptions(t)
	opts.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")

	err := Converge(context.Background(), opts)
	require.Error(t, err)
}
