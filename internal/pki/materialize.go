package pki

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/johnbendi/kubeplane/internal/etcd"
)

// Materializer writes issued credential material to the local filesystem.
// All writes are unconditional overwrites so drifted files self-heal; write
// failures are fatal for the pass because dependent services read these
// paths directly.
type Materializer struct {
	dir string
}

// NewMaterializer returns a Materializer rooted at dir (created on demand).
func NewMaterializer(dir string) *Materializer {
	return &Materializer{dir: dir}
}

// Path locations within the materializer directory.
func (m *Materializer) CAPath() string             { return filepath.Join(m.dir, "ca.crt") }
func (m *Materializer) ClientCertPath() string     { return filepath.Join(m.dir, "client.crt") }
func (m *Materializer) ClientKeyPath() string      { return filepath.Join(m.dir, "client.key") }
func (m *Materializer) ServerCertPath() string     { return filepath.Join(m.dir, "server.crt") }
func (m *Materializer) ServerKeyPath() string      { return filepath.Join(m.dir, "server.key") }
func (m *Materializer) EtcdCAPath() string         { return filepath.Join(m.dir, "etcd-ca.crt") }
func (m *Materializer) EtcdCertPath() string       { return filepath.Join(m.dir, "etcd-client.crt") }
func (m *Materializer) EtcdKeyPath() string        { return filepath.Join(m.dir, "etcd-client.key") }
func (m *Materializer) ServiceAccountKey() string  { return filepath.Join(m.dir, "serviceaccount.key") }

// WriteCertificates persists the CA and this node's client and server pairs.
func (m *Materializer) WriteCertificates(ca string, client, server CertPair) error {
	files := map[string]string{
		m.CAPath():         ca,
		m.ClientCertPath(): client.Cert,
		m.ClientKeyPath():  client.Key,
		m.ServerCertPath(): server.Cert,
		m.ServerKeyPath():  server.Key,
	}
	return m.writeAll(files)
}

// WriteEtcdCredentials persists the etcd client credentials.
func (m *Materializer) WriteEtcdCredentials(creds etcd.Credentials) error {
	files := map[string]string{
		m.EtcdCAPath():   creds.CA,
		m.EtcdCertPath(): creds.Cert,
		m.EtcdKeyPath():  creds.Key,
	}
	return m.writeAll(files)
}

// WriteServiceAccountKey persists the service-account signing key.
func (m *Materializer) WriteServiceAccountKey(key string) error {
	return m.writeAll(map[string]string{m.ServiceAccountKey(): key})
}

func (m *Materializer) writeAll(files map[string]string) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.dir, err)
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
