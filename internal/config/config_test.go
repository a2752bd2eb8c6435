package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"10.152.183.0/24"}, cfg.ServiceCIDRs())
	assert.Equal(t, "cluster.local", cfg.DNSDomain)
	assert.True(t, cfg.AllowPrivileged)
}

func TestLoadFromBytesOverridesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
service-cidr: "10.96.0.0/12,fd00::/108"
dns-domain: internal.example
allow-privileged: false
extra-sans: "foo.example bar.example"
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"10.96.0.0/12", "fd00::/108"}, cfg.ServiceCIDRs())
	assert.Equal(t, "internal.example", cfg.DNSDomain)
	assert.False(t, cfg.AllowPrivileged)
	assert.Equal(t, []string{"foo.example", "bar.example"}, cfg.ExtraSANList())
	// Untouched fields keep defaults.
	assert.Equal(t, "Node,RBAC", cfg.AuthorizationMode)
}

func TestLoadFromBytesRejectsBadCIDR(t *testing.T) {
	_, err := LoadFromBytes([]byte(`service-cidr: "not-a-cidr"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service-cidr")
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeplane.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dns-domain: file.example\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file.example", cfg.DNSDomain)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestTaints(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []corev1.Taint
		wantErr bool
	}{
		{
			name: "key value effect",
			spec: "node-role.kubernetes.io/control-plane=true:NoSchedule",
			want: []corev1.Taint{{
				Key:    "node-role.kubernetes.io/control-plane",
				Value:  "true",
				Effect: corev1.TaintEffectNoSchedule,
			}},
		},
		{
			name: "key only",
			spec: "dedicated:NoExecute",
			want: []corev1.Taint{{Key: "dedicated", Effect: corev1.TaintEffectNoExecute}},
		},
		{
			name: "multiple",
			spec: "a:NoSchedule b:PreferNoSchedule",
			want: []corev1.Taint{
				{Key: "a", Effect: corev1.TaintEffectNoSchedule},
				{Key: "b", Effect: corev1.TaintEffectPreferNoSchedule},
			},
		},
		{name: "empty", spec: "", want: nil},
		{name: "missing effect", spec: "key=value", wantErr: true},
		{name: "bad effect", spec: "key:Sometimes", wantErr: true},
		{name: "empty key", spec: "=v:NoSchedule", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.RegisterWithTaints = tt.spec
			got, err := cfg.Taints()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSysctlValues(t *testing.T) {
	cfg := Default()
	values, err := cfg.SysctlValues()
	require.NoError(t, err)
	assert.Equal(t, "1", values["net.ipv4.conf.all.forwarding"])
	assert.Equal(t, "262144", values["vm.max_map_count"])
}

func TestExtraConfigBlobs(t *testing.T) {
	cfg := Default()
	cfg.KubeletExtraConfig = "evictionHard:\n  memory.available: 200Mi\n"
	m, err := cfg.KubeletExtraConfigMap()
	require.NoError(t, err)
	assert.Contains(t, m, "evictionHard")

	cfg.ProxyExtraConfig = "mode: [broken"
	_, err = cfg.ProxyExtraConfigMap()
	assert.Error(t, err)

	cfg.ProxyExtraConfig = ""
	m, err = cfg.ProxyExtraConfigMap()
	require.NoError(t, err)
	assert.Empty(t, m)
}
