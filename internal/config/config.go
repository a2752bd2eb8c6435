package config

import (
	"fmt"
	"net"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
)

// Config holds the operator-facing options for one control-plane node.
type Config struct {
	// Channel selects the distribution channel for the node software.
	Channel string `yaml:"channel"`

	// ServiceCIDR is a comma-separated list of CIDRs for cluster services.
	ServiceCIDR string `yaml:"service-cidr"`

	// DNSDomain is the cluster DNS domain, used in SANs and kubelet config.
	DNSDomain string `yaml:"dns-domain"`

	// ExtraSANs is a space-separated list of additional names to include
	// in the API server certificate.
	ExtraSANs string `yaml:"extra-sans"`

	AuthorizationMode    string `yaml:"authorization-mode"`
	AllowPrivileged      bool   `yaml:"allow-privileged"`
	AuditPolicy          string `yaml:"audit-policy"`
	AuditWebhookConfig   string `yaml:"audit-webhook-config"`
	AuthnWebhookEndpoint string `yaml:"authn-webhook-endpoint"`

	ImageRegistry string `yaml:"image-registry"`
	DefaultCNI    string `yaml:"default-cni"`

	// RegisterWithTaints is a space-separated list of key[=value]:effect
	// taints applied when the node registers.
	RegisterWithTaints string `yaml:"register-with-taints"`

	// Sysctl is a YAML map of kernel parameters to enforce.
	Sysctl string `yaml:"sysctl"`

	APIExtraArgs               map[string]string `yaml:"api-extra-args"`
	ControllerManagerExtraArgs map[string]string `yaml:"controller-manager-extra-args"`
	SchedulerExtraArgs         map[string]string `yaml:"scheduler-extra-args"`
	KubeletExtraArgs           map[string]string `yaml:"kubelet-extra-args"`
	ProxyExtraArgs             map[string]string `yaml:"proxy-extra-args"`

	// KubeletExtraConfig and ProxyExtraConfig are YAML blobs merged into
	// the respective component configuration files.
	KubeletExtraConfig string `yaml:"kubelet-extra-config"`
	ProxyExtraConfig   string `yaml:"proxy-extra-config"`
}

// Default returns a Config with the documented defaults applied.
func Default() *Config {
	return &Config{
		Channel:           "stable",
		ServiceCIDR:       "10.152.183.0/24",
		DNSDomain:         "cluster.local",
		AuthorizationMode: "Node,RBAC",
		AllowPrivileged:   true,
		ImageRegistry:     "rocks.canonical.com/cdk",
		Sysctl:            defaultSysctl,
	}
}

const defaultSysctl = `
net.ipv4.conf.all.forwarding: 1
net.ipv4.neigh.default.gc_thresh1: 128
net.ipv4.neigh.default.gc_thresh2: 28672
net.ipv4.neigh.default.gc_thresh3: 32768
vm.max_map_count: 262144
`

// ServiceCIDRs returns the configured service CIDRs split and trimmed.
func (c *Config) ServiceCIDRs() []string {
	var cidrs []string
	for _, s := range strings.Split(c.ServiceCIDR, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cidrs = append(cidrs, s)
		}
	}
	return cidrs
}

// ExtraSANList returns the extra SANs split on whitespace.
func (c *Config) ExtraSANList() []string {
	return strings.Fields(c.ExtraSANs)
}

// Taints parses register-with-taints into API taint objects.
// Each entry has the form key[=value]:effect.
func (c *Config) Taints() ([]corev1.Taint, error) {
	var taints []corev1.Taint
	for _, spec := range strings.Fields(c.RegisterWithTaints) {
		taint, err := parseTaint(spec)
		if err != nil {
			return nil, err
		}
		taints = append(taints, taint)
	}
	return taints, nil
}

func parseTaint(spec string) (corev1.Taint, error) {
	keyValue, effect, ok := strings.Cut(spec, ":")
	if !ok || effect == "" {
		return corev1.Taint{}, fmt.Errorf("invalid taint %q: expected key[=value]:effect", spec)
	}

	switch corev1.TaintEffect(effect) {
	case corev1.TaintEffectNoSchedule, corev1.TaintEffectPreferNoSchedule, corev1.TaintEffectNoExecute:
	default:
		return corev1.Taint{}, fmt.Errorf("invalid taint effect %q in %q", effect, spec)
	}

	key, value, _ := strings.Cut(keyValue, "=")
	if key == "" {
		return corev1.Taint{}, fmt.Errorf("invalid taint %q: empty key", spec)
	}

	return corev1.Taint{
		Key:    key,
		Value:  value,
		Effect: corev1.TaintEffect(effect),
	}, nil
}

// SysctlValues parses the sysctl blob into a parameter map.
func (c *Config) SysctlValues() (map[string]string, error) {
	return yamlStringMap(c.Sysctl)
}

// KubeletExtraConfigMap parses the kubelet extra-config blob.
func (c *Config) KubeletExtraConfigMap() (map[string]any, error) {
	return yamlMap(c.KubeletExtraConfig)
}

// ProxyExtraConfigMap parses the proxy extra-config blob.
func (c *Config) ProxyExtraConfigMap() (map[string]any, error) {
	return yamlMap(c.ProxyExtraConfig)
}

func yamlMap(blob string) (map[string]any, error) {
	if strings.TrimSpace(blob) == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(blob), &m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML blob: %w", err)
	}
	return m, nil
}

func yamlStringMap(blob string) (map[string]string, error) {
	raw, err := yamlMap(blob)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = fmt.Sprintf("%v", v)
	}
	return m, nil
}

// Validate checks the configuration for errors that would otherwise surface
// midway through a convergence pass.
func (c *Config) Validate() error {
	if len(c.ServiceCIDRs()) == 0 {
		return fmt.Errorf("service-cidr is required")
	}
	for _, cidr := range c.ServiceCIDRs() {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("invalid service-cidr %q: %w", cidr, err)
		}
	}

	if c.DNSDomain == "" {
		return fmt.Errorf("dns-domain is required")
	}
	if c.AuthorizationMode == "" {
		return fmt.Errorf("authorization-mode is required")
	}

	if _, err := c.Taints(); err != nil {
		return fmt.Errorf("register-with-taints validation failed: %w", err)
	}
	if _, err := c.SysctlValues(); err != nil {
		return fmt.Errorf("sysctl validation failed: %w", err)
	}
	if _, err := c.KubeletExtraConfigMap(); err != nil {
		return fmt.Errorf("kubelet-extra-config validation failed: %w", err)
	}
	if _, err := c.ProxyExtraConfigMap(); err != nil {
		return fmt.Errorf("proxy-extra-config validation failed: %w", err)
	}

	return nil
}
