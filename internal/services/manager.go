// Package services drives the control-plane service configuration on the
// local node: API server, controller manager, scheduler, kubelet, and proxy.
//
// The Manager interface is the narrow surface the convergence engine
// depends on; every configure call is a pure render of already-resolved
// facts and is safe to repeat. FileManager is the production implementation
// that lands per-service argument files on disk.
package services

import "context"

// APIServerConfig are the resolved facts rendered into the API server
// configuration.
type APIServerConfig struct {
	AdvertiseAddress      string            `json:"advertiseAddress"`
	AuthorizationMode     string            `json:"authorizationMode"`
	AllowPrivileged       bool              `json:"allowPrivileged"`
	ServiceCIDR           string            `json:"serviceCIDR"`
	ClusterCIDR           string            `json:"clusterCIDR,omitempty"`
	EtcdConnectionString  string            `json:"etcdConnectionString"`
	AuthWebhookConfFile   string            `json:"authWebhookConfFile"`
	AuditPolicy           string            `json:"auditPolicy,omitempty"`
	AuditWebhookConf      string            `json:"auditWebhookConf,omitempty"`
	ExternalCloudProvider string            `json:"externalCloudProvider,omitempty"`
	ExtraArgs             map[string]string `json:"extraArgs,omitempty"`
}

// ControllerManagerConfig are the facts rendered into the controller
// manager configuration.
type ControllerManagerConfig struct {
	ClusterName           string            `json:"clusterName"`
	ClusterCIDR           string            `json:"clusterCIDR,omitempty"`
	ServiceCIDR           string            `json:"serviceCIDR"`
	Kubeconfig            string            `json:"kubeconfig"`
	ExternalCloudProvider string            `json:"externalCloudProvider,omitempty"`
	ExtraArgs             map[string]string `json:"extraArgs,omitempty"`
}

// SchedulerConfig are the facts rendered into the scheduler configuration.
type SchedulerConfig struct {
	Kubeconfig string            `json:"kubeconfig"`
	ExtraArgs  map[string]string `json:"extraArgs,omitempty"`
}

// KubeletConfig are the facts rendered into the kubelet configuration.
type KubeletConfig struct {
	ContainerRuntimeEndpoint string            `json:"containerRuntimeEndpoint"`
	DNSDomain                string            `json:"dnsDomain"`
	DNSAddress               string            `json:"dnsAddress,omitempty"`
	Kubeconfig               string            `json:"kubeconfig"`
	NodeIP                   string            `json:"nodeIP"`
	Registry                 string            `json:"registry"`
	Taints                   []string          `json:"taints,omitempty"`
	ExternalCloudProvider    string            `json:"externalCloudProvider,omitempty"`
	ExtraArgs                map[string]string `json:"extraArgs,omitempty"`
	ExtraConfig              map[string]any    `json:"extraConfig,omitempty"`
}

// ProxyConfig are the facts rendered into the proxy configuration.
type ProxyConfig struct {
	ClusterCIDR           string            `json:"clusterCIDR,omitempty"`
	Kubeconfig            string            `json:"kubeconfig"`
	ExternalCloudProvider string            `json:"externalCloudProvider,omitempty"`
	ExtraArgs             map[string]string `json:"extraArgs,omitempty"`
	ExtraConfig           map[string]any    `json:"extraConfig,omitempty"`
}

// Manager installs and configures the node's control-plane services. Every
// method is idempotent; repeat calls with unchanged inputs change nothing.
type Manager interface {
	// Install ensures the node software from the given channel is
	// present. No-op when already installed.
	Install(ctx context.Context, channel string) error
	// EnsureRestartAlways sets the service units to restart on failure.
	EnsureRestartAlways() error

	ConfigureAPIServer(cfg APIServerConfig) error
	ConfigureControllerManager(cfg ControllerManagerConfig) error
	ConfigureScheduler(cfg SchedulerConfig) error
	ConfigureKubelet(cfg KubeletConfig) error
	ConfigureProxy(cfg ProxyConfig) error

	// ConfigureDefaultCNI records which CNI conf file the node treats as
	// the default. An empty name clears the selection.
	ConfigureDefaultCNI(confFile string) error

	// ConfigureKernelParameters enforces the given sysctl values.
	ConfigureKernelParameters(params map[string]string) error
}

// NodeFacts exposes the local node's identity and addresses. Recomputed
// facts, not cached state.
type NodeFacts interface {
	Hostname() string
	FQDN() string
	PublicAddress() string
	BindAddresses() []string
}

// SandboxImage returns the pause container image pinned from the configured
// registry.
func SandboxImage(registry string) string {
	return registry + "/pause:3.10"
}
