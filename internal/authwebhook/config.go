package authwebhook

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// webhookConfig mirrors the kubeconfig-shaped file the API server's
// --authentication-token-webhook-config-file flag expects.
type webhookConfig struct {
	APIVersion     string           `json:"apiVersion"`
	Kind           string           `json:"kind"`
	Clusters       []webhookCluster `json:"clusters"`
	Users          []webhookUser    `json:"users"`
	CurrentContext string           `json:"current-context"`
	Contexts       []webhookContext `json:"contexts"`
}

type webhookCluster struct {
	Name    string `json:"name"`
	Cluster struct {
		Server string `json:"server"`
	} `json:"cluster"`
}

type webhookUser struct {
	Name string   `json:"name"`
	User struct{} `json:"user"`
}

type webhookContext struct {
	Name    string `json:"name"`
	Context struct {
		Cluster string `json:"cluster"`
		User    string `json:"user"`
	} `json:"context"`
}

// DefaultEndpoint is the local webhook authenticator endpoint used when no
// custom endpoint is configured.
const DefaultEndpoint = "https://127.0.0.1:5000/v1beta1"

// WriteWebhookConfig renders the authentication webhook configuration into
// dir and returns the file path. customEndpoint overrides the local
// authenticator endpoint when set.
func WriteWebhookConfig(dir, customEndpoint string) (string, error) {
	endpoint := DefaultEndpoint
	if customEndpoint != "" {
		endpoint = customEndpoint
	}

	cfg := webhookConfig{
		APIVersion:     "v1",
		Kind:           "Config",
		CurrentContext: "webhook",
	}
	cluster := webhookCluster{Name: "auth-webhook"}
	cluster.Cluster.Server = endpoint
	cfg.Clusters = []webhookCluster{cluster}
	cfg.Users = []webhookUser{{Name: "apiserver"}}
	wc := webhookContext{Name: "webhook"}
	wc.Context.Cluster = "auth-webhook"
	wc.Context.User = "apiserver"
	cfg.Contexts = []webhookContext{wc}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal webhook config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, "webhook-config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
