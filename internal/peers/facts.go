package peers

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/johnbendi/kubeplane/internal/status"
	"github.com/johnbendi/kubeplane/internal/util/keygen"
)

// TokenGenerator produces a random token suitable as a cluster-unique
// suffix. It must be cryptographically adequate but the value is not a
// secret.
type TokenGenerator func() (string, error)

// Facts resolves the shared cluster facts, creating them exactly once
// cluster-wide on the leader.
type Facts struct {
	store      Store
	legacy     LegacyStore
	leadership Leadership
	generate   TokenGenerator
	log        logr.Logger
}

// NewFacts wires a fact resolver over the given collaborators.
func NewFacts(store Store, legacy LegacyStore, leadership Leadership, generate TokenGenerator, log logr.Logger) *Facts {
	return &Facts{
		store:      store,
		legacy:     legacy,
		leadership: leadership,
		generate:   generate,
		log:        log,
	}
}

// ClusterName returns the cluster-wide name, resolving it if this node is
// the leader. Returns "" and records a waiting condition when the name is
// not available yet. The fast path on an already-set name makes the
// create/migrate branches run at most once cluster-wide.
func (f *Facts) ClusterName(rec *status.Recorder) (string, error) {
	name, err := f.store.Get(KeyClusterName)
	if err != nil {
		return "", fmt.Errorf("failed to read cluster name: %w", err)
	}
	if name != "" {
		return name, nil
	}

	if !f.leadership.IsLeader() {
		rec.Add(status.Waiting("cluster name from leader"))
		return "", nil
	}

	// Migrate the name minted by the previous protocol version, if any.
	name, err = f.migrate(LegacyClusterTag, KeyClusterName)
	if err != nil {
		return "", err
	}
	if name != "" {
		f.log.Info("migrated cluster name from legacy store", "name", name)
		return name, nil
	}

	token, err := f.generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate cluster name: %w", err)
	}
	name = fmt.Sprintf("kubernetes-%s", strings.ToLower(token))
	if err := f.store.Set(KeyClusterName, name); err != nil {
		return "", fmt.Errorf("failed to store cluster name: %w", err)
	}
	f.log.Info("created cluster name", "name", name)
	return name, nil
}

// SigningKey returns the PEM-encoded service-account signing key, resolving
// it if this node is the leader. Returns "" and records a waiting condition
// when the key is not available yet.
func (f *Facts) SigningKey(rec *status.Recorder) (string, error) {
	key, err := f.store.Get(KeySigningKey)
	if err != nil {
		return "", fmt.Errorf("failed to read service account key: %w", err)
	}
	if key != "" {
		return key, nil
	}

	if !f.leadership.IsLeader() {
		rec.Add(status.Waiting("service account key from leader"))
		return "", nil
	}

	key, err = f.migrate(LegacySigningKey, KeySigningKey)
	if err != nil {
		return "", err
	}
	if key != "" {
		f.log.Info("migrated service account key from legacy store")
		return key, nil
	}

	generated, err := keygen.GenerateServiceAccountKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate service account key: %w", err)
	}
	key = string(generated)
	if err := f.store.Set(KeySigningKey, key); err != nil {
		return "", fmt.Errorf("failed to store service account key: %w", err)
	}
	f.log.Info("created service account key")
	return key, nil
}

// migrate copies a legacy value into the replicated store and clears the
// legacy record. Returns "" when there is nothing to migrate. Callable any
// number of times; once migrated, the fast path in the callers intercepts
// every later pass.
func (f *Facts) migrate(legacyKey, key string) (string, error) {
	value, err := f.legacy.Get(legacyKey)
	if err != nil {
		return "", fmt.Errorf("failed to read legacy %s: %w", legacyKey, err)
	}
	if value == "" {
		return "", nil
	}

	if err := f.store.Set(key, value); err != nil {
		return "", fmt.Errorf("failed to migrate %s: %w", legacyKey, err)
	}
	if err := f.legacy.Set(legacyKey, ""); err != nil {
		return "", fmt.Errorf("failed to clear legacy %s: %w", legacyKey, err)
	}
	return value, nil
}
