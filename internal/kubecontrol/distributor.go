package kubecontrol

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/johnbendi/kubeplane/internal/authwebhook"
	"github.com/johnbendi/kubeplane/internal/util/retry"
)

// Standing identities minted on every leader pass.
const (
	AdminUser = "admin"
	ProxyUser = "system:kube-proxy"
)

// Distributor runs the credential-distribution handshake.
type Distributor struct {
	provider  Provider
	authority authwebhook.Authority
	log       logr.Logger
}

// NewDistributor wires a Distributor over the relation and the token
// authority.
func NewDistributor(provider Provider, authority authwebhook.Authority, log logr.Logger) *Distributor {
	return &Distributor{provider: provider, authority: authority, log: log}
}

// Distribute answers all pending join requests when leader, or clears
// published credentials when not. An unreachable authority fails the whole
// step; partially-answered requests are re-answered next pass, which is safe
// because minting the same identity again yields a still-accepted token.
func (d *Distributor) Distribute(ctx context.Context, leader bool) error {
	if !leader {
		if err := d.provider.ClearCreds(); err != nil {
			return fmt.Errorf("failed to clear credentials: %w", err)
		}
		return nil
	}

	clientToken, err := d.mint(ctx, AdminUser, AdminUser, []string{"system:masters"})
	if err != nil {
		return err
	}
	proxyToken, err := d.mint(ctx, "kube-proxy", ProxyUser, nil)
	if err != nil {
		return err
	}

	requests, err := d.provider.AuthRequests()
	if err != nil {
		return fmt.Errorf("failed to list auth requests: %w", err)
	}

	for _, req := range requests {
		kubeletToken, err := d.mint(ctx, req.RequesterID, req.User, []string{req.Group})
		if err != nil {
			return err
		}
		bundle := CredentialBundle{
			ClientToken:  clientToken,
			KubeletToken: kubeletToken,
			ProxyToken:   proxyToken,
		}
		if err := d.provider.SignAuthRequest(req, bundle); err != nil {
			return fmt.Errorf("failed to sign auth request for %s: %w", req.RequesterID, err)
		}
		d.log.Info("signed auth request", "requester", req.RequesterID, "user", req.User)
	}

	return nil
}

func (d *Distributor) mint(ctx context.Context, uid, user string, groups []string) (string, error) {
	var token string
	err := retry.WithExponentialBackoff(ctx, func() error {
		var mintErr error
		token, mintErr = d.authority.CreateToken(uid, user, groups)
		return mintErr
	}, retry.WithMaxRetries(2), retry.WithInitialDelay(200*time.Millisecond))
	if err != nil {
		return "", fmt.Errorf("failed to mint token for %s: %w", user, err)
	}
	return token, nil
}
