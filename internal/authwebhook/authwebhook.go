// Package authwebhook manages the bearer tokens consumed by the API server's
// authentication webhook.
//
// Tokens are minted for named identities (uid, username, groups) and stored
// in a known-tokens CSV file read by the webhook authenticator. Minting is
// idempotent per identity: an identity that already holds a token keeps it,
// so repeated convergence passes leave the file byte-identical and never
// invalidate tokens already handed out to other nodes.
package authwebhook

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TokenLength is the length of generated bearer tokens.
const TokenLength = 32

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Authority mints and looks up bearer tokens for named identities.
//
// Contract assumed by the convergence engine: re-minting an identity that
// already holds a token returns a token the authenticator still accepts and
// does not invalidate copies already distributed to other nodes.
type Authority interface {
	// CreateToken returns the token for the identity, minting one if the
	// identity has none yet.
	CreateToken(uid, username string, groups []string) (string, error)
	// GetToken returns the existing token for username, or "" if none.
	GetToken(username string) (string, error)
}

// GenerateToken returns a random token of TokenLength characters. The
// source is cryptographically adequate; tokens double as cluster-unique
// suffixes in non-secret contexts.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
