// Package keygen generates the RSA key material used to sign and verify
// service-account tokens. The key is PEM-encoded PKCS#1, matching what the
// API server and controller manager expect on disk.
package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ServiceAccountKeyBits is the key size for generated signing keys.
const ServiceAccountKeyBits = 2048

// GenerateServiceAccountKey generates a new RSA signing key and returns it
// PEM-encoded.
func GenerateServiceAccountKey() ([]byte, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, ServiceAccountKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}
	return pem.EncodeToMemory(&block), nil
}

// ValidateServiceAccountKey reports whether data holds a parseable
// PEM-encoded RSA private key.
func ValidateServiceAccountKey(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil {
		return fmt.Errorf("no PEM block found in key data")
	}
	if _, err := x509.ParsePKCS1PrivateKey(block.Bytes); err != nil {
		return fmt.Errorf("failed to parse RSA private key: %w", err)
	}
	return nil
}
