package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrSigningKeyUnavailable = errors.New("signing key unavailable in this environment")
	ErrKeyNotFound           = errors.New("key not found")
)

// KeyProvider supplies the RSA material used to sign and verify tokens.
type KeyProvider interface {
	GetSigningKey() (*rsa.PrivateKey, error)
	GetVerificationKey(kid string) (*rsa.PublicKey, error)
	// SigningKID identifies the key the provider signs with.
	SigningKID() string
}

// DirKeyProvider loads PEM-encoded RSA keys from a directory. The file
// name without extension becomes the kid. The first private key found is
// used for signing; remaining files only contribute verification keys.
type DirKeyProvider struct {
	keys       map[string]*rsa.PublicKey
	signingKey *rsa.PrivateKey
	signingKID string
}

// NewDirKeyProvider reads every PEM file in keyDir.
func NewDirKeyProvider(keyDir string) (*DirKeyProvider, error) {
	files, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("read key directory: %w", err)
	}

	provider := &DirKeyProvider{
		keys: make(map[string]*rsa.PublicKey),
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		path := filepath.Join(keyDir, file.Name())
		keyData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read key file %s: %w", path, err)
		}

		block, _ := pem.Decode(keyData)
		if block == nil {
			return nil, fmt.Errorf("decode PEM block from %s", path)
		}

		kid := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))

		if private := parsePrivateKey(block.Bytes); private != nil {
			if provider.signingKey == nil {
				provider.signingKey = private
				provider.signingKID = kid
			}
			provider.keys[kid] = &private.PublicKey
			continue
		}

		if public := parsePublicKey(block.Bytes); public != nil {
			provider.keys[kid] = public
			continue
		}

		return nil, fmt.Errorf("parse key from file %s", path)
	}

	if provider.signingKey == nil {
		return nil, errors.New("no private key found for signing")
	}

	return provider, nil
}

func parsePrivateKey(der []byte) *rsa.PrivateKey {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey
		}
	}
	return nil
}

func parsePublicKey(der []byte) *rsa.PublicKey {
	if key, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return key
	}
	if key, err := x509.ParsePKIXPublicKey(der); err == nil {
		if rsaKey, ok := key.(*rsa.PublicKey); ok {
			return rsaKey
		}
	}
	return nil
}

// GetSigningKey returns the private key used for signing tokens.
func (p *DirKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	return p.signingKey, nil
}

// GetVerificationKey returns the public key registered under kid.
func (p *DirKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	key, ok := p.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	return key, nil
}

// SigningKID returns the kid of the active signing key.
func (p *DirKeyProvider) SigningKID() string {
	return p.signingKID
}

// VaultKeyProvider is the production stand-in that would fetch keys from
// a secret manager. Signing through it is not supported.
type VaultKeyProvider struct{}

// NewVaultKeyProvider creates a new VaultKeyProvider.
func NewVaultKeyProvider() (*VaultKeyProvider, error) {
	return &VaultKeyProvider{}, nil
}

// GetSigningKey always fails; production signing keys never leave the vault.
func (p *VaultKeyProvider) GetSigningKey() (*rsa.PrivateKey, error) {
	return nil, ErrSigningKeyUnavailable
}

// GetVerificationKey would fetch the public key from the trusted source.
func (p *VaultKeyProvider) GetVerificationKey(kid string) (*rsa.PublicKey, error) {
	return nil, fmt.Errorf("verification for kid %s not implemented", kid)
}

// SigningKID returns an empty kid; the vault provider cannot sign.
func (p *VaultKeyProvider) SigningKID() string {
	return ""
}

// NewKeyProvider creates a KeyProvider based on the environment.
func NewKeyProvider(env, keyDir string) (KeyProvider, error) {
	switch env {
	case "production":
		return NewVaultKeyProvider()
	default:
		return NewDirKeyProvider(keyDir)
	}
}
