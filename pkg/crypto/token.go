package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32

// Vault encrypts OAuth refresh tokens before they reach the database.
type Vault struct {
	key [keySize]byte
}

// NewVault creates a Vault from a base64-encoded 32-byte key.
// Generate one with `go run ./cmd/genkey`.
func NewVault(encodedKey string) (*Vault, error) {
	if encodedKey == "" {
		return nil, errors.New("ENCRYPTION_KEY must be set")
	}

	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(raw))
	}

	v := &Vault{}
	copy(v.key[:], raw)
	return v, nil
}

// Encrypt seals a token for storage. Empty input stays empty so optional
// tokens round-trip without special cases.
func (v *Vault) Encrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &v.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a stored token.
func (v *Vault) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted token: %w", err)
	}
	if len(raw) < 24 {
		return "", errors.New("encrypted token too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &v.key)
	if !ok {
		return "", errors.New("failed to decrypt token")
	}
	return string(plain), nil
}

// GenerateKey returns a fresh base64-encoded vault key.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
