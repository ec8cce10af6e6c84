// Package secrets decrypts named credentials used by nodes, such as provider API keys.
package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

var (
	// ErrSecretNotFound indicates no secret exists for the given id.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretDisabled indicates the secret exists but may not be used.
	ErrSecretDisabled = errors.New("secret disabled")

	// ErrCrypto indicates the secret could not be decrypted.
	ErrCrypto = errors.New("secret decryption failed")
)

// Vault resolves a secret id to its plaintext.
type Vault interface {
	Decrypt(ctx context.Context, id string) (string, error)
}

// Secret is an encrypted value as held by the vault.
type Secret struct {
	Ciphertext string
	Disabled   bool
}

// AESVault keeps AES-GCM encrypted secrets in memory. Ciphertexts are
// base64(nonce || sealed).
type AESVault struct {
	mu      sync.RWMutex
	aead    cipher.AEAD
	secrets map[string]Secret
}

// NewAESVault creates a vault for a 16, 24 or 32 byte key.
func NewAESVault(key []byte) (*AESVault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCrypto, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCrypto, err)
	}

	return &AESVault{
		aead:    aead,
		secrets: make(map[string]Secret),
	}, nil
}

// NewAESVaultFromEnv reads a base64 key from keyVar and every variable named
// prefix+ID as the ciphertext of secret id (lower cased).
func NewAESVaultFromEnv(keyVar, prefix string) (*AESVault, error) {
	rawKey := os.Getenv(keyVar)
	if rawKey == "" {
		return nil, fmt.Errorf("%s is not set", keyVar)
	}

	key, err := base64.StdEncoding.DecodeString(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key encoding: %w", ErrCrypto, err)
	}

	vault, err := NewAESVault(key)
	if err != nil {
		return nil, err
	}

	for _, env := range os.Environ() {
		name, value, _ := strings.Cut(env, "=")
		if name == keyVar || !strings.HasPrefix(name, prefix) {
			continue
		}

		vault.Put(strings.ToLower(strings.TrimPrefix(name, prefix)), Secret{Ciphertext: value})
	}

	return vault, nil
}

// Put stores or replaces a secret.
func (v *AESVault) Put(id string, secret Secret) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.secrets[id] = secret
}

// Encrypt seals plaintext into the ciphertext format Decrypt expects.
func (v *AESVault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())

	_, err := rand.Read(nonce)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCrypto, err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (v *AESVault) Decrypt(ctx context.Context, id string) (string, error) {
	v.mu.RLock()
	secret, ok := v.secrets[id]
	v.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, id)
	}

	if secret.Disabled {
		return "", fmt.Errorf("%w: %s", ErrSecretDisabled, id)
	}

	raw, err := base64.StdEncoding.DecodeString(secret.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCrypto, id, err)
	}

	nonceSize := v.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: %s: ciphertext too short", ErrCrypto, id)
	}

	plaintext, err := v.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCrypto, id, err)
	}

	return string(plaintext), nil
}
