package secrets

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *AESVault {
	t.Helper()

	vault, err := NewAESVault(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	return vault
}

func TestAESVault_RoundTrip(t *testing.T) {
	vault := newTestVault(t)

	ciphertext, err := vault.Encrypt("sk-123")
	require.NoError(t, err)

	vault.Put("openai", Secret{Ciphertext: ciphertext})

	plaintext, err := vault.Decrypt(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", plaintext)
}

func TestAESVault_Errors(t *testing.T) {
	vault := newTestVault(t)

	ciphertext, err := vault.Encrypt("sk-123")
	require.NoError(t, err)

	vault.Put("disabled", Secret{Ciphertext: ciphertext, Disabled: true})
	vault.Put("garbage", Secret{Ciphertext: "not base64!"})
	vault.Put("tampered", Secret{Ciphertext: base64.StdEncoding.EncodeToString([]byte("0123456789abcdefghij"))})

	_, err = vault.Decrypt(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSecretNotFound)

	_, err = vault.Decrypt(context.Background(), "disabled")
	require.ErrorIs(t, err, ErrSecretDisabled)

	_, err = vault.Decrypt(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrCrypto)

	_, err = vault.Decrypt(context.Background(), "tampered")
	require.ErrorIs(t, err, ErrCrypto)
}

func TestNewAESVaultFromEnv(t *testing.T) {
	key := bytes.Repeat([]byte{3}, 32)
	seed, err := NewAESVault(key)
	require.NoError(t, err)

	ciphertext, err := seed.Encrypt("from-env")
	require.NoError(t, err)

	t.Setenv("FLOWDECK_TEST_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("FLOWDECK_TEST_SECRET_OPENAI", ciphertext)

	vault, err := NewAESVaultFromEnv("FLOWDECK_TEST_KEY", "FLOWDECK_TEST_SECRET_")
	require.NoError(t, err)

	plaintext, err := vault.Decrypt(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "from-env", plaintext)
}
