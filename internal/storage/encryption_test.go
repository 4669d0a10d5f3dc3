package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEncryption(t *testing.T) *Encryption {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	enc, err := NewEncryption(key)
	require.NoError(t, err)
	return enc
}

func TestEncryption_RoundTrip(t *testing.T) {
	enc := testEncryption(t)

	ciphertext, err := enc.EncryptString("sk-my-secret-api-key-12345")
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "sk-my-secret")

	plaintext, err := enc.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "sk-my-secret-api-key-12345", plaintext)
}

func TestEncryption_FreshNonce(t *testing.T) {
	enc := testEncryption(t)

	a, err := enc.EncryptString("same")
	require.NoError(t, err)
	b, err := enc.EncryptString("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncryptionFromHex(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, 64)

	enc, err := NewEncryptionFromHex(key)
	require.NoError(t, err)

	ciphertext, err := enc.EncryptString("test-data")
	require.NoError(t, err)
	plaintext, err := enc.DecryptString(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "test-data", plaintext)
}

func TestEncryption_InvalidKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"not hex", strings.Repeat("z", 64)},
		{"aes-128 length", strings.Repeat("ab", 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEncryptionFromHex(tt.key)
			assert.Error(t, err)
		})
	}
}

func TestEncryption_TamperedCiphertext(t *testing.T) {
	enc := testEncryption(t)

	_, err := enc.DecryptString("not-base64!!")
	assert.Error(t, err)

	_, err = enc.DecryptString("AAAA")
	assert.ErrorContains(t, err, "too short")

	other, err := NewEncryption(make([]byte, 32))
	require.NoError(t, err)
	ciphertext, err := other.EncryptString("secret")
	require.NoError(t, err)

	_, err = enc.DecryptString(ciphertext)
	assert.ErrorContains(t, err, "failed to decrypt")
}
