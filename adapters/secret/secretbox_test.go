package secret

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSecretboxStore_SealOpen(t *testing.T) {
	store, err := NewSecretboxStore(newKey(t))
	require.NoError(t, err)

	sealed, err := store.Seal("ashby-key-123")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ashby-key-123")

	plain, err := store.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ashby-key-123", plain)
}

func TestSecretboxStore_NonceDiffers(t *testing.T) {
	store, err := NewSecretboxStore(newKey(t))
	require.NoError(t, err)

	a, err := store.Seal("same")
	require.NoError(t, err)
	b, err := store.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSecretboxStore_WrongKey(t *testing.T) {
	s1, err := NewSecretboxStore(newKey(t))
	require.NoError(t, err)
	s2, err := NewSecretboxStore(newKey(t))
	require.NoError(t, err)

	sealed, err := s1.Seal("secret")
	require.NoError(t, err)

	_, err = s2.Open(sealed)
	assert.ErrorIs(t, err, ErrMalformedSecret)
}

func TestSecretboxStore_Malformed(t *testing.T) {
	store, err := NewSecretboxStore(newKey(t))
	require.NoError(t, err)

	_, err = store.Open("not base64!")
	assert.ErrorIs(t, err, ErrMalformedSecret)

	_, err = store.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrMalformedSecret)
}

func TestNewSecretboxStore_BadKey(t *testing.T) {
	_, err := NewSecretboxStore("%%%")
	assert.Error(t, err)

	_, err = NewSecretboxStore(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}
