package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrMalformedSecret = errors.New("sealed secret is malformed")

// SecretboxStore seals secrets with NaCl secretbox. The stored form is
// base64(nonce || box).
type SecretboxStore struct {
	key [32]byte
}

// NewSecretboxStore takes a base64-encoded 32 byte key.
func NewSecretboxStore(encodedKey string) (*SecretboxStore, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(raw))
	}
	s := &SecretboxStore{}
	copy(s.key[:], raw)
	return s, nil
}

func (s *SecretboxStore) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (s *SecretboxStore) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformedSecret
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrMalformedSecret
	}
	return string(plain), nil
}
