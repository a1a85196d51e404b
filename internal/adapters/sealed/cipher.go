package sealed

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Versioned prefix to allow future key/algorithm rotations without rewriting stored sessions.
const cipherPrefixV1 = "v1:"

// ErrNotSealed is returned by Open for a value without a known cipher prefix.
var ErrNotSealed = errors.New("value is not sealed")

// AESGCM seals values with AES-256-GCM.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM constructs an AESGCM sealer. Key must be 32 bytes (AES-256).
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// ParseKey decodes a base64 (standard or URL alphabet) 32-byte key.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(encoded); err == nil {
			if len(key) != 32 {
				return nil, fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(key))
			}
			return key, nil
		}
	}
	return nil, errors.New("encryption key is not valid base64")
}

// Seal encrypts plaintext with a random nonce and returns a versioned base64 string.
func (s *AESGCM) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	// nonce||ciphertext
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return cipherPrefixV1 + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *AESGCM) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, cipherPrefixV1) {
		return "", ErrNotSealed
	}
	data, err := base64.StdEncoding.DecodeString(sealed[len(cipherPrefixV1):])
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("sealed value too short")
	}
	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(pt), nil
}
