package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"shopify-workspace-connector/internal/domain"
)

const (
	keySize = 32
	ivSize  = 16
	tagSize = 16
)

// Service encrypts access tokens with AES-256-GCM. Envelopes have the form
// hex(iv):hex(tag):hex(ciphertext).
type Service struct {
	aead cipher.AEAD
}

// NewService creates a service from a 64 character hex key
func NewService(keyHex string) (*Service, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("encryption key must be hex encoded: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Service{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random IV
func (s *Service) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}
	sealed := s.aead.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt opens an envelope produced by Encrypt. Malformed or tampered envelopes
// fail with an error wrapping domain.ErrDecryption.
func (s *Service) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", domain.Errorf(domain.ErrDecryption, "malformed envelope: expected 3 fields, got %d", len(parts))
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", domain.Errorf(domain.ErrDecryption, "malformed envelope: bad iv")
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", domain.Errorf(domain.ErrDecryption, "malformed envelope: bad auth tag")
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", domain.Errorf(domain.ErrDecryption, "malformed envelope: bad ciphertext")
	}

	plaintext, err := s.aead.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", domain.Errorf(domain.ErrDecryption, "authentication failed")
	}
	return string(plaintext), nil
}
