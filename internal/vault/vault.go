// Package vault provides authenticated encryption for stored provider
// credentials using AES-256-GCM.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32

	tagSize = 16
)

// Sentinel errors returned by Decrypt.
var (
	// ErrMalformedEnvelope indicates the envelope does not have the
	// expected nonce:tag:ciphertext structure.
	ErrMalformedEnvelope = errors.New("malformed credential envelope")

	// ErrAuthenticationFailed indicates the GCM tag did not verify: the key
	// is wrong or the ciphertext was tampered with. Security-relevant and
	// deliberately distinguishable from all other failures.
	ErrAuthenticationFailed = errors.New("credential authentication failed")
)

// Vault encrypts and decrypts credential secrets with a process-wide
// AES-256-GCM key loaded once at startup. Safe for concurrent use; the key
// is never mutated after construction.
type Vault struct {
	aead cipher.AEAD
}

// New creates a Vault from a 32-byte key. Any other key length is a
// configuration error.
func New(key []byte) (*Vault, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the
// envelope "hex(nonce):hex(tag):hex(ciphertext)". The envelope layout is a
// wire contract with the credential store; existing rows round-trip through
// the same three fields.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the 16-byte tag to the ciphertext; the envelope carries
	// them as separate fields.
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt opens an envelope produced by Encrypt. Returns
// ErrMalformedEnvelope when the envelope structure is wrong and
// ErrAuthenticationFailed when the tag does not verify.
func (v *Vault) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedEnvelope, len(parts))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: bad nonce encoding", ErrMalformedEnvelope)
	}
	if len(nonce) != v.aead.NonceSize() {
		return "", fmt.Errorf("%w: nonce is %d bytes", ErrMalformedEnvelope, len(nonce))
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad tag encoding", ErrMalformedEnvelope)
	}
	if len(tag) != tagSize {
		return "", fmt.Errorf("%w: tag is %d bytes", ErrMalformedEnvelope, len(tag))
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext encoding", ErrMalformedEnvelope)
	}

	plaintext, err := v.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrAuthenticationFailed
	}

	return string(plaintext), nil
}
