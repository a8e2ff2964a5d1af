package interpreter

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD encrypts content with XChaCha20-Poly1305. The random 24-byte nonce
// is prepended to the sealed payload.
type AEAD struct {
	aead cipher.AEAD
}

// NewAEAD creates an AEAD interpreter from a 32-byte key.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("aead key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create aead; %w", err)
	}

	return &AEAD{aead: a}, nil
}

// ParseKey decodes a 32-byte key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if key, err := hex.DecodeString(s); err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	return nil, fmt.Errorf("key must be %d bytes encoded as hex or base64", chacha20poly1305.KeySize)
}

// Name returns "aead".
func (a *AEAD) Name() string { return KindAEAD }

// Cipher seals plaintext under a fresh random nonce.
func (a *AEAD) Cipher(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize(), a.aead.NonceSize()+len(plaintext)+a.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce; %w", err)
	}
	return a.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decipher opens a payload produced by Cipher.
func (a *AEAD) Decipher(ciphertext []byte) ([]byte, error) {
	ns := a.aead.NonceSize()
	if len(ciphertext) < ns+a.aead.Overhead() {
		return nil, fmt.Errorf("%w; payload too short (%d bytes)", ErrCorrupt, len(ciphertext))
	}

	plaintext, err := a.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w; %w", ErrCorrupt, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
