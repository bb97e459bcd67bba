package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// fieldAssociatedData is bound to every sealed value; a value sealed by another
// component or tampered with fails to open.
const fieldAssociatedData = "notes-api/field/v1"

const fieldKeyLength = 32

var (
	ErrEmptySecret = errors.New("field cipher secret is empty")
	ErrDecryption  = errors.New("field decryption failed")
)

// FieldCipher seals individual string fields with AES-256-GCM under a key
// derived from a secret.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher derives the field key from secret and salt with argon2id.
func NewFieldCipher(secret, salt string) (*FieldCipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := argon2.IDKey([]byte(secret), []byte(salt), 1, 64*1024, 4, fieldKeyLength)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &FieldCipher{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce and returns
// "hex(nonce):hex(tag):hex(ciphertext)".
func (c *FieldCipher) Seal(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), []byte(fieldAssociatedData))
	tagStart := len(sealed) - c.aead.Overhead()

	return strings.Join([]string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(sealed[tagStart:]),
		hex.EncodeToString(sealed[:tagStart]),
	}, ":"), nil
}

// Open reverses Seal. Every failure wraps ErrDecryption.
func (c *FieldCipher) Open(ciphertext string) (string, error) {
	parts := strings.Split(ciphertext, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 parts, got %d", ErrDecryption, len(parts))
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", fmt.Errorf("%w: invalid nonce", ErrDecryption)
	}

	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != c.aead.Overhead() {
		return "", fmt.Errorf("%w: invalid tag", ErrDecryption)
	}

	body, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: invalid ciphertext", ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(body, tag...), []byte(fieldAssociatedData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	return string(plaintext), nil
}
