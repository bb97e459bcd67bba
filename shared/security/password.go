package security

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/matthewhartstonge/argon2"
)

var passwordConfig = argon2.DefaultConfig()

// HashPassword returns an encoded argon2id digest of password with a fresh random salt.
func HashPassword(password string) (string, error) {
	encoded, err := passwordConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded digest.
// A digest that cannot be decoded is an error, a mismatch is not.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}

// UnusablePasswordHash hashes a random secret nobody knows. Accounts created
// through an external identity provider get one so password login never succeeds.
func UnusablePasswordHash() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}

	return HashPassword(hex.EncodeToString(secret))
}
