package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Option configures the time and randomness sources of a usecase.
type Option func(*settings)

type settings struct {
	now          func() time.Time
	generateCode func() (string, error)
}

func newSettings(opts []Option) settings {
	s := settings{
		now:          time.Now,
		generateCode: generateVerificationCode,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithCodeGenerator replaces the one-time code generator.
func WithCodeGenerator(generate func() (string, error)) Option {
	return func(s *settings) {
		s.generateCode = generate
	}
}

var codeSpace = big.NewInt(1_000_000)

// generateVerificationCode returns a uniformly random 6-digit code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
