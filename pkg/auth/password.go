package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	PlaceholderLength = 32 // random bytes behind an SSO account's unusable password
	MinPasswordLen    = 8
	MaxPasswordLen    = 128
)

// BcryptCost is the work factor for new hashes. Tests lower it.
var BcryptCost = 12

// PasswordValidationError holds validation error details (internal use only)
type PasswordValidationError struct {
	Reason string
}

func (e *PasswordValidationError) Error() string {
	return fmt.Sprintf("invalid password: %s", e.Reason)
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword reports whether password matches hashedPassword. A malformed
// hash never matches.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GeneratePlaceholderPassword returns a random secret nobody knows. SSO
// provisioned accounts store its hash so the password hash is never empty.
func GeneratePlaceholderPassword() (string, error) {
	bytes := make([]byte, PlaceholderLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate placeholder password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// ValidatePassword checks the password length bounds. bcrypt only reads the
// first 72 bytes, longer inputs are still accepted up to MaxPasswordLen.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLen {
		return &PasswordValidationError{Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLen)}
	}
	if n > MaxPasswordLen {
		return &PasswordValidationError{Reason: fmt.Sprintf("must be at most %d characters", MaxPasswordLen)}
	}
	return nil
}
