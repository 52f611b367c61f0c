package domain

import (
	"unicode"

	apperrors "github.com/marivaldojunior/ProductManagement/pkg/errors"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// PasswordHash wraps an already-computed password hash. It never holds the
// plaintext password.
type PasswordHash struct {
	value string
}

// PasswordHashFromString wraps a precomputed hash. An empty hash is a
// programming error (hashes are always produced by the hasher), so this
// panics rather than returning a recoverable failure.
func PasswordHashFromString(hash string) PasswordHash {
	if hash == "" {
		panic("domain: password hash cannot be empty")
	}
	return PasswordHash{value: hash}
}

func (p PasswordHash) String() string { return p.value }

// ValidatePasswordStrength checks minimum complexity requirements on a
// plaintext candidate. It must run before hashing; hashing a weak password
// and rejecting it afterwards would leak behavior differences.
func ValidatePasswordStrength(plain string) error {
	if plain == "" {
		return apperrors.InvalidInput("password cannot be empty")
	}
	if len(plain) < minPasswordLength {
		return apperrors.InvalidInput("password must be at least 8 characters long")
	}
	if len(plain) > maxPasswordLength {
		return apperrors.InvalidInput("password is too long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range plain {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return apperrors.InvalidInput("password must contain at least one uppercase letter")
	case !hasLower:
		return apperrors.InvalidInput("password must contain at least one lowercase letter")
	case !hasDigit:
		return apperrors.InvalidInput("password must contain at least one digit")
	case !hasSpecial:
		return apperrors.InvalidInput("password must contain at least one special character")
	}

	return nil
}
