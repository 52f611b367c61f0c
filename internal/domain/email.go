package domain

import (
	"regexp"
	"strings"

	apperrors "github.com/marivaldojunior/ProductManagement/pkg/errors"
)

// maxEmailLength is the longest accepted normalized email address.
const maxEmailLength = 256

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email is a validated, normalized (trimmed, lower-cased) email address.
type Email struct {
	value string
}

// NewEmail normalizes and validates a raw email address.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	if normalized == "" {
		return Email{}, apperrors.InvalidInput("email cannot be empty")
	}
	if len(normalized) > maxEmailLength {
		return Email{}, apperrors.InvalidInput("email is too long")
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, apperrors.InvalidInput("email format is invalid")
	}

	return Email{value: normalized}, nil
}

// EmailFromStored rebuilds an Email from its persisted value. Rows were
// validated on the way in, so no re-validation happens here.
func EmailFromStored(value string) Email {
	return Email{value: value}
}

// NormalizeEmail applies the same normalization as NewEmail without
// validating. Used for lookups by email.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (e Email) String() string { return e.value }

// Equals reports whether two emails have the same normalized value.
func (e Email) Equals(other Email) bool { return e.value == other.value }
