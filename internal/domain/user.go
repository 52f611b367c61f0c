package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/marivaldojunior/ProductManagement/pkg/errors"
)

// maxNameLength bounds first and last names.
const maxNameLength = 100

// User is the aggregate root for identity and session state. It owns its
// refresh-token collection; workflows never touch a RefreshToken except
// through the methods below.
type User struct {
	id            string
	firstName     string
	lastName      string
	email         Email
	passwordHash  PasswordHash
	isActive      bool
	lastLoginAt   *time.Time
	refreshTokens []RefreshToken
	createdAt     time.Time
	updatedAt     *time.Time
}

// NewUser validates names and email and builds an active user around an
// already-hashed password. The first validation failure wins.
func NewUser(firstName, lastName, rawEmail, hashedPassword string) (*User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName == "" {
		return nil, apperrors.InvalidInput("first name is required")
	}
	if len(firstName) > maxNameLength {
		return nil, apperrors.InvalidInput("first name cannot exceed 100 characters")
	}
	if lastName == "" {
		return nil, apperrors.InvalidInput("last name is required")
	}
	if len(lastName) > maxNameLength {
		return nil, apperrors.InvalidInput("last name cannot exceed 100 characters")
	}

	email, err := NewEmail(rawEmail)
	if err != nil {
		return nil, err
	}

	return &User{
		id:           uuid.New().String(),
		firstName:    firstName,
		lastName:     lastName,
		email:        email,
		passwordHash: PasswordHashFromString(hashedPassword),
		isActive:     true,
		createdAt:    time.Now().UTC(),
	}, nil
}

// RehydrateUser rebuilds a persisted user. Used by the repository.
func RehydrateUser(
	id, firstName, lastName, email, passwordHash string,
	isActive bool,
	lastLoginAt *time.Time,
	refreshTokens []RefreshToken,
	createdAt time.Time,
	updatedAt *time.Time,
) *User {
	return &User{
		id:            id,
		firstName:     firstName,
		lastName:      lastName,
		email:         EmailFromStored(email),
		passwordHash:  PasswordHashFromString(passwordHash),
		isActive:      isActive,
		lastLoginAt:   lastLoginAt,
		refreshTokens: refreshTokens,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (u *User) ID() string                 { return u.id }
func (u *User) FirstName() string          { return u.firstName }
func (u *User) LastName() string           { return u.lastName }
func (u *User) Email() Email               { return u.email }
func (u *User) PasswordHash() PasswordHash { return u.passwordHash }
func (u *User) IsActive() bool             { return u.isActive }
func (u *User) LastLoginAt() *time.Time    { return u.lastLoginAt }
func (u *User) CreatedAt() time.Time       { return u.createdAt }
func (u *User) UpdatedAt() *time.Time      { return u.updatedAt }

// FullName returns the display name carried in access tokens.
func (u *User) FullName() string {
	return u.firstName + " " + u.lastName
}

// RefreshTokens returns a copy of the owned token collection.
func (u *User) RefreshTokens() []RefreshToken {
	out := make([]RefreshToken, len(u.refreshTokens))
	copy(out, u.refreshTokens)
	return out
}

// AddRefreshToken prunes inactive tokens from the collection, then creates
// and appends a new one. Pruning on add keeps the collection bounded without
// a background sweep.
func (u *User) AddRefreshToken(ttl time.Duration) RefreshToken {
	now := time.Now().UTC()

	kept := u.refreshTokens[:0]
	for _, t := range u.refreshTokens {
		if t.IsActive(now) {
			kept = append(kept, t)
		}
	}
	u.refreshTokens = kept

	token := NewRefreshToken(ttl)
	u.refreshTokens = append(u.refreshTokens, token)
	u.touch()

	return token
}

// ActiveRefreshToken returns the token matching value if it is currently
// active. Absence is a valid outcome, not an error.
func (u *User) ActiveRefreshToken(value string) *RefreshToken {
	now := time.Now().UTC()
	for i := range u.refreshTokens {
		if u.refreshTokens[i].token == value && u.refreshTokens[i].IsActive(now) {
			t := u.refreshTokens[i]
			return &t
		}
	}
	return nil
}

// RevokeRefreshToken revokes the matching token. Missing or already-revoked
// tokens are a no-op.
func (u *User) RevokeRefreshToken(value string) {
	for i := range u.refreshTokens {
		if u.refreshTokens[i].token == value {
			u.refreshTokens[i].Revoke()
			u.touch()
			return
		}
	}
}

// RevokeAllRefreshTokens revokes every currently active token.
func (u *User) RevokeAllRefreshTokens() {
	now := time.Now().UTC()
	for i := range u.refreshTokens {
		if u.refreshTokens[i].IsActive(now) {
			u.refreshTokens[i].Revoke()
		}
	}
	u.touch()
}

// RecordLogin stamps the last successful login instant.
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.lastLoginAt = &now
}

// ChangePassword replaces the stored hash and revokes every session. A
// credential rotation must not leave a stolen session alive.
func (u *User) ChangePassword(newHashedPassword string) {
	u.passwordHash = PasswordHashFromString(newHashedPassword)
	u.touch()
	u.RevokeAllRefreshTokens()
}

// UpdateProfile replaces each name only when the new value is non-empty and
// within bounds; out-of-range values are ignored rather than rejected.
func (u *User) UpdateProfile(firstName, lastName string) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if firstName != "" && len(firstName) <= maxNameLength {
		u.firstName = firstName
	}
	if lastName != "" && len(lastName) <= maxNameLength {
		u.lastName = lastName
	}
	u.touch()
}

// Activate re-enables a deactivated account.
func (u *User) Activate() {
	u.isActive = true
	u.touch()
}

// Deactivate disables the account and revokes every session; an inactive
// account must not retain live sessions.
func (u *User) Deactivate() {
	u.isActive = false
	u.touch()
	u.RevokeAllRefreshTokens()
}

func (u *User) touch() {
	now := time.Now().UTC()
	u.updatedAt = &now
}
