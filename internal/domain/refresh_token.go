package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// refreshTokenBytes is the entropy drawn for each token value.
const refreshTokenBytes = 64

// RefreshToken is an opaque session secret owned exclusively by a User.
// It is created through User.AddRefreshToken and revoked through
// User.RevokeRefreshToken; nothing else mutates it.
type RefreshToken struct {
	token     string
	expiresAt time.Time
	createdAt time.Time
	revoked   bool
	revokedAt *time.Time
}

// NewRefreshToken generates a cryptographically random token valid for the
// given duration.
func NewRefreshToken(ttl time.Duration) RefreshToken {
	buf := make([]byte, refreshTokenBytes)
	// crypto/rand.Read never returns an error on supported platforms.
	if _, err := rand.Read(buf); err != nil {
		panic("domain: read random bytes: " + err.Error())
	}

	now := time.Now().UTC()
	return RefreshToken{
		token:     base64.StdEncoding.EncodeToString(buf),
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
}

// RehydrateRefreshToken rebuilds a persisted token. Used by the repository.
func RehydrateRefreshToken(token string, expiresAt, createdAt time.Time, revoked bool, revokedAt *time.Time) RefreshToken {
	return RefreshToken{
		token:     token,
		expiresAt: expiresAt,
		createdAt: createdAt,
		revoked:   revoked,
		revokedAt: revokedAt,
	}
}

func (t *RefreshToken) Token() string         { return t.token }
func (t *RefreshToken) ExpiresAt() time.Time  { return t.expiresAt }
func (t *RefreshToken) CreatedAt() time.Time  { return t.createdAt }
func (t *RefreshToken) Revoked() bool         { return t.revoked }
func (t *RefreshToken) RevokedAt() *time.Time { return t.revokedAt }

// IsExpired reports whether the token has passed its expiry instant.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// IsActive reports whether the token is neither revoked nor expired.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.revoked && !t.IsExpired(now)
}

// Revoke marks the token revoked. Revoking an already-revoked token is a
// no-op; RevokedAt is stamped once and never changes.
func (t *RefreshToken) Revoke() {
	if t.revoked {
		return
	}
	now := time.Now().UTC()
	t.revoked = true
	t.revokedAt = &now
}
