package domain

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken_Entropy(t *testing.T) {
	tok := NewRefreshToken(7 * 24 * time.Hour)

	raw, err := base64.StdEncoding.DecodeString(tok.Token())
	require.NoError(t, err)
	assert.Len(t, raw, 64)
}

func TestNewRefreshToken_Unique(t *testing.T) {
	a := NewRefreshToken(time.Hour)
	b := NewRefreshToken(time.Hour)
	assert.NotEqual(t, a.Token(), b.Token())
}

func TestNewRefreshToken_Expiry(t *testing.T) {
	before := time.Now().UTC()
	tok := NewRefreshToken(7 * 24 * time.Hour)
	after := time.Now().UTC()

	assert.False(t, tok.CreatedAt().Before(before))
	assert.False(t, tok.CreatedAt().After(after))
	assert.Equal(t, tok.CreatedAt().Add(7*24*time.Hour), tok.ExpiresAt())
	assert.False(t, tok.Revoked())
	assert.Nil(t, tok.RevokedAt())
	assert.True(t, tok.IsActive(time.Now().UTC()))
}

func TestRefreshToken_IsExpired(t *testing.T) {
	tok := NewRefreshToken(time.Hour)

	assert.False(t, tok.IsExpired(time.Now().UTC()))
	assert.True(t, tok.IsExpired(tok.ExpiresAt()))
	assert.True(t, tok.IsExpired(tok.ExpiresAt().Add(time.Second)))
}

func TestRefreshToken_Revoke_Idempotent(t *testing.T) {
	tok := NewRefreshToken(time.Hour)

	tok.Revoke()
	require.True(t, tok.Revoked())
	require.NotNil(t, tok.RevokedAt())
	first := *tok.RevokedAt()

	// Second revoke must not move the revocation instant.
	tok.Revoke()
	assert.Equal(t, first, *tok.RevokedAt())
	assert.False(t, tok.IsActive(time.Now().UTC()))
}

func TestRehydrateRefreshToken(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour)
	expires := created.Add(24 * time.Hour)
	revokedAt := created.Add(time.Minute)

	tok := RehydrateRefreshToken("stored-token", expires, created, true, &revokedAt)

	assert.Equal(t, "stored-token", tok.Token())
	assert.Equal(t, expires, tok.ExpiresAt())
	assert.Equal(t, created, tok.CreatedAt())
	assert.True(t, tok.Revoked())
	assert.Equal(t, revokedAt, *tok.RevokedAt())
	assert.False(t, tok.IsActive(time.Now().UTC()))
}
