package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/marivaldojunior/ProductManagement/pkg/errors"
)

const testHash = "$2a$04$abcdefghijklmnopqrstuv"

func newTestUser(t *testing.T) *User {
	t.Helper()
	u, err := NewUser("Alice", "Smith", "alice@example.com", testHash)
	require.NoError(t, err)
	return u
}

// ============================================================================
// Construction
// ============================================================================

func TestNewUser_Success(t *testing.T) {
	u, err := NewUser("  Alice ", " Smith ", " Alice@Example.COM ", testHash)
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID())
	assert.Equal(t, "Alice", u.FirstName())
	assert.Equal(t, "Smith", u.LastName())
	assert.Equal(t, "alice@example.com", u.Email().String())
	assert.Equal(t, testHash, u.PasswordHash().String())
	assert.True(t, u.IsActive())
	assert.Nil(t, u.LastLoginAt())
	assert.Empty(t, u.RefreshTokens())
	assert.NotZero(t, u.CreatedAt())
	assert.Nil(t, u.UpdatedAt())
	assert.Equal(t, "Alice Smith", u.FullName())
}

func TestNewUser_Validation(t *testing.T) {
	long := strings.Repeat("x", 101)

	tests := []struct {
		name      string
		firstName string
		lastName  string
		email     string
		wantMsg   string
	}{
		{"empty first name", "", "Smith", "alice@example.com", "first name is required"},
		{"blank first name", "   ", "Smith", "alice@example.com", "first name is required"},
		{"long first name", long, "Smith", "alice@example.com", "first name cannot exceed"},
		{"empty last name", "Alice", "", "alice@example.com", "last name is required"},
		{"long last name", "Alice", long, "alice@example.com", "last name cannot exceed"},
		{"bad email", "Alice", "Smith", "not-an-email", "email format is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.firstName, tt.lastName, tt.email, testHash)
			assert.Nil(t, u)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNewUser_UniqueIDs(t *testing.T) {
	a := newTestUser(t)
	b := newTestUser(t)
	assert.NotEqual(t, a.ID(), b.ID())
}

// ============================================================================
// Refresh-token ownership
// ============================================================================

func TestAddRefreshToken_AppendsOne(t *testing.T) {
	u := newTestUser(t)

	tok := u.AddRefreshToken(7 * 24 * time.Hour)

	tokens := u.RefreshTokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, tok.Token(), tokens[0].Token())
	assert.NotNil(t, u.UpdatedAt())
}

func TestAddRefreshToken_PrunesInactive(t *testing.T) {
	u := newTestUser(t)

	first := u.AddRefreshToken(time.Hour)
	second := u.AddRefreshToken(time.Hour)
	u.RevokeRefreshToken(first.Token())

	// The revoked token stays until the next add.
	require.Len(t, u.RefreshTokens(), 2)

	third := u.AddRefreshToken(time.Hour)

	tokens := u.RefreshTokens()
	require.Len(t, tokens, 2)
	now := time.Now().UTC()
	for _, tok := range tokens {
		assert.True(t, tok.IsActive(now))
	}
	assert.Equal(t, second.Token(), tokens[0].Token())
	assert.Equal(t, third.Token(), tokens[1].Token())
}

func TestAddRefreshToken_PrunesExpired(t *testing.T) {
	u := newTestUser(t)

	expired := u.AddRefreshToken(-time.Minute)
	fresh := u.AddRefreshToken(time.Hour)

	tokens := u.RefreshTokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, fresh.Token(), tokens[0].Token())
	assert.NotEqual(t, expired.Token(), tokens[0].Token())
}

func TestActiveRefreshToken(t *testing.T) {
	u := newTestUser(t)
	tok := u.AddRefreshToken(time.Hour)

	found := u.ActiveRefreshToken(tok.Token())
	require.NotNil(t, found)
	assert.Equal(t, tok.Token(), found.Token())

	assert.Nil(t, u.ActiveRefreshToken("no-such-token"))

	u.RevokeRefreshToken(tok.Token())
	assert.Nil(t, u.ActiveRefreshToken(tok.Token()))
}

func TestRevokeRefreshToken_MissingIsNoop(t *testing.T) {
	u := newTestUser(t)
	u.AddRefreshToken(time.Hour)

	u.RevokeRefreshToken("no-such-token")

	now := time.Now().UTC()
	for _, tok := range u.RefreshTokens() {
		assert.True(t, tok.IsActive(now))
	}
}

func TestRevokeAllRefreshTokens(t *testing.T) {
	u := newTestUser(t)
	u.AddRefreshToken(time.Hour)
	u.AddRefreshToken(time.Hour)
	u.AddRefreshToken(time.Hour)

	u.RevokeAllRefreshTokens()

	now := time.Now().UTC()
	for _, tok := range u.RefreshTokens() {
		assert.False(t, tok.IsActive(now))
		assert.True(t, tok.Revoked())
	}
}

// ============================================================================
// State transitions
// ============================================================================

func TestRecordLogin(t *testing.T) {
	u := newTestUser(t)
	require.Nil(t, u.LastLoginAt())

	u.RecordLogin()

	require.NotNil(t, u.LastLoginAt())
	assert.WithinDuration(t, time.Now().UTC(), *u.LastLoginAt(), time.Second)
}

func TestChangePassword_RevokesAllSessions(t *testing.T) {
	u := newTestUser(t)
	u.AddRefreshToken(time.Hour)
	u.AddRefreshToken(time.Hour)

	u.ChangePassword("$2a$04$newhashnewhashnewhashne")

	assert.Equal(t, "$2a$04$newhashnewhashnewhashne", u.PasswordHash().String())
	now := time.Now().UTC()
	for _, tok := range u.RefreshTokens() {
		assert.False(t, tok.IsActive(now))
	}
}

func TestDeactivate_RevokesAllSessions(t *testing.T) {
	u := newTestUser(t)
	u.AddRefreshToken(time.Hour)
	tok := u.AddRefreshToken(time.Hour)

	u.Deactivate()

	assert.False(t, u.IsActive())
	assert.Nil(t, u.ActiveRefreshToken(tok.Token()))
	now := time.Now().UTC()
	for _, rt := range u.RefreshTokens() {
		assert.False(t, rt.IsActive(now))
	}
}

func TestActivate(t *testing.T) {
	u := newTestUser(t)
	u.Deactivate()
	require.False(t, u.IsActive())

	u.Activate()
	assert.True(t, u.IsActive())
}

func TestUpdateProfile(t *testing.T) {
	u := newTestUser(t)

	u.UpdateProfile("Alicia", "")
	assert.Equal(t, "Alicia", u.FirstName())
	assert.Equal(t, "Smith", u.LastName())

	u.UpdateProfile(strings.Repeat("x", 101), "Jones")
	assert.Equal(t, "Alicia", u.FirstName())
	assert.Equal(t, "Jones", u.LastName())
}

func TestRehydrateUser(t *testing.T) {
	created := time.Now().UTC().Add(-48 * time.Hour)
	updated := created.Add(time.Hour)
	lastLogin := created.Add(2 * time.Hour)
	tok := RehydrateRefreshToken("stored", created.Add(72*time.Hour), created, false, nil)

	u := RehydrateUser(
		"user-1", "Alice", "Smith", "alice@example.com", testHash,
		true, &lastLogin, []RefreshToken{tok}, created, &updated,
	)

	assert.Equal(t, "user-1", u.ID())
	assert.Equal(t, "alice@example.com", u.Email().String())
	assert.Equal(t, created, u.CreatedAt())
	assert.Equal(t, updated, *u.UpdatedAt())
	assert.Equal(t, lastLogin, *u.LastLoginAt())
	require.Len(t, u.RefreshTokens(), 1)
	require.NotNil(t, u.ActiveRefreshToken("stored"))
}
