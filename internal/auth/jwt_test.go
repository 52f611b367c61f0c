package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marivaldojunior/ProductManagement/internal/domain"
)

const (
	testSecret   = "test-secret-at-least-32-bytes-long-ok"
	testIssuer   = "product-management"
	testAudience = "product-management-api"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, testIssuer, testAudience, 15*time.Minute)
	require.NoError(t, err)
	return svc
}

func newTokenUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := domain.NewUser("Alice", "Smith", "alice@example.com", "$2a$04$abcdefghijklmnopqrstuv")
	require.NoError(t, err)
	return u
}

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService("", testIssuer, testAudience, 15*time.Minute)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, testIssuer, testAudience, 0)
	assert.Error(t, err)
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := newTestTokenService(t)
	u := newTokenUser(t)

	signed, expiresAt, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, u.ID(), claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Smith", claims.Name)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, testAudience)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt.Time)
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	svc := newTestTokenService(t)
	u := newTokenUser(t)

	a, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	b, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	parse := func(signed string) *AccessTokenClaims {
		claims := &AccessTokenClaims{}
		_, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		return claims
	}
	assert.NotEqual(t, parse(a).ID, parse(b).ID)
}

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	u := newTokenUser(t)

	signed, _, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	result := svc.ValidateAccessToken(signed)
	assert.True(t, result.Valid)
	assert.Equal(t, u.ID(), result.UserID)
	assert.Equal(t, "alice@example.com", result.Email)
	assert.Equal(t, "Alice Smith", result.Name)
	assert.Equal(t, ReasonNone, result.Reason)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestTokenService(t)
	u := newTokenUser(t)

	signed, expiresAt, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	// Move the clock just past expiry; zero leeway means no grace period.
	svc.now = func() time.Time { return expiresAt.Add(time.Second) }

	result := svc.ValidateAccessToken(signed)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonExpired, result.Reason)
	assert.Empty(t, result.UserID)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-signing-secret", testIssuer, testAudience, 15*time.Minute)
	require.NoError(t, err)

	signed, _, err := other.GenerateAccessToken(newTokenUser(t))
	require.NoError(t, err)

	result := svc.ValidateAccessToken(signed)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonInvalidSignature, result.Reason)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(testSecret, "someone-else", testAudience, 15*time.Minute)
	require.NoError(t, err)

	signed, _, err := other.GenerateAccessToken(newTokenUser(t))
	require.NoError(t, err)

	result := svc.ValidateAccessToken(signed)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonWrongIssuer, result.Reason)
}

func TestValidateAccessToken_WrongAudience(t *testing.T) {
	svc := newTestTokenService(t)
	other, err := NewTokenService(testSecret, testIssuer, "other-api", 15*time.Minute)
	require.NoError(t, err)

	signed, _, err := other.GenerateAccessToken(newTokenUser(t))
	require.NoError(t, err)

	result := svc.ValidateAccessToken(signed)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonWrongAudience, result.Reason)
}

func TestValidateAccessToken_RejectsUnsignedAlgorithm(t *testing.T) {
	svc := newTestTokenService(t)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	result := svc.ValidateAccessToken(signed)
	assert.False(t, result.Valid)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestTokenService(t)

	for _, input := range []string{"", "garbage", "a.b.c", "header.payload"} {
		result := svc.ValidateAccessToken(input)
		assert.False(t, result.Valid, "input %q should be invalid", input)
		assert.Equal(t, ReasonMalformed, result.Reason)
	}
}
