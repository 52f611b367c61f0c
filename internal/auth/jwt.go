package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/marivaldojunior/ProductManagement/internal/domain"
)

// AccessTokenClaims are the claims embedded in every issued access token.
type AccessTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// ValidationReason categorizes why an access token failed validation.
type ValidationReason string

const (
	ReasonNone             ValidationReason = ""
	ReasonMalformed        ValidationReason = "malformed"
	ReasonExpired          ValidationReason = "expired"
	ReasonInvalidSignature ValidationReason = "invalid_signature"
	ReasonWrongIssuer      ValidationReason = "wrong_issuer"
	ReasonWrongAudience    ValidationReason = "wrong_audience"
	ReasonNotYetValid      ValidationReason = "not_yet_valid"
)

// AccessTokenValidation is the structured outcome of validating an access
// token. Invalid tokens produce a populated Reason, never a panic.
type AccessTokenValidation struct {
	Valid  bool
	UserID string
	Email  string
	Name   string
	Reason ValidationReason
}

// TokenService issues and validates HMAC-signed access tokens.
type TokenService struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. The secret must be non-empty;
// issuance and validation share the same key.
func NewTokenService(secret, issuer, audience string, accessTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret cannot be empty")
	}
	if accessTTL <= 0 {
		return nil, errors.New("auth: access token lifetime must be positive")
	}
	return &TokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// GenerateAccessToken issues a signed access token for the given user.
// Each token carries a unique jti so individual tokens are traceable.
func (s *TokenService) GenerateAccessToken(u *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)

	claims := AccessTokenClaims{
		Email: u.Email().String(),
		Name:  u.FullName(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken parses and verifies an access token. It never returns
// an error for bad input; the result carries a categorized reason instead.
// Only HS256 is accepted, and expiry is checked with zero leeway.
func (s *TokenService) ValidateAccessToken(tokenString string) AccessTokenValidation {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return AccessTokenValidation{Valid: false, Reason: classify(err)}
	}
	if !token.Valid {
		return AccessTokenValidation{Valid: false, Reason: ReasonMalformed}
	}

	return AccessTokenValidation{
		Valid:  true,
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Reason: ReasonNone,
	}
}

func classify(err error) ValidationReason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonWrongIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ReasonWrongAudience
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ReasonNotYetValid
	default:
		return ReasonMalformed
	}
}
