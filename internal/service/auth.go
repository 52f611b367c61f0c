package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marivaldojunior/ProductManagement/internal/domain"
	"github.com/marivaldojunior/ProductManagement/internal/repository"
	apperrors "github.com/marivaldojunior/ProductManagement/pkg/errors"
)

// TokenIssuer issues signed access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(u *domain.User) (string, time.Time, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// RegisterInput carries the fields needed to create an account.
// Password/confirmation equality is checked at the HTTP boundary.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginInput carries credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfileInput carries a profile update. Empty fields are left as-is.
type UpdateProfileInput struct {
	UserID    string
	FirstName string
	LastName  string
}

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResponse is returned by login and refresh: a fresh access/refresh
// token pair plus the identity it belongs to.
type AuthResponse struct {
	UserID               string    `json:"user_id"`
	Email                string    `json:"email"`
	FullName             string    `json:"full_name"`
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
	RefreshToken         string    `json:"refresh_token"`
}

// Credential failures deliberately share one message so responses do not
// reveal whether an email is registered.
const (
	msgInvalidCredentials = "invalid email or password"
	msgAccountDeactivated = "account is deactivated"
	msgInvalidRefresh     = "invalid refresh token"
	msgRefreshUnusable    = "refresh token is expired or revoked"
)

// AuthService implements registration, credential verification, and the
// access/refresh token lifecycle. Every operation runs in a single
// transaction so the aggregate and its token rows move together.
type AuthService struct {
	uow        repository.UnitOfWork
	hasher     PasswordHasher
	tokens     TokenIssuer
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(
	uow repository.UnitOfWork,
	hasher PasswordHasher,
	tokens TokenIssuer,
	refreshTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		uow:        uow,
		hasher:     hasher,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Register creates a new account. The email must be unused and the
// password must satisfy the strength policy.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*UserResponse, error) {
	if err := domain.ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	email, err := domain.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	var resp *UserResponse
	err = s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		exists, err := users.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.AlreadyExists("user", "email", email.String())
		}

		u, err := domain.NewUser(in.FirstName, in.LastName, in.Email, hash)
		if err != nil {
			return err
		}
		if err := users.Add(ctx, u); err != nil {
			return err
		}

		resp = toUserResponse(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", resp.ID),
	)
	return resp, nil
}

// Login verifies credentials and starts a session: a short-lived access
// token plus a single-use refresh token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	email, err := domain.NewEmail(in.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	var resp *AuthResponse
	err = s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.Unauthorized(msgInvalidCredentials)
			}
			return err
		}

		if !s.hasher.Verify(in.Password, u.PasswordHash().String()) {
			return apperrors.Unauthorized(msgInvalidCredentials)
		}
		if !u.IsActive() {
			return apperrors.Unauthorized(msgAccountDeactivated)
		}

		refresh := u.AddRefreshToken(s.refreshTTL)
		u.RecordLogin()

		access, expiresAt, err := s.tokens.GenerateAccessToken(u)
		if err != nil {
			return apperrors.Internal(err)
		}
		if err := users.Update(ctx, u); err != nil {
			return err
		}

		resp = &AuthResponse{
			UserID:               u.ID(),
			Email:                u.Email().String(),
			FullName:             u.FullName(),
			AccessToken:          access,
			AccessTokenExpiresAt: expiresAt,
			RefreshToken:         refresh.Token(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", resp.UserID),
	)
	return resp, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and
// a new pair is issued. A token can therefore be used exactly once.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (*AuthResponse, error) {
	if token == "" {
		return nil, apperrors.Unauthorized(msgInvalidRefresh)
	}

	var resp *AuthResponse
	err := s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByRefreshToken(ctx, token)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.Unauthorized(msgInvalidRefresh)
			}
			return err
		}

		if !u.IsActive() {
			return apperrors.Unauthorized(msgAccountDeactivated)
		}
		if u.ActiveRefreshToken(token) == nil {
			return apperrors.Unauthorized(msgRefreshUnusable)
		}

		u.RevokeRefreshToken(token)
		refresh := u.AddRefreshToken(s.refreshTTL)

		access, expiresAt, err := s.tokens.GenerateAccessToken(u)
		if err != nil {
			return apperrors.Internal(err)
		}
		if err := users.Update(ctx, u); err != nil {
			return err
		}

		resp = &AuthResponse{
			UserID:               u.ID(),
			Email:                u.Email().String(),
			FullName:             u.FullName(),
			AccessToken:          access,
			AccessTokenExpiresAt: expiresAt,
			RefreshToken:         refresh.Token(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Logout revokes the presented refresh token. Unknown tokens succeed
// silently so the endpoint leaks nothing.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByRefreshToken(ctx, token)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}

		u.RevokeRefreshToken(token)
		return users.Update(ctx, u)
	})
}

// ChangePassword verifies the current password, applies the new one, and
// revokes every open session.
func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := domain.ValidatePasswordStrength(in.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByID(ctx, in.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound("user", in.UserID)
			}
			return err
		}

		if !s.hasher.Verify(in.CurrentPassword, u.PasswordHash().String()) {
			return apperrors.Unauthorized("current password is incorrect")
		}

		u.ChangePassword(hash)
		return users.Update(ctx, u)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", in.UserID),
	)
	return nil
}

// GetProfile returns the public shape of the account.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*UserResponse, error) {
	var resp *UserResponse
	err := s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound("user", userID)
			}
			return err
		}
		resp = toUserResponse(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateProfile changes the account's name fields. Empty inputs keep the
// current values.
func (s *AuthService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*UserResponse, error) {
	var resp *UserResponse
	err := s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByID(ctx, in.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound("user", in.UserID)
			}
			return err
		}

		u.UpdateProfile(in.FirstName, in.LastName)
		if err := users.Update(ctx, u); err != nil {
			return err
		}
		resp = toUserResponse(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Deactivate disables the account and revokes every open session.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, users repository.UserRepository) error {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound("user", userID)
			}
			return err
		}

		u.Deactivate()
		return users.Update(ctx, u)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user deactivated",
		slog.String("user_id", userID),
	)
	return nil
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID(),
		FirstName:   u.FirstName(),
		LastName:    u.LastName(),
		Email:       u.Email().String(),
		IsActive:    u.IsActive(),
		LastLoginAt: u.LastLoginAt(),
		CreatedAt:   u.CreatedAt(),
	}
}
