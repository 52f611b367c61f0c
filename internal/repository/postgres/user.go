package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marivaldojunior/ProductManagement/internal/domain"
	apperrors "github.com/marivaldojunior/ProductManagement/pkg/errors"
)

// DB is the subset of pgx operations the repository needs. It is satisfied
// by *pgxpool.Pool, pgx.Tx, and pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements repository.UserRepository using PostgreSQL.
// The user and its refresh tokens are loaded and stored as one aggregate.
type UserRepository struct {
	db DB

	// locking makes aggregate reads take a row lock on the user row, so
	// concurrent transactions touching the same user serialize. Only set
	// on transaction-scoped repositories.
	locking bool
}

// NewUserRepository creates a repository bound to a pool or connection.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// newTxUserRepository creates a repository bound to an open transaction.
// Reads lock the user row for the duration of the transaction.
func newTxUserRepository(tx pgx.Tx) *UserRepository {
	return &UserRepository{db: tx, locking: true}
}

const userColumns = `id, first_name, last_name, email, password_hash, is_active, last_login_at, created_at, updated_at`

// GetByID retrieves a user aggregate by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1` + r.lockClause()
	return r.loadAggregate(ctx, query, id)
}

// GetByEmail retrieves a user aggregate by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1` + r.lockClause()
	return r.loadAggregate(ctx, query, email.String())
}

// GetByRefreshToken retrieves the user aggregate that owns the given
// refresh token value. Revoked and expired tokens still resolve their
// owner; deciding whether the token is usable is the aggregate's job.
func (r *UserRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	query := `
		SELECT ` + prefixColumns("u", userColumns) + `
		FROM users u
		JOIN user_refresh_tokens rt ON rt.user_id = u.id
		WHERE rt.token = $1` + r.lockClause("u")
	return r.loadAggregate(ctx, query, token)
}

// ExistsByEmail reports whether any user is registered under the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email domain.Email) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

// Add inserts a new user aggregate.
func (r *UserRepository) Add(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		u.ID(),
		u.FirstName(),
		u.LastName(),
		u.Email().String(),
		u.PasswordHash().String(),
		u.IsActive(),
		u.LastLoginAt(),
		u.CreatedAt(),
		u.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email().String())
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return r.writeTokens(ctx, u)
}

// Update persists the current state of the aggregate. The stored token
// rows are replaced wholesale so the database mirrors the in-memory
// collection, pruning included.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password_hash = $4,
		    is_active = $5, last_login_at = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.db.Exec(ctx, query,
		u.FirstName(),
		u.LastName(),
		u.Email().String(),
		u.PasswordHash().String(),
		u.IsActive(),
		u.LastLoginAt(),
		u.UpdatedAt(),
		u.ID(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email().String())
		}
		return fmt.Errorf("update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID())
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM user_refresh_tokens WHERE user_id = $1`, u.ID(),
	); err != nil {
		return fmt.Errorf("clear refresh tokens: %w", err)
	}

	return r.writeTokens(ctx, u)
}

func (r *UserRepository) writeTokens(ctx context.Context, u *domain.User) error {
	for _, rt := range u.RefreshTokens() {
		_, err := r.db.Exec(ctx, `
			INSERT INTO user_refresh_tokens (token, user_id, expires_at, created_at, revoked, revoked_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			rt.Token(),
			u.ID(),
			rt.ExpiresAt(),
			rt.CreatedAt(),
			rt.Revoked(),
			rt.RevokedAt(),
		)
		if err != nil {
			return fmt.Errorf("insert refresh token: %w", err)
		}
	}
	return nil
}

func (r *UserRepository) loadAggregate(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		id, firstName, lastName string
		email, passwordHash     string
		isActive                bool
		lastLoginAt             *time.Time
		createdAt               time.Time
		updatedAt               *time.Time
	)

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&id, &firstName, &lastName, &email, &passwordHash,
		&isActive, &lastLoginAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	tokens, err := r.loadTokens(ctx, id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateUser(
		id, firstName, lastName, email, passwordHash,
		isActive, lastLoginAt, tokens, createdAt, updatedAt,
	), nil
}

func (r *UserRepository) loadTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	rows, err := r.db.Query(ctx, `
		SELECT token, expires_at, created_at, revoked, revoked_at
		FROM user_refresh_tokens
		WHERE user_id = $1
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.RefreshToken
	for rows.Next() {
		var (
			token     string
			expiresAt time.Time
			createdAt time.Time
			revoked   bool
			revokedAt *time.Time
		)
		if err := rows.Scan(&token, &expiresAt, &createdAt, &revoked, &revokedAt); err != nil {
			return nil, fmt.Errorf("scan refresh token row: %w", err)
		}
		tokens = append(tokens, domain.RehydrateRefreshToken(token, expiresAt, createdAt, revoked, revokedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh token rows: %w", err)
	}

	return tokens, nil
}

// lockClause returns " FOR UPDATE" (optionally "FOR UPDATE OF alias") when
// the repository is transaction-scoped.
func (r *UserRepository) lockClause(alias ...string) string {
	if !r.locking {
		return ""
	}
	if len(alias) > 0 {
		return " FOR UPDATE OF " + alias[0]
	}
	return " FOR UPDATE"
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
