package repository

import (
	"context"

	"github.com/marivaldojunior/ProductManagement/internal/domain"
)

// UserRepository provides access to the user aggregate, refresh tokens
// included. Implementations load and persist the aggregate as a whole.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email domain.Email) (bool, error)
	Add(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

// UnitOfWork runs a function against a transactional UserRepository. The
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, users UserRepository) error) error
}
