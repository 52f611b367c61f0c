package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marivaldojunior/ProductManagement/internal/repository"
)

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool and pgxmock.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWork implements repository.UnitOfWork over pgx transactions.
type UnitOfWork struct {
	db TxBeginner
}

// NewUnitOfWork creates a unit of work backed by the given pool.
func NewUnitOfWork(db TxBeginner) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx begins a transaction, hands fn a transaction-scoped repository,
// and commits if fn returns nil. Any error rolls the transaction back and
// is returned unchanged so callers can match on it.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, users repository.UserRepository) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, newTxUserRepository(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
