package postgres

import (
	"context"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// TransactionManager implements domain.TransactionManager using pgx.
// The open transaction travels in the context so repository methods
// called inside fn join it transparently.
type TransactionManager struct {
	db *pgxpool.Pool
}

func NewTransactionManager(db *pgxpool.Pool) domain.TransactionManager {
	return &TransactionManager{db: db}
}

func (tm *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.db.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
