package postgres

import (
	"context"
	"errors"
	"fmt"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type returnRepository struct {
	db *pgxpool.Pool
}

func NewReturnRepository(db *pgxpool.Pool) domain.ReturnRepository {
	return &returnRepository{db: db}
}

const returnColumns = `id::text, order_id::text, order_item_id::text, user_id::text, reason, status, admin_note, created_at, updated_at`

func scanReturn(row pgx.Row) (*domain.Return, error) {
	var ret domain.Return
	if err := row.Scan(
		&ret.ID, &ret.OrderID, &ret.OrderItemID, &ret.UserID,
		&ret.Reason, &ret.Status, &ret.AdminNote, &ret.CreatedAt, &ret.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) CreateReturn(ctx context.Context, ret *domain.Return) error {
	const q = `
INSERT INTO returns (order_id, order_item_id, user_id, reason, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at, updated_at
`
	return from(ctx, r.db).QueryRow(ctx, q,
		ret.OrderID, ret.OrderItemID, ret.UserID, ret.Reason, ret.Status,
	).Scan(&ret.ID, &ret.CreatedAt, &ret.UpdatedAt)
}

func (r *returnRepository) GetReturnByID(ctx context.Context, id string) (*domain.Return, error) {
	q := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	ret, err := scanReturn(from(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ret, nil
}

func (r *returnRepository) GetReturnsByUser(ctx context.Context, userID string) ([]domain.Return, error) {
	q := `SELECT ` + returnColumns + ` FROM returns WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := from(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReturns(rows)
}

func (r *returnRepository) ListReturns(ctx context.Context, status string, limit, offset int) ([]domain.Return, int64, error) {
	countQ := `SELECT COUNT(*) FROM returns`
	listQ := `SELECT ` + returnColumns + ` FROM returns`
	var args []any
	if status != "" {
		countQ += ` WHERE status = $1`
		listQ += ` WHERE status = $1`
		args = append(args, status)
	}

	var total int64
	if err := from(ctx, r.db).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	listQ += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := from(ctx, r.db).Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	returns, err := collectReturns(rows)
	if err != nil {
		return nil, 0, err
	}
	return returns, total, nil
}

func collectReturns(rows pgx.Rows) ([]domain.Return, error) {
	var returns []domain.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, *ret)
	}
	return returns, rows.Err()
}

func (r *returnRepository) UpdateReturnStatus(ctx context.Context, id, status string, adminNote *string) error {
	const q = `
UPDATE returns
SET status = $2,
    admin_note = COALESCE($3, admin_note),
    updated_at = now()
WHERE id = $1
`
	tag, err := from(ctx, r.db).Exec(ctx, q, id, status, adminNote)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
