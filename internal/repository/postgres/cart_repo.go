package postgres

import (
	"context"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type cartStore struct {
	db *pgxpool.Pool
}

func NewCartStore(db *pgxpool.Pool) domain.CartStore {
	return &cartStore{db: db}
}

func (r *cartStore) GetCartLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
SELECT product_id::text, size, quantity, added_at
FROM cart_items
WHERE user_id = $1
ORDER BY added_at, product_id, size
`
	rows, err := from(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Size, &l.Quantity, &l.AddedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *cartStore) UpsertCartLine(ctx context.Context, userID string, line domain.CartLine) error {
	// Quantity is the merged total, not a delta: the container owns the
	// merge and the row simply mirrors it.
	const q = `
INSERT INTO cart_items (user_id, product_id, size, quantity, added_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, product_id, size)
DO UPDATE SET quantity = EXCLUDED.quantity
`
	_, err := from(ctx, r.db).Exec(ctx, q, userID, line.ProductID, line.Size, line.Quantity, line.AddedAt)
	return err
}

func (r *cartStore) DeleteCartLine(ctx context.Context, userID, productID, size string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND size = $3`
	_, err := from(ctx, r.db).Exec(ctx, q, userID, productID, size)
	return err
}

func (r *cartStore) ClearCart(ctx context.Context, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1`
	_, err := from(ctx, r.db).Exec(ctx, q, userID)
	return err
}
