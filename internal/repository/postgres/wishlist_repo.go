package postgres

import (
	"context"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type wishlistStore struct {
	db *pgxpool.Pool
}

func NewWishlistStore(db *pgxpool.Pool) domain.WishlistStore {
	return &wishlistStore{db: db}
}

func (r *wishlistStore) GetWishlist(ctx context.Context, userID string) ([]domain.WishlistEntry, error) {
	const q = `
SELECT product_id::text, added_at
FROM wishlist_items
WHERE user_id = $1
ORDER BY added_at
`
	rows, err := from(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WishlistEntry
	for rows.Next() {
		var e domain.WishlistEntry
		if err := rows.Scan(&e.ProductID, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *wishlistStore) AddWishlistEntry(ctx context.Context, userID, productID string) error {
	// ON CONFLICT DO NOTHING keeps the operation idempotent at the row
	// level, matching the container's set semantics.
	const q = `
INSERT INTO wishlist_items (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`
	_, err := from(ctx, r.db).Exec(ctx, q, userID, productID)
	return err
}

func (r *wishlistStore) RemoveWishlistEntry(ctx context.Context, userID, productID string) error {
	const q = `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`
	_, err := from(ctx, r.db).Exec(ctx, q, userID, productID)
	return err
}

func (r *wishlistStore) ClearWishlist(ctx context.Context, userID string) error {
	const q = `DELETE FROM wishlist_items WHERE user_id = $1`
	_, err := from(ctx, r.db).Exec(ctx, q, userID)
	return err
}
