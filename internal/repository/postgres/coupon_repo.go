package postgres

import (
	"context"
	"errors"

	"mollywear-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type couponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id::text, code, discount_percent, description, status, usage_count, max_usage, valid_from, valid_until, created_at, updated_at`

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	var id string
	if err := row.Scan(
		&id, &c.Code, &c.DiscountPercent, &c.Description, &c.Status,
		&c.UsageCount, &c.MaxUsage, &c.ValidFrom, &c.ValidUntil,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	c.ID = parsed
	return &c, nil
}

func (r *couponRepository) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	const q = `
INSERT INTO coupons (code, discount_percent, description, status, max_usage, valid_from, valid_until)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, created_at, updated_at
`
	var id string
	if err := from(ctx, r.db).QueryRow(ctx, q,
		c.Code, c.DiscountPercent, c.Description, c.Status, c.MaxUsage, c.ValidFrom, c.ValidUntil,
	).Scan(&id, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	c.ID = parsed
	return nil
}

// GetCouponByCode matches the stored code byte-for-byte. No case folding:
// acceptance behavior depends on the exact match.
func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	c, err := scanCoupon(from(ctx, r.db).QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *couponRepository) GetCouponByID(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	c, err := scanCoupon(from(ctx, r.db).QueryRow(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *couponRepository) ListCoupons(ctx context.Context, limit, offset int) ([]domain.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := from(ctx, r.db).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) CountCoupons(ctx context.Context) (int64, error) {
	var count int64
	err := from(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&count)
	return count, err
}

func (r *couponRepository) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	const q = `
UPDATE coupons
SET code = $2,
    discount_percent = $3,
    description = $4,
    status = $5,
    max_usage = $6,
    valid_from = $7,
    valid_until = $8,
    updated_at = now()
WHERE id = $1
`
	tag, err := from(ctx, r.db).Exec(ctx, q,
		c.ID.String(), c.Code, c.DiscountPercent, c.Description, c.Status,
		c.MaxUsage, c.ValidFrom, c.ValidUntil,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

// IncrementCouponUsage bumps usage_count, refusing to pass max_usage.
// The guard closes the apply-vs-checkout race at the only point that
// matters: order placement.
func (r *couponRepository) IncrementCouponUsage(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE coupons
SET usage_count = usage_count + 1,
    updated_at = now()
WHERE id = $1 AND (max_usage IS NULL OR usage_count < max_usage)
`
	tag, err := from(ctx, r.db).Exec(ctx, q, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponExhausted
	}
	return nil
}

func (r *couponRepository) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	tag, err := from(ctx, r.db).Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}
