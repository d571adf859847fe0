package postgres

import (
	"context"
	"errors"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) domain.SettingsRepository {
	return &settingsRepository{db: db}
}

// The countdown is a singleton row; upserts always target id 1.
func (r *settingsRepository) GetDropCountdown(ctx context.Context) (*domain.DropCountdown, error) {
	const q = `SELECT id, title, drop_at, is_active, updated_at FROM drop_countdown WHERE id = 1`
	var d domain.DropCountdown
	err := from(ctx, r.db).QueryRow(ctx, q).Scan(&d.ID, &d.Title, &d.DropAt, &d.IsActive, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *settingsRepository) UpsertDropCountdown(ctx context.Context, d *domain.DropCountdown) (*domain.DropCountdown, error) {
	const q = `
INSERT INTO drop_countdown (id, title, drop_at, is_active, updated_at)
VALUES (1, $1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    drop_at = EXCLUDED.drop_at,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING id, title, drop_at, is_active, updated_at
`
	var out domain.DropCountdown
	err := from(ctx, r.db).QueryRow(ctx, q, d.Title, d.DropAt, d.IsActive).
		Scan(&out.ID, &out.Title, &out.DropAt, &out.IsActive, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const zoneColumns = `id, key, label, cost, is_active, created_at, updated_at`

func scanZone(row pgx.Row) (*domain.ShippingZone, error) {
	var z domain.ShippingZone
	if err := row.Scan(&z.ID, &z.Key, &z.Label, &z.Cost, &z.IsActive, &z.CreatedAt, &z.UpdatedAt); err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *settingsRepository) listZones(ctx context.Context, activeOnly bool) ([]domain.ShippingZone, error) {
	q := `SELECT ` + zoneColumns + ` FROM shipping_zones`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY cost, key`

	rows, err := from(ctx, r.db).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.ShippingZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

func (r *settingsRepository) GetActiveShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return r.listZones(ctx, true)
}

func (r *settingsRepository) GetAllShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return r.listZones(ctx, false)
}

func (r *settingsRepository) GetShippingZoneByKey(ctx context.Context, key string) (*domain.ShippingZone, error) {
	q := `SELECT ` + zoneColumns + ` FROM shipping_zones WHERE key = $1`
	z, err := scanZone(from(ctx, r.db).QueryRow(ctx, q, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return z, nil
}

func (r *settingsRepository) CreateShippingZone(ctx context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	const q = `
INSERT INTO shipping_zones (key, label, cost, is_active)
VALUES ($1, $2, $3, $4)
RETURNING ` + zoneColumns
	return scanZone(from(ctx, r.db).QueryRow(ctx, q, zone.Key, zone.Label, zone.Cost, zone.IsActive))
}

func (r *settingsRepository) UpdateShippingZone(ctx context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	const q = `
UPDATE shipping_zones
SET key = $2, label = $3, cost = $4, is_active = $5, updated_at = now()
WHERE id = $1
RETURNING ` + zoneColumns
	z, err := scanZone(from(ctx, r.db).QueryRow(ctx, q, zone.ID, zone.Key, zone.Label, zone.Cost, zone.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return z, nil
}

func (r *settingsRepository) DeleteShippingZone(ctx context.Context, id int32) error {
	tag, err := from(ctx, r.db).Exec(ctx, `DELETE FROM shipping_zones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
