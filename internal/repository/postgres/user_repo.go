package postgres

import (
	"context"
	"errors"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id::text, email, role, first_name, last_name, phone, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Role, &u.FirstName, &u.LastName, &u.Phone, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(from(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(from(ctx, r.db).QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Upsert creates the account on first OTP login and refreshes profile
// fields afterwards. Email is the natural key.
func (r *userRepository) Upsert(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (email, role, first_name, last_name, phone)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE SET
    first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
    last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), users.last_name),
    phone = COALESCE(NULLIF(EXCLUDED.phone, ''), users.phone),
    updated_at = now()
RETURNING ` + userColumns
	got, err := scanUser(from(ctx, r.db).QueryRow(ctx, q, u.Email, u.Role, u.FirstName, u.LastName, u.Phone))
	if err != nil {
		return err
	}
	*u = *got
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	var total int64
	if err := from(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := from(ctx, r.db).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

const addressColumns = `id::text, user_id::text, label, first_name, last_name, phone, address_line, city, state, pin_code, is_default, created_at`

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	if err := row.Scan(
		&a.ID, &a.UserID, &a.Label, &a.FirstName, &a.LastName, &a.Phone,
		&a.AddressLine, &a.City, &a.State, &a.PinCode, &a.IsDefault, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *userRepository) AddAddress(ctx context.Context, a *domain.Address) error {
	db := from(ctx, r.db)
	if a.IsDefault {
		if _, err := db.Exec(ctx, `UPDATE addresses SET is_default = false WHERE user_id = $1`, a.UserID); err != nil {
			return err
		}
	}
	const q = `
INSERT INTO addresses (user_id, label, first_name, last_name, phone, address_line, city, state, pin_code, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id::text, created_at
`
	return db.QueryRow(ctx, q,
		a.UserID, a.Label, a.FirstName, a.LastName, a.Phone,
		a.AddressLine, a.City, a.State, a.PinCode, a.IsDefault,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *userRepository) GetAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	q := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	rows, err := from(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

func (r *userRepository) UpdateAddress(ctx context.Context, a *domain.Address) error {
	db := from(ctx, r.db)
	if a.IsDefault {
		if _, err := db.Exec(ctx, `UPDATE addresses SET is_default = false WHERE user_id = $1 AND id <> $2`, a.UserID, a.ID); err != nil {
			return err
		}
	}
	const q = `
UPDATE addresses
SET label = $3, first_name = $4, last_name = $5, phone = $6,
    address_line = $7, city = $8, state = $9, pin_code = $10, is_default = $11
WHERE id = $1 AND user_id = $2
`
	tag, err := db.Exec(ctx, q,
		a.ID, a.UserID, a.Label, a.FirstName, a.LastName, a.Phone,
		a.AddressLine, a.City, a.State, a.PinCode, a.IsDefault,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	tag, err := from(ctx, r.db).Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
