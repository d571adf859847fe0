package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `o.id::text, o.user_id::text, o.status, o.subtotal, o.discount_amount, o.coupon_code, o.shipping_fee, o.total_amount, o.shipping_address, o.payment_method, o.payment_status, o.payment_order_id, o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount,
		&o.CouponCode, &o.ShippingFee, &o.TotalAmount, &o.ShippingAddress,
		&o.PaymentMethod, &o.PaymentStatus, &o.PaymentOrderID,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	const q = `
INSERT INTO orders (user_id, status, subtotal, discount_amount, coupon_code, shipping_fee, total_amount, shipping_address, payment_method, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id::text, created_at, updated_at
`
	db := from(ctx, r.db)
	if err := db.QueryRow(ctx, q,
		o.UserID, o.Status, o.Subtotal, o.DiscountAmount, o.CouponCode,
		o.ShippingFee, o.TotalAmount, o.ShippingAddress, o.PaymentMethod, o.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	const itemQ = `
INSERT INTO order_items (order_id, product_id, size, quantity, price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if err := db.QueryRow(ctx, itemQ,
			o.ID, item.ProductID, item.Size, item.Quantity, item.Price,
		).Scan(&item.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	o, err := scanOrder(from(ctx, r.db).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	orders := []domain.Order{*o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`
	rows, err := from(ctx, r.db).Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "o.status = "+arg(filter.Status))
	}
	if filter.PaymentStatus != "" {
		conds = append(conds, "o.payment_status = "+arg(filter.PaymentStatus))
	}
	if filter.Search != "" {
		conds = append(conds, "(o.id::text ILIKE "+arg("%"+filter.Search+"%")+" OR u.email ILIKE "+arg("%"+filter.Search+"%")+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	base := `FROM orders o JOIN users u ON u.id = o.user_id` + where

	var total int64
	if err := from(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	q := `SELECT ` + orderColumns + `, u.first_name, u.last_name, u.email ` + base +
		` ORDER BY o.created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := from(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount,
			&o.CouponCode, &o.ShippingFee, &o.TotalAmount, &o.ShippingAddress,
			&o.PaymentMethod, &o.PaymentStatus, &o.PaymentOrderID,
			&o.CreatedAt, &o.UpdatedAt,
			&o.User.FirstName, &o.User.LastName, &o.User.Email,
		); err != nil {
			return nil, 0, err
		}
		o.User.ID = o.UserID
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}
	const q = `
SELECT i.id::text, i.order_id::text, i.product_id::text, i.size, i.quantity, i.price,
       p.name, p.slug, p.media
FROM order_items i
JOIN products p ON p.id = i.product_id
WHERE i.order_id = ANY($1)
ORDER BY i.order_id
`
	rows, err := from(ctx, r.db).Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Size, &item.Quantity, &item.Price,
			&item.Product.Name, &item.Product.Slug, &item.Product.Media,
		); err != nil {
			return err
		}
		item.Product.ID = item.ProductID
		if o := byID[item.OrderID]; o != nil {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := from(ctx, r.db).Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	tag, err := from(ctx, r.db).Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) SetPaymentOrderID(ctx context.Context, id, paymentOrderID string) error {
	tag, err := from(ctx, r.db).Exec(ctx,
		`UPDATE orders SET payment_order_id = $2, updated_at = now() WHERE id = $1`, id, paymentOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, h *domain.OrderHistory) error {
	const q = `
INSERT INTO order_history (order_id, previous_status, new_status, reason, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at
`
	return from(ctx, r.db).QueryRow(ctx, q,
		h.OrderID, h.PreviousStatus, h.NewStatus, h.Reason, h.CreatedBy,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	const q = `
SELECT id::text, order_id::text, previous_status, new_status, reason, created_by::text, created_at
FROM order_history
WHERE order_id = $1
ORDER BY created_at
`
	rows, err := from(ctx, r.db).Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.OrderHistory
	for rows.Next() {
		var h domain.OrderHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.PreviousStatus, &h.NewStatus, &h.Reason, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
