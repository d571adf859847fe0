package domain

import (
	"context"
	"time"
)

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	Search        string
}

// --- Order Entities ---

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	User            User        `json:"user"`
	Status          string      `json:"status"`
	Subtotal        float64     `json:"subtotal"`
	DiscountAmount  float64     `json:"discountAmount"`
	CouponCode      *string     `json:"couponCode"`
	ShippingFee     float64     `json:"shippingFee"`
	TotalAmount     float64     `json:"totalAmount"`
	ShippingAddress JSONB       `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentOrderID  *string     `json:"paymentOrderId"` // gateway-side order reference
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Product   Product `json:"product"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at time of purchase
}

type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Return is a shopper-initiated return request for a delivered order item.
type Return struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	OrderItemID string    `json:"orderItemId"`
	UserID      string    `json:"userId"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"` // requested, approved, rejected, completed
	AdminNote   *string   `json:"adminNote"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdatePaymentStatus(ctx context.Context, id, status string) error
	SetPaymentOrderID(ctx context.Context, id, paymentOrderID string) error

	CreateOrderHistory(ctx context.Context, history *OrderHistory) error
	GetOrderHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}

type ReturnRepository interface {
	CreateReturn(ctx context.Context, ret *Return) error
	GetReturnByID(ctx context.Context, id string) (*Return, error)
	GetReturnsByUser(ctx context.Context, userID string) ([]Return, error)
	ListReturns(ctx context.Context, status string, limit, offset int) ([]Return, int64, error)
	UpdateReturnStatus(ctx context.Context, id, status string, adminNote *string) error
}
