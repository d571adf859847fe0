package domain

import (
	"context"
	"time"
)

// --- Cart Entities ---

// CartLine is one (product, size) selection in a shopper's cart.
// At most one line exists per distinct (productID, size) pair; adding an
// existing pair increments quantity instead of duplicating.
type CartLine struct {
	ProductID string    `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Key identifies the line within a cart.
func (l CartLine) Key() CartKey {
	return CartKey{ProductID: l.ProductID, Size: l.Size}
}

type CartKey struct {
	ProductID string
	Size      string
}

// ResolvedLine is a CartLine joined with its catalog record for display.
// Lines whose product no longer resolves are omitted from resolved views.
type ResolvedLine struct {
	CartLine
	Product   Product `json:"product"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// CartStore is the persistence backend for cart rows, keyed by
// (user, productID, size). Implementations are durable; the in-memory
// container mirrors them optimistically.
type CartStore interface {
	GetCartLines(ctx context.Context, userID string) ([]CartLine, error)
	UpsertCartLine(ctx context.Context, userID string, line CartLine) error
	DeleteCartLine(ctx context.Context, userID, productID, size string) error
	ClearCart(ctx context.Context, userID string) error
}
