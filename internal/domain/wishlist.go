package domain

import (
	"context"
	"time"
)

// WishlistEntry is a saved-for-later product reference. Set semantics: a
// productID appears at most once per user.
type WishlistEntry struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}

// WishlistStore persists wishlist rows keyed by (user, productID).
type WishlistStore interface {
	GetWishlist(ctx context.Context, userID string) ([]WishlistEntry, error)
	AddWishlistEntry(ctx context.Context, userID, productID string) error
	RemoveWishlistEntry(ctx context.Context, userID, productID string) error
	ClearWishlist(ctx context.Context, userID string) error
}
