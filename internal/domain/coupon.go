package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Coupon is a percent-off promotional code. Codes are unique and matched
// case-sensitively; the container trims surrounding whitespace before
// lookup but never case-folds.
type Coupon struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discountPercent"` // 1-100
	Description     string     `json:"description"`
	Status          string     `json:"status"` // draft, active, scheduled, expired
	UsageCount      int        `json:"usageCount"`
	MaxUsage        *int       `json:"maxUsage"` // nil = unlimited
	ValidFrom       *time.Time `json:"validFrom"`
	ValidUntil      *time.Time `json:"validUntil"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Applicable reports whether the coupon can be applied at the given
// instant. It returns the first failing condition as a sentinel error:
// ErrCouponInactive, ErrCouponNotYet, ErrCouponExpired, or
// ErrCouponExhausted. nil means applicable.
func (c *Coupon) Applicable(now time.Time) error {
	if c.Status != CouponStatusActive {
		return ErrCouponInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return ErrCouponNotYet
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.MaxUsage != nil && c.UsageCount >= *c.MaxUsage {
		return ErrCouponExhausted
	}
	return nil
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *Coupon) error
	// GetCouponByCode matches the stored code exactly (case-sensitive).
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	GetCouponByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	ListCoupons(ctx context.Context, limit, offset int) ([]Coupon, error)
	CountCoupons(ctx context.Context) (int64, error)
	UpdateCoupon(ctx context.Context, coupon *Coupon) error
	IncrementCouponUsage(ctx context.Context, id uuid.UUID) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
}
