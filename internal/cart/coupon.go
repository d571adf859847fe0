package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"mollywear-backend/internal/domain"
)

var (
	errEmptyProduct = errors.New("product id is required")
	errEmptySize    = errors.New("size is required")
	errBadQuantity  = errors.New("quantity must be positive")
)

// CouponResult is the structured outcome of ApplyCoupon. Validation
// failures are values, never errors thrown to the caller.
type CouponResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ApplyCoupon looks up the code (trimmed of surrounding whitespace,
// matched case-sensitively) and, when applicable, replaces any previously
// applied coupon. Usage count is not incremented here; that happens when
// an order is placed.
func (c *Container) ApplyCoupon(ctx context.Context, code string) CouponResult {
	code = strings.TrimSpace(code)
	if code == "" {
		return CouponResult{Success: false, Message: "Coupon not found"}
	}

	coupon, err := c.coupons.GetCouponByCode(ctx, code)
	if err != nil || coupon == nil {
		return CouponResult{Success: false, Message: "Coupon not found"}
	}

	if err := coupon.Applicable(c.now()); err != nil {
		return CouponResult{Success: false, Message: couponFailureMessage(err)}
	}

	c.mu.Lock()
	c.applied = coupon
	c.mu.Unlock()

	return CouponResult{
		Success: true,
		Message: fmt.Sprintf("Coupon applied: %d%% off", coupon.DiscountPercent),
	}
}

// RemoveCoupon clears the applied coupon. Idempotent.
func (c *Container) RemoveCoupon() {
	c.mu.Lock()
	c.applied = nil
	c.mu.Unlock()
}

// AppliedCoupon returns the session's coupon, nil when none is applied.
func (c *Container) AppliedCoupon() *domain.Coupon {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.applied == nil {
		return nil
	}
	cp := *c.applied
	return &cp
}

// DiscountAmount computes the discount for a subtotal, rounded to the
// currency's smallest unit and clamped to [0, subtotal].
func (c *Container) DiscountAmount(subtotal float64) float64 {
	c.mu.Lock()
	applied := c.applied
	c.mu.Unlock()

	if applied == nil || subtotal <= 0 {
		return 0
	}
	discount := math.Round(subtotal * float64(applied.DiscountPercent) / 100)
	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}

// Total is the payable amount after discount, floored at zero.
func (c *Container) Total(subtotal float64) float64 {
	total := subtotal - c.DiscountAmount(subtotal)
	if total < 0 {
		return 0
	}
	return total
}

func couponFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCouponNotYet):
		return "Coupon is not yet active"
	case errors.Is(err, domain.ErrCouponExpired):
		return "Coupon has expired"
	case errors.Is(err, domain.ErrCouponExhausted):
		return "Coupon usage limit reached"
	case errors.Is(err, domain.ErrCouponInactive):
		return "Coupon is not active"
	default:
		return "Coupon cannot be applied"
	}
}
