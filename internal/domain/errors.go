package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Coupon applicability failures. The cart container maps these to
	// shopper-facing messages; checkout treats all of them as rejection.
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponNotYet    = errors.New("coupon is not yet active")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)
