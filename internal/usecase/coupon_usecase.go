package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mollywear-backend/internal/domain"

	"github.com/google/uuid"
)

// CouponUsecase handles admin coupon management operations.
type CouponUsecase struct {
	couponRepo domain.CouponRepository
}

func NewCouponUsecase(couponRepo domain.CouponRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo}
}

// CouponRequest is the admin input for creating or updating a coupon.
type CouponRequest struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discountPercent"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	MaxUsage        *int   `json:"maxUsage"`
	ValidFrom       string `json:"validFrom"`  // ISO8601, optional
	ValidUntil      string `json:"validUntil"` // ISO8601, optional
}

func (req *CouponRequest) toCoupon() (*domain.Coupon, error) {
	// Codes are stored and matched exactly as entered, minus surrounding
	// whitespace. No case folding anywhere.
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("coupon code is required")
	}

	if req.DiscountPercent < 1 || req.DiscountPercent > 100 {
		return nil, fmt.Errorf("discount percent must be between 1 and 100")
	}

	status := req.Status
	if status == "" {
		status = domain.CouponStatusDraft
	}
	valid := false
	for _, s := range domain.CouponStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("invalid coupon status '%s'", status)
	}

	if req.MaxUsage != nil && *req.MaxUsage <= 0 {
		return nil, fmt.Errorf("max usage must be greater than 0")
	}

	coupon := &domain.Coupon{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		Description:     req.Description,
		Status:          status,
		MaxUsage:        req.MaxUsage,
	}

	if req.ValidFrom != "" {
		t, err := parseISO8601(req.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid validFrom date")
		}
		coupon.ValidFrom = &t
	}
	if req.ValidUntil != "" {
		t, err := parseISO8601(req.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid validUntil date")
		}
		coupon.ValidUntil = &t
	}
	if coupon.ValidFrom != nil && coupon.ValidUntil != nil && coupon.ValidUntil.Before(*coupon.ValidFrom) {
		return nil, fmt.Errorf("validUntil must be after validFrom")
	}

	return coupon, nil
}

func (uc *CouponUsecase) CreateCoupon(ctx context.Context, req CouponRequest) (*domain.Coupon, error) {
	coupon, err := req.toCoupon()
	if err != nil {
		return nil, err
	}

	if existing, _ := uc.couponRepo.GetCouponByCode(ctx, coupon.Code); existing != nil {
		return nil, fmt.Errorf("coupon code '%s' already exists", coupon.Code)
	}

	if err := uc.couponRepo.CreateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

func (uc *CouponUsecase) ListCoupons(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	coupons, err := uc.couponRepo.ListCoupons(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}

	total, err := uc.couponRepo.CountCoupons(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}
	return coupons, total, nil
}

func (uc *CouponUsecase) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon ID")
	}
	return uc.couponRepo.GetCouponByID(ctx, uid)
}

func (uc *CouponUsecase) UpdateCoupon(ctx context.Context, id string, req CouponRequest) (*domain.Coupon, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon ID")
	}

	existing, err := uc.couponRepo.GetCouponByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	coupon, err := req.toCoupon()
	if err != nil {
		return nil, err
	}
	coupon.ID = uid
	coupon.UsageCount = existing.UsageCount

	if coupon.Code != existing.Code {
		if dup, _ := uc.couponRepo.GetCouponByCode(ctx, coupon.Code); dup != nil {
			return nil, fmt.Errorf("coupon code '%s' already exists", coupon.Code)
		}
	}

	if err := uc.couponRepo.UpdateCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (uc *CouponUsecase) DeleteCoupon(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid coupon ID")
	}
	return uc.couponRepo.DeleteCoupon(ctx, uid)
}

// parseISO8601 parses an ISO8601 date string, accepting a few common shapes.
func parseISO8601(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format")
}
