package usecase

import (
	"context"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestCreateCouponValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CouponRequest
		wantErr bool
	}{
		{"valid minimal", CouponRequest{Code: "WELCOME5", DiscountPercent: 5}, false},
		{"valid with window", CouponRequest{
			Code:            "DROP20",
			DiscountPercent: 20,
			Status:          "scheduled",
			ValidFrom:       "2026-09-01T00:00:00Z",
			ValidUntil:      "2026-09-08",
		}, false},
		{"empty code", CouponRequest{Code: "   ", DiscountPercent: 10}, true},
		{"zero percent", CouponRequest{Code: "FREE", DiscountPercent: 0}, true},
		{"over 100 percent", CouponRequest{Code: "MEGA", DiscountPercent: 101}, true},
		{"unknown status", CouponRequest{Code: "ODD", DiscountPercent: 10, Status: "paused"}, true},
		{"zero max usage", CouponRequest{Code: "CAP", DiscountPercent: 10, MaxUsage: intPtr(0)}, true},
		{"window inverted", CouponRequest{
			Code:            "BACKWARDS",
			DiscountPercent: 10,
			ValidFrom:       "2026-09-08",
			ValidUntil:      "2026-09-01",
		}, true},
		{"garbage date", CouponRequest{Code: "WHEN", DiscountPercent: 10, ValidFrom: "next tuesday"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewCouponUsecase(newStubCouponRepo())
			_, err := uc.CreateCoupon(context.Background(), tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateCoupon() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateCouponDefaultsToDraft(t *testing.T) {
	uc := NewCouponUsecase(newStubCouponRepo())
	coupon, err := uc.CreateCoupon(context.Background(), CouponRequest{Code: "NEW10", DiscountPercent: 10})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if coupon.Status != "draft" {
		t.Errorf("status = %q, want draft", coupon.Status)
	}
}

func TestCreateCouponPreservesCase(t *testing.T) {
	repo := newStubCouponRepo()
	uc := NewCouponUsecase(repo)
	ctx := context.Background()

	coupon, err := uc.CreateCoupon(ctx, CouponRequest{Code: "  MollyVIP10  ", DiscountPercent: 15})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if coupon.Code != "MollyVIP10" {
		t.Errorf("code = %q, want MollyVIP10 (trimmed, case preserved)", coupon.Code)
	}

	// Codes differing only in case are distinct coupons.
	if _, err := uc.CreateCoupon(ctx, CouponRequest{Code: "MOLLYVIP10", DiscountPercent: 15}); err != nil {
		t.Errorf("uppercase variant should not collide: %v", err)
	}
}

func TestCreateCouponRejectsDuplicateCode(t *testing.T) {
	uc := NewCouponUsecase(newStubCouponRepo())
	ctx := context.Background()

	if _, err := uc.CreateCoupon(ctx, CouponRequest{Code: "MOLLY10", DiscountPercent: 10}); err != nil {
		t.Fatalf("first CreateCoupon: %v", err)
	}
	if _, err := uc.CreateCoupon(ctx, CouponRequest{Code: "MOLLY10", DiscountPercent: 20}); err == nil {
		t.Error("expected duplicate code to be rejected")
	}
}

func TestUpdateCouponKeepsUsageCount(t *testing.T) {
	existing := activeCoupon("MOLLY10", 10)
	existing.UsageCount = 7
	repo := newStubCouponRepo(existing)
	uc := NewCouponUsecase(repo)

	updated, err := uc.UpdateCoupon(context.Background(), existing.ID.String(), CouponRequest{
		Code:            "MOLLY10",
		DiscountPercent: 25,
		Status:          "active",
	})
	if err != nil {
		t.Fatalf("UpdateCoupon: %v", err)
	}
	if updated.UsageCount != 7 {
		t.Errorf("usageCount = %d, want 7 (preserved across edits)", updated.UsageCount)
	}
	if updated.DiscountPercent != 25 {
		t.Errorf("discountPercent = %d, want 25", updated.DiscountPercent)
	}
}

func TestUpdateCouponRejectsTakenCode(t *testing.T) {
	a := activeCoupon("FIRST10", 10)
	b := activeCoupon("SECOND10", 10)
	uc := NewCouponUsecase(newStubCouponRepo(a, b))

	_, err := uc.UpdateCoupon(context.Background(), b.ID.String(), CouponRequest{
		Code:            "FIRST10",
		DiscountPercent: 10,
		Status:          "active",
	})
	if err == nil {
		t.Error("expected rename onto an existing code to be rejected")
	}
}

func TestUpdateCouponRejectsBadID(t *testing.T) {
	uc := NewCouponUsecase(newStubCouponRepo())
	if _, err := uc.UpdateCoupon(context.Background(), "not-a-uuid", CouponRequest{Code: "X10", DiscountPercent: 10}); err == nil {
		t.Error("expected invalid id to be rejected")
	}
}
