package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- Stubs ---

type stubTxManager struct{ calls int }

func (s *stubTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

type stubOrderRepo struct {
	created       []*domain.Order
	orders        map[string]*domain.Order
	history       []domain.OrderHistory
	statusUpdates []string
	paymentRef    string
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order)}
}

func (s *stubOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	o.ID = fmt.Sprintf("order-%d", len(s.created)+1)
	s.created = append(s.created, o)
	s.orders[o.ID] = o
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) GetByUserID(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) GetAll(_ context.Context, _ domain.OrderFilter) ([]domain.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	s.statusUpdates = append(s.statusUpdates, status)
	if o, ok := s.orders[id]; ok {
		o.Status = status
	}
	return nil
}

func (s *stubOrderRepo) UpdatePaymentStatus(_ context.Context, id, status string) error {
	if o, ok := s.orders[id]; ok {
		o.PaymentStatus = status
	}
	return nil
}

func (s *stubOrderRepo) SetPaymentOrderID(_ context.Context, _, paymentOrderID string) error {
	s.paymentRef = paymentOrderID
	return nil
}

func (s *stubOrderRepo) CreateOrderHistory(_ context.Context, h *domain.OrderHistory) error {
	s.history = append(s.history, *h)
	return nil
}

func (s *stubOrderRepo) GetOrderHistory(_ context.Context, _ string) ([]domain.OrderHistory, error) {
	return s.history, nil
}

type stubProductRepo struct {
	products    map[string]domain.Product
	adjustments map[string]int
	adjustErr   error
}

func newStubProductRepo(products ...domain.Product) *stubProductRepo {
	s := &stubProductRepo{
		products:    make(map[string]domain.Product),
		adjustments: make(map[string]int),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *stubProductRepo) GetPublishedByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.IsPublished {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProductRepo) AdjustStock(_ context.Context, sizeID string, delta int) error {
	if s.adjustErr != nil {
		return s.adjustErr
	}
	s.adjustments[sizeID] += delta
	return nil
}

func (s *stubProductRepo) GetProducts(_ context.Context, _ domain.ProductFilter) ([]domain.Product, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubProductRepo) GetProductBySlug(_ context.Context, _ string) (*domain.Product, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProductRepo) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductRepo) CreateProduct(_ context.Context, _ *domain.Product) error { return nil }
func (s *stubProductRepo) UpdateProduct(_ context.Context, _ *domain.Product) error { return nil }
func (s *stubProductRepo) UpdateProductStatus(_ context.Context, _ string, _ bool) error {
	return nil
}
func (s *stubProductRepo) DeleteProduct(_ context.Context, _ string) error { return nil }

func (s *stubProductRepo) GetCategories(_ context.Context, _ bool) ([]domain.Category, error) {
	return nil, nil
}

func (s *stubProductRepo) GetCategoryBySlug(_ context.Context, _ string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (s *stubProductRepo) CreateCategory(_ context.Context, _ *domain.Category) error { return nil }
func (s *stubProductRepo) UpdateCategory(_ context.Context, _ *domain.Category) error { return nil }
func (s *stubProductRepo) DeleteCategory(_ context.Context, _ string) error           { return nil }

type stubCouponRepo struct {
	byCode       map[string]*domain.Coupon
	byID         map[uuid.UUID]*domain.Coupon
	created      []*domain.Coupon
	updated      []*domain.Coupon
	incremented  []uuid.UUID
	incrementErr error
}

func newStubCouponRepo(coupons ...*domain.Coupon) *stubCouponRepo {
	s := &stubCouponRepo{
		byCode: make(map[string]*domain.Coupon),
		byID:   make(map[uuid.UUID]*domain.Coupon),
	}
	for _, c := range coupons {
		s.byCode[c.Code] = c
		s.byID[c.ID] = c
	}
	return s
}

func (s *stubCouponRepo) CreateCoupon(_ context.Context, c *domain.Coupon) error {
	c.ID = uuid.New()
	s.byCode[c.Code] = c
	s.byID[c.ID] = c
	s.created = append(s.created, c)
	return nil
}

func (s *stubCouponRepo) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	c, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return c, nil
}

func (s *stubCouponRepo) GetCouponByID(_ context.Context, id uuid.UUID) (*domain.Coupon, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return c, nil
}

func (s *stubCouponRepo) ListCoupons(_ context.Context, _, _ int) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, c := range s.created {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCouponRepo) CountCoupons(_ context.Context) (int64, error) {
	return int64(len(s.created)), nil
}

func (s *stubCouponRepo) UpdateCoupon(_ context.Context, c *domain.Coupon) error {
	s.updated = append(s.updated, c)
	return nil
}

func (s *stubCouponRepo) IncrementCouponUsage(_ context.Context, id uuid.UUID) error {
	if s.incrementErr != nil {
		return s.incrementErr
	}
	s.incremented = append(s.incremented, id)
	return nil
}

func (s *stubCouponRepo) DeleteCoupon(_ context.Context, _ uuid.UUID) error { return nil }

type stubSettingsRepo struct {
	zones     map[string]*domain.ShippingZone
	countdown *domain.DropCountdown
}

func (s *stubSettingsRepo) GetShippingZoneByKey(_ context.Context, key string) (*domain.ShippingZone, error) {
	z, ok := s.zones[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return z, nil
}

func (s *stubSettingsRepo) GetDropCountdown(_ context.Context) (*domain.DropCountdown, error) {
	if s.countdown == nil {
		return nil, domain.ErrNotFound
	}
	return s.countdown, nil
}

func (s *stubSettingsRepo) UpsertDropCountdown(_ context.Context, d *domain.DropCountdown) (*domain.DropCountdown, error) {
	d.ID = 1
	s.countdown = d
	return d, nil
}

func (s *stubSettingsRepo) GetActiveShippingZones(_ context.Context) ([]domain.ShippingZone, error) {
	return nil, nil
}

func (s *stubSettingsRepo) GetAllShippingZones(_ context.Context) ([]domain.ShippingZone, error) {
	return nil, nil
}

func (s *stubSettingsRepo) CreateShippingZone(_ context.Context, z *domain.ShippingZone) (*domain.ShippingZone, error) {
	return z, nil
}

func (s *stubSettingsRepo) UpdateShippingZone(_ context.Context, z *domain.ShippingZone) (*domain.ShippingZone, error) {
	return z, nil
}

func (s *stubSettingsRepo) DeleteShippingZone(_ context.Context, _ int32) error { return nil }

type stubCartStore struct{ clears int }

func (s *stubCartStore) GetCartLines(_ context.Context, _ string) ([]domain.CartLine, error) {
	return nil, nil
}
func (s *stubCartStore) UpsertCartLine(_ context.Context, _ string, _ domain.CartLine) error {
	return nil
}
func (s *stubCartStore) DeleteCartLine(_ context.Context, _, _, _ string) error { return nil }
func (s *stubCartStore) ClearCart(_ context.Context, _ string) error {
	s.clears++
	return nil
}

type stubWishlistStore struct{}

func (s *stubWishlistStore) GetWishlist(_ context.Context, _ string) ([]domain.WishlistEntry, error) {
	return nil, nil
}
func (s *stubWishlistStore) AddWishlistEntry(_ context.Context, _, _ string) error    { return nil }
func (s *stubWishlistStore) RemoveWishlistEntry(_ context.Context, _, _ string) error { return nil }
func (s *stubWishlistStore) ClearWishlist(_ context.Context, _ string) error          { return nil }

type stubGateway struct {
	id    string
	err   error
	calls int
}

func (s *stubGateway) CreatePaymentOrder(_ context.Context, _ float64, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

// --- Fixtures ---

type checkoutFixture struct {
	uc       *OrderUsecase
	session  *cart.Container
	orders   *stubOrderRepo
	products *stubProductRepo
	coupons  *stubCouponRepo
	cartRows *stubCartStore
	gateway  *stubGateway
	tx       *stubTxManager
}

func newCheckoutFixture(t *testing.T, coupons ...*domain.Coupon) *checkoutFixture {
	t.Helper()

	products := newStubProductRepo(domain.Product{
		ID:          "p1",
		Name:        "Oversized Tee",
		Price:       500,
		IsPublished: true,
		Sizes: []domain.SizeStock{
			{ID: "size-m", Label: "M", Stock: 10},
			{ID: "size-l", Label: "L", Stock: 0},
		},
	})

	f := &checkoutFixture{
		orders:   newStubOrderRepo(),
		products: products,
		coupons:  newStubCouponRepo(coupons...),
		cartRows: &stubCartStore{},
		gateway:  &stubGateway{id: "pay_abc123"},
		tx:       &stubTxManager{},
	}
	settings := &stubSettingsRepo{zones: map[string]*domain.ShippingZone{
		"standard": {ID: 1, Key: "standard", Label: "Standard", Cost: 49},
		"express":  {ID: 2, Key: "express", Label: "Express", Cost: 99},
	}}

	f.uc = NewOrderUsecase(f.orders, f.products, f.coupons, settings, f.cartRows, f.gateway, f.tx)
	f.session = cart.NewContainer(f.cartRows, &stubWishlistStore{}, f.coupons, f.products, zerolog.Nop())
	return f
}

func activeCoupon(code string, percent int) *domain.Coupon {
	return &domain.Coupon{
		ID:              uuid.New(),
		Code:            code,
		DiscountPercent: percent,
		Status:          domain.CouponStatusActive,
	}
}

// --- Checkout ---

func TestCheckoutComputesTotalsAndCountsCouponUsage(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, activeCoupon("MOLLY10", 10))

	if err := f.session.AddToCart(ctx, "p1", "M", 2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res := f.session.ApplyCoupon(ctx, "MOLLY10"); !res.Success {
		t.Fatalf("ApplyCoupon failed: %s", res.Message)
	}

	order, err := f.uc.Checkout(ctx, "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if order.Subtotal != 1000 {
		t.Errorf("subtotal = %v, want 1000", order.Subtotal)
	}
	if order.DiscountAmount != 100 {
		t.Errorf("discount = %v, want 100", order.DiscountAmount)
	}
	if order.ShippingFee != 49 {
		t.Errorf("shipping = %v, want 49", order.ShippingFee)
	}
	if order.TotalAmount != 949 {
		t.Errorf("total = %v, want 949", order.TotalAmount)
	}
	if order.CouponCode == nil || *order.CouponCode != "MOLLY10" {
		t.Errorf("couponCode = %v, want MOLLY10", order.CouponCode)
	}

	if got := f.products.adjustments["size-m"]; got != -2 {
		t.Errorf("stock adjustment = %d, want -2", got)
	}
	if len(f.coupons.incremented) != 1 {
		t.Errorf("coupon usage incremented %d times, want 1", len(f.coupons.incremented))
	}
	if f.cartRows.clears == 0 {
		t.Error("persisted cart rows were not cleared")
	}
	if f.tx.calls != 1 {
		t.Errorf("transactions = %d, want 1", f.tx.calls)
	}

	// Session starts clean for the next cart.
	if len(f.session.Lines()) != 0 {
		t.Error("session cart not cleared after checkout")
	}
	if f.session.AppliedCoupon() != nil {
		t.Error("session coupon not removed after checkout")
	}
	// COD never touches the gateway.
	if f.gateway.calls != 0 {
		t.Errorf("gateway called %d times for COD", f.gateway.calls)
	}
}

func TestCheckoutCreatesGatewayOrder(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	if err := f.session.AddToCart(ctx, "p1", "M", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	order, err := f.uc.Checkout(ctx, "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodGateway,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if f.gateway.calls != 1 {
		t.Fatalf("gateway called %d times, want 1", f.gateway.calls)
	}
	if order.PaymentOrderID == nil || *order.PaymentOrderID != "pay_abc123" {
		t.Errorf("paymentOrderID = %v, want pay_abc123", order.PaymentOrderID)
	}
	if f.orders.paymentRef != "pay_abc123" {
		t.Errorf("stored payment ref = %q, want pay_abc123", f.orders.paymentRef)
	}
}

func TestCheckoutSurvivesGatewayFailure(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.gateway.err = errors.New("gateway down")

	if err := f.session.AddToCart(ctx, "p1", "M", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	order, err := f.uc.Checkout(ctx, "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodGateway,
	})
	if err != nil {
		t.Fatalf("Checkout should succeed when only the gateway fails, got %v", err)
	}
	if order.PaymentOrderID != nil {
		t.Errorf("paymentOrderID = %v, want nil", order.PaymentOrderID)
	}
	if len(f.orders.created) != 1 {
		t.Errorf("orders created = %d, want 1", len(f.orders.created))
	}
}

func TestCheckoutAbortsWhenCouponExhausted(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, activeCoupon("MOLLY10", 10))
	f.coupons.incrementErr = domain.ErrCouponExhausted

	if err := f.session.AddToCart(ctx, "p1", "M", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if res := f.session.ApplyCoupon(ctx, "MOLLY10"); !res.Success {
		t.Fatalf("ApplyCoupon failed: %s", res.Message)
	}

	_, err := f.uc.Checkout(ctx, "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err == nil {
		t.Fatal("expected checkout to fail on exhausted coupon")
	}

	// Session survives a failed checkout untouched.
	if len(f.session.Lines()) != 1 {
		t.Error("session cart cleared despite failed checkout")
	}
	if f.session.AppliedCoupon() == nil {
		t.Error("session coupon removed despite failed checkout")
	}
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	if err := f.session.AddToCart(ctx, "p1", "M", 20); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	_, err := f.uc.Checkout(ctx, "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err == nil {
		t.Fatal("expected checkout to fail on insufficient stock")
	}
	if len(f.orders.created) != 0 {
		t.Errorf("orders created = %d, want 0", len(f.orders.created))
	}
}

func TestCheckoutRejectsDroppedSize(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	if err := f.session.AddToCart(ctx, "p1", "XXL", 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	_, err := f.uc.Checkout(ctx, "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err == nil {
		t.Fatal("expected checkout to fail when the size is no longer offered")
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.uc.Checkout(context.Background(), "user-1", f.session, CheckoutReq{
		PaymentMethod: domain.PaymentMethodCOD,
	})
	if err == nil {
		t.Fatal("expected checkout to fail on empty cart")
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.uc.Checkout(context.Background(), "user-1", f.session, CheckoutReq{
		PaymentMethod: "barter",
	})
	if err == nil {
		t.Fatal("expected checkout to fail on unknown payment method")
	}
}

// --- Status transitions ---

func TestValidateOrderTransition(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		wantErr bool
	}{
		{"forward single step", domain.OrderStatusPending, domain.OrderStatusConfirmed, false},
		{"forward jump", domain.OrderStatusPending, domain.OrderStatusCancelled, false},
		{"same status", domain.OrderStatusShipped, domain.OrderStatusShipped, false},
		{"backward", domain.OrderStatusDelivered, domain.OrderStatusPending, true},
		{"backward one step", domain.OrderStatusShipped, domain.OrderStatusProcessing, true},
		{"unknown target", domain.OrderStatusPending, "teleported", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOrderTransition(tt.current, tt.next)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOrderTransition(%q, %q) = %v, wantErr %v", tt.current, tt.next, err, tt.wantErr)
			}
		})
	}
}

func TestUpdateOrderStatusRecordsHistory(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.orders.orders["o1"] = &domain.Order{ID: "o1", Status: domain.OrderStatusPending}

	if err := f.uc.UpdateOrderStatus(ctx, "o1", domain.OrderStatusConfirmed, "", "admin-1"); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}

	if got := f.orders.orders["o1"].Status; got != domain.OrderStatusConfirmed {
		t.Errorf("status = %q, want confirmed", got)
	}
	if len(f.orders.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(f.orders.history))
	}
	h := f.orders.history[0]
	if h.PreviousStatus == nil || *h.PreviousStatus != domain.OrderStatusPending {
		t.Errorf("previousStatus = %v, want pending", h.PreviousStatus)
	}
	if h.NewStatus != domain.OrderStatusConfirmed {
		t.Errorf("newStatus = %q, want confirmed", h.NewStatus)
	}
}

func TestUpdateOrderStatusRejectsBackward(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.orders.orders["o1"] = &domain.Order{ID: "o1", Status: domain.OrderStatusDelivered}

	err := f.uc.UpdateOrderStatus(ctx, "o1", domain.OrderStatusPending, "", "admin-1")
	if err == nil {
		t.Fatal("expected backward transition to be rejected")
	}
	if len(f.orders.statusUpdates) != 0 {
		t.Errorf("status updated %d times, want 0", len(f.orders.statusUpdates))
	}
}
