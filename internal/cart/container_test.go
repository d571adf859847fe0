package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mollywear-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- Stubs ---

type stubCartStore struct {
	mu      sync.Mutex
	rows    map[domain.CartKey]domain.CartLine
	upserts int
	deletes int
	clears  int
	failAll error
	loaded  []domain.CartLine
}

func newStubCartStore() *stubCartStore {
	return &stubCartStore{rows: make(map[domain.CartKey]domain.CartLine)}
}

func (s *stubCartStore) GetCartLines(_ context.Context, _ string) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	return s.loaded, nil
}

func (s *stubCartStore) UpsertCartLine(_ context.Context, _ string, line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	s.upserts++
	s.rows[line.Key()] = line
	return nil
}

func (s *stubCartStore) DeleteCartLine(_ context.Context, _ string, productID, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	s.deletes++
	delete(s.rows, domain.CartKey{ProductID: productID, Size: size})
	return nil
}

func (s *stubCartStore) ClearCart(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	s.clears++
	s.rows = make(map[domain.CartKey]domain.CartLine)
	return nil
}

func (s *stubCartStore) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts, s.deletes, s.clears
}

type stubWishlistStore struct {
	mu      sync.Mutex
	adds    int
	removes int
	loaded  []domain.WishlistEntry
}

func (s *stubWishlistStore) GetWishlist(_ context.Context, _ string) ([]domain.WishlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, nil
}

func (s *stubWishlistStore) AddWishlistEntry(_ context.Context, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adds++
	return nil
}

func (s *stubWishlistStore) RemoveWishlistEntry(_ context.Context, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	return nil
}

func (s *stubWishlistStore) ClearWishlist(_ context.Context, _ string) error { return nil }

func (s *stubWishlistStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adds, s.removes
}

type stubCouponRepo struct {
	byCode map[string]*domain.Coupon
}

func (s *stubCouponRepo) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	c, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubCouponRepo) CreateCoupon(context.Context, *domain.Coupon) error { return nil }
func (s *stubCouponRepo) GetCouponByID(context.Context, uuid.UUID) (*domain.Coupon, error) {
	return nil, domain.ErrNotFound
}
func (s *stubCouponRepo) ListCoupons(context.Context, int, int) ([]domain.Coupon, error) {
	return nil, nil
}
func (s *stubCouponRepo) CountCoupons(context.Context) (int64, error)          { return 0, nil }
func (s *stubCouponRepo) UpdateCoupon(context.Context, *domain.Coupon) error   { return nil }
func (s *stubCouponRepo) IncrementCouponUsage(context.Context, uuid.UUID) error { return nil }
func (s *stubCouponRepo) DeleteCoupon(context.Context, uuid.UUID) error        { return nil }

type stubLookup struct {
	products map[string]domain.Product
}

func (s *stubLookup) GetPublishedByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestContainer(t *testing.T, opts ...Option) (*Container, *stubCartStore, *stubWishlistStore) {
	t.Helper()
	cartStore := newStubCartStore()
	wishlistStore := &stubWishlistStore{}
	coupons := &stubCouponRepo{byCode: map[string]*domain.Coupon{}}
	lookup := &stubLookup{products: map[string]domain.Product{}}
	c := NewContainer(cartStore, wishlistStore, coupons, lookup, zerolog.Nop(), opts...)
	return c, cartStore, wishlistStore
}

// --- Tests ---

func TestAddToCartMergesSameKey(t *testing.T) {
	c, _, _ := newTestContainer(t)
	ctx := context.Background()

	if err := c.AddToCart(ctx, "p1", "M", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddToCart(ctx, "p1", "M", 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", lines[0].Quantity)
	}
}

func TestAddToCartDistinctSizes(t *testing.T) {
	c, _, _ := newTestContainer(t)
	ctx := context.Background()

	_ = c.AddToCart(ctx, "p1", "M", 1)
	_ = c.AddToCart(ctx, "p1", "L", 1)

	lines := c.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Size != "M" || lines[1].Size != "L" {
		t.Fatalf("insertion order not preserved: %+v", lines)
	}
}

func TestAddToCartValidation(t *testing.T) {
	c, _, _ := newTestContainer(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		productID string
		size      string
		qty       int
	}{
		{"empty product", "", "M", 1},
		{"empty size", "p1", "", 1},
		{"zero quantity", "p1", "M", 0},
		{"negative quantity", "p1", "M", -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.AddToCart(ctx, tc.productID, tc.size, tc.qty); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	if len(c.Lines()) != 0 {
		t.Fatal("invalid adds must not mutate state")
	}
}

func TestRemoveFromCartAbsentIsNoop(t *testing.T) {
	c, store, _ := newTestContainer(t)
	ctx := context.Background()

	_ = c.AddToCart(ctx, "p1", "M", 1)
	c.RemoveFromCart(ctx, "p9", "XL") // absent

	if len(c.Lines()) != 1 {
		t.Fatal("removing an absent line must not change the cart")
	}
	c.Flush()
	if _, deletes, _ := store.counts(); deletes != 0 {
		t.Fatalf("no delete should be issued for absent lines, got %d", deletes)
	}
}

func TestWishlistIdempotentAdd(t *testing.T) {
	c, _, wlStore := newTestContainer(t)
	ctx := context.Background()

	c.AddToWishlist(ctx, "p1")
	c.AddToWishlist(ctx, "p1")

	if got := len(c.Wishlist()); got != 1 {
		t.Fatalf("expected wishlist size 1 after duplicate add, got %d", got)
	}
	c.RemoveFromWishlist(ctx, "p2") // absent, no-op
	if got := len(c.Wishlist()); got != 1 {
		t.Fatalf("expected wishlist size 1 after absent remove, got %d", got)
	}
	c.Flush()
	if adds, removes := wlStore.counts(); adds != 0 || removes != 0 {
		t.Fatalf("guest session must not persist, got adds=%d removes=%d", adds, removes)
	}
}

func TestGuestMutationsStayInMemory(t *testing.T) {
	c, store, _ := newTestContainer(t)
	ctx := context.Background()

	_ = c.AddToCart(ctx, "p1", "M", 1)
	c.RemoveFromCart(ctx, "p1", "M")
	c.Flush()

	upserts, deletes, _ := store.counts()
	if upserts != 0 || deletes != 0 {
		t.Fatalf("guest cart must not hit the store, got upserts=%d deletes=%d", upserts, deletes)
	}
}

func TestBoundUserMutationsPersist(t *testing.T) {
	c, store, wlStore := newTestContainer(t)
	ctx := context.Background()

	if err := c.BindUser(ctx, "u1"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	_ = c.AddToCart(ctx, "p1", "M", 2)
	_ = c.AddToCart(ctx, "p1", "M", 1)
	c.AddToWishlist(ctx, "p2")
	c.RemoveFromCart(ctx, "p1", "M")
	c.Flush()

	upserts, deletes, _ := store.counts()
	if upserts != 2 || deletes != 1 {
		t.Fatalf("expected 2 upserts + 1 delete, got %d/%d", upserts, deletes)
	}
	adds, _ := wlStore.counts()
	if adds != 1 {
		t.Fatalf("expected 1 wishlist add, got %d", adds)
	}
}

func TestPersistFailureIsSwallowedAndReported(t *testing.T) {
	var mu sync.Mutex
	var failedOps []string
	hook := func(op, userID string, err error) {
		mu.Lock()
		failedOps = append(failedOps, op)
		mu.Unlock()
	}

	c, store, _ := newTestContainer(t, WithPersistFailureHook(hook))
	ctx := context.Background()
	if err := c.BindUser(ctx, "u1"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	store.mu.Lock()
	store.failAll = errors.New("backend down")
	store.mu.Unlock()

	if err := c.AddToCart(ctx, "p1", "M", 1); err != nil {
		t.Fatalf("optimistic add must not fail: %v", err)
	}
	c.Flush()

	// In-memory state stands despite the failed write.
	if !c.IsInCart("p1", "M") {
		t.Fatal("optimistic state must survive a failed persistence write")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(failedOps) != 1 || failedOps[0] != "cart.upsert" {
		t.Fatalf("expected one cart.upsert failure, got %v", failedOps)
	}
}

func TestBindUserReplacesGuestState(t *testing.T) {
	c, store, wlStore := newTestContainer(t)
	ctx := context.Background()

	// Guest session accumulates state.
	_ = c.AddToCart(ctx, "guest-p", "S", 1)
	c.AddToWishlist(ctx, "guest-w")

	// Server rows win on login.
	store.loaded = []domain.CartLine{{ProductID: "srv-p", Size: "M", Quantity: 2}}
	wlStore.loaded = []domain.WishlistEntry{{ProductID: "srv-w"}}

	if err := c.BindUser(ctx, "u1"); err != nil {
		t.Fatalf("bind: %v", err)
	}

	lines := c.Lines()
	if len(lines) != 1 || lines[0].ProductID != "srv-p" {
		t.Fatalf("expected server cart to replace guest cart, got %+v", lines)
	}
	if c.IsInWishlist("guest-w") || !c.IsInWishlist("srv-w") {
		t.Fatal("expected server wishlist to replace guest wishlist")
	}
}

func TestResetClearsSession(t *testing.T) {
	c, _, _ := newTestContainer(t)
	ctx := context.Background()

	_ = c.AddToCart(ctx, "p1", "M", 1)
	c.AddToWishlist(ctx, "p2")
	_ = c.BindUser(ctx, "u1")
	c.Reset()

	if len(c.Lines()) != 0 || len(c.Wishlist()) != 0 || c.UserID() != "" || c.AppliedCoupon() != nil {
		t.Fatal("reset must clear all session state")
	}
}

func TestClearCartDeletesPersistedRows(t *testing.T) {
	c, store, _ := newTestContainer(t)
	ctx := context.Background()

	_ = c.BindUser(ctx, "u1")
	_ = c.AddToCart(ctx, "p1", "M", 1)
	c.ClearCart(ctx)
	c.Flush()

	if len(c.Lines()) != 0 {
		t.Fatal("cart must be empty after clear")
	}
	if _, _, clears := store.counts(); clears != 1 {
		t.Fatalf("expected 1 store clear, got %d", clears)
	}
}

func TestResolveFiltersUnresolvableProducts(t *testing.T) {
	cartStore := newStubCartStore()
	wlStore := &stubWishlistStore{}
	coupons := &stubCouponRepo{byCode: map[string]*domain.Coupon{}}
	lookup := &stubLookup{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Oversized Tee", Price: 500},
	}}
	c := NewContainer(cartStore, wlStore, coupons, lookup, zerolog.Nop())
	ctx := context.Background()

	_ = c.AddToCart(ctx, "p1", "M", 2)
	_ = c.AddToCart(ctx, "deleted-p", "L", 1)

	resolved, subtotal, err := c.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("unresolvable line must be filtered, got %d lines", len(resolved))
	}
	if subtotal != 1000 {
		t.Fatalf("expected subtotal 1000, got %v", subtotal)
	}
	// Raw state still holds both lines.
	if len(c.Lines()) != 2 {
		t.Fatal("raw state must keep unresolvable lines")
	}
}

func TestResolveUsesSalePrice(t *testing.T) {
	sale := 350.0
	cartStore := newStubCartStore()
	lookup := &stubLookup{products: map[string]domain.Product{
		"p1": {ID: "p1", Price: 500, SalePrice: &sale},
	}}
	c := NewContainer(cartStore, &stubWishlistStore{}, &stubCouponRepo{byCode: map[string]*domain.Coupon{}}, lookup, zerolog.Nop())
	ctx := context.Background()

	_ = c.AddToCart(ctx, "p1", "M", 2)
	_, subtotal, err := c.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if subtotal != 700 {
		t.Fatalf("expected sale-priced subtotal 700, got %v", subtotal)
	}
}

func TestMoveToCartUsesFirstAvailableSize(t *testing.T) {
	cartStore := newStubCartStore()
	lookup := &stubLookup{products: map[string]domain.Product{
		"p1": {ID: "p1", Sizes: []domain.SizeStock{
			{Label: "S", Stock: 0},
			{Label: "M", Stock: 3},
			{Label: "L", Stock: 1},
		}},
	}}
	c := NewContainer(cartStore, &stubWishlistStore{}, &stubCouponRepo{byCode: map[string]*domain.Coupon{}}, lookup, zerolog.Nop())
	ctx := context.Background()

	c.AddToWishlist(ctx, "p1")
	if err := c.MoveToCart(ctx, "p1"); err != nil {
		t.Fatalf("move: %v", err)
	}

	if !c.IsInCart("p1", "M") {
		t.Fatal("expected first in-stock size M to be selected")
	}
	// Wishlist entry is not removed automatically.
	if !c.IsInWishlist("p1") {
		t.Fatal("wishlist entry must survive promotion")
	}
}

func TestMoveToCartFallbackSize(t *testing.T) {
	c, _, _ := newTestContainer(t) // lookup resolves nothing
	ctx := context.Background()

	if err := c.MoveToCart(ctx, "p1"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if !c.IsInCart("p1", DefaultSize) {
		t.Fatalf("expected fallback size %q", DefaultSize)
	}
}

func TestWishlistOrderedByAddedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	c, _, _ := newTestContainer(t, WithClock(clock))
	ctx := context.Background()

	c.AddToWishlist(ctx, "p3")
	c.AddToWishlist(ctx, "p1")
	c.AddToWishlist(ctx, "p2")

	entries := c.Wishlist()
	want := []string{"p3", "p1", "p2"}
	for i, e := range entries {
		if e.ProductID != want[i] {
			t.Fatalf("expected order %v, got %+v", want, entries)
		}
	}
}
