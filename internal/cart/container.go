package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"mollywear-backend/internal/domain"

	"github.com/rs/zerolog"
)

// DefaultSize is used when promoting a wishlist entry whose product has no
// resolvable size rows.
const DefaultSize = "Free Size"

// persistTimeout bounds each background store write.
const persistTimeout = 10 * time.Second

// PersistFailureFunc receives failures from asynchronous store writes.
// The in-memory state has already been updated when it fires (optimistic
// update); the hook exists for observability, not rollback.
type PersistFailureFunc func(op, userID string, err error)

// Session is what the presentation layer depends on. It is satisfied by
// *Container; handlers never construct containers directly (the Manager
// hands them out per session).
type Session interface {
	Lines() []domain.CartLine
	Wishlist() []domain.WishlistEntry
	AddToCart(ctx context.Context, productID, size string, quantity int) error
	RemoveFromCart(ctx context.Context, productID, size string)
	AddToWishlist(ctx context.Context, productID string)
	RemoveFromWishlist(ctx context.Context, productID string)
	MoveToCart(ctx context.Context, productID string) error
	IsInCart(productID, size string) bool
	IsInWishlist(productID string) bool

	ApplyCoupon(ctx context.Context, code string) CouponResult
	RemoveCoupon()
	AppliedCoupon() *domain.Coupon
	DiscountAmount(subtotal float64) float64
	Total(subtotal float64) float64

	Resolve(ctx context.Context) ([]domain.ResolvedLine, float64, error)
	BindUser(ctx context.Context, userID string) error
	ClearCart(ctx context.Context)
	Reset()
}

// Container holds one shopper session's cart, wishlist and applied coupon
// in memory, mirrored to the durable stores when a user identity is bound.
// Guest sessions (no user) never touch the stores.
//
// Mutations are synchronous in memory and immediately visible to reads;
// store writes happen on a background goroutine and their failures go to
// the failure hook. Memory and storage can diverge after a failed write;
// the next BindUser reconciles by replacing memory with the stored rows.
type Container struct {
	mu      sync.Mutex
	userID  string
	lines   []domain.CartLine
	saved   map[string]domain.WishlistEntry
	applied *domain.Coupon

	cartStore     domain.CartStore
	wishlistStore domain.WishlistStore
	coupons       domain.CouponRepository
	products      domain.ProductLookup

	onPersistFailure PersistFailureFunc
	log              zerolog.Logger
	now              func() time.Time
	pending          sync.WaitGroup
}

// Option customizes a Container.
type Option func(*Container)

// WithClock overrides the time source used for coupon applicability.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

// WithPersistFailureHook sets the observability hook for failed store
// writes. The default logs at error level.
func WithPersistFailureHook(fn PersistFailureFunc) Option {
	return func(c *Container) { c.onPersistFailure = fn }
}

func NewContainer(
	cartStore domain.CartStore,
	wishlistStore domain.WishlistStore,
	coupons domain.CouponRepository,
	products domain.ProductLookup,
	log zerolog.Logger,
	opts ...Option,
) *Container {
	c := &Container{
		saved:         make(map[string]domain.WishlistEntry),
		cartStore:     cartStore,
		wishlistStore: wishlistStore,
		coupons:       coupons,
		products:      products,
		log:           log,
		now:           time.Now,
	}
	c.onPersistFailure = func(op, userID string, err error) {
		c.log.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("cart persistence failed")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Cart operations ---

// AddToCart merges quantity into an existing (productID, size) line or
// appends a new line at the end. Insertion order of existing lines is
// preserved.
func (c *Container) AddToCart(ctx context.Context, productID, size string, quantity int) error {
	if productID == "" {
		return errEmptyProduct
	}
	if size == "" {
		return errEmptySize
	}
	if quantity <= 0 {
		return errBadQuantity
	}

	c.mu.Lock()
	var merged domain.CartLine
	found := false
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Size == size {
			c.lines[i].Quantity += quantity
			merged = c.lines[i]
			found = true
			break
		}
	}
	if !found {
		merged = domain.CartLine{
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
			AddedAt:   c.now(),
		}
		c.lines = append(c.lines, merged)
	}
	userID := c.userID
	c.mu.Unlock()

	if userID != "" {
		c.persist("cart.upsert", userID, func(ctx context.Context) error {
			return c.cartStore.UpsertCartLine(ctx, userID, merged)
		})
	}
	return nil
}

// RemoveFromCart removes the unique matching line. No-op when absent.
func (c *Container) RemoveFromCart(ctx context.Context, productID, size string) {
	c.mu.Lock()
	removed := false
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Size == size {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			removed = true
			break
		}
	}
	userID := c.userID
	c.mu.Unlock()

	if removed && userID != "" {
		c.persist("cart.delete", userID, func(ctx context.Context) error {
			return c.cartStore.DeleteCartLine(ctx, userID, productID, size)
		})
	}
}

// ClearCart empties the cart and deletes the persisted rows.
func (c *Container) ClearCart(ctx context.Context) {
	c.mu.Lock()
	c.lines = nil
	userID := c.userID
	c.mu.Unlock()

	if userID != "" {
		c.persist("cart.clear", userID, func(ctx context.Context) error {
			return c.cartStore.ClearCart(ctx, userID)
		})
	}
}

func (c *Container) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Container) IsInCart(productID, size string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Size == size {
			return true
		}
	}
	return false
}

// --- Wishlist operations ---

// AddToWishlist inserts the product into the wishlist set. Adding an
// already-saved product is a no-op (no duplicate row, no store write).
func (c *Container) AddToWishlist(ctx context.Context, productID string) {
	if productID == "" {
		return
	}
	c.mu.Lock()
	if _, ok := c.saved[productID]; ok {
		c.mu.Unlock()
		return
	}
	c.saved[productID] = domain.WishlistEntry{ProductID: productID, AddedAt: c.now()}
	userID := c.userID
	c.mu.Unlock()

	if userID != "" {
		c.persist("wishlist.add", userID, func(ctx context.Context) error {
			return c.wishlistStore.AddWishlistEntry(ctx, userID, productID)
		})
	}
}

// RemoveFromWishlist removes the entry. No-op when absent.
func (c *Container) RemoveFromWishlist(ctx context.Context, productID string) {
	c.mu.Lock()
	_, ok := c.saved[productID]
	if ok {
		delete(c.saved, productID)
	}
	userID := c.userID
	c.mu.Unlock()

	if ok && userID != "" {
		c.persist("wishlist.remove", userID, func(ctx context.Context) error {
			return c.wishlistStore.RemoveWishlistEntry(ctx, userID, productID)
		})
	}
}

func (c *Container) IsInWishlist(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.saved[productID]
	return ok
}

// Wishlist returns the saved entries ordered by the time they were added.
func (c *Container) Wishlist() []domain.WishlistEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.WishlistEntry, 0, len(c.saved))
	for _, e := range c.saved {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out
}

// MoveToCart promotes a wishlist entry to a cart line using the catalog's
// first in-stock size, or DefaultSize when the product resolves without
// one. The wishlist entry stays; callers remove it explicitly if desired.
func (c *Container) MoveToCart(ctx context.Context, productID string) error {
	size := DefaultSize
	products, err := c.products.GetPublishedByIDs(ctx, []string{productID})
	if err == nil && len(products) > 0 {
		if avail := products[0].AvailableSizes(); len(avail) > 0 {
			size = avail[0]
		}
	}
	return c.AddToCart(ctx, productID, size, 1)
}

// --- Session lifecycle ---

// BindUser attaches an authenticated identity and replaces the in-memory
// cart and wishlist with the user's stored rows. Server state wins over
// any guest-session content; the applied coupon is session-scoped and
// survives login.
func (c *Container) BindUser(ctx context.Context, userID string) error {
	lines, err := c.cartStore.GetCartLines(ctx, userID)
	if err != nil {
		return err
	}
	entries, err := c.wishlistStore.GetWishlist(ctx, userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.lines = lines
	c.saved = make(map[string]domain.WishlistEntry, len(entries))
	for _, e := range entries {
		c.saved[e.ProductID] = e
	}
	return nil
}

// Reset clears all in-memory state back to an anonymous, empty session.
// Stored rows are untouched (logout does not destroy the durable cart).
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = ""
	c.lines = nil
	c.saved = make(map[string]domain.WishlistEntry)
	c.applied = nil
}

// UserID returns the bound identity, empty for guest sessions.
func (c *Container) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// --- Display view ---

// Resolve joins cart lines with their published catalog records and
// returns the displayable lines plus the subtotal. Lines referencing
// products that no longer resolve are omitted from the view (the raw
// line stays in state until explicitly removed).
func (c *Container) Resolve(ctx context.Context) ([]domain.ResolvedLine, float64, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	products, err := c.products.GetPublishedByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var resolved []domain.ResolvedLine
	var subtotal float64
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue // lookup miss: invisible until resolved or pruned
		}
		unit := p.EffectivePrice()
		lineTotal := unit * float64(l.Quantity)
		subtotal += lineTotal
		resolved = append(resolved, domain.ResolvedLine{
			CartLine:  l,
			Product:   p,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
	}
	return resolved, subtotal, nil
}

// --- Async persistence ---

// persist runs a store write in the background. Failures are reported to
// the hook and never surfaced to the caller: the in-memory state already
// reflects the change and the next full reload reconciles.
func (c *Container) persist(op, userID string, fn func(ctx context.Context) error) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			c.onPersistFailure(op, userID, err)
		}
	}()
}

// Flush blocks until all in-flight store writes have settled. Used by
// tests and graceful shutdown.
func (c *Container) Flush() {
	c.pending.Wait()
}
