package cart

import (
	"sync"
	"time"

	"mollywear-backend/internal/domain"

	"github.com/rs/zerolog"
)

// Manager hands out one Container per session key and owns their
// lifetimes. Keys are guest session IDs (cookie) or "user:"-prefixed
// authenticated identities; the HTTP layer decides which to use.
//
// Idle sessions are evicted on a background ticker so abandoned guest
// carts do not accumulate.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed

	cartStore     domain.CartStore
	wishlistStore domain.WishlistStore
	coupons       domain.CouponRepository
	products      domain.ProductLookup
	log           zerolog.Logger
	opts          []Option

	idleTTL time.Duration
	done    chan struct{}
	once    sync.Once
}

type managed struct {
	container *Container
	lastSeen  time.Time
}

func NewManager(
	cartStore domain.CartStore,
	wishlistStore domain.WishlistStore,
	coupons domain.CouponRepository,
	products domain.ProductLookup,
	log zerolog.Logger,
	idleTTL time.Duration,
	opts ...Option,
) *Manager {
	m := &Manager{
		sessions:      make(map[string]*managed),
		cartStore:     cartStore,
		wishlistStore: wishlistStore,
		coupons:       coupons,
		products:      products,
		log:           log,
		opts:          opts,
		idleTTL:       idleTTL,
		done:          make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// Get returns the session's container, creating it on first use.
func (m *Manager) Get(key string) *Container {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		s.lastSeen = time.Now()
		return s.container
	}
	c := NewContainer(m.cartStore, m.wishlistStore, m.coupons, m.products, m.log, m.opts...)
	m.sessions[key] = &managed{container: c, lastSeen: time.Now()}
	return c
}

// Drop removes a session (logout or cookie expiry). Pending writes are
// flushed before the container is released.
func (m *Manager) Drop(key string) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if ok {
		s.container.Flush()
	}
}

func (m *Manager) evictLoop() {
	if m.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(m.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTTL)
	m.mu.Lock()
	for key, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()
}

// Shutdown stops the eviction loop and waits for pending store writes.
func (m *Manager) Shutdown() {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	containers := make([]*Container, 0, len(m.sessions))
	for _, s := range m.sessions {
		containers = append(containers, s.container)
	}
	m.mu.Unlock()

	for _, c := range containers {
		c.Flush()
	}
}
