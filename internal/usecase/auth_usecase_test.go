package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetSecret("test-signing-key")
	os.Exit(m.Run())
}

// --- Stubs ---

type stubUserRepo struct {
	upserts []domain.User
}

func (s *stubUserRepo) GetByID(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserRepo) Upsert(_ context.Context, user *domain.User) error {
	user.ID = "user-1"
	s.upserts = append(s.upserts, *user)
	return nil
}

func (s *stubUserRepo) List(_ context.Context, _, _ int) ([]domain.User, int64, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) AddAddress(_ context.Context, _ *domain.Address) error { return nil }
func (s *stubUserRepo) GetAddresses(_ context.Context, _ string) ([]domain.Address, error) {
	return nil, nil
}
func (s *stubUserRepo) UpdateAddress(_ context.Context, _ *domain.Address) error   { return nil }
func (s *stubUserRepo) DeleteAddress(_ context.Context, _, _ string) error         { return nil }

type stubMailer struct {
	mu    sync.Mutex
	sent  []string
	codes []string
	err   error
}

func (s *stubMailer) SendOTP(_ context.Context, toEmail, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, toEmail)
	s.codes = append(s.codes, code)
	return nil
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]interface{})}
}

func (c *mapCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *mapCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *mapCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
}

// --- Tests ---

func TestRequestOTPSendsAndCachesCode(t *testing.T) {
	repo := &stubUserRepo{}
	mail := &stubMailer{}
	store := newMapCache()
	uc := NewAuthUsecase(repo, mail, store, 10*time.Minute, time.Hour)

	if err := uc.RequestOTP(context.Background(), "  Shopper@Example.COM "); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}

	if len(mail.sent) != 1 || mail.sent[0] != "shopper@example.com" {
		t.Errorf("sent to %v, want [shopper@example.com]", mail.sent)
	}
	cached, ok := store.Get("otp:shopper@example.com")
	if !ok {
		t.Fatal("code not cached under normalized email")
	}
	if cached.(string) != mail.codes[0] {
		t.Error("cached code differs from mailed code")
	}
	if len(mail.codes[0]) != 6 {
		t.Errorf("code %q is not 6 digits", mail.codes[0])
	}
}

func TestRequestOTPClearsCodeOnSendFailure(t *testing.T) {
	store := newMapCache()
	uc := NewAuthUsecase(&stubUserRepo{}, &stubMailer{err: errors.New("smtp down")}, store, 10*time.Minute, time.Hour)

	if err := uc.RequestOTP(context.Background(), "shopper@example.com"); err == nil {
		t.Fatal("expected error when mail delivery fails")
	}
	if _, ok := store.Get("otp:shopper@example.com"); ok {
		t.Error("undeliverable code left in cache")
	}
}

func TestRequestOTPRejectsBadEmail(t *testing.T) {
	uc := NewAuthUsecase(&stubUserRepo{}, &stubMailer{}, newMapCache(), 10*time.Minute, time.Hour)
	for _, email := range []string{"", "   ", "not-an-email"} {
		if err := uc.RequestOTP(context.Background(), email); err == nil {
			t.Errorf("RequestOTP(%q) should fail", email)
		}
	}
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()
	repo := &stubUserRepo{}
	store := newMapCache()
	uc := NewAuthUsecase(repo, &stubMailer{}, store, 10*time.Minute, time.Hour)
	store.Set("otp:shopper@example.com", "123456", 10*time.Minute)

	if _, _, err := uc.VerifyOTP(ctx, "shopper@example.com", "999999"); err == nil {
		t.Fatal("wrong code accepted")
	}

	token, user, err := uc.VerifyOTP(ctx, "Shopper@Example.com", " 123456 ")
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if token == "" {
		t.Error("empty token")
	}
	if user.Email != "shopper@example.com" {
		t.Errorf("user email = %q, want normalized", user.Email)
	}
	if len(repo.upserts) != 1 || repo.upserts[0].Role != "customer" {
		t.Errorf("upserts = %+v, want one customer upsert", repo.upserts)
	}

	// Codes are single use.
	if _, _, err := uc.VerifyOTP(ctx, "shopper@example.com", "123456"); err == nil {
		t.Error("code accepted twice")
	}
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	uc := NewAuthUsecase(&stubUserRepo{}, &stubMailer{}, newMapCache(), 10*time.Minute, time.Hour)
	if _, _, err := uc.VerifyOTP(context.Background(), "shopper@example.com", "123456"); err == nil {
		t.Error("expected failure when no code was requested")
	}
}
