package usecase

import (
	"context"
	"testing"
	"time"

	"mollywear-backend/config"
	"mollywear-backend/internal/domain"
)

func newSettingsFixture() (*SettingsUsecase, *stubSettingsRepo, *mapCache) {
	repo := &stubSettingsRepo{zones: make(map[string]*domain.ShippingZone)}
	store := newMapCache()
	cfg := &config.Config{CacheSettingsTTL: time.Minute}
	return NewSettingsUsecase(repo, store, cfg), repo, store
}

func TestDropCountdownRoundTrip(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newSettingsFixture()
	dropAt := time.Now().Add(48 * time.Hour)

	set, err := uc.SetDropCountdown(ctx, "Monsoon Drop", dropAt, true)
	if err != nil {
		t.Fatalf("SetDropCountdown: %v", err)
	}
	if set.ID != 1 {
		t.Errorf("id = %d, want singleton row 1", set.ID)
	}

	got, err := uc.GetLiveCountdown(ctx)
	if err != nil {
		t.Fatalf("GetLiveCountdown: %v", err)
	}
	if got == nil || got.Title != "Monsoon Drop" || !got.DropAt.Equal(dropAt) {
		t.Errorf("countdown = %+v, want Monsoon Drop at %v", got, dropAt)
	}
	if repo.countdown == nil {
		t.Error("countdown not stored")
	}
}

func TestLiveCountdownHidesInactiveAndPast(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive", func(t *testing.T) {
		uc, repo, _ := newSettingsFixture()
		repo.countdown = &domain.DropCountdown{ID: 1, Title: "Soon", DropAt: time.Now().Add(time.Hour), IsActive: false}
		got, err := uc.GetLiveCountdown(ctx)
		if err != nil {
			t.Fatalf("GetLiveCountdown: %v", err)
		}
		if got != nil {
			t.Errorf("inactive countdown shown: %+v", got)
		}
	})

	t.Run("past drop", func(t *testing.T) {
		uc, repo, _ := newSettingsFixture()
		repo.countdown = &domain.DropCountdown{ID: 1, Title: "Gone", DropAt: time.Now().Add(-time.Hour), IsActive: true}
		got, err := uc.GetLiveCountdown(ctx)
		if err != nil {
			t.Fatalf("GetLiveCountdown: %v", err)
		}
		if got != nil {
			t.Errorf("past countdown shown: %+v", got)
		}
	})

	t.Run("never configured", func(t *testing.T) {
		uc, _, _ := newSettingsFixture()
		got, err := uc.GetLiveCountdown(ctx)
		if err != nil {
			t.Fatalf("GetLiveCountdown: %v", err)
		}
		if got != nil {
			t.Errorf("countdown shown without configuration: %+v", got)
		}
	})
}

func TestSetDropCountdownValidation(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newSettingsFixture()

	if _, err := uc.SetDropCountdown(ctx, "", time.Now().Add(time.Hour), true); err == nil {
		t.Error("empty title accepted")
	}
	if _, err := uc.SetDropCountdown(ctx, "Late", time.Now().Add(-time.Hour), true); err == nil {
		t.Error("active countdown with past drop time accepted")
	}
	// Inactive rows may carry a past timestamp (editing an old drop).
	if _, err := uc.SetDropCountdown(ctx, "Archive", time.Now().Add(-time.Hour), false); err != nil {
		t.Errorf("inactive past countdown rejected: %v", err)
	}
}

func TestSetDropCountdownInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	uc, _, store := newSettingsFixture()

	if _, err := uc.SetDropCountdown(ctx, "First", time.Now().Add(time.Hour), true); err != nil {
		t.Fatalf("SetDropCountdown: %v", err)
	}
	if _, err := uc.GetLiveCountdown(ctx); err != nil {
		t.Fatalf("GetLiveCountdown: %v", err)
	}
	if _, ok := store.Get("settings:drop_countdown"); !ok {
		t.Fatal("countdown not cached after read")
	}

	if _, err := uc.SetDropCountdown(ctx, "Second", time.Now().Add(2*time.Hour), true); err != nil {
		t.Fatalf("SetDropCountdown: %v", err)
	}
	if _, ok := store.Get("settings:drop_countdown"); ok {
		t.Error("stale countdown left in cache after update")
	}

	got, err := uc.GetLiveCountdown(ctx)
	if err != nil {
		t.Fatalf("GetLiveCountdown: %v", err)
	}
	if got == nil || got.Title != "Second" {
		t.Errorf("countdown = %+v, want Second", got)
	}
}

func TestShippingZoneValidation(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newSettingsFixture()

	if _, err := uc.CreateShippingZone(ctx, domain.ShippingZone{Label: "No Key", Cost: 10}); err == nil {
		t.Error("zone without key accepted")
	}
	if _, err := uc.CreateShippingZone(ctx, domain.ShippingZone{Key: "std", Label: "Standard", Cost: -1}); err == nil {
		t.Error("negative cost accepted")
	}
	if _, err := uc.CreateShippingZone(ctx, domain.ShippingZone{Key: "std", Label: "Standard", Cost: 49}); err != nil {
		t.Errorf("valid zone rejected: %v", err)
	}
}
