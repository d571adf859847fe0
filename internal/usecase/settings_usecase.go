package usecase

import (
	"context"
	"fmt"
	"time"

	"mollywear-backend/config"
	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/cache"
)

const (
	countdownCacheKey = "settings:drop_countdown"
	zonesCacheKey     = "settings:shipping_zones:active"
)

type SettingsUsecase struct {
	repo  domain.SettingsRepository
	cache cache.CacheService
	cfg   *config.Config
}

func NewSettingsUsecase(repo domain.SettingsRepository, cache cache.CacheService, cfg *config.Config) *SettingsUsecase {
	return &SettingsUsecase{repo: repo, cache: cache, cfg: cfg}
}

// GetLiveCountdown returns the countdown only while it is active and in
// the future; nil means nothing to show.
func (uc *SettingsUsecase) GetLiveCountdown(ctx context.Context) (*domain.DropCountdown, error) {
	var countdown *domain.DropCountdown
	if val, found := uc.cache.Get(countdownCacheKey); found {
		countdown = val.(*domain.DropCountdown)
	} else {
		d, err := uc.repo.GetDropCountdown(ctx)
		if err != nil {
			if err == domain.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		uc.cache.Set(countdownCacheKey, d, uc.cfg.CacheSettingsTTL)
		countdown = d
	}

	if !countdown.Live(time.Now()) {
		return nil, nil
	}
	return countdown, nil
}

func (uc *SettingsUsecase) GetDropCountdown(ctx context.Context) (*domain.DropCountdown, error) {
	return uc.repo.GetDropCountdown(ctx)
}

func (uc *SettingsUsecase) SetDropCountdown(ctx context.Context, title string, dropAt time.Time, isActive bool) (*domain.DropCountdown, error) {
	if title == "" {
		return nil, fmt.Errorf("countdown title is required")
	}
	if isActive && dropAt.Before(time.Now()) {
		return nil, fmt.Errorf("drop time must be in the future")
	}

	out, err := uc.repo.UpsertDropCountdown(ctx, &domain.DropCountdown{
		Title:    title,
		DropAt:   dropAt,
		IsActive: isActive,
	})
	if err != nil {
		return nil, err
	}
	uc.cache.Delete(countdownCacheKey)
	return out, nil
}

func (uc *SettingsUsecase) GetActiveShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	if val, found := uc.cache.Get(zonesCacheKey); found {
		return val.([]domain.ShippingZone), nil
	}
	zones, err := uc.repo.GetActiveShippingZones(ctx)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(zonesCacheKey, zones, uc.cfg.CacheSettingsTTL)
	return zones, nil
}

func (uc *SettingsUsecase) GetAllShippingZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return uc.repo.GetAllShippingZones(ctx)
}

func (uc *SettingsUsecase) CreateShippingZone(ctx context.Context, zone domain.ShippingZone) (*domain.ShippingZone, error) {
	if zone.Key == "" || zone.Label == "" {
		return nil, fmt.Errorf("zone key and label are required")
	}
	if zone.Cost < 0 {
		return nil, fmt.Errorf("shipping cost cannot be negative")
	}
	out, err := uc.repo.CreateShippingZone(ctx, &zone)
	if err != nil {
		return nil, err
	}
	uc.cache.Delete(zonesCacheKey)
	return out, nil
}

func (uc *SettingsUsecase) UpdateShippingZone(ctx context.Context, zone domain.ShippingZone) (*domain.ShippingZone, error) {
	if zone.Cost < 0 {
		return nil, fmt.Errorf("shipping cost cannot be negative")
	}
	out, err := uc.repo.UpdateShippingZone(ctx, &zone)
	if err != nil {
		return nil, err
	}
	uc.cache.Delete(zonesCacheKey)
	return out, nil
}

func (uc *SettingsUsecase) DeleteShippingZone(ctx context.Context, id int32) error {
	if err := uc.repo.DeleteShippingZone(ctx, id); err != nil {
		return err
	}
	uc.cache.Delete(zonesCacheKey)
	return nil
}
