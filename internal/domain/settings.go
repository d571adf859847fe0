package domain

import (
	"context"
	"time"
)

// DropCountdown is the site-wide "next drop" banner managed by admins.
type DropCountdown struct {
	ID        int32     `json:"id"`
	Title     string    `json:"title"`
	DropAt    time.Time `json:"dropAt"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Live reports whether the countdown should be shown: active and not yet
// past its drop instant.
func (d *DropCountdown) Live(now time.Time) bool {
	return d.IsActive && now.Before(d.DropAt)
}

type ShippingZone struct {
	ID        int32     `json:"id"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Cost      float64   `json:"cost"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SettingsRepository interface {
	GetDropCountdown(ctx context.Context) (*DropCountdown, error)
	UpsertDropCountdown(ctx context.Context, d *DropCountdown) (*DropCountdown, error)

	GetActiveShippingZones(ctx context.Context) ([]ShippingZone, error)
	GetAllShippingZones(ctx context.Context) ([]ShippingZone, error)
	GetShippingZoneByKey(ctx context.Context, key string) (*ShippingZone, error)
	CreateShippingZone(ctx context.Context, zone *ShippingZone) (*ShippingZone, error)
	UpdateShippingZone(ctx context.Context, zone *ShippingZone) (*ShippingZone, error)
	DeleteShippingZone(ctx context.Context, id int32) error
}
