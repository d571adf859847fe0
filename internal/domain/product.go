package domain

import (
	"context"
	"time"
)

type Category struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Image      string  `json:"image"`
	OrderIndex int     `json:"orderIndex"`
	IsActive   bool    `json:"isActive"`
	ParentID   *string `json:"parentId"`
}

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	CategoryID  string     `json:"categoryId"`
	Category    *Category  `json:"category,omitempty"`
	Price       float64    `json:"price"`
	SalePrice   *float64   `json:"salePrice"`
	Media       RawJSON    `json:"media"`
	Images      []string   `json:"images"` // Mapped from Media
	Sizes       []SizeStock `json:"sizes"`
	IsPublished bool       `json:"isPublished"`
	IsFeatured  bool       `json:"isFeatured"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SizeStock is one size row of a product (e.g. "M" with 4 left).
type SizeStock struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Stock   int    `json:"stock"`
	OrderIndex int `json:"orderIndex"`
}

// EffectivePrice returns the sale price when set, base price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// AvailableSizes returns size labels with remaining stock, in display order.
func (p *Product) AvailableSizes() []string {
	var out []string
	for _, s := range p.Sizes {
		if s.Stock > 0 {
			out = append(out, s.Label)
		}
	}
	return out
}

type ProductFilter struct {
	CategorySlug string
	Query        string
	MinPrice     float64
	MaxPrice     float64
	Sort         string // newest, price_asc, price_desc
	Limit        int
	Offset       int
	IsPublished  *bool // nil = all (admin listing)
	IsFeatured   *bool
}

type ProductRepository interface {
	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	// GetPublishedByIDs resolves catalog entries for display; IDs that are
	// missing or unpublished are simply absent from the result.
	GetPublishedByIDs(ctx context.Context, ids []string) ([]Product, error)

	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	UpdateProductStatus(ctx context.Context, id string, isPublished bool) error
	DeleteProduct(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, sizeID string, delta int) error

	// Categories
	GetCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// ProductLookup is the narrow read-side interface the cart container needs
// to resolve productIDs into displayable catalog records.
type ProductLookup interface {
	GetPublishedByIDs(ctx context.Context, ids []string) ([]Product, error)
}
