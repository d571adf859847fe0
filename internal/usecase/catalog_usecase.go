package usecase

import (
	"context"
	"fmt"

	"mollywear-backend/config"
	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/cache"
	"mollywear-backend/pkg/utils"
)

type CatalogUsecase struct {
	repo  domain.ProductRepository
	cache cache.CacheService
	cfg   *config.Config
}

func NewCatalogUsecase(repo domain.ProductRepository, cache cache.CacheService, cfg *config.Config) *CatalogUsecase {
	return &CatalogUsecase{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

// --- Storefront reads ---

func (uc *CatalogUsecase) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 24
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return uc.repo.GetProducts(ctx, filter)
}

func (uc *CatalogUsecase) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	key := "product:slug:" + slug
	if val, found := uc.cache.Get(key); found {
		return val.(*domain.Product), nil
	}

	product, err := uc.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(key, product, uc.cfg.CacheCatalogTTL)
	return product, nil
}

func (uc *CatalogUsecase) GetCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	key := fmt.Sprintf("categories:active:%t", activeOnly)
	if val, found := uc.cache.Get(key); found {
		return val.([]domain.Category), nil
	}

	categories, err := uc.repo.GetCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(key, categories, uc.cfg.CacheCatalogTTL)
	return categories, nil
}

// --- Admin writes ---

func (uc *CatalogUsecase) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if product.Price <= 0 {
		return fmt.Errorf("product price must be greater than 0")
	}
	if product.SalePrice != nil && *product.SalePrice >= product.Price {
		return fmt.Errorf("sale price must be below the base price")
	}
	if product.Slug == "" {
		product.Slug = utils.GenerateSlug(product.Name)
	}

	if err := uc.repo.CreateProduct(ctx, product); err != nil {
		return err
	}
	uc.invalidateCatalog(product.Slug)
	return nil
}

func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if product.Price <= 0 {
		return fmt.Errorf("product price must be greater than 0")
	}
	if product.SalePrice != nil && *product.SalePrice >= product.Price {
		return fmt.Errorf("sale price must be below the base price")
	}
	if product.Slug == "" {
		product.Slug = utils.GenerateSlug(product.Name)
	}

	if err := uc.repo.UpdateProduct(ctx, product); err != nil {
		return err
	}
	uc.invalidateCatalog(product.Slug)
	return nil
}

func (uc *CatalogUsecase) UpdateProductStatus(ctx context.Context, id string, isPublished bool) error {
	product, err := uc.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.UpdateProductStatus(ctx, id, isPublished); err != nil {
		return err
	}
	uc.invalidateCatalog(product.Slug)
	return nil
}

func (uc *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	product, err := uc.repo.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	uc.invalidateCatalog(product.Slug)
	return nil
}

func (uc *CatalogUsecase) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return uc.repo.GetProductByID(ctx, id)
}

func (uc *CatalogUsecase) AdjustStock(ctx context.Context, sizeID string, delta int) error {
	if delta == 0 {
		return fmt.Errorf("stock adjustment cannot be zero")
	}
	return uc.repo.AdjustStock(ctx, sizeID, delta)
}

func (uc *CatalogUsecase) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.Name == "" {
		return fmt.Errorf("category name is required")
	}
	if category.Slug == "" {
		category.Slug = utils.GenerateSlug(category.Name)
	}
	if err := uc.repo.CreateCategory(ctx, category); err != nil {
		return err
	}
	uc.invalidateCategories()
	return nil
}

func (uc *CatalogUsecase) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if err := uc.repo.UpdateCategory(ctx, category); err != nil {
		return err
	}
	uc.invalidateCategories()
	return nil
}

func (uc *CatalogUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	uc.invalidateCategories()
	return nil
}

func (uc *CatalogUsecase) invalidateCatalog(slug string) {
	uc.cache.Delete("product:slug:" + slug)
}

func (uc *CatalogUsecase) invalidateCategories() {
	uc.cache.Delete("categories:active:true")
	uc.cache.Delete("categories:active:false")
}
