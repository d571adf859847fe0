package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mollywear-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id::text, p.name, p.slug, p.description, p.category_id::text, p.price, p.sale_price, p.media, p.is_published, p.is_featured, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID,
		&p.Price, &p.SalePrice, &p.Media, &p.IsPublished, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.IsPublished != nil {
		conds = append(conds, "p.is_published = "+arg(*filter.IsPublished))
	}
	if filter.IsFeatured != nil {
		conds = append(conds, "p.is_featured = "+arg(*filter.IsFeatured))
	}
	if filter.CategorySlug != "" {
		conds = append(conds, "c.slug = "+arg(filter.CategorySlug))
	}
	if filter.Query != "" {
		conds = append(conds, "p.name ILIKE "+arg("%"+filter.Query+"%"))
	}
	if filter.MinPrice > 0 {
		conds = append(conds, "COALESCE(p.sale_price, p.price) >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		conds = append(conds, "COALESCE(p.sale_price, p.price) <= "+arg(filter.MaxPrice))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var order string
	switch filter.Sort {
	case "price_asc":
		order = "COALESCE(p.sale_price, p.price) ASC"
	case "price_desc":
		order = "COALESCE(p.sale_price, p.price) DESC"
	default:
		order = "p.created_at DESC"
	}

	base := `FROM products p JOIN categories c ON c.id = p.category_id` + where

	var total int64
	if err := from(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) `+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + productColumns + ` ` + base +
		` ORDER BY ` + order +
		` LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := from(ctx, r.db).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachSizes(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) getProduct(ctx context.Context, cond string, val any) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE ` + cond + ` = $1`
	p, err := scanProduct(from(ctx, r.db).QueryRow(ctx, q, val))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	one := []domain.Product{*p}
	if err := r.attachSizes(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getProduct(ctx, "p.slug", slug)
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getProduct(ctx, "p.id", id)
}

func (r *productRepository) GetPublishedByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1) AND p.is_published`
	rows, err := from(ctx, r.db).Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSizes(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) attachSizes(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = &products[i]
	}
	const q = `
SELECT id::text, product_id::text, label, stock, order_index
FROM product_sizes
WHERE product_id = ANY($1)
ORDER BY product_id, order_index
`
	rows, err := from(ctx, r.db).Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.SizeStock
		var productID string
		if err := rows.Scan(&s.ID, &productID, &s.Label, &s.Stock, &s.OrderIndex); err != nil {
			return err
		}
		if p := byID[productID]; p != nil {
			p.Sizes = append(p.Sizes, s)
		}
	}
	return rows.Err()
}

func (r *productRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	const q = `
INSERT INTO products (name, slug, description, category_id, price, sale_price, media, is_published, is_featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text, created_at, updated_at
`
	if err := from(ctx, r.db).QueryRow(ctx, q,
		p.Name, p.Slug, p.Description, p.CategoryID, p.Price, p.SalePrice,
		p.Media, p.IsPublished, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	return r.replaceSizes(ctx, p)
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	const q = `
UPDATE products
SET name = $2,
    slug = $3,
    description = $4,
    category_id = $5,
    price = $6,
    sale_price = $7,
    media = $8,
    is_published = $9,
    is_featured = $10,
    updated_at = now()
WHERE id = $1
`
	tag, err := from(ctx, r.db).Exec(ctx, q,
		p.ID, p.Name, p.Slug, p.Description, p.CategoryID, p.Price, p.SalePrice,
		p.Media, p.IsPublished, p.IsFeatured,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return r.replaceSizes(ctx, p)
}

// replaceSizes rewrites the size rows wholesale. Admin edits send the
// full size list, so a delete-and-insert keeps ordering simple.
func (r *productRepository) replaceSizes(ctx context.Context, p *domain.Product) error {
	db := from(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM product_sizes WHERE product_id = $1`, p.ID); err != nil {
		return err
	}
	const ins = `
INSERT INTO product_sizes (product_id, label, stock, order_index)
VALUES ($1, $2, $3, $4)
RETURNING id::text
`
	for i := range p.Sizes {
		s := &p.Sizes[i]
		if err := db.QueryRow(ctx, ins, p.ID, s.Label, s.Stock, i).Scan(&s.ID); err != nil {
			return err
		}
		s.OrderIndex = i
	}
	return nil
}

func (r *productRepository) UpdateProductStatus(ctx context.Context, id string, isPublished bool) error {
	tag, err := from(ctx, r.db).Exec(ctx,
		`UPDATE products SET is_published = $2, updated_at = now() WHERE id = $1`, id, isPublished)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := from(ctx, r.db).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock moves stock by delta, refusing to go below zero.
func (r *productRepository) AdjustStock(ctx context.Context, sizeID string, delta int) error {
	const q = `
UPDATE product_sizes
SET stock = stock + $2
WHERE id = $1 AND stock + $2 >= 0
`
	tag, err := from(ctx, r.db).Exec(ctx, q, sizeID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) GetCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	q := `SELECT id::text, name, slug, image, order_index, is_active, parent_id::text FROM categories`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY order_index, name`

	rows, err := from(ctx, r.db).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Image, &c.OrderIndex, &c.IsActive, &c.ParentID); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *productRepository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	const q = `SELECT id::text, name, slug, image, order_index, is_active, parent_id::text FROM categories WHERE slug = $1`
	var c domain.Category
	err := from(ctx, r.db).QueryRow(ctx, q, slug).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Image, &c.OrderIndex, &c.IsActive, &c.ParentID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *productRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	const q = `
INSERT INTO categories (name, slug, image, order_index, is_active, parent_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
	return from(ctx, r.db).QueryRow(ctx, q,
		c.Name, c.Slug, c.Image, c.OrderIndex, c.IsActive, c.ParentID,
	).Scan(&c.ID)
}

func (r *productRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	const q = `
UPDATE categories
SET name = $2, slug = $3, image = $4, order_index = $5, is_active = $6, parent_id = $7
WHERE id = $1
`
	tag, err := from(ctx, r.db).Exec(ctx, q,
		c.ID, c.Name, c.Slug, c.Image, c.OrderIndex, c.IsActive, c.ParentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := from(ctx, r.db).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
