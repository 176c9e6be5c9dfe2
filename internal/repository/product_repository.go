package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"affiliate-market/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter is the predicate shared by the page query and the count query.
// The zero value matches every active product.
type ProductFilter struct {
	Query           string
	StoreID         *int64
	CategoryIDs     []int64
	IncludeInactive bool
}

func (f ProductFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !f.IncludeInactive {
		conds = append(conds, "p.is_active = TRUE")
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d OR p.tags ILIKE $%d)", n, n, n))
	}

	if f.StoreID != nil {
		args = append(args, *f.StoreID)
		conds = append(conds, fmt.Sprintf("p.store_id = $%d", len(args)))
	}

	if len(f.CategoryIDs) > 0 {
		args = append(args, f.CategoryIDs)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = ANY($%d))",
			len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*domain.Product, int, error)
	ListAll(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	FindActiveByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product, categoryIDs []int64) error
	Update(ctx context.Context, product *domain.Product, categoryIDs []int64) error
	Delete(ctx context.Context, id int64) error
	IncrementClicks(ctx context.Context, id int64) (*domain.ClickResult, error)
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	Recent(ctx context.Context, limit int) ([]*domain.Product, error)
	TopClicked(ctx context.Context, limit int) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.title, p.description, p.price, p.original_price, p.image_url, p.affiliate_url, p.tags,
	p.store_id, p.stock, p.clicks, p.rating, p.review_count, p.sold_count, p.is_active,
	p.free_shipping, p.warranty, p.created_at, p.updated_at,
	s.id, s.name, s.logo_url, s.domain, s.description`

const productFrom = `FROM products p JOIN stores s ON s.id = p.store_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product  = &domain.Product{Categories: []domain.CategorySummary{}}
		store    domain.StoreSummary
		original decimal.NullDecimal
		rating   sql.NullFloat64
	)

	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&original,
		&product.ImageURL,
		&product.AffiliateURL,
		&product.Tags,
		&product.StoreID,
		&product.Stock,
		&product.Clicks,
		&rating,
		&product.ReviewCount,
		&product.SoldCount,
		&product.IsActive,
		&product.FreeShipping,
		&product.Warranty,
		&product.CreatedAt,
		&product.UpdatedAt,
		&store.ID,
		&store.Name,
		&store.LogoURL,
		&store.Domain,
		&store.Description,
	)
	if err != nil {
		return nil, err
	}

	if original.Valid {
		product.OriginalPrice = &original.Decimal
	}
	if rating.Valid {
		product.Rating = &rating.Float64
	}
	product.Store = &store

	return product, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// attachCategories loads the category summaries of a whole page in one query.
func (r *productRepository) attachCategories(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	byID := make(map[int64]*domain.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	query := `
		SELECT pc.product_id, c.id, c.name, c.slug
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			category  domain.CategorySummary
		)
		if err := rows.Scan(&productID, &category.ID, &category.Name, &category.Slug); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Categories = append(p.Categories, category)
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}
	return nil
}

// List runs the page query and the count query concurrently over the same predicate.
func (r *productRepository) List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*domain.Product, int, error) {
	where, args := filter.where()

	var (
		products []*domain.Product
		total    int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n := len(args)
		query := fmt.Sprintf(`
			SELECT %s
			%s
			%s
			ORDER BY p.created_at DESC, p.id DESC
			LIMIT $%d OFFSET $%d
		`, productColumns, productFrom, where, n+1, n+2)

		pageArgs := append(append([]any{}, args...), limit, offset)

		var err error
		products, err = r.queryProducts(gctx, query, pageArgs...)
		return err
	})

	g.Go(func() error {
		query := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", where)
		if err := r.db.QueryRowContext(gctx, query, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, 0, err
	}

	for _, p := range products {
		p.Store.Description = nil
	}

	return products, total, nil
}

// ListAll returns every product matching the filter, newest first, without paging
func (r *productRepository) ListAll(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	where, args := filter.where()
	query := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		ORDER BY p.created_at DESC, p.id DESC
	`, productColumns, productFrom, where)

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) findOne(ctx context.Context, id int64, activeOnly bool) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.id = $1`, productColumns, productFrom)
	if activeOnly {
		query += " AND p.is_active = TRUE"
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.attachCategories(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// FindActiveByID retrieves an active product; inactive ones are reported as not found
func (r *productRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, id, true)
}

// FindByID retrieves a product regardless of its active flag
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, id, false)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func replaceCategories(ctx context.Context, tx *sql.Tx, productID int64, categoryIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT ON CONSTRAINT uq_product_categories DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, productID, categoryIDs); err != nil {
		return mapPgError("link product categories", err)
	}
	return nil
}

// Create inserts the product and its category links in one transaction
func (r *productRepository) Create(ctx context.Context, product *domain.Product, categoryIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (title, description, price, original_price, image_url, affiliate_url, tags,
				store_id, stock, rating, review_count, sold_count, is_active, free_shipping, warranty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id, clicks, created_at, updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.Title,
			product.Description,
			product.Price,
			nullDecimal(product.OriginalPrice),
			product.ImageURL,
			product.AffiliateURL,
			product.Tags,
			product.StoreID,
			product.Stock,
			nullFloat(product.Rating),
			product.ReviewCount,
			product.SoldCount,
			product.IsActive,
			product.FreeShipping,
			product.Warranty,
		).Scan(&product.ID, &product.Clicks, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return mapPgError("create product", err)
		}

		return replaceCategories(ctx, tx, product.ID, categoryIDs)
	})
}

// Update rewrites the product's editable fields and replaces its category set.
// Clicks are never written here.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, categoryIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE products
			SET title = $2, description = $3, price = $4, original_price = $5, image_url = $6,
			    affiliate_url = $7, tags = $8, store_id = $9, stock = $10, rating = $11,
			    review_count = $12, sold_count = $13, is_active = $14, free_shipping = $15,
			    warranty = $16, updated_at = NOW()
			WHERE id = $1
			RETURNING clicks, created_at, updated_at
		`

		err := tx.QueryRowContext(
			ctx,
			query,
			product.ID,
			product.Title,
			product.Description,
			product.Price,
			nullDecimal(product.OriginalPrice),
			product.ImageURL,
			product.AffiliateURL,
			product.Tags,
			product.StoreID,
			product.Stock,
			nullFloat(product.Rating),
			product.ReviewCount,
			product.SoldCount,
			product.IsActive,
			product.FreeShipping,
			product.Warranty,
		).Scan(&product.Clicks, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return mapPgError("update product", err)
		}

		return replaceCategories(ctx, tx, product.ID, categoryIDs)
	})
}

// Delete removes a product; its category links and click rows cascade
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// IncrementClicks checks the product is active and bumps its counter in one statement.
// Concurrent callers each observe their own increment.
func (r *productRepository) IncrementClicks(ctx context.Context, id int64) (*domain.ClickResult, error) {
	query := `
		UPDATE products
		SET clicks = clicks + 1, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING id, title, clicks, affiliate_url
	`

	result := &domain.ClickResult{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&result.ProductID,
		&result.Title,
		&result.TotalClicks,
		&result.AffiliateURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to increment clicks: %w", err)
	}

	return result, nil
}

func (r *productRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM stores),
			(SELECT COALESCE(SUM(clicks), 0) FROM products)
	`

	stats := &domain.DashboardStats{}
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalProducts, &stats.TotalStores, &stats.TotalClicks); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}

func (r *productRepository) Recent(ctx context.Context, limit int) ([]*domain.Product, error) {
	return r.ordered(ctx, "p.created_at DESC, p.id DESC", limit)
}

func (r *productRepository) TopClicked(ctx context.Context, limit int) ([]*domain.Product, error) {
	return r.ordered(ctx, "p.clicks DESC, p.id ASC", limit)
}

// ordered is only called with the fixed ORDER BY clauses above
func (r *productRepository) ordered(ctx context.Context, orderBy string, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT $1`, productColumns, productFrom, orderBy)

	products, err := r.queryProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}
