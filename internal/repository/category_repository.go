package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"affiliate-market/internal/domain"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name or slug already exists")
	ErrCategoryHasProducts   = errors.New("category is still assigned to products")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	ListWithActiveProducts(ctx context.Context) ([]*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) queryCategories(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.Description,
			&category.CreatedAt,
			&category.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// ListWithActiveProducts returns the categories that hold at least one active product
func (r *categoryRepository) ListWithActiveProducts(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.created_at, COUNT(p.id)
		FROM categories c
		JOIN product_categories pc ON pc.category_id = c.id
		JOIN products p ON p.id = pc.product_id AND p.is_active = TRUE
		GROUP BY c.id
		ORDER BY c.name ASC
	`
	return r.queryCategories(ctx, query)
}

// List retrieves every category with the number of products linked to it
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.created_at,
		       (SELECT COUNT(*) FROM product_categories pc WHERE pc.category_id = c.id)
		FROM categories c
		ORDER BY c.name ASC
	`
	return r.queryCategories(ctx, query)
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.created_at,
		       (SELECT COUNT(*) FROM product_categories pc WHERE pc.category_id = c.id)
		FROM categories c
		WHERE c.id = $1
	`

	categories, err := r.queryCategories(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrCategoryNotFound
	}
	return categories[0], nil
}

// CountExisting reports how many of the given ids name a real category
func (r *categoryRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ANY($1)`, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, category.Name, category.Slug, category.Description).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		err = mapPgError("create category", err)
		if errors.Is(err, ErrConflict) {
			return ErrCategoryAlreadyExists
		}
		return err
	}

	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4
		WHERE id = $1
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, category.ID, category.Name, category.Slug, category.Description).
		Scan(&category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		err = mapPgError("update category", err)
		if errors.Is(err, ErrConflict) {
			return ErrCategoryAlreadyExists
		}
		return err
	}

	return nil
}

// Delete removes a category that no product references
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		err = mapPgError("delete category", err)
		if errors.Is(err, ErrInvalidReference) {
			return ErrCategoryHasProducts
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
