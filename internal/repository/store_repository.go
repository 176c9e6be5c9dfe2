package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"affiliate-market/internal/domain"
)

var (
	ErrStoreNotFound    = errors.New("store not found")
	ErrStoreHasProducts = errors.New("store still has products")
)

// StoreRepository defines the interface for store data access
type StoreRepository interface {
	List(ctx context.Context) ([]*domain.Store, error)
	FindByID(ctx context.Context, id int64) (*domain.Store, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, store *domain.Store) error
	Update(ctx context.Context, store *domain.Store) error
	Delete(ctx context.Context, id int64) error
}

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new instance of StoreRepository
func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

const storeColumns = `
	s.id, s.name, s.description, s.logo_url, s.domain, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM products p WHERE p.store_id = s.id AND p.is_active = TRUE)`

func scanStore(row rowScanner) (*domain.Store, error) {
	store := &domain.Store{}
	err := row.Scan(
		&store.ID,
		&store.Name,
		&store.Description,
		&store.LogoURL,
		&store.Domain,
		&store.CreatedAt,
		&store.UpdatedAt,
		&store.ProductCount,
	)
	return store, err
}

// List retrieves all stores ordered by name with their active product counts
func (r *storeRepository) List(ctx context.Context) ([]*domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores s ORDER BY s.name ASC, s.id ASC`, storeColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []*domain.Store{}
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

func (r *storeRepository) FindByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores s WHERE s.id = $1`, storeColumns)

	store, err := scanStore(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store by ID: %w", err)
	}

	return store, nil
}

func (r *storeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check store: %w", err)
	}
	return exists, nil
}

func (r *storeRepository) Create(ctx context.Context, store *domain.Store) error {
	query := `
		INSERT INTO stores (name, description, logo_url, domain)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, store.Name, store.Description, store.LogoURL, store.Domain).
		Scan(&store.ID, &store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		return mapPgError("create store", err)
	}
	return nil
}

func (r *storeRepository) Update(ctx context.Context, store *domain.Store) error {
	query := `
		UPDATE stores
		SET name = $2, description = $3, logo_url = $4, domain = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, store.ID, store.Name, store.Description, store.LogoURL, store.Domain).
		Scan(&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStoreNotFound
		}
		return mapPgError("update store", err)
	}
	return nil
}

// Delete removes a store that no longer owns any product, active or not
func (r *storeRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var products int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE store_id = $1`, id).Scan(&products); err != nil {
			return fmt.Errorf("failed to count store products: %w", err)
		}
		if products > 0 {
			return ErrStoreHasProducts
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
		if err != nil {
			if errors.Is(mapPgError("delete store", err), ErrInvalidReference) {
				return ErrStoreHasProducts
			}
			return fmt.Errorf("failed to delete store: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrStoreNotFound
		}
		return nil
	})
}
