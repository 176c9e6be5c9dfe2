package service

import (
	"context"
	"fmt"
	"strings"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/repository"
)

// CatalogService serves the public, read-only side of the marketplace
type CatalogService interface {
	ListProducts(ctx context.Context, query domain.ProductQuery) (Page[*domain.Product], error)
	GetProduct(ctx context.Context, rawID string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListStores(ctx context.Context) ([]*domain.Store, error)
	GetStore(ctx context.Context, rawID string) (*domain.Store, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	storeRepo    repository.StoreRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	storeRepo repository.StoreRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storeRepo:    storeRepo,
	}
}

// BuildProductFilter turns the raw query parameters into the repository predicate.
// Active-only is always applied.
func BuildProductFilter(query domain.ProductQuery) repository.ProductFilter {
	return repository.ProductFilter{
		Query:       strings.TrimSpace(query.Q),
		StoreID:     ParseStoreID(query.StoreID),
		CategoryIDs: ParseCategoryIDs(query.CategoryIDs),
	}
}

// ListProducts returns one page of active products matching the query
func (s *catalogService) ListProducts(ctx context.Context, query domain.ProductQuery) (Page[*domain.Product], error) {
	page := NormalizePage(query.Page)
	perPage := NormalizePerPage(query.PerPage)

	products, total, err := s.productRepo.List(ctx, BuildProductFilter(query), perPage, Offset(page, perPage))
	if err != nil {
		return Page[*domain.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}

	return Paginate(products, total, page, perPage), nil
}

// GetProduct returns an active product; malformed ids fail before any lookup
func (s *catalogService) GetProduct(ctx context.Context, rawID string) (*domain.Product, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.ListWithActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) ListStores(ctx context.Context) ([]*domain.Store, error) {
	stores, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// GetStore returns the store with its active products, newest first
func (s *catalogService) GetStore(ctx context.Context, rawID string) (*domain.Store, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	products, err := s.productRepo.ListAll(ctx, repository.ProductFilter{StoreID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to list store products: %w", err)
	}
	store.Products = products

	return store, nil
}
