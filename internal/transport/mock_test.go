package transport

import (
	"context"
	"errors"
	"sync"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/repository"
	"affiliate-market/internal/service"
)

var errDatabaseDown = errors.New("connection refused")

// stubProductRepository serves the product lookups the public handlers reach.
// Methods not overridden panic through the nil embedded interface.
type stubProductRepository struct {
	repository.ProductRepository

	mu       sync.Mutex
	products map[int64]*domain.Product
	lookups  int
	page     []*domain.Product
	total    int
	listErr  error
	filter   repository.ProductFilter
	limit    int
	offset   int
}

func newStubProductRepository(products ...*domain.Product) *stubProductRepository {
	repo := &stubProductRepository{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (s *stubProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*domain.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter, s.limit, s.offset = filter, limit, offset
	return s.page, s.total, s.listErr
}

func (s *stubProductRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (s *stubProductRepository) IncrementClicks(ctx context.Context, id int64) (*domain.ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrProductNotFound
	}
	p.Clicks++
	return &domain.ClickResult{
		ProductID:    p.ID,
		Title:        p.Title,
		TotalClicks:  p.Clicks,
		AffiliateURL: p.AffiliateURL,
	}, nil
}

type stubClickRepository struct {
	repository.ClickRepository

	mu     sync.Mutex
	clicks []*domain.ClickTracking
}

func (s *stubClickRepository) Create(ctx context.Context, click *domain.ClickTracking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks = append(s.clicks, click)
	return nil
}

// fakeAdminService lets each test script the admin operations it exercises
type fakeAdminService struct {
	service.AdminService

	createProduct  func(service.ProductInput) (*domain.Product, error)
	updateProduct  func(int64, service.ProductInput) (*domain.Product, error)
	deleteStore    func(int64) error
	createCategory func(service.CategoryInput) (*domain.Category, error)
	clickReport    func() (*domain.ClickReport, error)
}

func (f *fakeAdminService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return f.createProduct(input)
}

func (f *fakeAdminService) UpdateProduct(ctx context.Context, id int64, input service.ProductInput) (*domain.Product, error) {
	return f.updateProduct(id, input)
}

func (f *fakeAdminService) DeleteStore(ctx context.Context, id int64) error {
	return f.deleteStore(id)
}

func (f *fakeAdminService) CreateCategory(ctx context.Context, input service.CategoryInput) (*domain.Category, error) {
	return f.createCategory(input)
}

func (f *fakeAdminService) ClickReport(ctx context.Context) (*domain.ClickReport, error) {
	return f.clickReport()
}

// fakeCatalogService backs the store handler tests
type fakeCatalogService struct {
	service.CatalogService

	stores   []*domain.Store
	storeErr error
}

func (f *fakeCatalogService) ListStores(ctx context.Context) ([]*domain.Store, error) {
	return f.stores, f.storeErr
}

func (f *fakeCatalogService) GetStore(ctx context.Context, rawID string) (*domain.Store, error) {
	id, err := service.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	for _, s := range f.stores {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrStoreNotFound
}
