package service

import (
	"context"
	"errors"
	"sync"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/repository"
)

// Mock repositories for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64
	calls    int

	lastFilter repository.ProductFilter
	lastLimit  int
	lastOffset int
	lastCats   []int64
	listErr    error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[int64]*domain.Product)}
}

func (m *mockProductRepository) add(p *domain.Product) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	if p.Categories == nil {
		p.Categories = []domain.CategorySummary{}
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter, m.lastLimit, m.lastOffset = filter, limit, offset
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []*domain.Product
	for _, p := range m.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockProductRepository) ListAll(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastFilter = filter
	var out []*domain.Product
	for _, p := range m.products {
		if (filter.IncludeInactive || p.IsActive) && (filter.StoreID == nil || p.StoreID == *filter.StoreID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) find(id int64, activeOnly bool) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p, ok := m.products[id]
	if !ok || (activeOnly && !p.IsActive) {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) FindActiveByID(ctx context.Context, id int64) (*domain.Product, error) {
	return m.find(id, true)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return m.find(id, false)
}

func (m *mockProductRepository) setCategories(p *domain.Product, ids []int64) {
	m.lastCats = ids
	p.Categories = []domain.CategorySummary{}
	for _, id := range ids {
		p.Categories = append(p.Categories, domain.CategorySummary{ID: id})
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product, categoryIDs []int64) error {
	m.setCategories(product, categoryIDs)
	cp := *product
	m.add(&cp)
	product.ID = cp.ID
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product, categoryIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.setCategories(product, categoryIDs)
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) IncrementClicks(ctx context.Context, id int64) (*domain.ClickResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p, ok := m.products[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrProductNotFound
	}
	p.Clicks++
	return &domain.ClickResult{ProductID: p.ID, Title: p.Title, TotalClicks: p.Clicks, AffiliateURL: p.AffiliateURL}, nil
}

func (m *mockProductRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.DashboardStats{TotalProducts: len(m.products)}
	for _, p := range m.products {
		stats.TotalClicks += p.Clicks
	}
	return stats, nil
}

func (m *mockProductRepository) Recent(ctx context.Context, limit int) ([]*domain.Product, error) {
	return m.ListAll(ctx, repository.ProductFilter{IncludeInactive: true})
}

func (m *mockProductRepository) TopClicked(ctx context.Context, limit int) ([]*domain.Product, error) {
	return m.ListAll(ctx, repository.ProductFilter{IncludeInactive: true})
}

type mockStoreRepository struct {
	stores map[int64]*domain.Store
	nextID int64
	calls  int
}

func newMockStoreRepository(names ...string) *mockStoreRepository {
	m := &mockStoreRepository{stores: make(map[int64]*domain.Store)}
	for _, name := range names {
		m.Create(context.Background(), &domain.Store{Name: name})
	}
	return m
}

func (m *mockStoreRepository) List(ctx context.Context) ([]*domain.Store, error) {
	m.calls++
	var out []*domain.Store
	for _, s := range m.stores {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStoreRepository) FindByID(ctx context.Context, id int64) (*domain.Store, error) {
	m.calls++
	s, ok := m.stores[id]
	if !ok {
		return nil, repository.ErrStoreNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStoreRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.stores[id]
	return ok, nil
}

func (m *mockStoreRepository) Create(ctx context.Context, store *domain.Store) error {
	m.nextID++
	store.ID = m.nextID
	cp := *store
	m.stores[store.ID] = &cp
	return nil
}

func (m *mockStoreRepository) Update(ctx context.Context, store *domain.Store) error {
	if _, ok := m.stores[store.ID]; !ok {
		return repository.ErrStoreNotFound
	}
	cp := *store
	m.stores[store.ID] = &cp
	return nil
}

func (m *mockStoreRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.stores[id]; !ok {
		return repository.ErrStoreNotFound
	}
	delete(m.stores, id)
	return nil
}

type mockCategoryRepository struct {
	categories map[int64]*domain.Category
	nextID     int64
}

func newMockCategoryRepository(names ...string) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[int64]*domain.Category)}
	for _, name := range names {
		m.Create(context.Background(), &domain.Category{Name: name, Slug: Slugify(name)})
	}
	return m
}

func (m *mockCategoryRepository) ListWithActiveProducts(ctx context.Context) ([]*domain.Category, error) {
	return m.List(ctx)
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	count := 0
	for _, id := range ids {
		if _, ok := m.categories[id]; ok {
			count++
		}
	}
	return count, nil
}

func (m *mockCategoryRepository) conflicts(category *domain.Category) bool {
	for _, c := range m.categories {
		if c.ID != category.ID && (c.Name == category.Name || c.Slug == category.Slug) {
			return true
		}
	}
	return false
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if m.conflicts(category) {
		return repository.ErrCategoryAlreadyExists
	}
	m.nextID++
	category.ID = m.nextID
	cp := *category
	m.categories[category.ID] = &cp
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if m.conflicts(category) {
		return repository.ErrCategoryAlreadyExists
	}
	cp := *category
	m.categories[category.ID] = &cp
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

type mockClickRepository struct {
	mu     sync.Mutex
	clicks []*domain.ClickTracking
	err    error
}

func (m *mockClickRepository) Create(ctx context.Context, click *domain.ClickTracking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.clicks = append(m.clicks, click)
	return nil
}

func (m *mockClickRepository) CountForProduct(ctx context.Context, productID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.clicks {
		if c.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (m *mockClickRepository) Report(ctx context.Context) (*domain.ClickReport, error) {
	return &domain.ClickReport{Products: []domain.ClickReportRow{}}, m.err
}

type mockUploader struct {
	url     string
	err     error
	folders []string
}

func (m *mockUploader) Upload(ctx context.Context, dataURL, folder, publicID string) (string, error) {
	m.folders = append(m.folders, folder)
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

var errStoreDown = errors.New("connection refused")
