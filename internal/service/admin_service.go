package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/imagehost"
	"affiliate-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dashboardListSize = 5

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrTooManyCategories = fmt.Errorf("a product can have at most %d categories", domain.MaxCategoriesPerProduct)
	ErrUnknownCategories = errors.New("one or more categories do not exist")
)

// ProductInput carries an admin product write. Nil fields are left untouched on update.
type ProductInput struct {
	Title         *string          `json:"title" validate:"omitempty,max=255"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	ImageURL      *string          `json:"imageUrl"`
	AffiliateURL  *string          `json:"affiliateUrl"`
	Tags          *string          `json:"tags"`
	StoreID       *int64           `json:"storeId" validate:"omitempty,gt=0"`
	Stock         *int             `json:"stock" validate:"omitempty,gte=0"`
	Rating        *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount   *int             `json:"reviewCount" validate:"omitempty,gte=0"`
	SoldCount     *int             `json:"soldCount" validate:"omitempty,gte=0"`
	IsActive      *bool            `json:"isActive"`
	FreeShipping  *bool            `json:"freeShipping"`
	Warranty      *bool            `json:"warranty"`
	CategoryIDs   *[]int64         `json:"categoryIds"`
}

// StoreInput carries an admin store write
type StoreInput struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	Domain      *string `json:"domain" validate:"omitempty,max=255"`
}

// CategoryInput carries an admin category write
type CategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,max=120"`
	Description *string `json:"description"`
}

// Dashboard is the admin landing summary
type Dashboard struct {
	Stats          *domain.DashboardStats `json:"stats"`
	RecentProducts []*domain.Product      `json:"recentProducts"`
	TopProducts    []*domain.Product      `json:"topProducts"`
}

// AdminService defines the admin management operations
type AdminService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListProducts(ctx context.Context, rawStoreID string) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListStores(ctx context.Context) ([]*domain.Store, error)
	CreateStore(ctx context.Context, input StoreInput) (*domain.Store, error)
	UpdateStore(ctx context.Context, id int64, input StoreInput) (*domain.Store, error)
	DeleteStore(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ClickReport(ctx context.Context) (*domain.ClickReport, error)
}

type adminService struct {
	productRepo  repository.ProductRepository
	storeRepo    repository.StoreRepository
	categoryRepo repository.CategoryRepository
	clickRepo    repository.ClickRepository
	uploader     imagehost.Uploader
	logger       *zap.Logger
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	categoryRepo repository.CategoryRepository,
	clickRepo repository.ClickRepository,
	uploader imagehost.Uploader,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		productRepo:  productRepo,
		storeRepo:    storeRepo,
		categoryRepo: categoryRepo,
		clickRepo:    clickRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (s *adminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.productRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.productRepo.Recent(ctx, dashboardListSize)
	if err != nil {
		return nil, err
	}

	top, err := s.productRepo.TopClicked(ctx, dashboardListSize)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Stats: stats, RecentProducts: recent, TopProducts: top}, nil
}

// ListProducts returns every product, active or not, optionally for one store
func (s *adminService) ListProducts(ctx context.Context, rawStoreID string) ([]*domain.Product, error) {
	products, err := s.productRepo.ListAll(ctx, repository.ProductFilter{
		StoreID:         ParseStoreID(rawStoreID),
		IncludeInactive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// validateCategories enforces the per-product cap and that every id names a category
func (s *adminService) validateCategories(ctx context.Context, raw []int64) ([]int64, error) {
	if len(raw) > domain.MaxCategoriesPerProduct {
		return nil, ErrTooManyCategories
	}

	var (
		ids  []int64
		seen = make(map[int64]struct{}, len(raw))
	)
	for _, id := range raw {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	count, err := s.categoryRepo.CountExisting(ctx, ids)
	if err != nil {
		return nil, err
	}
	if count != len(ids) {
		return nil, ErrUnknownCategories
	}
	return ids, nil
}

func (s *adminService) ensureStore(ctx context.Context, id int64) error {
	exists, err := s.storeRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrStoreNotFound
	}
	return nil
}

// processImage uploads inline images and drops URLs that cannot be shown directly.
// Upload failures are logged and leave the field empty.
func (s *adminService) processImage(ctx context.Context, raw, folder string, requireDirect bool) string {
	raw = strings.TrimSpace(raw)

	switch {
	case raw == "":
		return ""
	case imagehost.IsDataURL(raw):
		url, err := s.uploader.Upload(ctx, raw, folder, folder+"-"+uuid.NewString())
		if err != nil {
			s.logger.Warn("Image upload failed, field left empty",
				zap.String("folder", folder),
				zap.Error(err),
			)
			return ""
		}
		return url
	case requireDirect && !IsDirectImageURL(raw):
		return ""
	}

	return SanitizeURL(raw)
}

func (s *adminService) applyProductInput(ctx context.Context, p *domain.Product, in ProductInput) error {
	if in.Title != nil {
		p.Title = SanitizeString(*in.Title)
	}
	if in.Description != nil {
		p.Description = SanitizeString(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		if in.OriginalPrice.IsPositive() {
			p.OriginalPrice = in.OriginalPrice
		} else {
			p.OriginalPrice = nil
		}
	}
	if in.ImageURL != nil {
		p.ImageURL = s.processImage(ctx, *in.ImageURL, "products", true)
	}
	if in.AffiliateURL != nil {
		p.AffiliateURL = SanitizeURL(*in.AffiliateURL)
	}
	if in.Tags != nil {
		p.Tags = FormatTags(*in.Tags)
	}
	if in.StoreID != nil {
		p.StoreID = *in.StoreID
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.SoldCount != nil {
		p.SoldCount = *in.SoldCount
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.FreeShipping != nil {
		p.FreeShipping = *in.FreeShipping
	}
	if in.Warranty != nil {
		p.Warranty = *in.Warranty
	}

	switch {
	case p.Title == "":
		return invalidInput("title is required")
	case !p.Price.IsPositive():
		return invalidInput("price must be greater than zero")
	case p.AffiliateURL == "":
		return invalidInput("affiliateUrl must be a valid http(s) url")
	case p.StoreID <= 0:
		return invalidInput("storeId is required")
	}
	return nil
}

func (s *adminService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	var categoryIDs []int64
	if input.CategoryIDs != nil {
		ids, err := s.validateCategories(ctx, *input.CategoryIDs)
		if err != nil {
			return nil, err
		}
		categoryIDs = ids
	}

	product := &domain.Product{IsActive: true, FreeShipping: true}
	if err := s.applyProductInput(ctx, product, input); err != nil {
		return nil, err
	}

	if err := s.ensureStore(ctx, product.StoreID); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product, categoryIDs); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.Int64("store_id", product.StoreID))
	return s.productRepo.FindByID(ctx, product.ID)
}

// UpdateProduct applies a partial update; the category set is replaced only when provided
func (s *adminService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryIDs := make([]int64, 0, len(product.Categories))
	for _, c := range product.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}
	if input.CategoryIDs != nil {
		if categoryIDs, err = s.validateCategories(ctx, *input.CategoryIDs); err != nil {
			return nil, err
		}
	}

	previousStore := product.StoreID
	if err := s.applyProductInput(ctx, product, input); err != nil {
		return nil, err
	}

	if product.StoreID != previousStore {
		if err := s.ensureStore(ctx, product.StoreID); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product, categoryIDs); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.productRepo.FindByID(ctx, id)
}

func (s *adminService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *adminService) ListStores(ctx context.Context) ([]*domain.Store, error) {
	return s.storeRepo.List(ctx)
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (s *adminService) applyStoreInput(ctx context.Context, store *domain.Store, in StoreInput) error {
	if in.Name != nil {
		store.Name = SanitizeString(*in.Name)
	}
	if in.Description != nil {
		store.Description = optionalString(SanitizeString(*in.Description))
	}
	if in.Domain != nil {
		store.Domain = optionalString(SanitizeString(*in.Domain))
	}
	if in.LogoURL != nil {
		store.LogoURL = optionalString(s.processImage(ctx, *in.LogoURL, "stores", false))
	}

	if store.Name == "" {
		return invalidInput("name is required")
	}
	return nil
}

func (s *adminService) CreateStore(ctx context.Context, input StoreInput) (*domain.Store, error) {
	store := &domain.Store{}
	if err := s.applyStoreInput(ctx, store, input); err != nil {
		return nil, err
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

func (s *adminService) UpdateStore(ctx context.Context, id int64, input StoreInput) (*domain.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyStoreInput(ctx, store, input); err != nil {
		return nil, err
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return store, nil
}

func (s *adminService) DeleteStore(ctx context.Context, id int64) error {
	return s.storeRepo.Delete(ctx, id)
}

func (s *adminService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *adminService) applyCategoryInput(category *domain.Category, in CategoryInput) error {
	if in.Name != nil {
		category.Name = SanitizeString(*in.Name)
	}
	if in.Description != nil {
		category.Description = optionalString(SanitizeString(*in.Description))
	}

	switch {
	case in.Slug != nil && strings.TrimSpace(*in.Slug) != "":
		category.Slug = Slugify(*in.Slug)
	case category.Slug == "":
		category.Slug = Slugify(category.Name)
	}

	if category.Name == "" {
		return invalidInput("name is required")
	}
	if category.Slug == "" {
		return invalidInput("slug could not be derived from name")
	}
	return nil
}

func (s *adminService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{}
	if err := s.applyCategoryInput(category, input); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *adminService) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyCategoryInput(category, input); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *adminService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *adminService) ClickReport(ctx context.Context) (*domain.ClickReport, error) {
	report, err := s.clickRepo.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build click report: %w", err)
	}
	return report, nil
}
