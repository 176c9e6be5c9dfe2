package transport

import (
	"net/http"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/middleware"
	"affiliate-market/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TrackClickRequest represents the click tracking payload
type TrackClickRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// ProductHandler handles the public catalog and click tracking
type ProductHandler struct {
	catalog service.CatalogService
	clicks  service.ClickService
	logger  *zap.Logger
	errors  errorResponder
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, clicks service.ClickService, logger *zap.Logger, exposeErrors bool) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		clicks:  clicks,
		logger:  logger,
		errors:  errorResponder{logger: logger, exposeErrors: exposeErrors},
	}
}

// RegisterRoutes registers all product routes. clickLimiter guards the click endpoint.
func (h *ProductHandler) RegisterRoutes(r chi.Router, clickLimiter func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.With(clickLimiter).Post("/track-click", h.TrackClick)
		r.Get("/{id}", h.Get)
	})
}

// productQuery reads the raw listing parameters. categoryIds may arrive repeated,
// as categoryIds[] or comma-separated; all forms are merged.
func productQuery(r *http.Request) domain.ProductQuery {
	values := r.URL.Query()

	categoryIDs := append([]string{}, values["categoryIds"]...)
	categoryIDs = append(categoryIDs, values["categoryIds[]"]...)

	return domain.ProductQuery{
		Q:           values.Get("q"),
		StoreID:     values.Get("storeId"),
		CategoryIDs: categoryIDs,
		Page:        values.Get("page"),
		PerPage:     values.Get("perPage"),
	}
}

// List handles the paginated catalog listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListProducts(r.Context(), productQuery(r))
	if err != nil {
		h.errors.respondList(w, r, err, "failed to list products")
		return
	}

	respondPage(w, page)
}

// Get handles single product lookup
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.respond(w, r, err, "failed to get product")
		return
	}

	respondData(w, http.StatusOK, product)
}

// Categories lists categories that have at least one active product
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.errors.respondList(w, r, err, "failed to list categories")
		return
	}

	respondData(w, http.StatusOK, orEmpty(categories))
}

// TrackClick records an outbound click and returns the affiliate URL
func (h *ProductHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req TrackClickRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Track click validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	result, err := h.clicks.TrackClick(r.Context(), req.ProductID, service.ClientInfo{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.errors.respond(w, r, err, "failed to track click")
		return
	}

	respondData(w, http.StatusOK, result)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
