package transport

import (
	"net/http"

	"affiliate-market/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StoreHandler serves the public store pages
type StoreHandler struct {
	catalog service.CatalogService
	errors  errorResponder
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(catalog service.CatalogService, logger *zap.Logger, exposeErrors bool) *StoreHandler {
	return &StoreHandler{
		catalog: catalog,
		errors:  errorResponder{logger: logger, exposeErrors: exposeErrors},
	}
}

// RegisterRoutes registers all store routes
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/stores", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

// List returns every store with its active product count
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStores(r.Context())
	if err != nil {
		h.errors.respondList(w, r, err, "failed to list stores")
		return
	}

	respondData(w, http.StatusOK, orEmpty(stores))
}

// Get returns a store with its active products
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := h.catalog.GetStore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.respond(w, r, err, "failed to get store")
		return
	}

	respondData(w, http.StatusOK, store)
}
