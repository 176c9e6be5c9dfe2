package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"affiliate-market/internal/middleware"
	"affiliate-market/internal/report"
	"affiliate-market/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminLoginRequest represents the admin login payload
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminHandler handles the authenticated management API
type AdminHandler struct {
	auth   service.AuthService
	admin  service.AdminService
	logger *zap.Logger
	errors errorResponder
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(auth service.AuthService, admin service.AdminService, logger *zap.Logger, exposeErrors bool) *AdminHandler {
	return &AdminHandler{
		auth:   auth,
		admin:  admin,
		logger: logger,
		errors: errorResponder{logger: logger, exposeErrors: exposeErrors},
	}
}

// RegisterRoutes registers all admin routes. Everything but login sits behind protect.
func (h *AdminHandler) RegisterRoutes(r chi.Router, protect ...func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(protect...)

			r.Get("/dashboard", h.Dashboard)

			r.Get("/products", h.ListProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Get("/stores", h.ListStores)
			r.Post("/stores", h.CreateStore)
			r.Put("/stores/{id}", h.UpdateStore)
			r.Delete("/stores/{id}", h.DeleteStore)

			r.Get("/categories", h.ListCategories)
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Get("/reports/clicks", h.ClickReport)
			r.Get("/reports/clicks.xlsx", h.ClickReportXLSX)
		})
	})
}

// Login exchanges the admin password for a token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		h.logger.Info("Admin login rejected", zap.String("client_ip", middleware.ClientIP(r)))
		h.errors.respond(w, r, err, "failed to login")
		return
	}

	h.logger.Info("Admin logged in", zap.String("client_ip", middleware.ClientIP(r)))
	respondMessage(w, http.StatusOK, "logged in", result)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.admin.Dashboard(r.Context())
	if err != nil {
		h.errors.respond(w, r, err, "failed to load dashboard")
		return
	}
	respondData(w, http.StatusOK, dashboard)
}

// ListProducts returns every product, active or not, optionally for one store
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.admin.ListProducts(r.Context(), r.URL.Query().Get("storeId"))
	if err != nil {
		h.errors.respondList(w, r, err, "failed to list products")
		return
	}
	respondData(w, http.StatusOK, orEmpty(products))
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.admin.CreateProduct(r.Context(), input)
	if err != nil {
		h.errors.respond(w, r, err, "failed to create product")
		return
	}
	respondMessage(w, http.StatusCreated, "product created", product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.errors.respond(w, r, err, "failed to update product")
		return
	}

	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.admin.UpdateProduct(r.Context(), id, input)
	if err != nil {
		h.errors.respond(w, r, err, "failed to update product")
		return
	}
	respondMessage(w, http.StatusOK, "product updated", product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseID(chi.URLParam(r, "id"))
	if err == nil {
		err = h.admin.DeleteProduct(r.Context(), id)
	}
	if err != nil {
		h.errors.respond(w, r, err, "failed to delete product")
		return
	}
	respondMessage(w, http.StatusOK, "product deleted", nil)
}

func (h *AdminHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.admin.ListStores(r.Context())
	if err != nil {
		h.errors.respondList(w, r, err, "failed to list stores")
		return
	}
	respondData(w, http.StatusOK, orEmpty(stores))
}

func (h *AdminHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var input service.StoreInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	store, err := h.admin.CreateStore(r.Context(), input)
	if err != nil {
		h.errors.respond(w, r, err, "failed to create store")
		return
	}
	respondMessage(w, http.StatusCreated, "store created", store)
}

func (h *AdminHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.errors.respond(w, r, err, "failed to update store")
		return
	}

	var input service.StoreInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	store, err := h.admin.UpdateStore(r.Context(), id, input)
	if err != nil {
		h.errors.respond(w, r, err, "failed to update store")
		return
	}
	respondMessage(w, http.StatusOK, "store updated", store)
}

// DeleteStore refuses with 409 while the store still has products
func (h *AdminHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseID(chi.URLParam(r, "id"))
	if err == nil {
		err = h.admin.DeleteStore(r.Context(), id)
	}
	if err != nil {
		h.errors.respond(w, r, err, "failed to delete store")
		return
	}
	respondMessage(w, http.StatusOK, "store deleted", nil)
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.admin.ListCategories(r.Context())
	if err != nil {
		h.errors.respondList(w, r, err, "failed to list categories")
		return
	}
	respondData(w, http.StatusOK, orEmpty(categories))
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input service.CategoryInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.admin.CreateCategory(r.Context(), input)
	if err != nil {
		h.errors.respond(w, r, err, "failed to create category")
		return
	}
	respondMessage(w, http.StatusCreated, "category created", category)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.errors.respond(w, r, err, "failed to update category")
		return
	}

	var input service.CategoryInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	category, err := h.admin.UpdateCategory(r.Context(), id, input)
	if err != nil {
		h.errors.respond(w, r, err, "failed to update category")
		return
	}
	respondMessage(w, http.StatusOK, "category updated", category)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseID(chi.URLParam(r, "id"))
	if err == nil {
		err = h.admin.DeleteCategory(r.Context(), id)
	}
	if err != nil {
		h.errors.respond(w, r, err, "failed to delete category")
		return
	}
	respondMessage(w, http.StatusOK, "category deleted", nil)
}

func (h *AdminHandler) ClickReport(w http.ResponseWriter, r *http.Request) {
	clicks, err := h.admin.ClickReport(r.Context())
	if err != nil {
		h.errors.respond(w, r, err, "failed to build click report")
		return
	}
	respondData(w, http.StatusOK, clicks)
}

// ClickReportXLSX streams the click report as a spreadsheet download
func (h *AdminHandler) ClickReportXLSX(w http.ResponseWriter, r *http.Request) {
	clicks, err := h.admin.ClickReport(r.Context())
	if err != nil {
		h.errors.respond(w, r, err, "failed to build click report")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteClicks(&buf, clicks); err != nil {
		h.errors.respond(w, r, err, "failed to render click report")
		return
	}

	filename := fmt.Sprintf("clicks-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write click report", zap.Error(err))
	}
}
