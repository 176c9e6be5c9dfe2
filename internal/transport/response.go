package transport

import (
	"errors"
	"net/http"

	"affiliate-market/internal/middleware"
	"affiliate-market/internal/repository"
	"affiliate-market/internal/service"

	"go.uber.org/zap"
)

// SuccessResponse is the envelope every successful request answers with
type SuccessResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
}

func respondData(w http.ResponseWriter, statusCode int, data any) {
	middleware.RespondWithJSON(w, statusCode, SuccessResponse{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, statusCode int, message string, data any) {
	middleware.RespondWithJSON(w, statusCode, SuccessResponse{Success: true, Message: message, Data: data})
}

func respondPage[T any](w http.ResponseWriter, page service.Page[T]) {
	middleware.RespondWithJSON(w, http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       page.Data,
		Pagination: &page.Pagination,
	})
}

// errorStatus maps service and repository errors to a status and a client-safe message.
// ok is false for anything that must be treated as an internal error.
func errorStatus(err error) (status int, message string, ok bool) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest, service.ErrInvalidID.Error(), true
	case errors.Is(err, service.ErrTooManyCategories):
		return http.StatusBadRequest, service.ErrTooManyCategories.Error(), true
	case errors.Is(err, service.ErrUnknownCategories):
		return http.StatusBadRequest, service.ErrUnknownCategories.Error(), true
	case errors.Is(err, repository.ErrInvalidReference):
		return http.StatusBadRequest, repository.ErrInvalidReference.Error(), true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error(), true
	case errors.Is(err, repository.ErrProductNotFound):
		return http.StatusNotFound, repository.ErrProductNotFound.Error(), true
	case errors.Is(err, repository.ErrStoreNotFound):
		return http.StatusNotFound, repository.ErrStoreNotFound.Error(), true
	case errors.Is(err, repository.ErrCategoryNotFound):
		return http.StatusNotFound, repository.ErrCategoryNotFound.Error(), true
	case errors.Is(err, repository.ErrCategoryAlreadyExists):
		return http.StatusConflict, repository.ErrCategoryAlreadyExists.Error(), true
	case errors.Is(err, repository.ErrStoreHasProducts):
		return http.StatusConflict, repository.ErrStoreHasProducts.Error(), true
	case errors.Is(err, repository.ErrCategoryHasProducts):
		return http.StatusConflict, repository.ErrCategoryHasProducts.Error(), true
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, repository.ErrConflict.Error(), true
	}
	return http.StatusInternalServerError, "", false
}

// errorResponder writes service failures. Internal error text is only exposed outside production.
type errorResponder struct {
	logger       *zap.Logger
	exposeErrors bool
}

func (e errorResponder) respond(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	e.write(w, r, err, fallback, false)
}

func (e errorResponder) respondList(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	e.write(w, r, err, fallback, true)
}

func (e errorResponder) write(w http.ResponseWriter, r *http.Request, err error, fallback string, list bool) {
	status, message, ok := errorStatus(err)
	if ok {
		e.logger.Debug("Request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		if list {
			middleware.RespondWithListError(w, status, message)
			return
		}
		middleware.RespondWithError(w, status, message)
		return
	}

	e.logger.Error(fallback,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err),
	)

	switch {
	case list:
		middleware.RespondWithListError(w, status, fallback)
	case e.exposeErrors:
		middleware.RespondWithErrorDetails(w, status, fallback, map[string]interface{}{"error": err.Error()})
	default:
		middleware.RespondWithError(w, status, fallback)
	}
}
