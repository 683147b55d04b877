package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/product-service/internal/repository"
	"github.com/fjod/ecomart/product-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type CategoryHandler struct {
	categories *service.CategoryService
	timeout    time.Duration
}

func NewCategoryHandler(categories *service.CategoryService, timeout time.Duration) *CategoryHandler {
	return &CategoryHandler{categories: categories, timeout: timeout}
}

func (h *CategoryHandler) Routes(r chi.Router) {
	r.Get("/", h.ListCategories)
	r.Get("/{id}", h.GetCategory)
	r.Get("/{id}/products", h.CategoryProducts)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	featured, err := boolParam(r, "featured")
	if err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", "featured must be true or false")
		return
	}

	categories, err := h.categories.List(ctx, featured != nil && *featured)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.categories.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, c)
}

func (h *CategoryHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	page, err := h.categories.Products(ctx, chi.URLParam(r, "id"), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, page)
}

func (h *CategoryHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidCategoryID):
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_category_id", "Invalid category ID format")
	case errors.Is(err, repository.ErrCategoryNotFound):
		httpx.RespondError(w, r, http.StatusNotFound, "not_found", "Category not found")
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("category request failed")
		httpx.RespondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
