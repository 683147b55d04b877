package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/product-service/internal/domain"
	"github.com/fjod/ecomart/product-service/internal/repository"
	"github.com/fjod/ecomart/product-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *service.CatalogService
	timeout time.Duration
}

func NewProductHandler(catalog *service.CatalogService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// Routes mounts the catalog under the caller's prefix. Static segments are
// registered before /{id} so "featured" is never parsed as an id.
func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.ListProducts)
	r.Get("/featured", h.Featured)
	r.Get("/search", h.Search)
	r.Get("/slug/{slug}", h.GetBySlug)
	r.Get("/{id}", h.GetProduct)
	r.Patch("/{id}/stock", h.UpdateStock)
}

type UpdateStockRequestDTO struct {
	StockQuantity *float64 `json:"stockQuantity"`
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	page, err := h.catalog.List(ctx, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, page)
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	filter.Query = r.URL.Query().Get("q")

	page, err := h.catalog.Search(ctx, filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, page)
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit, err := intParam(r, "limit", 0)
	if err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", "limit must be an integer")
		return
	}

	products, err := h.catalog.Featured(ctx, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, p)
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, p)
}

func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStockRequestDTO
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "validation_error", "stockQuantity must be a non-negative integer")
		return
	}
	if req.StockQuantity == nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "validation_error", "stockQuantity is required")
		return
	}
	q := *req.StockQuantity
	if q < 0 || q != math.Trunc(q) || q > math.MaxInt32 {
		httpx.RespondError(w, r, http.StatusBadRequest, "validation_error", "stockQuantity must be a non-negative integer")
		return
	}

	p, err := h.catalog.UpdateStock(ctx, chi.URLParam(r, "id"), int(q))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, p)
}

func (h *ProductHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_product_id", "Invalid product ID format")
	case errors.Is(err, repository.ErrProductNotFound):
		httpx.RespondError(w, r, http.StatusNotFound, "not_found", "Product not found")
	case errors.Is(err, service.ErrNegativeStock):
		httpx.RespondError(w, r, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrEmptyQuery):
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("catalog request failed")
		httpx.RespondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	f := domain.ListFilter{
		Category: q.Get("category"),
		Desc:     q.Get("order") != "asc",
	}

	sortField, ok := domain.ParseSortField(q.Get("sort"))
	if !ok {
		return f, queryError("sort must be one of createdAt, price, name, rating")
	}
	f.Sort = sortField

	var err error
	if f.Page, err = intParam(r, "page", 1); err != nil {
		return f, queryError("page must be an integer")
	}
	if f.Limit, err = intParam(r, "limit", 0); err != nil {
		return f, queryError("limit must be an integer")
	}
	if f.Featured, err = boolParam(r, "featured"); err != nil {
		return f, queryError("featured must be true or false")
	}
	if f.InStock, err = boolParam(r, "inStock"); err != nil {
		return f, queryError("inStock must be true or false")
	}
	if f.MinPrice, err = decimalParam(r, "minPrice"); err != nil {
		return f, queryError("minPrice must be a number")
	}
	if f.MaxPrice, err = decimalParam(r, "maxPrice"); err != nil {
		return f, queryError("maxPrice must be a number")
	}
	return f, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func boolParam(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func decimalParam(r *http.Request, name string) (*decimal.Decimal, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
