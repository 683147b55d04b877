package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/fjod/ecomart/product-service/internal/domain"
	"github.com/fjod/ecomart/product-service/internal/repository"
	"github.com/fjod/ecomart/product-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	for _, p := range []domain.Product{
		{Slug: "laptop", Name: "Laptop", Price: decimal.RequireFromString("999.99"), StockQuantity: 5, Featured: true, Category: "computers"},
		{Slug: "mouse", Name: "Mouse", Price: decimal.RequireFromString("19.50"), StockQuantity: 1, Category: "accessories"},
	} {
		p := p
		require.NoError(t, repo.Insert(context.Background(), &p))
	}

	h := NewProductHandler(service.NewCatalogService(repo, zerolog.Nop()), 5*time.Second)
	r := chi.NewRouter()
	r.Route("/api/products", h.Routes)
	return r, repo
}

func doRequest(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func productID(t *testing.T, repo *repository.MemoryRepository, slug string) string {
	p, err := repo.GetBySlug(context.Background(), slug)
	require.NoError(t, err)
	return p.ID
}

func TestListProducts_WithFilters(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doRequest(r, http.MethodGet, "/api/products?category=accessories&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var page domain.ProductPage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, "mouse", page.Products[0].Slug)
	assert.Equal(t, 5, page.Pagination.Limit)
	assert.Equal(t, int64(1), page.Pagination.TotalProducts)
}

func TestListProducts_BadQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/products?minPrice=cheap",
		"/api/products?sort=popularity",
		"/api/products?inStock=maybe",
		"/api/products?page=two",
	} {
		rr := doRequest(r, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestFeaturedAndSearch(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := doRequest(r, http.MethodGet, "/api/products/featured", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var featured []domain.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&featured))
	require.Len(t, featured, 1)
	assert.Equal(t, "laptop", featured[0].Slug)

	rr = doRequest(r, http.MethodGet, "/api/products/search?q=mou", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page domain.ProductPage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	require.Len(t, page.Products, 1)

	rr = doRequest(r, http.MethodGet, "/api/products/search", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProduct(t *testing.T) {
	r, repo := newTestRouter(t)
	id := productID(t, repo, "laptop")

	rr := doRequest(r, http.MethodGet, "/api/products/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var p domain.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	assert.Equal(t, "Laptop", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("999.99")))

	rr = doRequest(r, http.MethodGet, "/api/products/slug/mouse", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(r, http.MethodGet, "/api/products/not-hex", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(r, http.MethodGet, "/api/products/0123456789abcdef01234567", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateStock_Success(t *testing.T) {
	r, repo := newTestRouter(t)
	id := productID(t, repo, "mouse")

	rr := doRequest(r, http.MethodPatch, "/api/products/"+id+"/stock", []byte(`{"stockQuantity":0}`))
	require.Equal(t, http.StatusOK, rr.Code)

	var p domain.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	assert.Equal(t, 0, p.StockQuantity)
	assert.False(t, p.InStock)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.StockQuantity)
}

func TestUpdateStock_Validation(t *testing.T) {
	r, repo := newTestRouter(t)
	id := productID(t, repo, "mouse")

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"missing quantity", "/api/products/" + id + "/stock", `{}`, http.StatusBadRequest, "validation_error"},
		{"negative quantity", "/api/products/" + id + "/stock", `{"stockQuantity":-1}`, http.StatusBadRequest, "validation_error"},
		{"fractional quantity", "/api/products/" + id + "/stock", `{"stockQuantity":1.5}`, http.StatusBadRequest, "validation_error"},
		{"string quantity", "/api/products/" + id + "/stock", `{"stockQuantity":"lots"}`, http.StatusBadRequest, "validation_error"},
		{"invalid id", "/api/products/xyz/stock", `{"stockQuantity":1}`, http.StatusBadRequest, "invalid_product_id"},
		{"unknown product", "/api/products/0123456789abcdef01234567/stock", `{"stockQuantity":1}`, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(r, http.MethodPatch, tt.target, []byte(tt.body))
			assert.Equal(t, tt.status, rr.Code)

			var errResp httpx.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
			assert.Equal(t, tt.code, errResp.Code)
		})
	}

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.StockQuantity)
}
