package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/ecomart/cart-service/internal/catalog"
	"github.com/fjod/ecomart/cart-service/internal/domain"
	"github.com/fjod/ecomart/cart-service/internal/repository"
	"github.com/fjod/ecomart/cart-service/internal/service"
	"github.com/fjod/ecomart/pkg/auth"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const maxQuantity = 100

// CartService is the cart behaviour the handler needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartView, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.CartView, error)
	ClearCart(ctx context.Context, userID string) (*domain.CartView, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

// Routes expects to be mounted behind auth.Middleware.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.GetCart)
	r.Delete("/", h.ClearCart)
	r.Post("/items", h.AddItem)
	r.Put("/items/{itemId}", h.UpdateQuantity)
	r.Delete("/items/{itemId}", h.RemoveItem)
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type MutationResponse struct {
	Message string           `json:"message"`
	Cart    *domain.CartView `json:"cart"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 || quantity > maxQuantity {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must be between 1 and %d", maxQuantity))
		return
	}

	view, err := h.carts.AddItem(ctx, userID, req.ProductID, quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusCreated, MutationResponse{Message: "Item added to cart", Cart: view})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 || *req.Quantity > maxQuantity {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must be between 0 and %d", maxQuantity))
		return
	}

	view, err := h.carts.UpdateQuantity(ctx, userID, chi.URLParam(r, "itemId"), *req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	msg := "Cart updated"
	if *req.Quantity == 0 {
		msg = "Item removed from cart"
	}
	httpx.RespondJSON(w, r, http.StatusOK, MutationResponse{Message: msg, Cart: view})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.carts.RemoveItem(ctx, userID, chi.URLParam(r, "itemId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, MutationResponse{Message: "Item removed from cart", Cart: view})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	view, err := h.carts.ClearCart(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, MutationResponse{Message: "Cart cleared", Cart: view})
}

func userFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok || id.UserID == "" {
		httpx.RespondError(w, r, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return "", false
	}
	return id.UserID, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		httpx.RespondError(w, r, http.StatusBadRequest, "insufficient_stock", fmt.Sprintf("Only %d items available in stock", stockErr.Available))
	case errors.Is(err, service.ErrOutOfStock):
		httpx.RespondError(w, r, http.StatusBadRequest, "out_of_stock", "Product is out of stock")
	case errors.Is(err, service.ErrProductNotFound):
		httpx.RespondError(w, r, http.StatusNotFound, "not_found", "Product not found")
	case errors.Is(err, repository.ErrCartNotFound):
		httpx.RespondError(w, r, http.StatusNotFound, "not_found", "Cart not found")
	case errors.Is(err, repository.ErrItemNotFound):
		httpx.RespondError(w, r, http.StatusNotFound, "not_found", "Item not found in cart")
	case errors.Is(err, catalog.ErrUnavailable), errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("catalog unavailable")
		httpx.RespondError(w, r, http.StatusServiceUnavailable, "catalog_unavailable", "product catalog is unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("cart request failed")
		httpx.RespondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
