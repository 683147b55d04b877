package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/ecomart/orders-service/internal/domain"
	"github.com/fjod/ecomart/orders-service/internal/repository"
	"github.com/fjod/ecomart/pkg/auth"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type OrdersHandler struct {
	repo    repository.OrderRepository
	timeout time.Duration
}

func NewOrdersHandler(repo repository.OrderRepository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{repo: repo, timeout: timeout}
}

// Routes expects auth.Middleware to run first.
func (h *OrdersHandler) Routes(r chi.Router) {
	r.Get("/", h.ListOrders)
	r.Get("/{id}", h.GetOrder)
	r.Patch("/{id}/cancel", h.CancelOrder)
}

type CancelResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	email, ok := customerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	f := domain.ListFilter{CustomerEmail: email, Status: domain.OrderStatus(q.Get("status"))}
	if f.Status != "" && !f.Status.Valid() {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", "unknown order status")
		return
	}
	var err error
	if f.Page, err = intParam(q.Get("page"), 1); err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", "page must be an integer")
		return
	}
	if f.Limit, err = intParam(q.Get("limit"), domain.DefaultPageSize); err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_query", "limit must be an integer")
		return
	}
	f.Normalize()

	orders, total, err := h.repo.ListOrders(ctx, f)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, domain.NewOrderPage(orders, total, f))
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := customerEmail(w, r)
	if !ok {
		return
	}
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.repo.GetOrder(ctx, id, email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpx.RespondJSON(w, r, http.StatusOK, order)
}

// CancelOrder only changes the status. Stock is not restored because order
// lines carry no product ids.
func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := customerEmail(w, r)
	if !ok {
		return
	}
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.repo.CancelOrder(ctx, id, email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("order_id", id.String()).Msg("order cancelled")
	httpx.RespondJSON(w, r, http.StatusOK, CancelResponse{Message: "Order cancelled successfully", Order: order})
}

func customerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok || id.Email == "" {
		httpx.RespondError(w, r, http.StatusUnauthorized, "unauthorized", "No token provided")
		return "", false
	}
	return strings.ToLower(id.Email), true
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "invalid_order_id", "Invalid order ID format")
		return uuid.Nil, false
	}
	return id, true
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		httpx.RespondError(w, r, http.StatusNotFound, "not_found", "Order not found")
	case errors.Is(err, repository.ErrNotCancellable):
		httpx.RespondError(w, r, http.StatusBadRequest, "not_cancellable", "Order cannot be cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("orders request failed")
		httpx.RespondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
