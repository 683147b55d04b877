package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/ecomart/notification-service/internal/domain"
	"github.com/fjod/ecomart/notification-service/internal/mailer"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type OrderEmailSender interface {
	SendOrderEmail(ctx context.Context, e domain.OrderEmail) error
}

type EmailHandler struct {
	sender  OrderEmailSender
	timeout time.Duration
}

func NewEmailHandler(sender OrderEmailSender, timeout time.Duration) *EmailHandler {
	return &EmailHandler{sender: sender, timeout: timeout}
}

func (h *EmailHandler) Routes(r chi.Router) {
	r.Post("/send-order-email", h.SendOrderEmail)
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *EmailHandler) SendOrderEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.OrderEmail
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	err := h.sender.SendOrderEmail(ctx, req)
	switch {
	case err == nil:
		httpx.RespondJSON(w, r, http.StatusOK, MessageResponse{Message: "Order email sent successfully!"})
	case errors.Is(err, domain.ErrInvalidRecipient),
		errors.Is(err, domain.ErrMissingOrderID),
		errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrInvalidItem):
		httpx.RespondError(w, r, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, mailer.ErrDeliveryFailed):
		httpx.RespondError(w, r, http.StatusBadGateway, "delivery_failed", "Failed to send email")
	case errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("order email failed")
		httpx.RespondError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
