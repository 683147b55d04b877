package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

type OrderEmail struct {
	To           string          `json:"to"`
	CustomerName string          `json:"customerName"`
	OrderID      string          `json:"orderId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Items        []OrderLine     `json:"items"`
}

type OrderLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type NotificationClient struct {
	client
}

// NewNotificationClient expects the email API root, e.g.
// http://localhost:8083/api/email.
func NewNotificationClient(baseURL string, hc *http.Client) *NotificationClient {
	return &NotificationClient{newClient(baseURL, hc)}
}

func (c *NotificationClient) SendOrderEmail(ctx context.Context, e OrderEmail) error {
	return c.do(ctx, http.MethodPost, "/send-order-email", "", e, nil)
}
