package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCustomerName = "Customer"

var (
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrMissingOrderID   = errors.New("orderId is required")
	ErrNoItems          = errors.New("at least one item is required")
	ErrInvalidItem      = errors.New("invalid item")
)

// OrderEmail is the confirmation request sent by the storefront after checkout.
type OrderEmail struct {
	To           string          `json:"to"`
	CustomerName string          `json:"customerName"`
	OrderID      string          `json:"orderId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Items        []EmailItem     `json:"items"`
}

type EmailItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// LineTotal is price times quantity.
func (i EmailItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate normalises the recipient and fills the customer name default.
func (e *OrderEmail) Validate() error {
	addr, err := mail.ParseAddress(strings.TrimSpace(e.To))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, e.To)
	}
	e.To = addr.Address

	if strings.TrimSpace(e.OrderID) == "" {
		return ErrMissingOrderID
	}
	if len(e.Items) == 0 {
		return ErrNoItems
	}
	for i, item := range e.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w %d: quantity must be at least 1", ErrInvalidItem, i)
		}
	}
	if strings.TrimSpace(e.CustomerName) == "" {
		e.CustomerName = DefaultCustomerName
	}
	return nil
}

// OrderPlaced is published on the order-placed topic once a confirmation
// has been attempted.
type OrderPlaced struct {
	OrderID       string          `json:"orderId"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Currency      string          `json:"currency"`
	Items         []EmailItem     `json:"items"`
	EmailSent     bool            `json:"emailSent"`
	PlacedAt      time.Time       `json:"placedAt"`
}

func NewOrderPlaced(e OrderEmail, sent bool, at time.Time) OrderPlaced {
	return OrderPlaced{
		OrderID:       e.OrderID,
		CustomerEmail: e.To,
		CustomerName:  e.CustomerName,
		TotalAmount:   e.TotalAmount,
		Currency:      "INR",
		Items:         e.Items,
		EmailSent:     sent,
		PlacedAt:      at,
	}
}
