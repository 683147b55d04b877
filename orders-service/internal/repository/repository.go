package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/ecomart/orders-service/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this reference already exists")
	ErrNotCancellable = errors.New("order cannot be cancelled")
)

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Credentials) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// OrderRepository reads and writes orders. Reads and cancellation are
// scoped to the customer's e-mail so one customer never sees another's orders.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uuid.UUID, customerEmail string) (*domain.Order, error)
	ListOrders(ctx context.Context, f domain.ListFilter) ([]*domain.Order, int64, error)
	CancelOrder(ctx context.Context, id uuid.UUID, customerEmail string) (*domain.Order, error)
}
