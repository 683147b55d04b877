package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/ecomart/orders-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *Repository {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	repo, err := NewRepository(ctx, Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.RunMigrations())
	// second run is a no-op
	require.NoError(t, repo.RunMigrations())
	return repo
}

func newTestOrder(ref, email string) *domain.Order {
	return &domain.Order{
		ID:            uuid.Must(uuid.NewV7()),
		OrderRef:      ref,
		CustomerEmail: email,
		CustomerName:  "Ada",
		TotalAmount:   decimal.RequireFromString("1019.49"),
		Currency:      "INR",
		Status:        domain.OrderStatusPending,
		EmailSent:     true,
		Items: []domain.OrderItem{
			{Name: "Laptop", Quantity: 1, Price: decimal.RequireFromString("999.99")},
			{Name: "Mouse", Quantity: 1, Price: decimal.RequireFromString("19.50")},
		},
		PlacedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := newTestOrder("ref-1", "ada@example.com")
	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.False(t, order.CreatedAt.IsZero())

	got, err := repo.GetOrder(ctx, order.ID, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.OrderRef)
	assert.True(t, got.TotalAmount.Equal(order.TotalAmount))
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.True(t, got.EmailSent)
	require.Len(t, got.Items, 2)
	assert.True(t, got.Items[1].Price.Equal(decimal.RequireFromString("19.5")))
	assert.True(t, got.PlacedAt.Equal(order.PlacedAt))

	_, err = repo.GetOrder(ctx, order.ID, "mallory@example.com")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = repo.GetOrder(ctx, uuid.New(), "ada@example.com")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateOrder_DuplicateRef(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("ref-dup", "ada@example.com")))
	err := repo.CreateOrder(ctx, newTestOrder("ref-dup", "ada@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestListOrders(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i, ref := range []string{"a", "b", "c"} {
		o := newTestOrder(ref, "ada@example.com")
		if i == 2 {
			o.Status = domain.OrderStatusShipped
		}
		require.NoError(t, repo.CreateOrder(ctx, o))
		ids = append(ids, o.ID)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("other", "grace@example.com")))

	f := domain.ListFilter{CustomerEmail: "ada@example.com", Page: 1, Limit: 2}
	orders, total, err := repo.ListOrders(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, orders, 2)
	assert.Equal(t, ids[2], orders[0].ID, "newest first")
	assert.Equal(t, ids[1], orders[1].ID)

	f.Page = 2
	orders, _, err = repo.ListOrders(ctx, f)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ids[0], orders[0].ID)

	f = domain.ListFilter{CustomerEmail: "ada@example.com", Status: domain.OrderStatusShipped, Page: 1, Limit: 10}
	orders, total, err = repo.ListOrders(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, ids[2], orders[0].ID)
}

func TestCancelOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	order := newTestOrder("cancel-me", "ada@example.com")
	require.NoError(t, repo.CreateOrder(ctx, order))

	cancelled, err := repo.CancelOrder(ctx, order.ID, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	_, err = repo.CancelOrder(ctx, order.ID, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotCancellable)

	delivered := newTestOrder("delivered", "ada@example.com")
	delivered.Status = domain.OrderStatusDelivered
	require.NoError(t, repo.CreateOrder(ctx, delivered))
	_, err = repo.CancelOrder(ctx, delivered.ID, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotCancellable)

	_, err = repo.CancelOrder(ctx, order.ID, "grace@example.com")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
