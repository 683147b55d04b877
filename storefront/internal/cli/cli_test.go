package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const laptopID = "0123456789abcdef01234567"

// backend fakes the identity, catalog, cart and notification services.
type backend struct {
	mu     sync.Mutex
	stock  map[string]int
	emails []map[string]any
	token  string
}

func newBackend(t *testing.T) (*backend, string) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "firstName": "Ada"}).
		SignedString([]byte("issuer-secret"))
	require.NoError(t, err)
	b := &backend{stock: map[string]int{laptopID: 3}, token: tok}

	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		httpx.RespondJSON(w, req, http.StatusOK, map[string]string{"bearer": b.token})
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/slug/{slug}", func(w http.ResponseWriter, req *http.Request) {
			if chi.URLParam(req, "slug") != "laptop" {
				httpx.RespondError(w, req, http.StatusNotFound, "not_found", "Product not found")
				return
			}
			httpx.RespondJSON(w, req, http.StatusOK, b.product())
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			httpx.RespondJSON(w, req, http.StatusOK, b.product())
		})
		r.Patch("/{id}/stock", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				StockQuantity int `json:"stockQuantity"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)
			b.mu.Lock()
			b.stock[chi.URLParam(req, "id")] = body.StockQuantity
			b.mu.Unlock()
			httpx.RespondJSON(w, req, http.StatusOK, b.product())
		})
	})
	r.Post("/email/send-order-email", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		b.mu.Lock()
		b.emails = append(b.emails, body)
		b.mu.Unlock()
		httpx.RespondJSON(w, req, http.StatusOK, map[string]string{"message": "Order email sent successfully!"})
	})
	r.Get("/cart/", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer "+b.token {
			httpx.RespondError(w, req, http.StatusUnauthorized, "unauthorized", "No token provided")
			return
		}
		httpx.RespondJSON(w, req, http.StatusOK, map[string]any{"items": []any{}, "subtotal": "0", "itemCount": 0})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func (b *backend) stockOf(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stock[id]
}

func (b *backend) sentEmails() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.emails...)
}

func (b *backend) product() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.stock[laptopID]
	return map[string]any{
		"id": laptopID, "slug": "laptop", "name": "Laptop", "price": "40.00",
		"categoryName": "Computers", "stockQuantity": n, "inStock": n > 0,
	}
}

type harness struct {
	t     *testing.T
	flags []string
}

func newHarness(t *testing.T, url string) *harness {
	return &harness{t: t, flags: []string{
		"--db-path", filepath.Join(t.TempDir(), "storefront.db"),
		"--auth-url", url + "/auth",
		"--catalog-url", url + "/products",
		"--cart-url", url + "/cart",
		"--notification-url", url + "/email",
		"--log-level", "disabled",
	}}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	err := execute(context.Background(), append(args, h.flags...), &out)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err)
	return out
}

func TestGuestCartSurvivesInvocations(t *testing.T) {
	_, url := newBackend(t)
	h := newHarness(t, url)

	out := h.mustRun("cart", "add", "laptop")
	assert.Contains(t, out, "Laptop added to cart! (1 items)")
	h.mustRun("cart", "add", laptopID, "-q", "2")

	out = h.mustRun("cart", "show")
	assert.Contains(t, out, "Items:    3")
	assert.Contains(t, out, "Subtotal: ₹120.00")
	assert.Contains(t, out, "Shipping: FREE")
	assert.Contains(t, out, "GST:      ₹21.60")
	assert.Contains(t, out, "Total:    ₹141.60")

	h.mustRun("cart", "clear")
	assert.Contains(t, h.mustRun("cart", "show"), "Your cart is empty.")
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	_, url := newBackend(t)
	h := newHarness(t, url)

	_, err := h.run("cart", "add", "ghost")
	assert.Error(t, err)
}

func TestCheckout_RequiresLogin(t *testing.T) {
	b, url := newBackend(t)
	h := newHarness(t, url)
	h.mustRun("cart", "add", "laptop")

	_, err := h.run("checkout")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Empty(t, b.sentEmails())
	assert.Contains(t, h.mustRun("cart", "show"), "Items:    1")
}

func TestLoginCheckoutFlow(t *testing.T) {
	b, url := newBackend(t)
	h := newHarness(t, url)

	_, err := h.run("login", "--email", "ada@example.com", "--password", "wrong")
	require.Error(t, err)

	out := h.mustRun("login", "--email", "ada@example.com", "--password", "secret")
	assert.Contains(t, out, "Logged in as Ada (ada@example.com)")
	assert.Contains(t, h.mustRun("whoami"), "Ada <ada@example.com> role=USER")

	h.mustRun("cart", "add", "laptop", "-q", "2")
	out = h.mustRun("checkout", "--charge-fees=false")
	assert.Contains(t, out, checkoutSuccess)
	assert.Contains(t, out, "total ₹80.00")

	assert.Equal(t, 1, b.stockOf(laptopID))
	emails := b.sentEmails()
	require.Len(t, emails, 1)
	assert.Equal(t, "ada@example.com", emails[0]["to"])
	assert.Equal(t, "Ada", emails[0]["customerName"])
	assert.Contains(t, h.mustRun("cart", "show"), "Your cart is empty.")

	_, err = h.run("checkout")
	assert.ErrorContains(t, err, "your cart is empty")

	h.mustRun("logout")
	_, err = h.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRemoteCart(t *testing.T) {
	_, url := newBackend(t)
	h := newHarness(t, url)

	_, err := h.run("remote-cart", "show")
	assert.ErrorIs(t, err, errNotLoggedIn)

	h.mustRun("login", "--email", "ada@example.com", "--password", "secret")
	assert.Contains(t, h.mustRun("remote-cart", "show"), "Your cart is empty.")
}

func TestLoadConfig_EnvironmentAndFlags(t *testing.T) {
	t.Setenv("STOREFRONT_CATALOG_URL", "http://catalog.internal/api/products")
	t.Setenv("STOREFRONT_TIMEOUT", "3s")

	root, closeApp := newRootCommand()
	defer closeApp()
	fs := root.PersistentFlags()
	require.NoError(t, fs.Parse([]string{"--cart-url", "http://cart.internal/api/cart", "-v"}))

	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, "http://catalog.internal/api/products", cfg.CatalogURL)
	assert.Equal(t, "http://cart.internal/api/cart", cfg.CartURL)
	assert.Equal(t, "3s", cfg.Timeout.String())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.ChargeFees)
}

func TestLoadConfig_GatewayURL(t *testing.T) {
	root, closeApp := newRootCommand()
	defer closeApp()
	fs := root.PersistentFlags()
	require.NoError(t, fs.Parse([]string{"--gateway-url", "http://edge:8080/", "--cart-url", "http://ignored"}))

	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, "http://edge:8080/api/products", cfg.CatalogURL)
	assert.Equal(t, "http://edge:8080/api/cart", cfg.CartURL)
	assert.Equal(t, "http://edge:8080/api/auth", cfg.AuthURL)
	assert.Equal(t, "http://edge:8080/api/email", cfg.NotificationURL)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "₹19.90", money(decimal.RequireFromString("19.9")))
}
