package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Quantity      int             `json:"quantity"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	InStock       bool            `json:"inStock"`
	StockQuantity int             `json:"stockQuantity"`
}

type Cart struct {
	Items     []CartLine      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

type cartMutation struct {
	Message string `json:"message"`
	Cart    *Cart  `json:"cart"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartClient is the server cart of a logged-in user. Every call needs the
// session token.
type CartClient struct {
	client
	token func() string
}

// NewCartClient expects the cart root, e.g. http://localhost:8082/api/cart.
// token is read on every request so a fresh login takes effect at once.
func NewCartClient(baseURL string, hc *http.Client, token func() string) *CartClient {
	return &CartClient{client: newClient(baseURL, hc), token: token}
}

func (c *CartClient) Get(ctx context.Context) (*Cart, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/", tok, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *CartClient) AddItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	return c.mutate(ctx, http.MethodPost, "/items", addItemRequest{ProductID: productID, Quantity: quantity})
}

// UpdateQuantity with 0 removes the line.
func (c *CartClient) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*Cart, error) {
	return c.mutate(ctx, http.MethodPut, "/items/"+url.PathEscape(itemID), quantityRequest{Quantity: quantity})
}

func (c *CartClient) RemoveItem(ctx context.Context, itemID string) (*Cart, error) {
	return c.mutate(ctx, http.MethodDelete, "/items/"+url.PathEscape(itemID), nil)
}

func (c *CartClient) Clear(ctx context.Context) (*Cart, error) {
	return c.mutate(ctx, http.MethodDelete, "/", nil)
}

func (c *CartClient) mutate(ctx context.Context, method, path string, in any) (*Cart, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}
	var resp cartMutation
	if err := c.do(ctx, method, path, tok, in, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil {
		return &Cart{}, nil
	}
	return resp.Cart, nil
}

func (c *CartClient) bearer() (string, error) {
	tok := ""
	if c.token != nil {
		tok = c.token()
	}
	if tok == "" {
		return "", ErrAuthenticationRequired
	}
	return tok, nil
}
