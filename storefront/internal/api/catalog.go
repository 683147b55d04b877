package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             string           `json:"id"`
	Slug           string           `json:"slug"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Image          string           `json:"image,omitempty"`
	Category       string           `json:"category,omitempty"`
	CategoryName   string           `json:"categoryName,omitempty"`
	InStock        bool             `json:"inStock"`
	StockQuantity  int              `json:"stockQuantity"`
	Featured       bool             `json:"featured"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"reviewCount"`
	Tags           []string         `json:"tags,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	Limit         int   `json:"limit"`
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// ProductFilter mirrors the catalog's query parameters. A non-empty Query
// switches to the search endpoint.
type ProductFilter struct {
	Query    string
	Category string
	Sort     string
	Order    string
	Page     int
	Limit    int
	InStock  *bool
	Featured *bool
}

func (f ProductFilter) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("q", f.Query)
	set("category", f.Category)
	set("sort", f.Sort)
	set("order", f.Order)
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*f.InStock))
	}
	if f.Featured != nil {
		v.Set("featured", strconv.FormatBool(*f.Featured))
	}
	return v
}

type CatalogClient struct {
	client
}

// NewCatalogClient expects baseURL to point at the products collection,
// e.g. http://localhost:8081/api/products.
func NewCatalogClient(baseURL string, hc *http.Client) *CatalogClient {
	return &CatalogClient{newClient(baseURL, hc)}
}

func (c *CatalogClient) ListProducts(ctx context.Context, f ProductFilter) (*ProductPage, error) {
	path := "/"
	if f.Query != "" {
		path = "/search"
	}
	if q := f.values().Encode(); q != "" {
		path += "?" + q
	}
	var page ProductPage
	if err := c.do(ctx, http.MethodGet, path, "", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(id), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *CatalogClient) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/slug/"+url.PathEscape(slug), "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type stockRequest struct {
	StockQuantity int `json:"stockQuantity"`
}

// PatchStock overwrites the product's stock with an absolute value.
func (c *CatalogClient) PatchStock(ctx context.Context, id string, stockQuantity int) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPatch, "/"+url.PathEscape(id)+"/stock", "", stockRequest{StockQuantity: stockQuantity}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
