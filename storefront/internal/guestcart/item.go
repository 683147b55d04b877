// Package guestcart holds the cart of a shopper who has not logged in. It
// lives on the client and is persisted to local storage after every change.
package guestcart

import "github.com/shopspring/decimal"

// Product is the catalog snapshot taken when a product is added.
type Product struct {
	ID            string
	Slug          string
	Name          string
	Price         decimal.Decimal
	Image         string
	CategoryName  string
	StockQuantity int
}

// Item is one cart line. StockQuantity is the stock seen at add time and is
// never refreshed.
type Item struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Slug          string          `json:"slug,omitempty"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	CategoryName  string          `json:"categoryName,omitempty"`
	Quantity      int             `json:"quantity"`
	StockQuantity int             `json:"stockQuantity"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// snapshot is the persisted document.
type snapshot struct {
	Items []Item `json:"items"`
}
