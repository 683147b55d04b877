package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the stored document. Product details are not kept here; they are
// joined from the live catalog whenever the cart is returned.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type CartItem struct {
	ID        string    `bson:"id" json:"id"`
	ProductID string    `bson:"product_id" json:"productId"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

func (c *Cart) FindByProduct(productID string) (int, bool) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c *Cart) FindItem(itemID string) (int, bool) {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i, true
		}
	}
	return -1, false
}

func (c *Cart) RemoveAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// Product is the slice of catalog data a cart needs.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image,omitempty"`
	InStock       bool            `json:"inStock"`
	StockQuantity int             `json:"stockQuantity"`
}

// CartLine is a stored item joined with live product data.
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

type CartView struct {
	Items     []CartLine      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
}

// NewCartView totals the lines; subtotal is rounded to cents.
func NewCartView(lines []CartLine) *CartView {
	view := &CartView{Items: lines, Subtotal: decimal.Zero}
	if view.Items == nil {
		view.Items = []CartLine{}
	}
	for _, l := range view.Items {
		view.Subtotal = view.Subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		view.ItemCount += l.Quantity
	}
	view.Subtotal = view.Subtotal.Round(2)
	return view
}
