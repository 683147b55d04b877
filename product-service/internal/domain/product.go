package domain

import (
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

// SetStock is the only place stock changes; inStock always follows it.
func (p *Product) SetStock(quantity int, now time.Time) {
	p.StockQuantity = quantity
	p.InStock = quantity > 0
	p.UpdatedAt = now
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortPrice     SortField = "price"
	SortName      SortField = "name"
	SortRating    SortField = "rating"
)

func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(s); f {
	case SortCreatedAt, SortPrice, SortName, SortRating:
		return f, true
	case "":
		return SortCreatedAt, true
	}
	return "", false
}

// ListFilter narrows a catalog listing. Nil pointers mean "don't filter".
type ListFilter struct {
	Category string
	Featured *bool
	InStock  *bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Query is a case-insensitive match on name, categoryName, description and tags.
	Query string
	Sort  SortField
	Desc  bool
	Page  int
	Limit int
}

func (f ListFilter) Skip() int64 {
	if f.Page < 1 {
		return 0
	}
	return int64((f.Page - 1) * f.Limit)
}

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	Limit         int   `json:"limit"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{CurrentPage: page, TotalPages: pages, TotalProducts: total, Limit: limit}
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
