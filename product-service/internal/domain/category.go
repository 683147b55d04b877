package domain

import "time"

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Image        string    `json:"image"`
	Description  string    `json:"description"`
	Featured     bool      `json:"featured"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CategorySummary is the header of a category's product listing.
type CategorySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (c Category) Summary() CategorySummary {
	return CategorySummary{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
	}
}

type CategoryProductPage struct {
	Category   CategorySummary `json:"category"`
	Products   []Product       `json:"products"`
	Pagination Pagination      `json:"pagination"`
}
