package catalog

import "time"

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID          string    `json:"id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Colors []Color `json:"colors,omitempty"`
}

// Color is a product variant; sizes (the inventory units) hang off it.
type Color struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`

	Sizes []Size `json:"sizes,omitempty"`
}

type Size struct {
	ID      string `json:"id"`
	ColorID string `json:"color_id"`
	Label   string `json:"label"` // S, M, L, ...
	Stock   int    `json:"stock"`
}

type Banner struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	LinkURL   string `json:"link_url"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}
