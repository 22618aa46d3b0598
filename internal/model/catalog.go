package model

import "time"

// Product is a storefront catalog entry.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       int64     `json:"price" db:"price"` // minor currency units
	Stock       int64     `json:"stock" db:"stock"`
	Hidden      bool      `json:"hidden" db:"hidden"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups products. The slug doubles as the public identifier.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Mediafile is a blob-store asset already uploaded elsewhere; only the URL is
// tracked here.
type Mediafile struct {
	ID        int64     `json:"id" db:"id"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CategorySummary is the category shape embedded in product responses. The
// slug is surfaced as the id, matching what the admin panel expects.
type CategorySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductSummary is the list-endpoint projection of a product.
type ProductSummary struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Price        int64             `json:"price"`
	Description  string            `json:"description"`
	IsHidden     bool              `json:"isHidden"`
	Categories   []CategorySummary `json:"categories"`
	ThumbnailImg *string           `json:"thumbnailImg"`
	Stock        int64             `json:"stock"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// ProductDetail is the single-product projection, carrying every media URL
// instead of just a thumbnail.
type ProductDetail struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Price       int64             `json:"price"`
	Description string            `json:"description"`
	Categories  []CategorySummary `json:"categories"`
	Mediafiles  []string          `json:"mediafiles"`
	Stock       int64             `json:"stock"`
	CreatedAt   time.Time         `json:"createdAt"`
	IsHidden    bool              `json:"isHidden"`
}
