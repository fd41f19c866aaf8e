package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. A product optionally
// references a shared Category and exclusively owns its Rating: the rating
// row lives and dies with the product, the category never does.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	Category    *Category       `json:"category,omitempty"`
	Image       string          `json:"image" db:"image"`
	Rating      *Rating         `json:"rating,omitempty"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Category represents a product category, shared by reference across products
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Rating represents a product rating, owned exclusively by one product
type Rating struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Rate  float64   `json:"rate" db:"rate"`
	Count int       `json:"count" db:"count"`
}
