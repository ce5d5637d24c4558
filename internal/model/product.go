package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the store catalogue.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    *string         `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductRequest represents the request payload for creating or updating a product.
type ProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       *int            `json:"stock"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
}
