package service

import (
	"context"

	"cashier/internal/model"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create adds a product to the catalogue.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update replaces the mutable fields of a product.
	Update(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product that no order references.
	Delete(ctx context.Context, id int64) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder validates a checkout, reserves stock for every line and
	// persists the order, all or nothing.
	CreateOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// List retrieves orders newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
}

// UserService defines operations for user management.
type UserService interface {
	// Create registers a new user.
	Create(ctx context.Context, req *model.UserRequest) (*model.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// SetActive enables or disables a user.
	SetActive(ctx context.Context, id int64, active bool) (*model.User, error)
}

// clampPage normalises pagination parameters.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
