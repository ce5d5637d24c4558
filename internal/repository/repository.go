package repository

import (
	"context"

	"cashier/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products ordered by name with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Count returns the number of products in the catalogue.
	Count(ctx context.Context) (int, error)

	// Create inserts a product and fills in its generated fields.
	Create(ctx context.Context, product *model.Product) error

	// CreateBatch inserts many products in a single round trip.
	CreateBatch(ctx context.Context, products []model.Product) (int, error)

	// Update overwrites the mutable fields of a product.
	// Returns nil, nil when the product does not exist.
	Update(ctx context.Context, id int64, product *model.Product) (*model.Product, error)

	// Delete removes a product. Returns model.ErrProductNotFound when absent
	// and model.ErrProductInUse when order items still reference it.
	Delete(ctx context.Context, id int64) error

	// ApplyStockDelta atomically adds delta to the product's stock inside tx,
	// refusing any change that would make stock negative. It returns
	// *model.ProductNotFoundError or *model.InsufficientStockError when the
	// guard rejects the change.
	ApplyStockDelta(ctx context.Context, tx pgx.Tx, id int64, delta int) (*model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrderWithItems inserts the order header and all of its items
	// within the provided transaction, filling in generated ids and timestamps.
	CreateOrderWithItems(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// List retrieves orders newest first, each with its items.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrUserExists on a duplicate
	// username or email.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByUsername retrieves a user by username. Returns nil, nil when absent.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// SetActive updates the active flag. Returns nil, nil when absent.
	SetActive(ctx context.Context, id int64, active bool) (*model.User, error)
}
