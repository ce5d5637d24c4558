package repository

import (
	"context"
	"errors"

	"cashier/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, description, stock, image_url, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Stock,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetAll retrieves products ordered by name with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, ClassifyError("query products", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, ClassifyError("scan product", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, ClassifyError("iterate products", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, ClassifyError("query product", err)
	}

	return &p, nil
}

// Count returns the number of products in the catalogue.
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, ClassifyError("count products", err)
	}
	return count, nil
}

// Create inserts a product and fills in its generated fields.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (name, price, description, stock, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.Description,
		product.Stock,
		product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		if isCheckViolation(err) {
			return model.NewValidationError("product", "violates a catalogue constraint")
		}
		return ClassifyError("create product", err)
	}

	r.logger.Debug().Int64("product_id", product.ID).Msg("product created successfully")

	return nil
}

// CreateBatch inserts many products in a single round trip.
func (r *productRepository) CreateBatch(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (name, price, description, stock, image_url)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.Name, p.Price, p.Description, p.Stock, p.ImageURL)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range products {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("name", products[i].Name).
				Msg("failed to insert product")
			return inserted, ClassifyError("create products", err)
		}
		inserted++
	}

	r.logger.Debug().Int("count", inserted).Msg("products created successfully")

	return inserted, nil
}

// Update overwrites the mutable fields of a product.
func (r *productRepository) Update(ctx context.Context, id int64, product *model.Product) (*model.Product, error) {
	query := `
		UPDATE products
		SET name = $2, price = $3, description = $4, stock = $5, image_url = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query,
		id,
		product.Name,
		product.Price,
		product.Description,
		product.Stock,
		product.ImageURL,
	), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		if isCheckViolation(err) {
			return nil, model.NewValidationError("product", "violates a catalogue constraint")
		}
		return nil, ClassifyError("update product", err)
	}

	return &p, nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.logger.Warn().Int64("product_id", id).Msg("product is referenced by order items")
			return model.ErrProductInUse
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return ClassifyError("delete product", err)
	}

	if tag.RowsAffected() == 0 {
		return &model.ProductNotFoundError{ProductID: id}
	}

	return nil
}

// ApplyStockDelta adds delta to the product's stock within tx. The guard in
// the WHERE clause is re-evaluated by PostgreSQL after it acquires the row
// lock, so concurrent decrements of the same product can never both pass
// against stale stock.
func (r *productRepository) ApplyStockDelta(ctx context.Context, tx pgx.Tx, id int64, delta int) (*model.Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING ` + productColumns

	var p model.Product
	err := scanProduct(tx.QueryRow(ctx, query, id, delta), &p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).
			Int64("product_id", id).
			Int("delta", delta).
			Msg("failed to apply stock delta")
		return nil, ClassifyError("apply stock delta", err)
	}

	// The guard rejected the change: find out whether the row is missing
	// or simply short on stock.
	var available int
	err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, &model.ProductNotFoundError{ProductID: id}
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to read product stock")
		return nil, ClassifyError("read product stock", err)
	}

	r.logger.Debug().
		Int64("product_id", id).
		Int("requested", -delta).
		Int("available", available).
		Msg("insufficient stock")

	return nil, &model.InsufficientStockError{
		ProductID: id,
		Requested: -delta,
		Available: available,
	}
}
