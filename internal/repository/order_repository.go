package repository

import (
	"context"
	"errors"

	"cashier/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, ClassifyError("begin transaction", err)
	}
	return tx, nil
}

// CreateOrderWithItems inserts the order header and its items within the
// provided transaction. Items are sent as one batch.
func (r *orderRepository) CreateOrderWithItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	headerQuery := `
		INSERT INTO orders (total_amount, status, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, headerQuery, order.TotalAmount, order.Status, order.UserID).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", order.UserID).
			Msg("failed to create order")
		return ClassifyError("create order", err)
	}

	if len(order.Items) == 0 {
		return nil
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(itemQuery, order.ID, item.ProductID, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := results.QueryRow().Scan(&order.Items[i].ID); err != nil {
			r.logger.Error().
				Err(err).
				Int64("order_id", order.ID).
				Int64("product_id", order.Items[i].ProductID).
				Msg("failed to create order item")
			return ClassifyError("create order item", err)
		}
	}

	if err := results.Close(); err != nil {
		return ClassifyError("create order items", err)
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Int("items", len(order.Items)).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	orderQuery := `
		SELECT id, total_amount, status, user_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID,
		&order.TotalAmount,
		&order.Status,
		&order.UserID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, ClassifyError("query order", err)
	}

	items, err := r.itemsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []model.OrderItem{}
	}

	return &order, nil
}

// List retrieves orders newest first, each with its items.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT id, total_amount, status, user_id, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query orders")
		return nil, ClassifyError("query orders", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []int64{}
	for rows.Next() {
		var o model.Order
		err := rows.Scan(&o.ID, &o.TotalAmount, &o.Status, &o.UserID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, ClassifyError("scan order", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, ClassifyError("iterate orders", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}

	return orders, nil
}

// itemsFor loads the items of the given orders, grouped by order id.
func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("orders", len(orderIDs)).
			Msg("failed to query order items")
		return nil, ClassifyError("query order items", err)
	}
	defer rows.Close()

	items := make(map[int64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, ClassifyError("scan order item", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, ClassifyError("iterate order items", err)
	}

	return items, nil
}
