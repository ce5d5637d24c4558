package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"cashier/internal/config"
	"cashier/internal/events"
	"cashier/internal/idempotency"
	"cashier/internal/metrics"
	"cashier/internal/model"
	"cashier/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	idempotency idempotency.Store
	publisher   events.Publisher
	cfg         config.CheckoutConfig
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	store idempotency.Store,
	publisher events.Publisher,
	cfg config.CheckoutConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		idempotency: store,
		publisher:   publisher,
		cfg:         cfg,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder turns a checkout request into a persisted order. Stock for
// every line is reserved and the order written in one transaction: either
// all of it becomes visible or none of it does.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CheckoutRequest) (order *model.Order, err error) {
	start := time.Now()
	outcome := metrics.OutcomeCommitted
	defer func() {
		if err != nil {
			outcome = checkoutOutcome(err)
		}
		metrics.ObserveCheckout(outcome, time.Since(start))
	}()

	run := newCheckoutRun()
	if err = run.transition(stateValidating); err != nil {
		return nil, err
	}

	if err = validateCheckoutRequest(req, s.cfg.VerifyTotal); err != nil {
		_ = run.transition(stateAborted)
		s.logger.Warn().Err(err).Msg("checkout rejected")
		return nil, err
	}

	logger := s.logger.With().
		Int64("user_id", req.UserID).
		Int("item_count", len(req.Items)).
		Logger()

	if !s.cfg.VerifyTotal {
		if sum := lineItemsTotal(req.Items); !sum.Equal(req.TotalAmount) {
			logger.Warn().
				Str("total_amount", req.TotalAmount.StringFixed(2)).
				Str("line_items_total", sum.StringFixed(2)).
				Msg("checkout total does not match line items, persisting caller total")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if req.IdempotencyKey != "" {
		scope := idempotencyScope(req.UserID)

		existing, claimed, claimErr := s.claim(ctx, scope, req.IdempotencyKey, logger)
		if claimErr != nil {
			_ = run.transition(stateAborted)
			logger.Warn().Err(claimErr).Str("idempotency_key", req.IdempotencyKey).Msg("checkout rejected")
			return nil, claimErr
		}
		if existing != nil {
			outcome = metrics.OutcomeReplayed
			logger.Info().
				Int64("order_id", existing.ID).
				Str("idempotency_key", req.IdempotencyKey).
				Msg("replaying order for idempotency key")
			return existing, nil
		}
		if claimed {
			defer func() {
				if err == nil {
					return
				}
				if unlockErr := s.idempotency.Unlock(context.WithoutCancel(ctx), scope, req.IdempotencyKey); unlockErr != nil {
					logger.Warn().Err(unlockErr).Msg("failed to release idempotency key")
				}
			}()
		}
	}

	order, err = s.fulfil(ctx, run, req, logger)
	if err != nil {
		_ = run.transition(stateAborted)
		err = deadlineAsStorageError(err)
		logger.Warn().Err(err).Msg("checkout aborted")
		return nil, err
	}

	if transErr := run.transition(stateCommitted); transErr != nil {
		logger.Error().Err(transErr).Msg("unexpected checkout state")
	}

	if req.IdempotencyKey != "" {
		scope := idempotencyScope(req.UserID)
		// The order is committed; a spent checkout deadline must not lose the key.
		remCtx := context.WithoutCancel(ctx)
		if remErr := s.idempotency.Remember(remCtx, scope, req.IdempotencyKey, strconv.FormatInt(order.ID, 10)); remErr != nil {
			logger.Warn().Err(remErr).Int64("order_id", order.ID).Msg("failed to remember idempotency key")
		}
	}

	if pubErr := s.publisher.PublishOrderCompleted(ctx, order); pubErr != nil {
		logger.Warn().Err(pubErr).Int64("order_id", order.ID).Msg("failed to publish order event")
	}

	logger.Info().
		Int64("order_id", order.ID).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Dur("duration", time.Since(start)).
		Msg("order created successfully")

	return order, nil
}

// fulfil runs reservation and persistence, retrying the whole transaction
// with exponential backoff when PostgreSQL reports a concurrency conflict.
func (s *orderService) fulfil(ctx context.Context, run *checkoutRun, req *model.CheckoutRequest, logger zerolog.Logger) (*model.Order, error) {
	plan := planReservations(req.Items)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.RetryInitialInterval
	policy.MaxInterval = s.cfg.RetryMaxInterval
	// Bounded by MaxRetries and the checkout timeout instead.
	policy.MaxElapsedTime = 0

	var order *model.Order
	operation := func() error {
		o, err := s.attempt(ctx, run, req, plan, logger)
		if err != nil {
			if errors.Is(err, model.ErrConflict) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		order = o
		return nil
	}

	notify := func(err error, wait time.Duration) {
		metrics.IncCheckoutRetries()
		logger.Warn().Err(err).Dur("backoff", wait).Msg("checkout conflict, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.cfg.MaxRetries)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}

	return order, nil
}

// attempt performs one transactional try. Any error rolls back every stock
// decrement made so far.
func (s *orderService) attempt(
	ctx context.Context,
	run *checkoutRun,
	req *model.CheckoutRequest,
	plan []stockReservation,
	logger zerolog.Logger,
) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = run.transition(stateReserving); err != nil {
		return nil, err
	}

	for _, r := range plan {
		if _, err = s.productRepo.ApplyStockDelta(ctx, tx, r.ProductID, -r.Quantity); err != nil {
			logger.Debug().
				Err(err).
				Int64("product_id", r.ProductID).
				Int("quantity", r.Quantity).
				Msg("stock reservation failed")
			return nil, err
		}
	}

	if err = run.transition(statePersisting); err != nil {
		return nil, err
	}

	order = newOrder(req)
	if err = s.orderRepo.CreateOrderWithItems(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = repository.ClassifyError("commit checkout", err)
		return nil, err
	}

	return order, nil
}

// claim resolves an idempotency key. It returns the previously created order
// for a replayed key, or reports whether this call now holds the key. An
// unreachable store is logged and the checkout continues without it.
func (s *orderService) claim(ctx context.Context, scope, key string, logger zerolog.Logger) (*model.Order, bool, error) {
	value, found, err := s.idempotency.Recall(ctx, scope, key)
	if err != nil {
		logger.Warn().Err(err).Msg("idempotency store unavailable, continuing without it")
		return nil, false, nil
	}

	if found {
		if id, parseErr := strconv.ParseInt(value, 10, 64); parseErr == nil {
			existing, getErr := s.orderRepo.GetByID(ctx, id)
			if getErr != nil {
				return nil, false, getErr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		// The original checkout still holds the lock.
		logger.Warn().Str("value", value).Msg("stale idempotency record")
		if err := s.idempotency.Forget(ctx, scope, key); err != nil {
			logger.Warn().Err(err).Msg("idempotency store unavailable, continuing without it")
			return nil, false, nil
		}
	}

	locked, err := s.idempotency.TryLock(ctx, scope, key)
	if err != nil {
		logger.Warn().Err(err).Msg("idempotency store unavailable, continuing without it")
		return nil, false, nil
	}
	if !locked {
		return nil, false, model.ErrDuplicateRequest
	}

	return nil, true, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, err
	}

	if order == nil {
		s.logger.Debug().Int64("order_id", id).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// List retrieves orders newest first.
func (s *orderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list orders")
		return nil, err
	}

	return orders, nil
}

// newOrder builds the order header and items for req. Item prices are the
// caller's prices at the time of sale.
func newOrder(req *model.CheckoutRequest) *model.Order {
	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return &model.Order{
		TotalAmount: req.TotalAmount,
		Status:      model.OrderStatusCompleted,
		UserID:      req.UserID,
		Items:       items,
	}
}

func idempotencyScope(userID int64) string {
	return "checkout:" + strconv.FormatInt(userID, 10)
}

// deadlineAsStorageError reports an expired or cancelled checkout as a
// storage failure that still wraps the context error.
func deadlineAsStorageError(err error) error {
	if errors.Is(err, model.ErrStorageFailure) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &model.StorageError{Op: "checkout", Err: err}
	}
	return err
}

// checkoutOutcome maps a checkout error to its metrics label.
func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, model.ErrValidation):
		return metrics.OutcomeValidationError
	case errors.Is(err, model.ErrProductNotFound):
		return metrics.OutcomeProductNotFound
	case errors.Is(err, model.ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case errors.Is(err, model.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, model.ErrDuplicateRequest):
		return metrics.OutcomeDuplicateRequest
	default:
		return metrics.OutcomeStorageFailure
	}
}
