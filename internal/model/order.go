package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a completed sale (a transaction at the till).
type Order struct {
	ID          int64           `json:"id" db:"id"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status      OrderStatus     `json:"status" db:"status"`
	UserID      int64           `json:"userId" db:"user_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
	Items       []OrderItem     `json:"items"`
}

// OrderItem represents a line item in an order. Price is the unit price
// captured at the time of sale.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"orderId" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns price * quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckoutRequest represents the request payload for creating an order.
// UserID and IdempotencyKey are filled from the request context, never the body.
type CheckoutRequest struct {
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Items          []CheckoutItem  `json:"items"`
	UserID         int64           `json:"-"`
	IdempotencyKey string          `json:"-"`
}

// CheckoutItem represents a single line in a checkout request.
type CheckoutItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
