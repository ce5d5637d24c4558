package events

import (
	"encoding/json"
	"fmt"
	"time"

	"cashier/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	EventOrderCompleted = "OrderCompleted"
)

// Envelope wraps every event published by the service.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderLine is a sold line item.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCompletedPayload describes a committed checkout.
type OrderCompletedPayload struct {
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderLine     `json:"items"`
	CompletedAt time.Time       `json:"completed_at"`
}

// NewEnvelope wraps payload in an envelope with a fresh event id.
func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// NewOrderCompletedPayload builds the payload for a committed order.
func NewOrderCompletedPayload(order *model.Order) OrderCompletedPayload {
	lines := make([]OrderLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	return OrderCompletedPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       lines,
		CompletedAt: order.CreatedAt,
	}
}

// UnwrapPayload decodes the payload of an envelope.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
