// Package events publishes domain events about completed orders.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"cashier/internal/config"
	"cashier/internal/model"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrPublisherBusy is returned when the outgoing buffer is full.
var ErrPublisherBusy = errors.New("publisher buffer is full")

// Publisher publishes order events. Publishing is best effort and must not
// block the caller for long.
type Publisher interface {
	PublishOrderCompleted(ctx context.Context, order *model.Order) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultBufferSize   = 256
	defaultWriteTimeout = 5 * time.Second
)

// KafkaPublisher queues events in memory and writes them to Kafka from a
// background goroutine.
type KafkaPublisher struct {
	writer   messageWriter
	producer string
	logger   zerolog.Logger

	mu     sync.RWMutex
	closed bool
	inbox  chan kafka.Message
	done   chan struct{}
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(writer, cfg.Producer, defaultBufferSize, logger)
}

func newKafkaPublisher(w messageWriter, producer string, buf int, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:   w,
		producer: producer,
		logger:   logger.With().Str("component", "events").Logger(),
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)

	for msg := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Error().
				Err(err).
				Str("key", string(msg.Key)).
				Msg("failed to write event")
		}
		cancel()
	}
}

// PublishOrderCompleted queues an OrderCompleted event keyed by order id.
func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, order *model.Order) error {
	orderID := strconv.FormatInt(order.ID, 10)

	env, err := NewEnvelope(EventOrderCompleted, p.producer, orderID, NewOrderCompletedPayload(order))
	if err != nil {
		return err
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(orderID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrPublisherBusy
	}
}

// Close flushes queued events and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)

// NopPublisher discards events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCompleted(context.Context, *model.Order) error { return nil }
func (NopPublisher) Close() error                                              { return nil }

var _ Publisher = NopPublisher{}
