package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchangeName = "library.events"
	exchangeType = "topic"

	// Event types
	EventTypeBookAdded    = "ledger.book_added"
	EventTypeBookBorrowed = "ledger.book_borrowed"
	EventTypeBookReturned = "ledger.book_returned"

	eventVersion = "1.0.0"

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
	confirmTimeout = 5 * time.Second
)

// confirmation resolves once the broker acks or nacks a single publishing
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// confirmChannel publishes to the events exchange with one confirmation per message
type confirmChannel interface {
	publish(ctx context.Context, routingKey string, msg amqp.Publishing) (confirmation, error)
	Close() error
}

// amqpChannel is a confirm-mode channel. Deferred confirmations are matched
// by delivery tag, so concurrent publishes never see each other's acks.
type amqpChannel struct {
	*amqp.Channel
}

func (c amqpChannel) publish(ctx context.Context, routingKey string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.PublishWithDeferredConfirmWithContext(ctx, exchangeName, routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

// Publisher sends ledger notifications to RabbitMQ
type Publisher struct {
	conn    *amqp.Connection
	channel confirmChannel
	log     *zap.Logger
}

// Event is the envelope of every ledger notification
type Event struct {
	EventID       string                 `json:"event_id"`
	EventType     string                 `json:"event_type"`
	EventVersion  string                 `json:"event_version"`
	Timestamp     string                 `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
}

type correlationKey struct{}

// WithCorrelationID attaches a correlation id that is copied into published events
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// NewPublisher creates a new event publisher
func NewPublisher(url string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	log.Info("Connected to RabbitMQ", zap.String("exchange", exchangeName))

	return &Publisher{
		conn:    conn,
		channel: amqpChannel{channel},
		log:     log,
	}, nil
}

// PublishBookAdded announces a registration or restock
func (p *Publisher) PublishBookAdded(ctx context.Context, id ledger.BookID, book ledger.Book, added uint64) error {
	return p.publishWithRetry(ctx, NewBookAddedEvent(ctx, id, book, added))
}

// PublishBookBorrowed announces a loan
func (p *Publisher) PublishBookBorrowed(ctx context.Context, id ledger.BookID, principal ledger.Principal, copiesLeft uint64) error {
	return p.publishWithRetry(ctx, NewLoanEvent(ctx, EventTypeBookBorrowed, id, principal, copiesLeft))
}

// PublishBookReturned announces a return
func (p *Publisher) PublishBookReturned(ctx context.Context, id ledger.BookID, principal ledger.Principal, copiesLeft uint64) error {
	return p.publishWithRetry(ctx, NewLoanEvent(ctx, EventTypeBookReturned, id, principal, copiesLeft))
}

// NewBookAddedEvent builds the envelope for EventTypeBookAdded
func NewBookAddedEvent(ctx context.Context, id ledger.BookID, book ledger.Book, added uint64) Event {
	return newEvent(ctx, EventTypeBookAdded, map[string]interface{}{
		"book_id": id.String(),
		"title":   book.Title,
		"added":   added,
		"copies":  book.Copies,
	})
}

// NewLoanEvent builds the envelope for borrow and return notifications
func NewLoanEvent(ctx context.Context, eventType string, id ledger.BookID, principal ledger.Principal, copiesLeft uint64) Event {
	return newEvent(ctx, eventType, map[string]interface{}{
		"book_id":   id.String(),
		"principal": string(principal),
		"copies":    copiesLeft,
	})
}

func newEvent(ctx context.Context, eventType string, payload map[string]interface{}) Event {
	event := Event{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: eventVersion,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Payload:      payload,
	}
	if corrID, ok := ctx.Value(correlationKey{}).(string); ok {
		event.CorrelationID = corrID
	}
	return event
}

// publishWithRetry publishes an event with exponential backoff retry
func (p *Publisher) publishWithRetry(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event", zap.Error(err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := event.EventType
	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
		}

		confirm, err := p.channel.publish(ctx, routingKey, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.EventID,
			Body:         body,
			Headers: amqp.Table{
				"event_type":    event.EventType,
				"event_version": event.EventVersion,
			},
		})
		if err != nil {
			lastErr = err
			p.log.Warn("Failed to publish event, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
		acked, err := confirm.WaitContext(waitCtx)
		cancel()
		switch {
		case err == nil && acked:
			p.log.Debug("Event published",
				zap.String("event_id", event.EventID),
				zap.String("event_type", event.EventType),
			)
			return nil
		case err == nil:
			lastErr = errors.New("event not acknowledged")
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			lastErr = fmt.Errorf("confirmation timeout: %w", err)
		}

		p.log.Warn("Event publish not confirmed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	p.log.Error("Failed to publish event after retries",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.Int("attempts", maxRetries),
		zap.Error(lastErr),
	)
	return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries, lastErr)
}

// IsHealthy checks if the publisher connection is healthy
func (p *Publisher) IsHealthy() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

// Close closes the publisher connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.log.Error("Failed to close connection", zap.Error(err))
			return err
		}
	}
	p.log.Info("Publisher closed")
	return nil
}

// NopPublisher drops every event. It is used when RABBITMQ_URL is not set.
type NopPublisher struct{}

func (NopPublisher) PublishBookAdded(context.Context, ledger.BookID, ledger.Book, uint64) error {
	return nil
}

func (NopPublisher) PublishBookBorrowed(context.Context, ledger.BookID, ledger.Principal, uint64) error {
	return nil
}

func (NopPublisher) PublishBookReturned(context.Context, ledger.BookID, ledger.Principal, uint64) error {
	return nil
}

func (NopPublisher) IsHealthy() bool { return true }

func (NopPublisher) Close() error { return nil }
