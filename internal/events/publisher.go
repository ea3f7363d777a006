// Package events publishes booking lifecycle events to RabbitMQ. Publishing is
// best-effort: callers log failures and never fail the request because of them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Event types, also used as routing keys
const (
	TypeBookingHeld      = "booking.held"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingExpired   = "booking.expired"
	TypeBookingExtended  = "booking.extended"
	TypeTicketCheckedIn  = "ticket.checked_in"
)

// BookingEvent is the message body for every booking lifecycle event
type BookingEvent struct {
	Type           string     `json:"type"`
	BookingID      int64      `json:"bookingId"`
	BookingCode    string     `json:"bookingCode,omitempty"`
	TripID         int64      `json:"tripId,omitempty"`
	Status         string     `json:"status,omitempty"`
	TotalPrice     float64    `json:"totalPrice,omitempty"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
	TicketCode     string     `json:"ticketCode,omitempty"`
	OccurredAt     time.Time  `json:"occurredAt"`
}

// Publisher sends booking events somewhere
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// RabbitMQPublisher publishes persistent JSON messages to a durable topic exchange
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
	logger   *logrus.Logger
}

// NewRabbitMQPublisher dials the broker and declares the exchange
func NewRabbitMQPublisher(url, exchange string, logger *logrus.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare failed: %w", err)
	}

	return &RabbitMQPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Publish sends one event with its type as routing key
func (p *RabbitMQPublisher) Publish(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt.UTC(),
		Type:         event.Type,
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"type":       event.Type,
		"booking_id": event.BookingID,
	}).Debug("Published booking event")
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.logger.WithError(err).Warn("Failed to close rabbitmq channel")
	}
	return p.conn.Close()
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct {
	logger *logrus.Logger
}

// NewNoopPublisher creates a publisher that only logs at debug level
func NewNoopPublisher(logger *logrus.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

// Publish logs and discards the event
func (p *NoopPublisher) Publish(ctx context.Context, event BookingEvent) error {
	p.logger.WithFields(logrus.Fields{
		"type":       event.Type,
		"booking_id": event.BookingID,
	}).Debug("Event publishing disabled, dropping event")
	return nil
}

// Close is a no-op
func (p *NoopPublisher) Close() error {
	return nil
}
