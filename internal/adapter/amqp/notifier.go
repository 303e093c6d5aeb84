// Package amqp publishes notification events to a RabbitMQ topic exchange so
// downstream delivery services (push, email) can fan them out. It implements
// port.Notifier and is strictly best-effort from the engine's point of view.
package amqp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const notificationRoutingKey = "notification.user"

// Notifier is a RabbitMQ-backed notification publisher.
type Notifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// notificationEvent is the wire payload for one user-facing message.
type notificationEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotifier connects to RabbitMQ and declares the durable topic exchange
// used for notification events.
func NewNotifier(amqpURL, exchange string) (*Notifier, error) {
	conn, err := amqp091.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &Notifier{conn: conn, channel: channel, exchange: exchange}, nil
}

// Notify publishes one notification event.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, title, message, link string) error {
	body, err := json.Marshal(notificationEvent{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.channel.PublishWithContext(ctx,
		n.exchange,
		notificationRoutingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}

// Close releases the channel and connection.
func (n *Notifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}
