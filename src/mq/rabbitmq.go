package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Queue    string `yaml:"queue"`

	// Header is the CSV header line for row messages. When empty the first
	// drained message is taken as the header.
	Header string `yaml:"header"`

	DialRetries int           `yaml:"dial_retries"`
	DialBackoff time.Duration `yaml:"dial_backoff"`
}

// Validate checks the fields needed to dial.
func (c RabbitMQConfig) Validate() error {
	if c.Host == "" {
		return errors.New("rabbitmq: empty host")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("rabbitmq: invalid port %d", c.Port)
	}
	if c.Queue == "" {
		return errors.New("rabbitmq: empty queue name")
	}
	return nil
}

// URL builds the amqp connection URL.
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.Username, c.Password, c.Host, c.Port)
}

// RabbitMQ publishes post rows to, and drains them from, a durable queue.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	config  RabbitMQConfig
}

// NewRabbitMQ dials the broker with retries and declares the queue.
func NewRabbitMQ(ctx context.Context, config RabbitMQConfig) (*RabbitMQ, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	conn, err := dial(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		config.Queue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		queue:   q,
		config:  config,
	}, nil
}

func dial(ctx context.Context, config RabbitMQConfig) (*amqp.Connection, error) {
	retries := config.DialRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := config.DialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	policy := retrypolicy.NewBuilder[*amqp.Connection]().
		WithBackoff(backoff, 8*backoff).
		WithMaxRetries(retries).
		WithJitterFactor(0.1).
		OnRetry(func(e failsafe.ExecutionEvent[*amqp.Connection]) {
			slog.Warn("Retrying RabbitMQ dial", "attempt", e.Attempts(), "error", e.LastError())
		}).
		Build()

	return failsafe.With(policy).WithContext(ctx).Get(func() (*amqp.Connection, error) {
		return amqp.Dial(config.URL())
	})
}

// Publish sends one CSV row as a persistent message and returns its message id.
func (r *RabbitMQ) Publish(ctx context.Context, row []byte) (string, error) {
	id := uuid.NewString()
	err := r.channel.PublishWithContext(ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "text/csv",
			DeliveryMode: amqp.Persistent,
			MessageId:    id,
			Timestamp:    time.Now(),
			Body:         row,
		})
	if err != nil {
		return "", fmt.Errorf("failed to publish: %w", err)
	}
	return id, nil
}

// Drain pulls messages until the queue is empty and returns their bodies in
// delivery order. Messages are acknowledged as they are read.
func (r *RabbitMQ) Drain(ctx context.Context) ([][]byte, error) {
	var bodies [][]byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msg, ok, err := r.channel.Get(r.queue.Name, true)
		if err != nil {
			return nil, fmt.Errorf("failed to get message: %w", err)
		}
		if !ok {
			return bodies, nil
		}
		bodies = append(bodies, msg.Body)
	}
}

// Header returns the configured CSV header line, possibly empty.
func (r *RabbitMQ) Header() string {
	return r.config.Header
}

// Close closes the RabbitMQ connection
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// QueueInfo is a point-in-time view of the queue.
type QueueInfo struct {
	Name      string
	Messages  int
	Consumers int
}

// inspector is the part of an amqp channel that reports queue depth.
type inspector interface {
	QueueInspect(name string) (amqp.Queue, error)
}

// QueueInfo reports how many messages are waiting and how many consumers are attached.
func (r *RabbitMQ) QueueInfo() (QueueInfo, error) {
	return inspectQueue(r.channel, r.config.Queue)
}

func inspectQueue(ch inspector, name string) (QueueInfo, error) {
	q, err := ch.QueueInspect(name)
	if err != nil {
		return QueueInfo{}, fmt.Errorf("failed to inspect queue %s: %w", name, err)
	}
	return QueueInfo{Name: q.Name, Messages: q.Messages, Consumers: q.Consumers}, nil
}
