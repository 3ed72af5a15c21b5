package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

const (
	// EventsExchange is the topic exchange every domain event is published to.
	EventsExchange = "ingreedio.events"
	// ReviewEventsQueue receives review.* events for moderation.
	ReviewEventsQueue = "review_events"
	reviewBindingKey  = "review.*"
)

// ErrMalformedMessage marks a delivery that can never be processed. Such
// messages are dropped instead of requeued.
var ErrMalformedMessage = errors.New("malformed message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // guards channel for concurrent publishers
	log     logrus.FieldLogger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the events
// exchange together with the review queue bound to it.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", ReviewEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		EventsExchange, // name
		"topic",        // kind
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}

	_, err = ch.QueueDeclare(
		ReviewEventsQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", ReviewEventsQueue, err)
	}

	if err := ch.QueueBind(ReviewEventsQueue, reviewBindingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", ReviewEventsQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish marshals payload to JSON and publishes it to the events exchange
// under routingKey.
func (c *Client) Publish(routingKey string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		EventsExchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.WithField("routing_key", routingKey).Debug("event published")
	return nil
}

// ConsumeReviewEvents starts a goroutine delivering messages from the review
// queue to handler. Messages are acked on success and nacked otherwise.
func (c *Client) ConsumeReviewEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		ReviewEventsQueue, // queue
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", ReviewEventsQueue).Info("waiting for review events")

	go func() {
		for msg := range msgs {
			Process(msg, handler, c.log)
		}
	}()

	return nil
}

// Process runs handler on a single delivery and settles it. Malformed
// messages are nacked without requeue; any other failure is requeued.
func Process(msg amqp.Delivery, handler func(msg amqp.Delivery) error, log logrus.FieldLogger) {
	entry := log.WithFields(logrus.Fields{"delivery_tag": msg.DeliveryTag, "routing_key": msg.RoutingKey})

	if err := handler(msg); err != nil {
		requeue := !errors.Is(err, ErrMalformedMessage)
		entry.WithFields(logrus.Fields{"error": err.Error(), "requeue": requeue}).Warn("error processing message")
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			entry.WithField("error", nackErr.Error()).Error("error nacking message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		entry.WithField("error", ackErr.Error()).Error("error acking message")
	}
}
