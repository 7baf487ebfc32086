package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Publisher is what the services depend on. Publish is fire-and-forget:
// returning nil means the broker accepted the message, nothing more.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Broker wraps one long-lived RabbitMQ connection and channel bound to a
// durable topic exchange. Multiple consumer types (send workers, the
// ingestion worker, analytics sinks) bind their own queues to it
// independently; the broker does not know who is listening.
type Broker struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewBroker dials the broker and declares the topic exchange. The connection
// is held for the life of the process rather than per publish.
func NewBroker(url, exchange string) (*Broker, error) {
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
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Broker{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish marshals the payload and publishes it as a persistent message on
// the given routing key. There is no in-process retry; a failure here is the
// caller's partial-dispatch condition to log.
func (b *Broker) Publish(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = b.channel.Publish(
		b.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Consume declares a durable queue, binds it to the exchange on the given
// routing key and returns a delivery stream with manual acks and prefetch 1,
// so each consumer handles one message at a time.
func (b *Broker) Consume(queueName, routingKey string) (<-chan amqp.Delivery, error) {
	q, err := b.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := b.channel.QueueBind(q.Name, routingKey, b.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if err := b.channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := b.channel.Consume(
		q.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return deliveries, nil
}

// Close tears down the channel and connection.
func (b *Broker) Close() error {
	if b.channel != nil {
		if err := b.channel.Close(); err != nil {
			return err
		}
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
