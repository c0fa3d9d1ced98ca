// Package event_publisher publishes booking lifecycle events to
// RabbitMQ.  Errors are logged and swallowed so a broker outage never
// interrupts the booking flow.
package event_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/Hemanth509h/RailServe-sub000/internal/queue"
)

// Publisher implements the engine's EventPublisher interface over the
// durable reservation.events queue.
type Publisher struct{}

// New returns a broker-backed publisher.
func New() *Publisher { return &Publisher{} }

// Publish sends one event to the reservation.events queue.  Messages
// are marked persistent so they survive broker restarts.  The function
// never panics; any error is logged and dropped.
func (p *Publisher) Publish(ctx context.Context, event q.Event) {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(
		q.EventsQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                // default exchange
		q.EventsQueueName, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
	}
}
