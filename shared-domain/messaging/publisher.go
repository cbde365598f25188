package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/distributed-hotel-saga/shared-domain/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

type Publisher struct {
	client *RabbitMQClient
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{
		client: client,
	}
}

// PublishBookingConfirmed publishes the one event this system emits. It is
// best-effort: a publish failure does not roll back the booking, it only
// means the event is missing and must be noticed out of band.
func (p *Publisher) PublishBookingConfirmed(event events.BookingConfirmed) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("no connection to RabbitMQ")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %v", err)
	}

	routingKey := fmt.Sprintf("booking.%s", events.BookingConfirmedEvent)

	channel := p.client.Channel()
	err = channel.Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    event.Timestamp,
			Headers: amqp.Table{
				"booking_id": event.BookingID,
				"event_type": events.BookingConfirmedEvent,
			},
		},
	)

	if err != nil {
		return fmt.Errorf("event publish error: %v", err)
	}

	log.Info().Str("booking_id", event.BookingID).Str("routing_key", routingKey).Msg("event published")
	return nil
}

// PublishWithRetry retries a best-effort publish with linear backoff. It never
// blocks the saga: callers run it after the booking is already CONFIRMED.
func (p *Publisher) PublishWithRetry(event events.BookingConfirmed, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if err := p.PublishBookingConfirmed(event); err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", i+1).Int("max", maxRetries).Msg("event publish retry")

			if i < maxRetries-1 {
				time.Sleep(time.Second * time.Duration(i+1))
				continue
			}
		} else {
			return nil
		}
	}

	return fmt.Errorf("event publish failed after %d attempts: %v", maxRetries, lastErr)
}
