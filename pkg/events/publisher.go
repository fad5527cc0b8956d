package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reserva/pkg/kafka"
	kafka_config "reserva/pkg/kafka/config"
	"reserva/pkg/model"
)

// Publisher emits domain events after a state change has been persisted.
// Delivery is at-least-once: the underlying producers retry and fall back
// to the topic's DLQ, and callers treat a publish failure as non-fatal.
type Publisher interface {
	BookingCreated(ctx context.Context, booking model.Booking) error
	BookingUpdated(ctx context.Context, booking model.Booking) error
	BookingDeleted(ctx context.Context, booking model.Booking) error

	AvailabilityCreated(ctx context.Context, availability model.Availability) error
	AvailabilityUpdated(ctx context.Context, availability model.Availability) error
	AvailabilityDeleted(ctx context.Context, availability model.Availability) error

	UserCreated(ctx context.Context, user model.User) error

	Close() error
}

// producer is the slice of kafka.Producer the publisher needs.
type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producers map[string]producer
	source    string
}

// NewKafkaPublisher builds one producer per topic, each with its own DLQ
// writer, so a stuck topic cannot back up events for the others.
func NewKafkaPublisher(cfg *kafka_config.Config, source string) (Publisher, error) {
	topics := []string{
		TopicBookingCreated, TopicBookingUpdated, TopicBookingDeleted,
		TopicAvailabilityCreated, TopicAvailabilityUpdated, TopicAvailabilityDeleted,
		TopicUserCreated,
	}

	producers := make(map[string]producer, len(topics))
	for _, topic := range topics {
		p, err := kafka.NewProducer(cfg, topic, DLQTopic(topic))
		if err != nil {
			for _, created := range producers {
				_ = created.Close()
			}
			return nil, fmt.Errorf("create producer for %s: %w", topic, err)
		}
		producers[topic] = p
	}

	return &kafkaPublisher{
		producers: producers,
		source:    source,
	}, nil
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking model.Booking) error {
	return p.publishBooking(ctx, TopicBookingCreated, EventTypeCreated, booking)
}

func (p *kafkaPublisher) BookingUpdated(ctx context.Context, booking model.Booking) error {
	return p.publishBooking(ctx, TopicBookingUpdated, EventTypeUpdated, booking)
}

func (p *kafkaPublisher) BookingDeleted(ctx context.Context, booking model.Booking) error {
	return p.publishBooking(ctx, TopicBookingDeleted, EventTypeDeleted, booking)
}

func (p *kafkaPublisher) publishBooking(ctx context.Context, topic, eventType string, booking model.Booking) error {
	event := BookingEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	}
	// Keyed by provider so one provider's events stay ordered.
	return p.publish(ctx, topic, booking.ProviderID, event.EventID, eventType, event)
}

func (p *kafkaPublisher) AvailabilityCreated(ctx context.Context, availability model.Availability) error {
	return p.publishAvailability(ctx, TopicAvailabilityCreated, EventTypeCreated, availability)
}

func (p *kafkaPublisher) AvailabilityUpdated(ctx context.Context, availability model.Availability) error {
	return p.publishAvailability(ctx, TopicAvailabilityUpdated, EventTypeUpdated, availability)
}

func (p *kafkaPublisher) AvailabilityDeleted(ctx context.Context, availability model.Availability) error {
	return p.publishAvailability(ctx, TopicAvailabilityDeleted, EventTypeDeleted, availability)
}

func (p *kafkaPublisher) publishAvailability(ctx context.Context, topic, eventType string, availability model.Availability) error {
	event := AvailabilityEvent{
		EventID:      uuid.New().String(),
		Type:         eventType,
		Availability: availability,
		OccurredAt:   time.Now().UTC(),
	}
	return p.publish(ctx, topic, availability.ProviderID, event.EventID, eventType, event)
}

func (p *kafkaPublisher) UserCreated(ctx context.Context, user model.User) error {
	event := UserEvent{
		EventID:    uuid.New().String(),
		Type:       EventTypeCreated,
		User:       user,
		OccurredAt: time.Now().UTC(),
	}
	return p.publish(ctx, TopicUserCreated, user.SubjectID, event.EventID, EventTypeCreated, event)
}

func (p *kafkaPublisher) publish(ctx context.Context, topic, key, eventID, eventType string, payload any) error {
	prod, ok := p.producers[topic]
	if !ok {
		return fmt.Errorf("no producer for topic %s", topic)
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventID(eventID).
		WithEventType(eventType).
		WithSource(p.source).
		Build()
	msg.Topic = topic

	return prod.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	var err error
	for _, prod := range p.producers {
		if closeErr := prod.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
