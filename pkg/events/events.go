package events

import (
	"time"

	"reserva/pkg/model"
)

// Topic per entity category and operation. Each topic has a matching
// <topic>.dlq destination for payloads that could not be delivered.
const (
	TopicBookingCreated = "bookings.created"
	TopicBookingUpdated = "bookings.updated"
	TopicBookingDeleted = "bookings.deleted"

	TopicAvailabilityCreated = "availability.created"
	TopicAvailabilityUpdated = "availability.updated"
	TopicAvailabilityDeleted = "availability.deleted"

	TopicUserCreated = "users.created"
	TopicUserUpdated = "users.updated"
	TopicUserDeleted = "users.deleted"
)

// DLQTopic returns the dead-letter destination for a topic.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}

const (
	EventTypeCreated = "created"
	EventTypeUpdated = "updated"
	EventTypeDeleted = "deleted"
)

type BookingEvent struct {
	EventID    string        `json:"event_id"`
	Type       string        `json:"type"`
	Booking    model.Booking `json:"booking"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type AvailabilityEvent struct {
	EventID      string             `json:"event_id"`
	Type         string             `json:"type"`
	Availability model.Availability `json:"availability"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

type UserEvent struct {
	EventID    string     `json:"event_id"`
	Type       string     `json:"type"`
	User       model.User `json:"user"`
	OccurredAt time.Time  `json:"occurred_at"`
}
