package model

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID   string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	CustomerID   string    `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	ServiceLabel string    `json:"service_label" bson:"service_label" validate:"required,min=2,max=100"`
	StartTime    time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type BookingUpdate struct {
	ServiceLabel string     `json:"service_label,omitempty" validate:"omitempty,min=2,max=100"`
	StartTime    *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Status       string     `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Cancelled reports whether the booking no longer occupies its slot.
// Cancelled bookings are kept for history but never count toward overlap.
func (b *Booking) Cancelled() bool {
	return b.Status == BookingStatusCancelled
}
