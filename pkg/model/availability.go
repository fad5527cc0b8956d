package model

import (
	"time"
)

type Availability struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID      string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	DayOfWeek       string    `json:"day_of_week" bson:"day_of_week" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartOfDay      string    `json:"start_of_day" bson:"start_of_day" validate:"required,clock_time"`
	EndOfDay        string    `json:"end_of_day" bson:"end_of_day" validate:"required,clock_time"`
	SlotDurationMin int       `json:"slot_duration_min" bson:"slot_duration_min" validate:"required,min=5,max=480"`
	TimeZone        string    `json:"time_zone,omitempty" bson:"time_zone" validate:"omitempty,timezone"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type AvailabilityUpdate struct {
	DayOfWeek       string `json:"day_of_week,omitempty" validate:"omitempty,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartOfDay      string `json:"start_of_day,omitempty" validate:"omitempty,clock_time"`
	EndOfDay        string `json:"end_of_day,omitempty" validate:"omitempty,clock_time"`
	SlotDurationMin *int   `json:"slot_duration_min,omitempty" validate:"omitempty,min=5,max=480"`
	TimeZone        string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}
