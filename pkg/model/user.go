package model

import "time"

const (
	RoleProvider = "provider"
	RoleClient   = "client"
)

type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SubjectID string    `json:"subject_id" bson:"subject_id" validate:"required"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	FullName  string    `json:"full_name" bson:"full_name" validate:"required,min=2,max=100"`
	Role      string    `json:"role" bson:"role" validate:"required,oneof=provider client"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
