package models

import (
	"time"

	"github.com/google/uuid"
)

// Trainer represents a gym trainer that clients can be assigned to
type Trainer struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	Specialization *string   `json:"specialization,omitempty" db:"specialization"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
