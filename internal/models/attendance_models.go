package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is one visit of a client. A nil TimeOut means the session is still open.
type Attendance struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ClientID  uuid.UUID  `json:"client_id" db:"client_id"`
	TimeIn    time.Time  `json:"time_in" db:"time_in"`
	TimeOut   *time.Time `json:"time_out" db:"time_out"`
	Date      time.Time  `json:"date" db:"date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// IsOpen reports whether the client has not timed out yet.
func (a *Attendance) IsOpen() bool {
	return a.TimeOut == nil
}
