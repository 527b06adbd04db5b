package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client represents a gym member
type Client struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	Name              string              `json:"name" db:"name"`
	Phone             string              `json:"phone" db:"phone"`
	Address           string              `json:"address" db:"address"`
	Email             *string             `json:"email,omitempty" db:"email"`
	FeeSubmissionDate time.Time           `json:"fee_submission_date" db:"fee_submission_date"`
	MonthlyFee        decimal.NullDecimal `json:"monthly_fee" db:"monthly_fee"`
	TrainerID         *uuid.UUID          `json:"trainer_id,omitempty" db:"trainer_id"`
	Photo             *ClientPhoto        `json:"photo,omitempty"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
	Trainer           *Trainer            `json:"trainer,omitempty"` // For joining with Trainer details
}

// ClientPhoto holds exactly one of the two photo representations.
// Path is set for disk storage; Data/ContentType/UploadedAt for inline storage.
type ClientPhoto struct {
	Path        string
	Data        string // base64
	ContentType string
	UploadedAt  *time.Time
}

// IsInline reports whether the photo bytes live in the record itself.
func (p *ClientPhoto) IsInline() bool {
	return p != nil && p.Data != ""
}

// IsEmpty reports whether neither representation carries anything.
func (p *ClientPhoto) IsEmpty() bool {
	return p == nil || (p.Path == "" && p.Data == "")
}

type inlinePhotoJSON struct {
	Data        string     `json:"data"`
	ContentType string     `json:"contentType"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"`
}

// MarshalJSON renders disk photos as their relative path and inline photos as an object.
func (p ClientPhoto) MarshalJSON() ([]byte, error) {
	if p.Data != "" {
		return json.Marshal(inlinePhotoJSON{Data: p.Data, ContentType: p.ContentType, UploadedAt: p.UploadedAt})
	}
	if p.Path != "" {
		return json.Marshal(p.Path)
	}
	return []byte("null"), nil
}

// ClientFilters defines the available filters for listing clients.
type ClientFilters struct {
	Search   *string
	Page     int
	PageSize int
}
