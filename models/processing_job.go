package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingJob represents the structure of a processing job in the database.
type ProcessingJob struct {
	ID           uuid.UUID  `json:"id"`
	JobType      string     `json:"job_type"`
	SessionID    uuid.UUID  `json:"session_id"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"` // Nullable TEXT
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"` // Nullable TIMESTAMPTZ
}
