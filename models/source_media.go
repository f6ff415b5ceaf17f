package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceMedia represents one completed transcription in the history table.
type SourceMedia struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	FileName       string    `json:"file_name"`
	FileSize       int64     `json:"file_size"`
	ContentType    string    `json:"content_type"`
	AudioExtracted bool      `json:"audio_extracted"`
	TargetLanguage *string   `json:"target_language,omitempty"` // Nullable TEXT
	Transcription  string    `json:"transcription"`
	CreatedAt      time.Time `json:"created_at"`
}

// VoiceoverRecord represents one generated voice-over script in the history table.
type VoiceoverRecord struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Emotion   string    `json:"emotion"`
	Language  string    `json:"language"`
	Script    string    `json:"script"`
	CreatedAt time.Time `json:"created_at"`
}
