package session

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"verbatim/models"
)

// MaxFileSize is the default upload limit, 500 MiB.
const MaxFileSize int64 = 500 << 20

var acceptedTypes = map[string]bool{
	"audio/mpeg":      true,
	"audio/mp3":       true,
	"audio/wav":       true,
	"audio/m4a":       true,
	"audio/aac":       true,
	"audio/ogg":       true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"video/ogg":       true,
}

var acceptedExtensions = map[string]bool{
	"mp3":  true,
	"mp4":  true,
	"wav":  true,
	"m4a":  true,
	"aac":  true,
	"webm": true,
	"mov":  true,
	"ogg":  true,
}

// Rejection reasons carried by ValidationError.
const (
	ReasonTooLarge        = "too_large"
	ReasonUnsupportedType = "unsupported_type"
)

// ValidationError is a file rejected before any processing. Message is shown to the user.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserMessage implements the user-facing message contract.
func (e *ValidationError) UserMessage() string {
	return e.Message
}

// Accept checks f against the size limit and the accepted MIME types and extensions.
func Accept(f models.MediaFile, maxBytes int64) error {
	return Check(f.Name, f.ContentType, f.Size(), maxBytes)
}

// Check validates a file by its metadata alone, so oversized uploads can be refused before
// their bytes are read. A file passes the type check if either its declared type or its
// extension is accepted.
func Check(name, contentType string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	if size > maxBytes {
		return &ValidationError{
			Reason: ReasonTooLarge,
			Message: fmt.Sprintf("File is too large (%s). Maximum size is %s.",
				humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxBytes))),
		}
	}
	meta := models.MediaFile{Name: name, ContentType: contentType}
	if !acceptedTypes[meta.MediaType()] && !acceptedExtensions[meta.Ext()] {
		return &ValidationError{
			Reason:  ReasonUnsupportedType,
			Message: "Unsupported file type. Please upload MP3, MP4, WAV, M4A, AAC, WEBM, MOV or OGG files.",
		}
	}
	return nil
}
