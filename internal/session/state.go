package session

import (
	"errors"
	"fmt"
)

// Status is the processing state of the active upload session.
type Status string

const (
	StatusIdle                Status = "idle"
	StatusUploading           Status = "uploading"
	StatusTranscribing        Status = "transcribing"
	StatusTranslating         Status = "translating"
	StatusGeneratingVoiceover Status = "generating-voiceover"
	StatusComplete            Status = "complete"
	StatusError               Status = "error"
)

// Busy reports whether a pipeline step is in flight.
func (s Status) Busy() bool {
	switch s {
	case StatusUploading, StatusTranscribing, StatusTranslating, StatusGeneratingVoiceover:
		return true
	default:
		return false
	}
}

// Event drives Transition.
type Event int

const (
	EventSubmit Event = iota
	EventDispatched
	EventTranscribed
	EventTranscribedWithLanguage
	EventTranslated
	EventFailed
	EventVoiceoverRequested
	EventVoiceoverDone
	EventClear
)

func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventDispatched:
		return "dispatched"
	case EventTranscribed:
		return "transcribed"
	case EventTranscribedWithLanguage:
		return "transcribed-with-language"
	case EventTranslated:
		return "translated"
	case EventFailed:
		return "failed"
	case EventVoiceoverRequested:
		return "voiceover-requested"
	case EventVoiceoverDone:
		return "voiceover-done"
	case EventClear:
		return "clear"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned by Transition for an event the current status does not accept.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition returns the status that follows from after ev. It is pure; the orchestrator
// applies the result.
//
// Submit is accepted from idle, complete and error so a failed or finished run can be
// re-submitted by hand. A voice-over may be requested from complete, or from error when a
// previous voice-over attempt failed with the transcript still held.
func Transition(from Status, ev Event) (Status, error) {
	if ev == EventClear {
		return StatusIdle, nil
	}

	switch from {
	case StatusIdle:
		if ev == EventSubmit {
			return StatusUploading, nil
		}
	case StatusUploading:
		switch ev {
		case EventDispatched:
			return StatusTranscribing, nil
		case EventFailed:
			return StatusError, nil
		}
	case StatusTranscribing:
		switch ev {
		case EventTranscribed:
			return StatusComplete, nil
		case EventTranscribedWithLanguage:
			return StatusTranslating, nil
		case EventFailed:
			return StatusError, nil
		}
	case StatusTranslating:
		switch ev {
		case EventTranslated:
			return StatusComplete, nil
		case EventFailed:
			return StatusError, nil
		}
	case StatusGeneratingVoiceover:
		switch ev {
		case EventVoiceoverDone:
			return StatusComplete, nil
		case EventFailed:
			return StatusError, nil
		}
	case StatusComplete:
		switch ev {
		case EventSubmit:
			return StatusUploading, nil
		case EventVoiceoverRequested:
			return StatusGeneratingVoiceover, nil
		}
	case StatusError:
		switch ev {
		case EventSubmit:
			return StatusUploading, nil
		case EventVoiceoverRequested:
			return StatusGeneratingVoiceover, nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, from, ev)
}
