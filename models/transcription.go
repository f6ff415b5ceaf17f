package models

// TranscribeResponse is the success body of the transcribe function.
type TranscribeResponse struct {
	Success        bool    `json:"success"`
	Transcription  string  `json:"transcription"`
	FileName       string  `json:"fileName"`
	FileSize       int64   `json:"fileSize"`
	TargetLanguage *string `json:"targetLanguage"`
}

// FunctionError is the failure body shared by the transcribe and voice-over functions.
type FunctionError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TranscriptSections holds the two halves of a transcript produced with a target language.
// Translation is empty when the transcript has no translation heading.
type TranscriptSections struct {
	Original    string `json:"original"`
	Translation string `json:"translation,omitempty"`
	Language    string `json:"language,omitempty"`
}

// TargetLanguages is the enumerated set a session may request a translation into.
var TargetLanguages = []string{
	"English",
	"Spanish",
	"French",
	"German",
	"Italian",
	"Portuguese",
	"Dutch",
	"Russian",
	"Japanese",
	"Korean",
	"Chinese",
	"Arabic",
	"Hindi",
	"Turkish",
	"Polish",
	"Swedish",
}

// IsTargetLanguage reports whether lang is one of TargetLanguages.
func IsTargetLanguage(lang string) bool {
	for _, l := range TargetLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
