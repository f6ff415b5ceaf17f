package captions

import (
	"regexp"
	"strings"

	"verbatim/models"
)

var (
	originalHeading    = regexp.MustCompile(`(?im)^\s*-{3}\s*ORIGINAL TRANSCRIPTION\s*-{3}\s*$`)
	translationHeading = regexp.MustCompile(`(?im)^\s*-{3}\s*TRANSLATION\s*(?:\(([^)]*)\))?\s*-{3}\s*$`)
)

// SplitSections separates the original transcription from its translation when the
// transcript carries the headings the transcribe function asks the model for. Without a
// translation heading the whole text is returned as Original.
func SplitSections(transcript string) models.TranscriptSections {
	loc := translationHeading.FindStringSubmatchIndex(transcript)
	if loc == nil {
		return models.TranscriptSections{Original: stripHeading(transcript)}
	}

	sections := models.TranscriptSections{
		Original:    stripHeading(transcript[:loc[0]]),
		Translation: strings.TrimSpace(transcript[loc[1]:]),
	}
	if loc[2] >= 0 {
		sections.Language = strings.TrimSpace(transcript[loc[2]:loc[3]])
	}
	return sections
}

// Section picks the named part of a transcript: "original", "translation", or anything
// else for the full text.
func Section(transcript, name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "original":
		return SplitSections(transcript).Original
	case "translation":
		return SplitSections(transcript).Translation
	default:
		return transcript
	}
}

func stripHeading(text string) string {
	return strings.TrimSpace(originalHeading.ReplaceAllString(text, ""))
}
