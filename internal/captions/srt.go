// Package captions renders transcripts as SRT caption documents.
//
// Caption timing is a heuristic: each line is held on screen for max(3, ceil(chars/20))
// seconds, back to back from zero. It approximates reading time and says nothing about
// when the words were actually spoken.
package captions

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"verbatim/models"
)

const (
	// ContentType is served with exported caption files.
	ContentType = "text/srt"

	minCueSeconds  = 3
	charsPerSecond = 20
)

// Entry is one numbered caption block.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Lines returns the trimmed, non-blank lines of a transcript.
func Lines(transcript string) []string {
	raw := strings.Split(strings.ReplaceAll(transcript, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// CueDuration returns how long a line stays on screen.
func CueDuration(line string) time.Duration {
	n := utf8.RuneCountInString(line)
	secs := (n + charsPerSecond - 1) / charsPerSecond
	if secs < minCueSeconds {
		secs = minCueSeconds
	}
	return time.Duration(secs) * time.Second
}

// Entries lays lines out back to back starting at zero.
func Entries(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	var cursor time.Duration
	for i, line := range lines {
		end := cursor + CueDuration(line)
		entries = append(entries, Entry{Index: i + 1, Start: cursor, End: end, Text: line})
		cursor = end
	}
	return entries
}

// Encode renders entries as an SRT document with a blank line between blocks.
func Encode(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", e.Index, Timestamp(e.Start), Timestamp(e.End), e.Text)
	}
	return b.String()
}

// FromTranscript is Encode(Entries(Lines(transcript))).
func FromTranscript(transcript string) string {
	return Encode(Entries(Lines(transcript)))
}

// Timestamp formats d as HH:MM:SS,mmm. Only whole seconds are produced by Entries, so the
// millisecond field is 000 in practice.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

// Models converts entries to their API representation.
func Models(entries []Entry) []models.Caption {
	out := make([]models.Caption, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Caption{
			Index:     e.Index,
			StartTime: e.Start.Seconds(),
			EndTime:   e.End.Seconds(),
			Text:      e.Text,
		})
	}
	return out
}
