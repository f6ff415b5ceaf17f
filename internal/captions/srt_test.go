package captions

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTranscriptTwoLines(t *testing.T) {
	got := FromTranscript("Hello world\nThis is a test line that is fairly long indeed")

	want := "1\n00:00:00,000 --> 00:00:03,000\nHello world\n" +
		"\n" +
		"2\n00:00:03,000 --> 00:00:06,000\nThis is a test line that is fairly long indeed\n"
	assert.Equal(t, want, got)
}

func TestEntriesAreContiguous(t *testing.T) {
	lines := []string{
		"short",
		strings.Repeat("x", 61), // ceil(61/20) = 4
		strings.Repeat("y", 100),
		"tail",
	}
	entries := Entries(lines)
	require.Len(t, entries, 4)

	assert.Equal(t, time.Duration(0), entries[0].Start)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].End, entries[i].Start, "gap or overlap before entry %d", i+1)
		assert.Equal(t, i+1, entries[i].Index)
	}
	assert.Equal(t, 4*time.Second, entries[1].End-entries[1].Start)
	assert.Equal(t, 5*time.Second, entries[2].End-entries[2].Start)
	assert.Equal(t, 15*time.Second, entries[3].End)
}

func TestCueDuration(t *testing.T) {
	cases := []struct {
		line string
		want time.Duration
	}{
		{"", 3 * time.Second},
		{"Hello world", 3 * time.Second},
		{strings.Repeat("a", 60), 3 * time.Second},
		{strings.Repeat("a", 61), 4 * time.Second},
		{strings.Repeat("é", 80), 4 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CueDuration(tc.line), "len=%d", len(tc.line))
	}
}

func TestLinesSkipsBlanks(t *testing.T) {
	lines := Lines("  first  \r\n\n   \nsecond\n\t\nthird")
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestFromTranscriptEmpty(t *testing.T) {
	assert.Equal(t, "", FromTranscript("\n  \n"))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00,000", Timestamp(0))
	assert.Equal(t, "00:01:05,000", Timestamp(65*time.Second))
	assert.Equal(t, "01:00:00,000", Timestamp(time.Hour))
	assert.Equal(t, "27:46:39,250", Timestamp(99999*time.Second+250*time.Millisecond))
	assert.Equal(t, "00:00:00,000", Timestamp(-time.Second))
}

func TestModels(t *testing.T) {
	caps := Models(Entries([]string{"one", "two"}))
	require.Len(t, caps, 2)
	assert.Equal(t, 1, caps[0].Index)
	assert.Equal(t, 3.0, caps[0].EndTime)
	assert.Equal(t, 3.0, caps[1].StartTime)
	assert.Equal(t, "two", caps[1].Text)
}
