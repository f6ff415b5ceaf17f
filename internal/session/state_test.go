package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from Status
		ev   Event
		want Status
	}{
		{StatusIdle, EventSubmit, StatusUploading},
		{StatusUploading, EventDispatched, StatusTranscribing},
		{StatusUploading, EventFailed, StatusError},
		{StatusTranscribing, EventTranscribed, StatusComplete},
		{StatusTranscribing, EventTranscribedWithLanguage, StatusTranslating},
		{StatusTranscribing, EventFailed, StatusError},
		{StatusTranslating, EventTranslated, StatusComplete},
		{StatusTranslating, EventFailed, StatusError},
		{StatusComplete, EventVoiceoverRequested, StatusGeneratingVoiceover},
		{StatusComplete, EventSubmit, StatusUploading},
		{StatusGeneratingVoiceover, EventVoiceoverDone, StatusComplete},
		{StatusGeneratingVoiceover, EventFailed, StatusError},
		{StatusError, EventSubmit, StatusUploading},
		{StatusError, EventVoiceoverRequested, StatusGeneratingVoiceover},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+tc.ev.String(), func(t *testing.T) {
			got, err := Transition(tc.from, tc.ev)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClearAlwaysReturnsIdle(t *testing.T) {
	for _, from := range []Status{
		StatusIdle, StatusUploading, StatusTranscribing, StatusTranslating,
		StatusGeneratingVoiceover, StatusComplete, StatusError,
	} {
		got, err := Transition(from, EventClear)
		require.NoError(t, err)
		assert.Equal(t, StatusIdle, got, "from %s", from)
	}
}

func TestInvalidTransitions(t *testing.T) {
	cases := []struct {
		from Status
		ev   Event
	}{
		{StatusIdle, EventDispatched},
		{StatusIdle, EventVoiceoverRequested},
		{StatusUploading, EventSubmit},
		{StatusTranscribing, EventVoiceoverRequested},
		{StatusTranslating, EventTranscribed},
		{StatusGeneratingVoiceover, EventSubmit},
		{StatusComplete, EventTranslated},
	}
	for _, tc := range cases {
		got, err := Transition(tc.from, tc.ev)
		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, tc.from, got)
	}
}

func TestBusy(t *testing.T) {
	assert.False(t, StatusIdle.Busy())
	assert.True(t, StatusUploading.Busy())
	assert.True(t, StatusTranslating.Busy())
	assert.True(t, StatusGeneratingVoiceover.Busy())
	assert.False(t, StatusComplete.Busy())
	assert.False(t, StatusError.Busy())
}
