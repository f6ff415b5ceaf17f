package assistant

import (
	"fmt"
	"strings"

	"verbatim/models"
)

const transcriptionRules = `You are an expert transcription assistant. Transcribe the audio/video content accurately.

Rules:
- Transcribe all spoken words exactly as heard
- Include speaker identification if multiple speakers (e.g., "Speaker 1:", "Speaker 2:")
- Include timestamps in [HH:MM:SS] format at natural breaks (every 30 seconds or at paragraph breaks)
- Preserve the original language of the content
- Note any significant non-speech sounds in [brackets] like [music], [applause], [laughter]
- If parts are unclear, mark them as [inaudible]
- Format the output as clean, readable paragraphs`

const transcriptionInstruction = "Please transcribe the following audio/video content:"

var emotionDirectives = map[models.Emotion]string{
	models.EmotionNeutral:  "Speak in a calm, professional, and neutral tone. Clear and straightforward delivery.",
	models.EmotionHappy:    "Speak with warmth, enthusiasm, and joy. Let a smile come through in the voice. Upbeat and positive energy.",
	models.EmotionSad:      "Speak with a softer, more subdued tone. Convey empathy and gentle melancholy. Slower pacing.",
	models.EmotionExcited:  "Speak with high energy and enthusiasm! Dynamic pacing, emphasizing key words with passion and excitement.",
	models.EmotionSerious:  "Speak with gravitas and authority. Measured, deliberate pacing. Professional and formal tone.",
	models.EmotionFriendly: "Speak in a warm, approachable, conversational manner. Like talking to a good friend.",
	models.EmotionDramatic: "Speak with theatrical flair and emotional intensity. Varied pacing and emphasis for maximum impact.",
	models.EmotionCalm:     "Speak in a soothing, peaceful manner. Slow, measured pacing. Perfect for meditation or relaxation content.",
}

// TranscriptionPrompt returns the system prompt, asking for a delimited translation section
// when targetLanguage is set.
func TranscriptionPrompt(targetLanguage string) string {
	if targetLanguage == "" {
		return transcriptionRules
	}
	return transcriptionRules + fmt.Sprintf(`

After the transcription, also provide a translation to %[1]s.
Format the output as:
--- ORIGINAL TRANSCRIPTION ---
[original content]

--- TRANSLATION (%[1]s) ---
[translated content]`, targetLanguage)
}

// EmotionDirective returns the voice direction for emotion. Unknown emotions get the neutral one.
func EmotionDirective(emotion string) string {
	if d, ok := emotionDirectives[models.Emotion(emotion)]; ok {
		return d
	}
	return emotionDirectives[models.EmotionNeutral]
}

// VoiceoverPrompt returns the system prompt for adapting text into a voice-over script.
func VoiceoverPrompt(emotion, language string) string {
	return fmt.Sprintf(`You are an expert voice director and script adapter. Your task is to prepare text for voice-over recording by adding emotional cues, pacing notes, and emphasis markers.

Emotion Style: %[1]s
Voice Direction: %[2]s
Target Language: %[3]s

Transform the provided text into a professional voice-over script with:
1. [PAUSE] markers for natural breathing points
2. *emphasis* on key words
3. (emotional cues) in parentheses where tone should shift
4. // pacing notes // for speed changes
5. Phonetic guides for difficult words if needed

Make the script feel natural and emotionally authentic for the %[4]s style.`,
		strings.ToUpper(emotion), EmotionDirective(emotion), language, emotion)
}

// VoiceoverInstruction is the user turn carrying the text to adapt.
func VoiceoverInstruction(text, emotion, language string) string {
	return fmt.Sprintf("Please prepare this text for %s voice-over in %s:\n\n%s", emotion, language, text)
}
