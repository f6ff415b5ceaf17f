package models

// Emotion selects the delivery style of a voice-over script.
type Emotion string

const (
	EmotionNeutral  Emotion = "neutral"
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionExcited  Emotion = "excited"
	EmotionSerious  Emotion = "serious"
	EmotionFriendly Emotion = "friendly"
	EmotionDramatic Emotion = "dramatic"
	EmotionCalm     Emotion = "calm"
)

// Emotions lists every supported emotion in display order.
var Emotions = []Emotion{
	EmotionNeutral,
	EmotionHappy,
	EmotionSad,
	EmotionExcited,
	EmotionSerious,
	EmotionFriendly,
	EmotionDramatic,
	EmotionCalm,
}

// Valid reports whether e belongs to Emotions.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// VoiceoverRequest is the JSON body of the generate-voiceover function.
type VoiceoverRequest struct {
	Text     string `json:"text" validate:"required"`
	Emotion  string `json:"emotion,omitempty"`
	Language string `json:"language,omitempty"`
}

// VoiceoverResponse is the success body of the generate-voiceover function.
type VoiceoverResponse struct {
	Success            bool   `json:"success"`
	OriginalText       string `json:"originalText"`
	VoiceoverScript    string `json:"voiceoverScript"`
	Emotion            string `json:"emotion"`
	Language           string `json:"language"`
	EmotionDescription string `json:"emotionDescription"`
}

// VoiceoverScript is a generated script tagged with the emotion and language used to produce it.
type VoiceoverScript struct {
	Text     string  `json:"text"`
	Emotion  Emotion `json:"emotion"`
	Language string  `json:"language"`
}
