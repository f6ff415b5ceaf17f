// Package assistant serves the transcribe and generate-voiceover functions by prompting a
// hosted multimodal model through an OpenAI-compatible chat completions API.
package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/patrickmn/go-cache"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"verbatim/internal/metrics"
	"verbatim/models"
)

const (
	DefaultTranscribeModel = "google/gemini-2.5-flash"
	DefaultVoiceoverModel  = "google/gemini-3-flash-preview"
	DefaultEmotion         = "neutral"
	DefaultLanguage        = "English"

	fallbackMIME = "audio/mpeg"
)

// Error is a function failure carrying the HTTP status to answer with.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the message placed in the error body.
func (e *Error) UserMessage() string { return e.Message }

// Details mirrors the error body's details field.
func (e *Error) Details() string {
	return "Error: " + e.Error()
}

// Config selects the model gateway and models.
type Config struct {
	BaseURL         string
	APIKey          string
	TranscribeModel string
	VoiceoverModel  string
	CacheTTL        time.Duration
}

// Service implements both functions.
type Service struct {
	client          *openai.Client
	configured      bool
	transcribeModel string
	voiceoverModel  string
	cache           *cache.Cache
	log             *logrus.Entry
	metrics         *metrics.Recorder
}

// New builds a Service. Without an API key every call fails with "AI service not configured".
func New(cfg Config, logger *logrus.Logger, rec *metrics.Recorder) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	s := &Service{
		client:          openai.NewClientWithConfig(oc),
		configured:      cfg.APIKey != "",
		transcribeModel: cfg.TranscribeModel,
		voiceoverModel:  cfg.VoiceoverModel,
		cache:           cache.New(ttl, 2*ttl),
		log:             logger.WithField("component", "assistant"),
		metrics:         rec,
	}
	if s.transcribeModel == "" {
		s.transcribeModel = DefaultTranscribeModel
	}
	if s.voiceoverModel == "" {
		s.voiceoverModel = DefaultVoiceoverModel
	}
	return s
}

// MIMEType returns the declared type of f, sniffing the bytes when none was declared.
func MIMEType(f models.MediaFile) string {
	if mt := f.MediaType(); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if len(f.Data) > 0 {
		if m := mimetype.Detect(f.Data); m != nil && !m.Is("application/octet-stream") {
			return m.String()
		}
	}
	return fallbackMIME
}

// Transcribe sends f to the model as a base64 data URL and returns the transcription.
func (s *Service) Transcribe(ctx context.Context, f models.MediaFile, targetLanguage string) (resp *models.TranscribeResponse, err error) {
	start := time.Now()
	defer func() { s.metrics.RemoteCall("model_transcribe", err, time.Since(start)) }()

	if !s.configured {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "AI service not configured"}
	}
	if len(f.Data) == 0 {
		return nil, &Error{Status: http.StatusBadRequest, Message: "No file provided"}
	}

	mime := MIMEType(f)
	log := s.log.WithFields(logrus.Fields{"file": f.Name, "bytes": len(f.Data), "mime": mime, "target_language": targetLanguage})
	log.Info("transcribing file")

	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
	req := openai.ChatCompletionRequest{
		Model: s.transcribeModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: TranscriptionPrompt(targetLanguage)},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: transcriptionInstruction},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens:   16000,
		Temperature: 0.1,
	}

	text, err := s.complete(ctx, req, "No transcription generated")
	if err != nil {
		log.WithError(err).Error("transcription failed")
		return nil, err
	}
	log.WithField("chars", len(text)).Info("transcription completed")

	out := &models.TranscribeResponse{
		Success:       true,
		Transcription: text,
		FileName:      f.Name,
		FileSize:      f.Size(),
	}
	if targetLanguage != "" {
		lang := targetLanguage
		out.TargetLanguage = &lang
	}
	return out, nil
}

// Voiceover adapts req.Text into a voice-over script. Emotion and language default to
// neutral and English. Identical requests are answered from cache.
func (s *Service) Voiceover(ctx context.Context, req models.VoiceoverRequest) (resp *models.VoiceoverResponse, err error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &Error{Status: http.StatusBadRequest, Message: "No text provided"}
	}
	if req.Emotion == "" {
		req.Emotion = DefaultEmotion
	}
	if req.Language == "" {
		req.Language = DefaultLanguage
	}

	key := cacheKey(req)
	if hit, ok := s.cache.Get(key); ok {
		s.log.WithField("emotion", req.Emotion).Debug("voice-over served from cache")
		v := *hit.(*models.VoiceoverResponse)
		return &v, nil
	}

	start := time.Now()
	defer func() { s.metrics.RemoteCall("model_voiceover", err, time.Since(start)) }()

	if !s.configured {
		return nil, &Error{Status: http.StatusInternalServerError, Message: "AI service not configured"}
	}

	log := s.log.WithFields(logrus.Fields{"emotion": req.Emotion, "language": req.Language, "chars": len(req.Text)})
	log.Info("generating voice-over")

	script, err := s.complete(ctx, openai.ChatCompletionRequest{
		Model: s.voiceoverModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: VoiceoverPrompt(req.Emotion, req.Language)},
			{Role: openai.ChatMessageRoleUser, Content: VoiceoverInstruction(req.Text, req.Emotion, req.Language)},
		},
		MaxTokens:   8000,
		Temperature: 0.7,
	}, "No voiceover script generated")
	if err != nil {
		log.WithError(err).Error("voice-over generation failed")
		return nil, err
	}
	log.WithField("script_chars", len(script)).Info("voice-over generated")

	out := &models.VoiceoverResponse{
		Success:            true,
		OriginalText:       req.Text,
		VoiceoverScript:    script,
		Emotion:            req.Emotion,
		Language:           req.Language,
		EmotionDescription: EmotionDirective(req.Emotion),
	}
	cached := *out
	s.cache.SetDefault(key, &cached)
	return out, nil
}

// GenerateVoiceover lets the Service stand in for the remote function client.
func (s *Service) GenerateVoiceover(ctx context.Context, text string, emotion models.Emotion, language string) (*models.VoiceoverResponse, error) {
	return s.Voiceover(ctx, models.VoiceoverRequest{Text: text, Emotion: string(emotion), Language: language})
}

func (s *Service) complete(ctx context.Context, req openai.ChatCompletionRequest, emptyMessage string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &Error{Status: http.StatusInternalServerError, Message: gatewayMessage(err), Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &Error{Status: http.StatusInternalServerError, Message: emptyMessage}
	}
	return resp.Choices[0].Message.Content, nil
}

func gatewayMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Sprintf("AI processing failed: %d", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Sprintf("AI processing failed: %d", reqErr.HTTPStatusCode)
	}
	return "AI processing failed"
}

func cacheKey(req models.VoiceoverRequest) string {
	sum := sha256.Sum256([]byte(req.Emotion + "\x00" + req.Language + "\x00" + req.Text))
	return hex.EncodeToString(sum[:])
}
