package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"verbatim/internal/metrics"
	"verbatim/models"
)

const (
	transcribePath = "/functions/v1/transcribe"
	voiceoverPath  = "/functions/v1/generate-voiceover"

	genericTranscribeError = "Failed to process file"
	genericVoiceoverError  = "Failed to generate voiceover"
)

// RemoteError is a failed or unusable response from one of the functions.
type RemoteError struct {
	Call    string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Call, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Call, e.Message, e.Status)
}

// UserMessage returns the message reported by the function, or the generic one.
func (e *RemoteError) UserMessage() string {
	return e.Message
}

// Config holds the base URL and the opaque credentials sent with every call.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AIClient calls the transcribe and generate-voiceover functions over HTTP.
type AIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Entry
	metrics    *metrics.Recorder
}

// NewAIClient creates and returns a new AIClient.
func NewAIClient(cfg Config, logger *logrus.Logger, rec *metrics.Recorder) *AIClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &AIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.WithField("component", "aiclient"),
		metrics:    rec,
	}
}

// Transcribe uploads file and returns the transcription. A non-empty targetLanguage asks
// for a translation section in the same response.
func (c *AIClient) Transcribe(ctx context.Context, file models.MediaFile, targetLanguage string) (resp *models.TranscribeResponse, err error) {
	start := time.Now()
	defer func() { c.metrics.RemoteCall("transcribe", err, time.Since(start)) }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if targetLanguage != "" {
		if err := mw.WriteField("targetLanguage", targetLanguage); err != nil {
			return nil, fmt.Errorf("write targetLanguage: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"file":            file.Name,
		"bytes":           len(file.Data),
		"content_type":    contentType,
		"target_language": targetLanguage,
	}).Info("sending transcribe request")

	var out models.TranscribeResponse
	if err := c.do(ctx, "transcribe", transcribePath, mw.FormDataContentType(), &body, genericTranscribeError, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Transcription == "" {
		return nil, &RemoteError{Call: "transcribe", Status: http.StatusOK, Message: "No transcription generated"}
	}
	return &out, nil
}

// GenerateVoiceover asks for a voice-over script for text in the given emotion and language.
func (c *AIClient) GenerateVoiceover(ctx context.Context, text string, emotion models.Emotion, language string) (resp *models.VoiceoverResponse, err error) {
	start := time.Now()
	defer func() { c.metrics.RemoteCall("voiceover", err, time.Since(start)) }()

	payload, err := json.Marshal(models.VoiceoverRequest{Text: text, Emotion: string(emotion), Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshal voiceover request: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"emotion":  emotion,
		"language": language,
		"chars":    len(text),
	}).Info("sending voiceover request")

	var out models.VoiceoverResponse
	if err := c.do(ctx, "voiceover", voiceoverPath, "application/json", bytes.NewReader(payload), genericVoiceoverError, &out); err != nil {
		return nil, err
	}
	if !out.Success || strings.TrimSpace(out.VoiceoverScript) == "" {
		return nil, &RemoteError{Call: "voiceover", Status: http.StatusOK, Message: "No voiceover script generated"}
	}
	return &out, nil
}

func (c *AIClient) do(ctx context.Context, call, path, contentType string, body io.Reader, fallback string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", call, err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("call", call).Error("request failed")
		return &RemoteError{Call: call, Message: fallback}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Call: call, Status: resp.StatusCode, Message: fallback}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		var fe models.FunctionError
		if json.Unmarshal(raw, &fe) == nil && strings.TrimSpace(fe.Error) != "" {
			msg = fe.Error
		}
		c.log.WithFields(logrus.Fields{"call": call, "status": resp.StatusCode, "message": msg}).Warn("function returned an error")
		return &RemoteError{Call: call, Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.log.WithError(err).WithField("call", call).Error("malformed response body")
		return &RemoteError{Call: call, Status: resp.StatusCode, Message: fallback}
	}
	return nil
}
