package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verbatim/internal/assistant"
	"verbatim/internal/db"
	"verbatim/internal/session"
	"verbatim/internal/worker"
	"verbatim/middleware"
	"verbatim/models"
)

const translatedTranscript = `--- ORIGINAL TRANSCRIPTION ---
Hallo zusammen.
--- TRANSLATION (English) ---
Hello everyone.`

type fakeFunctions struct {
	mu         sync.Mutex
	transcript string
	err        error
	voiceText  string
	voiceEmo   models.Emotion
}

func (f *fakeFunctions) Transcribe(_ context.Context, file models.MediaFile, lang string) (*models.TranscribeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	resp := &models.TranscribeResponse{Success: true, Transcription: f.transcript, FileName: file.Name, FileSize: file.Size()}
	if lang != "" {
		resp.TargetLanguage = &lang
	}
	return resp, nil
}

func (f *fakeFunctions) Voiceover(_ context.Context, req models.VoiceoverRequest) (*models.VoiceoverResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.VoiceoverResponse{
		Success: true, OriginalText: req.Text, VoiceoverScript: "(warmly) " + req.Text,
		Emotion: req.Emotion, Language: req.Language,
	}, nil
}

func (f *fakeFunctions) GenerateVoiceover(ctx context.Context, text string, e models.Emotion, lang string) (*models.VoiceoverResponse, error) {
	f.mu.Lock()
	f.voiceText, f.voiceEmo = text, e
	f.mu.Unlock()
	return f.Voiceover(ctx, models.VoiceoverRequest{Text: text, Emotion: string(e), Language: lang})
}

type passthrough struct{}

func (passthrough) Prepare(_ context.Context, f models.MediaFile) (models.MediaFile, bool, error) {
	return f, false, nil
}

// inlineJobs runs jobs on the request goroutine, or holds them when hold is set.
type inlineJobs struct {
	hold   bool
	err    error
	queued []worker.Job
}

func (j *inlineJobs) SubmitJob(job worker.Job) error {
	if j.err != nil {
		return j.err
	}
	if j.hold {
		j.queued = append(j.queued, job)
		return nil
	}
	_ = job.Execute(context.Background())
	return nil
}

type fakeJobStore struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]models.ProcessingJob
	created int
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[uuid.UUID]models.ProcessingJob{}}
}

func (s *fakeJobStore) CreateJob(_ context.Context, jobType string, sessionID uuid.UUID) (models.ProcessingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := models.ProcessingJob{ID: uuid.New(), JobType: jobType, SessionID: sessionID, Status: db.JobPending}
	s.jobs[job.ID] = job
	s.created++
	return job, nil
}

func (s *fakeJobStore) UpdateJobStatus(_ context.Context, id uuid.UUID, status, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return db.ErrJobNotFound
	}
	job.Status = status
	s.jobs[id] = job
	return nil
}

func (s *fakeJobStore) GetJob(_ context.Context, id uuid.UUID) (models.ProcessingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.ProcessingJob{}, db.ErrJobNotFound
	}
	return job, nil
}

type fixture struct {
	app   *fiber.App
	h     *ApplicationHandler
	fns   *fakeFunctions
	jobs  *inlineJobs
	store *fakeJobStore
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fns := &fakeFunctions{transcript: "Hello there.\nSecond line."}
	orch := session.New(session.Options{
		Preparer:    passthrough{},
		Transcriber: fns,
		Voiceover:   fns,
		Logger:      logger,
	})
	jobs := &inlineJobs{}
	fx := &fixture{fns: fns, jobs: jobs}

	var store JobStore
	if withStore {
		fx.store = newFakeJobStore()
		store = fx.store
	}
	fx.h = NewApplicationHandler(orch, fns, jobs, store, logger)
	fx.app = fiber.New()
	fx.app.Use(middleware.RequestLogger(logger))
	fx.h.RegisterRoutes(fx.app)
	return fx
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (fx *fixture) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := fx.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (fx *fixture) doJSON(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, body := fx.do(t, req)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func (fx *fixture) snapshot(t *testing.T) session.Snapshot {
	t.Helper()
	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.Equal(t, http.StatusOK, code)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	return snap
}

func multipartRequest(t *testing.T, target, name, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if name != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
		if contentType != "" {
			hdr.Set("Content-Type", contentType)
		}
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func (fx *fixture) selectFile(t *testing.T) {
	t.Helper()
	code, env := fx.doJSON(t, multipartRequest(t, "/api/v1/session/file", "talk.mp3", "audio/mpeg", []byte("ID3 audio"), nil))
	require.Equal(t, http.StatusOK, code, env.Message)
}

func TestSelectFile(t *testing.T) {
	fx := newFixture(t, false)

	code, env := fx.doJSON(t, multipartRequest(t, "/api/v1/session/file", "talk.mp3", "audio/mpeg", []byte("ID3 audio"), nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "talk.mp3", snap.FileName)
	assert.EqualValues(t, 9, snap.FileSize)
	assert.Equal(t, session.StatusIdle, snap.Status)
}

func TestSelectFileRejections(t *testing.T) {
	fx := newFixture(t, false)

	code, env := fx.doJSON(t, multipartRequest(t, "/api/v1/session/file", "", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No file provided", env.Message)

	code, env = fx.doJSON(t, multipartRequest(t, "/api/v1/session/file", "notes.txt", "text/plain", []byte("hi"), nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "Unsupported file type")

	fx.h.MaxUploadBytes = 4
	code, env = fx.doJSON(t, multipartRequest(t, "/api/v1/session/file", "talk.mp3", "audio/mpeg", []byte("too many bytes"), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Contains(t, env.Message, "File is too large")

	assert.False(t, fx.snapshot(t).HasFile())
}

func TestSubmitWithoutFile(t *testing.T) {
	fx := newFixture(t, false)
	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No file selected", env.Message)
}

func TestSubmitAndExportCaptions(t *testing.T) {
	fx := newFixture(t, true)
	fx.selectFile(t)

	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	require.Equal(t, http.StatusAccepted, code, env.Message)
	var accepted RunAccepted
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	assert.Equal(t, "transcription", accepted.Kind)
	require.NotNil(t, accepted.DBJobID)
	assert.Equal(t, 1, fx.store.created)

	snap := fx.snapshot(t)
	assert.Equal(t, session.StatusComplete, snap.Status)
	assert.Equal(t, "Hello there.\nSecond line.", snap.Transcript)

	resp, body := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/captions.srt", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/srt", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "talk.srt")
	assert.True(t, strings.HasPrefix(string(body), "1\n00:00:00,000 --> "), string(body))
	assert.Contains(t, string(body), "Second line.")

	code, env = fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/captions", nil))
	require.Equal(t, http.StatusOK, code)
	var cues []models.Caption
	require.NoError(t, json.Unmarshal(env.Data, &cues))
	require.Len(t, cues, 2)
	assert.Equal(t, 2, cues[1].Index)
	assert.Equal(t, cues[0].EndTime, cues[1].StartTime)

	code, env = fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+accepted.DBJobID.String(), nil))
	require.Equal(t, http.StatusOK, code)
	var job models.ProcessingJob
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.Equal(t, db.JobCompleted, job.Status)
}

func TestCaptionSections(t *testing.T) {
	fx := newFixture(t, false)

	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/captions.srt", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No transcript available", env.Message)

	fx.fns.transcript = translatedTranscript
	fx.selectFile(t)
	code, _ = fx.doJSON(t, jsonRequest(http.MethodPatch, "/api/v1/session/options", `{"targetLanguage":"English"}`))
	require.Equal(t, http.StatusOK, code)
	code, _ = fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	require.Equal(t, http.StatusAccepted, code)

	resp, body := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/captions.srt?section=translation", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Hello everyone.")
	assert.NotContains(t, string(body), "Hallo")

	_, body = fx.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/captions.srt?section=original", nil))
	assert.Contains(t, string(body), "Hallo zusammen.")
	assert.NotContains(t, string(body), "ORIGINAL TRANSCRIPTION")

	code, _ = fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/captions.srt?section=summary", nil))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestVoiceoverFlow(t *testing.T) {
	fx := newFixture(t, false)

	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/voiceover", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "No transcript available")

	fx.selectFile(t)
	code, _ = fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	require.Equal(t, http.StatusAccepted, code)

	code, env = fx.doJSON(t, jsonRequest(http.MethodPatch, "/api/v1/session/options", `{"emotion":"calm"}`))
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/voiceover", nil))
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, models.EmotionCalm, fx.fns.voiceEmo)

	resp, body := fx.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/session/voiceover.txt", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "voiceover-calm.txt")
	assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "(warmly) Hello there.\nSecond line.", string(body))
}

func TestUpdateOptionsRejectsUnknownValues(t *testing.T) {
	fx := newFixture(t, false)

	code, _ := fx.doJSON(t, jsonRequest(http.MethodPatch, "/api/v1/session/options", `{"targetLanguage":"Klingon"}`))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = fx.doJSON(t, jsonRequest(http.MethodPatch, "/api/v1/session/options", `{"emotion":"furious"}`))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = fx.doJSON(t, jsonRequest(http.MethodPatch, "/api/v1/session/options", `{not json`))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSubmitWhileBusy(t *testing.T) {
	fx := newFixture(t, false)
	fx.jobs.hold = true
	fx.selectFile(t)

	code, _ := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, session.StatusUploading, fx.snapshot(t).Status)

	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "A processing step is already running", env.Message)

	require.Len(t, fx.jobs.queued, 1)
	require.NoError(t, fx.jobs.queued[0].Execute(context.Background()))
	assert.Equal(t, session.StatusComplete, fx.snapshot(t).Status)
}

func TestSubmitQueueFullAbortsRun(t *testing.T) {
	fx := newFixture(t, false)
	fx.jobs.err = worker.ErrQueueFull
	fx.selectFile(t)

	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, busyMessage, env.Message)

	snap := fx.snapshot(t)
	assert.Equal(t, session.StatusError, snap.Status)
	assert.Equal(t, busyMessage, snap.Error)
	assert.True(t, snap.HasFile())
}

func TestSubmitQueueFullFailsJobRecord(t *testing.T) {
	fx := newFixture(t, true)
	fx.jobs.err = worker.ErrQueueFull
	fx.selectFile(t)

	code, _ := fx.doJSON(t, httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil))
	require.Equal(t, http.StatusServiceUnavailable, code)

	require.Equal(t, 1, fx.store.created)
	for _, job := range fx.store.jobs {
		assert.Equal(t, db.JobFailed, job.Status)
	}
}

func TestQueuedJobLogsRequestID(t *testing.T) {
	fx := newFixture(t, false)
	fx.jobs.hold = true
	hook := test.NewLocal(fx.h.Logger)
	fx.selectFile(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/submit", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	code, _ := fx.doJSON(t, req)
	require.Equal(t, http.StatusAccepted, code)

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Job queued" {
			found = true
			assert.Equal(t, "req-42", entry.Data["request_id"])
		}
	}
	assert.True(t, found)
}

func TestClearSession(t *testing.T) {
	fx := newFixture(t, false)
	fx.selectFile(t)
	before := fx.snapshot(t)

	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))
	require.Equal(t, http.StatusOK, code)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.False(t, snap.HasFile())
	assert.NotEqual(t, before.SessionID, snap.SessionID)
}

func TestTranscribeFunction(t *testing.T) {
	fx := newFixture(t, false)

	resp, body := fx.do(t, multipartRequest(t, "/functions/v1/transcribe", "", "", nil, map[string]string{"targetLanguage": "French"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No file provided"}`, string(body))

	resp, body = fx.do(t, multipartRequest(t, "/functions/v1/transcribe", "talk.wav", "audio/wav", []byte("RIFF"), map[string]string{"targetLanguage": "French"}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out models.TranscribeResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "talk.wav", out.FileName)
	assert.EqualValues(t, 4, out.FileSize)
	require.NotNil(t, out.TargetLanguage)
	assert.Equal(t, "French", *out.TargetLanguage)
}

func TestTranscribeFunctionError(t *testing.T) {
	fx := newFixture(t, false)
	fx.fns.err = &assistant.Error{Status: http.StatusInternalServerError, Message: "AI processing failed: 429", Err: errors.New("rate limited")}

	resp, body := fx.do(t, multipartRequest(t, "/functions/v1/transcribe", "talk.wav", "audio/wav", []byte("RIFF"), nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var fe models.FunctionError
	require.NoError(t, json.Unmarshal(body, &fe))
	assert.Equal(t, "AI processing failed: 429", fe.Error)
	assert.Equal(t, "Error: AI processing failed: 429: rate limited", fe.Details)
}

func TestVoiceoverFunction(t *testing.T) {
	fx := newFixture(t, false)

	resp, body := fx.do(t, jsonRequest(http.MethodPost, "/functions/v1/generate-voiceover", `{"text":"   "}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var fe models.FunctionError
	require.NoError(t, json.Unmarshal(body, &fe))
	assert.Equal(t, "No text provided", fe.Error)

	resp, body = fx.do(t, jsonRequest(http.MethodPost, "/functions/v1/generate-voiceover", `{"text":"Hi","emotion":"happy","language":"Spanish"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out models.VoiceoverResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "(warmly) Hi", out.VoiceoverScript)
	assert.Equal(t, "happy", out.Emotion)
	assert.Equal(t, "Spanish", out.Language)
}

func TestGetJobStatus(t *testing.T) {
	fx := newFixture(t, false)
	code, _ := fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)

	fx = newFixture(t, true)
	code, env := fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid job ID format", env.Message)

	code, _ = fx.doJSON(t, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSrtName(t *testing.T) {
	assert.Equal(t, "talk.srt", srtName("talk.mp4"))
	assert.Equal(t, "my.clip.srt", srtName("my.clip.mov"))
	assert.Equal(t, "transcription.srt", srtName(""))
}
