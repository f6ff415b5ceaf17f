// Package session owns the single active upload session: file selection, the pipeline state
// machine, and the transcript and voice-over it produces.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"verbatim/internal/captions"
	"verbatim/internal/metrics"
	"verbatim/models"
)

var (
	ErrNoFile         = errors.New("no file selected")
	ErrNoTranscript   = errors.New("no transcript available for voice-over")
	ErrBusy           = errors.New("a processing step is already running")
	ErrStale          = errors.New("session was replaced before the result arrived")
	ErrUnknownLang    = errors.New("unsupported target language")
	ErrUnknownEmotion = errors.New("unsupported emotion")
)

// Preparer turns a selected file into something the transcriber accepts.
type Preparer interface {
	Prepare(ctx context.Context, f models.MediaFile) (models.MediaFile, bool, error)
}

// Transcriber produces a transcript, translated when targetLanguage is set.
type Transcriber interface {
	Transcribe(ctx context.Context, f models.MediaFile, targetLanguage string) (*models.TranscribeResponse, error)
}

// VoiceoverGenerator rewrites a transcript as a voice-over script.
type VoiceoverGenerator interface {
	GenerateVoiceover(ctx context.Context, text string, emotion models.Emotion, language string) (*models.VoiceoverResponse, error)
}

// HistoryRecorder persists finished results. Failures are logged and never reach the user.
type HistoryRecorder interface {
	RecordTranscription(ctx context.Context, m models.SourceMedia) error
	RecordVoiceover(ctx context.Context, v models.VoiceoverRecord) error
}

type userFacing interface {
	UserMessage() string
}

// Options configures an Orchestrator. Preparer, Transcriber and Voiceover are required.
type Options struct {
	Preparer    Preparer
	Transcriber Transcriber
	Voiceover   VoiceoverGenerator
	History     HistoryRecorder
	MaxBytes    int64
	Logger      *logrus.Logger
	Metrics     *metrics.Recorder
}

// Snapshot is a read-only view of the session, safe to serialize.
type Snapshot struct {
	SessionID      uuid.UUID                  `json:"session_id"`
	Status         Status                     `json:"status"`
	Trail          []Status                   `json:"trail"`
	FileName       string                     `json:"file_name,omitempty"`
	FileSize       int64                      `json:"file_size,omitempty"`
	ContentType    string                     `json:"content_type,omitempty"`
	AudioExtracted bool                       `json:"audio_extracted"`
	TargetLanguage string                     `json:"target_language,omitempty"`
	Emotion        models.Emotion             `json:"emotion"`
	Error          string                     `json:"error,omitempty"`
	Transcript     string                     `json:"transcript,omitempty"`
	Sections       *models.TranscriptSections `json:"sections,omitempty"`
	Voiceover      *models.VoiceoverScript    `json:"voiceover,omitempty"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// HasFile reports whether a file is selected.
func (s Snapshot) HasFile() bool {
	return s.FileName != ""
}

type uploadSession struct {
	id             uuid.UUID
	file           *models.MediaFile
	targetLanguage string
	emotion        models.Emotion
	status         Status
	trail          []Status
	message        string
	audioExtracted bool
	transcript     string
	voiceover      *models.VoiceoverScript
	updatedAt      time.Time
}

// Orchestrator serializes every change to the active session. Pipeline calls run outside
// the lock; their results are applied only if the session they started in is still current.
type Orchestrator struct {
	prep     Preparer
	tr       Transcriber
	vo       VoiceoverGenerator
	history  HistoryRecorder
	maxBytes int64
	log      *logrus.Entry
	metrics  *metrics.Recorder
	now      func() time.Time

	mu      sync.Mutex
	current *uploadSession
}

// New creates an Orchestrator with an empty idle session.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = MaxFileSize
	}
	o := &Orchestrator{
		prep:     opts.Preparer,
		tr:       opts.Transcriber,
		vo:       opts.Voiceover,
		history:  opts.History,
		maxBytes: maxBytes,
		log:      logger.WithField("component", "session"),
		metrics:  opts.Metrics,
		now:      time.Now,
	}
	o.current = o.fresh("", models.EmotionNeutral)
	return o
}

func (o *Orchestrator) fresh(lang string, emotion models.Emotion) *uploadSession {
	return &uploadSession{
		id:             uuid.New(),
		targetLanguage: lang,
		emotion:        emotion,
		status:         StatusIdle,
		trail:          []Status{StatusIdle},
		updatedAt:      o.now(),
	}
}

// Select validates f and, if accepted, makes it the active file. Any previous transcript,
// voice-over, or in-flight run is discarded. A rejected file leaves the session untouched.
func (o *Orchestrator) Select(f models.MediaFile) (Snapshot, error) {
	if err := Accept(f, o.maxBytes); err != nil {
		o.log.WithFields(logrus.Fields{"file": f.Name, "bytes": f.Size(), "content_type": f.ContentType}).
			WithError(err).Info("file rejected")
		return o.Snapshot(), err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.current
	if prev.status.Busy() {
		o.log.WithField("session_id", prev.id).Info("replacing session with a run in flight")
	}
	next := o.fresh(prev.targetLanguage, prev.emotion)
	file := f
	next.file = &file
	o.current = next
	o.log.WithFields(logrus.Fields{"session_id": next.id, "file": f.Name, "bytes": f.Size()}).Info("file selected")
	return o.snapshotLocked(), nil
}

// SetTargetLanguage sets the translation target. An empty name disables translation.
// The change applies to the next submission.
func (o *Orchestrator) SetTargetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if lang != "" && !models.IsTargetLanguage(lang) {
		return fmt.Errorf("%w: %q", ErrUnknownLang, lang)
	}
	o.mu.Lock()
	o.current.targetLanguage = lang
	o.current.updatedAt = o.now()
	o.mu.Unlock()
	return nil
}

// SetEmotion sets the voice-over emotion used by the next GenerateVoiceover.
func (o *Orchestrator) SetEmotion(e models.Emotion) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEmotion, e)
	}
	o.mu.Lock()
	o.current.emotion = e
	o.current.updatedAt = o.now()
	o.mu.Unlock()
	return nil
}

// RunKind names the work a Run performs.
type RunKind string

const (
	RunTranscription RunKind = "transcription"
	RunVoiceover     RunKind = "voiceover"
)

// Run is a pipeline step admitted by BeginSubmit or BeginVoiceover. Its inputs are captured
// at admission, so later option changes do not affect it.
type Run struct {
	o    *Orchestrator
	kind RunKind
	id   uuid.UUID

	file models.MediaFile
	lang string

	text     string
	emotion  models.Emotion
	language string
}

// SessionID is the session the run belongs to.
func (r *Run) SessionID() uuid.UUID { return r.id }

// Kind reports what the run does.
func (r *Run) Kind() RunKind { return r.kind }

// Execute performs the run. It returns ErrStale if the session was replaced or cleared
// before a result could be applied.
func (r *Run) Execute(ctx context.Context) error {
	if r.kind == RunVoiceover {
		return r.o.runVoiceover(ctx, r)
	}
	return r.o.runTranscription(ctx, r)
}

// Abort fails an admitted run that will never execute, such as one the job queue refused.
func (r *Run) Abort(message string) {
	log := r.o.log.WithFields(logrus.Fields{"session_id": r.id, "run": r.kind})
	_ = r.o.fail(r.id, abortError(message), log)
}

type abortError string

func (e abortError) Error() string       { return string(e) }
func (e abortError) UserMessage() string { return string(e) }

// Submit admits and executes a transcription, blocking until it finishes.
func (o *Orchestrator) Submit(ctx context.Context) error {
	run, err := o.BeginSubmit()
	if err != nil {
		return err
	}
	return run.Execute(ctx)
}

// BeginSubmit moves the session to uploading and returns the run that carries it through
// transcription. It fails with ErrNoFile or ErrBusy without changing state.
func (o *Orchestrator) BeginSubmit() (*Run, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.current
	if s.file == nil {
		return nil, ErrNoFile
	}
	if err := o.applyLocked(s, EventSubmit); err != nil {
		return nil, ErrBusy
	}
	s.message = ""
	s.transcript = ""
	s.voiceover = nil
	s.audioExtracted = false
	return &Run{o: o, kind: RunTranscription, id: s.id, file: *s.file, lang: s.targetLanguage}, nil
}

func (o *Orchestrator) runTranscription(ctx context.Context, r *Run) error {
	id, file, lang := r.id, r.file, r.lang
	log := o.log.WithFields(logrus.Fields{"session_id": id, "file": file.Name, "target_language": lang})
	log.Info("submission started")

	prepared, extracted, err := o.prep.Prepare(ctx, file)
	if err != nil {
		return o.fail(id, err, log)
	}
	if err := o.advance(id, EventDispatched, func(s *uploadSession) { s.audioExtracted = extracted }); err != nil {
		return err
	}

	resp, err := o.tr.Transcribe(ctx, prepared, lang)
	if err != nil {
		return o.fail(id, err, log)
	}

	store := func(s *uploadSession) { s.transcript = resp.Transcription }
	if lang == "" {
		if err := o.advance(id, EventTranscribed, store); err != nil {
			return err
		}
	} else {
		// Translation arrives with the transcription, so translating is passed straight through.
		if err := o.advance(id, EventTranscribedWithLanguage, store); err != nil {
			return err
		}
		if err := o.advance(id, EventTranslated, nil); err != nil {
			return err
		}
	}
	log.WithField("chars", len(resp.Transcription)).Info("transcription complete")

	if o.history != nil {
		rec := models.SourceMedia{
			ID:             uuid.New(),
			SessionID:      id,
			FileName:       file.Name,
			FileSize:       file.Size(),
			ContentType:    file.ContentType,
			AudioExtracted: extracted,
			Transcription:  resp.Transcription,
			CreatedAt:      o.now(),
		}
		if lang != "" {
			rec.TargetLanguage = &lang
		}
		if err := o.history.RecordTranscription(context.WithoutCancel(ctx), rec); err != nil {
			log.WithError(err).Warn("failed to record transcription history")
		}
	}
	return nil
}

// GenerateVoiceover admits and executes a voice-over, blocking until it finishes.
func (o *Orchestrator) GenerateVoiceover(ctx context.Context) error {
	run, err := o.BeginVoiceover()
	if err != nil {
		return err
	}
	return run.Execute(ctx)
}

// BeginVoiceover admits a voice-over for the current transcript in the selected emotion.
// It fails with ErrNoTranscript, without any network call or state change, when there is
// nothing to rewrite.
func (o *Orchestrator) BeginVoiceover() (*Run, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.current
	if strings.TrimSpace(s.transcript) == "" {
		return nil, ErrNoTranscript
	}
	if err := o.applyLocked(s, EventVoiceoverRequested); err != nil {
		return nil, ErrBusy
	}
	s.message = ""
	text, language := voiceoverInput(s.transcript, s.targetLanguage)
	return &Run{o: o, kind: RunVoiceover, id: s.id, text: text, emotion: s.emotion, language: language}, nil
}

// runVoiceover keeps the transcript when generation fails.
func (o *Orchestrator) runVoiceover(ctx context.Context, r *Run) error {
	id, emotion, language := r.id, r.emotion, r.language
	log := o.log.WithFields(logrus.Fields{"session_id": id, "emotion": emotion, "language": language})
	log.Info("voice-over requested")

	resp, err := o.vo.GenerateVoiceover(ctx, r.text, emotion, language)
	if err != nil {
		return o.fail(id, err, log)
	}

	script := &models.VoiceoverScript{Text: resp.VoiceoverScript, Emotion: emotion, Language: language}
	if err := o.advance(id, EventVoiceoverDone, func(s *uploadSession) { s.voiceover = script }); err != nil {
		return err
	}
	log.Info("voice-over complete")

	if o.history != nil {
		rec := models.VoiceoverRecord{
			ID:        uuid.New(),
			SessionID: id,
			Emotion:   string(emotion),
			Language:  language,
			Script:    script.Text,
			CreatedAt: o.now(),
		}
		if err := o.history.RecordVoiceover(context.WithoutCancel(ctx), rec); err != nil {
			log.WithError(err).Warn("failed to record voice-over history")
		}
	}
	return nil
}

// voiceoverInput picks the translated section when a translation was requested and present.
func voiceoverInput(transcript, targetLanguage string) (string, string) {
	if targetLanguage != "" {
		if sec := captions.SplitSections(transcript); sec.Translation != "" {
			return sec.Translation, targetLanguage
		}
	}
	return transcript, "English"
}

// Clear discards the file and all derived state. Language and emotion choices are kept.
func (o *Orchestrator) Clear() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.current
	if from := prev.status; from != StatusIdle {
		o.metrics.Transition(string(from), string(StatusIdle))
	}
	o.current = o.fresh(prev.targetLanguage, prev.emotion)
	o.log.WithField("session_id", prev.id).Info("session cleared")
	return o.snapshotLocked()
}

// Snapshot returns the current session state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// File returns a copy of the selected file, if any.
func (o *Orchestrator) File() (models.MediaFile, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current.file == nil {
		return models.MediaFile{}, false
	}
	return *o.current.file, true
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := o.current
	snap := Snapshot{
		SessionID:      s.id,
		Status:         s.status,
		Trail:          append([]Status(nil), s.trail...),
		AudioExtracted: s.audioExtracted,
		TargetLanguage: s.targetLanguage,
		Emotion:        s.emotion,
		Error:          s.message,
		Transcript:     s.transcript,
		UpdatedAt:      s.updatedAt,
	}
	if s.file != nil {
		snap.FileName = s.file.Name
		snap.FileSize = s.file.Size()
		snap.ContentType = s.file.ContentType
	}
	if s.transcript != "" {
		sec := captions.SplitSections(s.transcript)
		if sec.Translation != "" {
			snap.Sections = &sec
		}
	}
	if s.voiceover != nil {
		v := *s.voiceover
		snap.Voiceover = &v
	}
	return snap
}

func (o *Orchestrator) applyLocked(s *uploadSession, ev Event) error {
	next, err := Transition(s.status, ev)
	if err != nil {
		return err
	}
	o.metrics.Transition(string(s.status), string(next))
	o.log.WithFields(logrus.Fields{
		"session_id": s.id,
		"from":       s.status,
		"to":         next,
		"event":      ev.String(),
	}).Debug("status changed")
	s.status = next
	s.trail = append(s.trail, next)
	s.updatedAt = o.now()
	return nil
}

// advance applies ev to session id if it is still current.
func (o *Orchestrator) advance(id uuid.UUID, ev Event, mutate func(*uploadSession)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.current
	if s.id != id {
		o.log.WithFields(logrus.Fields{"session_id": id, "event": ev.String()}).Info("discarding stale result")
		return ErrStale
	}
	if mutate != nil {
		mutate(s)
	}
	return o.applyLocked(s, ev)
}

// fail moves session id to error with a user-facing message. The file and any transcript
// are kept so the user can retry. It returns cause, or ErrStale if the session moved on.
func (o *Orchestrator) fail(id uuid.UUID, cause error, log *logrus.Entry) error {
	msg := "Failed to process file"
	var uf userFacing
	if errors.As(cause, &uf) && uf.UserMessage() != "" {
		msg = uf.UserMessage()
	}
	log.WithError(cause).Error("processing failed")

	if err := o.advance(id, EventFailed, func(s *uploadSession) { s.message = msg }); err != nil {
		if errors.Is(err, ErrStale) {
			return err
		}
		return fmt.Errorf("record failure: %w", err)
	}
	return cause
}
