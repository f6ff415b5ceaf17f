package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"verbatim/internal/jobs"
	"verbatim/internal/session"
	"verbatim/internal/worker"
	"verbatim/models"
)

// FunctionService serves the transcribe and generate-voiceover endpoints.
// The concrete implementation is provided by the assistant package.
type FunctionService interface {
	Transcribe(ctx context.Context, f models.MediaFile, targetLanguage string) (*models.TranscribeResponse, error)
	Voiceover(ctx context.Context, req models.VoiceoverRequest) (*models.VoiceoverResponse, error)
}

// JobSubmitter queues background work. *worker.Dispatcher satisfies it.
type JobSubmitter interface {
	SubmitJob(job worker.Job) error
}

// JobStore reads tracked job rows. *db.Store satisfies it.
type JobStore interface {
	jobs.Tracker
	GetJob(ctx context.Context, jobID uuid.UUID) (models.ProcessingJob, error)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Session        *session.Orchestrator
	Functions      FunctionService
	Jobs           JobSubmitter
	JobStore       JobStore // nil when history is disabled
	Logger         *logrus.Logger
	JobTimeout     time.Duration
	MaxUploadBytes int64
	validate       *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(orch *session.Orchestrator, fns FunctionService, submitter JobSubmitter, store JobStore, logger *logrus.Logger) *ApplicationHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ApplicationHandler{
		Session:        orch,
		Functions:      fns,
		Jobs:           submitter,
		JobStore:       store,
		Logger:         logger,
		MaxUploadBytes: session.MaxFileSize,
		validate:       validator.New(),
	}
}

// tracker returns the job tracker, or nil so jobs skip tracking.
func (h *ApplicationHandler) tracker() jobs.Tracker {
	if h.JobStore == nil {
		return nil
	}
	return h.JobStore
}
