package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"verbatim/models"
)

const (
	transcriptionsTable = "transcriptions"
	voiceoverTable      = "voiceover_scripts"
	jobsTable           = "processing_jobs"
)

// Job statuses stored in processing_jobs.
const (
	JobPending    = "PENDING"
	JobProcessing = "PROCESSING"
	JobCompleted  = "COMPLETED"
	JobFailed     = "FAILED"
)

// ErrNotConfigured is returned when no client was supplied.
var ErrNotConfigured = errors.New("supabase client not initialized")

// ErrJobNotFound is returned by GetJob for an unknown id.
var ErrJobNotFound = errors.New("job not found")

// Querier is the table accessor shared by *postgrest.Client and *supabase.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// Store appends history rows and tracks background jobs.
type Store struct {
	q   Querier
	log *logrus.Entry
	now func() time.Time
}

// NewStore wraps q. A nil q yields a Store whose writes fail with ErrNotConfigured.
func NewStore(q Querier, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{q: q, log: logger.WithField("component", "db"), now: time.Now}
}

// NewPostgrestClient connects straight to a PostgREST endpoint under <url>/rest/v1.
func NewPostgrestClient(supabaseURL, key string) (*postgrest.Client, error) {
	if supabaseURL == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key must be set")
	}
	client := postgrest.NewClient(strings.TrimRight(supabaseURL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        key,
		"Authorization": fmt.Sprintf("Bearer %s", key),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("failed to initialize postgrest client: %w", client.ClientError)
	}
	return client, nil
}

// Enabled reports whether the store has a client.
func (s *Store) Enabled() bool {
	return s != nil && s.q != nil
}

// RecordTranscription appends a completed transcription.
func (s *Store) RecordTranscription(ctx context.Context, m models.SourceMedia) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if err := s.insert(ctx, transcriptionsTable, m); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"id": m.ID, "session_id": m.SessionID, "file": m.FileName}).Info("transcription recorded")
	return nil
}

// RecordVoiceover appends a generated voice-over script.
func (s *Store) RecordVoiceover(ctx context.Context, v models.VoiceoverRecord) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	if err := s.insert(ctx, voiceoverTable, v); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"id": v.ID, "session_id": v.SessionID, "emotion": v.Emotion}).Info("voice-over recorded")
	return nil
}

// CreateJob inserts a PENDING job row and returns it.
func (s *Store) CreateJob(ctx context.Context, jobType string, sessionID uuid.UUID) (models.ProcessingJob, error) {
	job := models.ProcessingJob{
		ID:        uuid.New(),
		JobType:   jobType,
		SessionID: sessionID,
		Status:    JobPending,
		CreatedAt: s.now(),
	}
	if err := s.insert(ctx, jobsTable, job); err != nil {
		return models.ProcessingJob{}, err
	}
	s.log.WithFields(logrus.Fields{"job_id": job.ID, "job_type": jobType}).Debug("job created")
	return job, nil
}

// UpdateJobStatus sets status and, for terminal states, completed_at. A non-empty
// errorMessage is stored alongside.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status, errorMessage string) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	update := map[string]interface{}{"status": status}
	if status == JobCompleted || status == JobFailed {
		update["completed_at"] = s.now()
	}
	if errorMessage != "" {
		update["error_message"] = errorMessage
	}

	var results []models.ProcessingJob
	if _, err := s.q.From(jobsTable).Update(update, "representation", "").Eq("id", jobID.String()).ExecuteTo(&results); err != nil {
		return fmt.Errorf("failed to update job %s: %w", jobID, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	s.log.WithFields(logrus.Fields{"job_id": jobID, "status": status}).Debug("job status updated")
	return nil
}

// GetJob fetches one job row by id.
func (s *Store) GetJob(ctx context.Context, jobID uuid.UUID) (models.ProcessingJob, error) {
	if !s.Enabled() {
		return models.ProcessingJob{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return models.ProcessingJob{}, err
	}
	var jobs []models.ProcessingJob
	if _, err := s.q.From(jobsTable).Select("*", "", false).Eq("id", jobID.String()).Limit(1, "").ExecuteTo(&jobs); err != nil {
		return models.ProcessingJob{}, fmt.Errorf("failed to fetch job %s: %w", jobID, err)
	}
	if len(jobs) == 0 {
		return models.ProcessingJob{}, ErrJobNotFound
	}
	return jobs[0], nil
}

func (s *Store) insert(ctx context.Context, table string, row interface{}) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var results []map[string]interface{}
	if _, err := s.q.From(table).Insert(row, false, "", "representation", "").ExecuteTo(&results); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no row returned after insert into %s", table)
	}
	return nil
}
