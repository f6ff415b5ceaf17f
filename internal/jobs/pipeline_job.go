package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"verbatim/internal/db"
	"verbatim/internal/session"
	"verbatim/models"
)

// Tracker records job progress. *db.Store satisfies it.
type Tracker interface {
	CreateJob(ctx context.Context, jobType string, sessionID uuid.UUID) (models.ProcessingJob, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status, errorMessage string) error
}

// PipelineJob runs an admitted session step (transcription or voice-over) on a worker.
type PipelineJob struct {
	JobID   string
	run     *session.Run
	tracker Tracker
	timeout time.Duration
	log     *logrus.Entry
	dbJobID uuid.UUID
}

// NewPipelineJob wraps run. tracker may be nil; timeout <= 0 means no deadline.
func NewPipelineJob(run *session.Run, tracker Tracker, timeout time.Duration, logger *logrus.Logger) *PipelineJob {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id := string(run.Kind()) + "-" + uuid.NewString()
	return &PipelineJob{
		JobID:   id,
		run:     run,
		tracker: tracker,
		timeout: timeout,
		log: logger.WithFields(logrus.Fields{
			"job_id":     id,
			"session_id": run.SessionID(),
			"job_type":   run.Kind(),
		}),
	}
}

// ID returns the unique identifier of the job.
func (j *PipelineJob) ID() string {
	return j.JobID
}

// Type returns the type of the job.
func (j *PipelineJob) Type() string {
	return string(j.run.Kind())
}

// SetDBJobID sets the database-specific job ID.
func (j *PipelineJob) SetDBJobID(id uuid.UUID) {
	j.dbJobID = id
}

// GetDBJobID returns the database-specific job ID.
func (j *PipelineJob) GetDBJobID() uuid.UUID {
	return j.dbJobID
}

// Execute runs the step. A result discarded because the session moved on is not an error.
func (j *PipelineJob) Execute(ctx context.Context) error {
	j.track(ctx, db.JobProcessing, "")

	runCtx := ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	err := j.run.Execute(runCtx)
	switch {
	case err == nil:
		j.track(ctx, db.JobCompleted, "")
		return nil
	case errors.Is(err, session.ErrStale):
		j.log.Info("result discarded, session replaced")
		j.track(ctx, db.JobCompleted, "discarded: session replaced")
		return nil
	default:
		j.track(ctx, db.JobFailed, err.Error())
		return err
	}
}

// track is best-effort; tracking failures never fail the job.
func (j *PipelineJob) track(ctx context.Context, status, message string) {
	if j.tracker == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if j.dbJobID == uuid.Nil {
		job, err := j.tracker.CreateJob(ctx, j.Type(), j.run.SessionID())
		if err != nil {
			j.log.WithError(err).Warn("failed to create job record")
			return
		}
		j.SetDBJobID(job.ID)
	}
	if err := j.tracker.UpdateJobStatus(ctx, j.dbJobID, status, message); err != nil {
		j.log.WithError(err).WithField("status", status).Warn("failed to update job record")
	}
}
