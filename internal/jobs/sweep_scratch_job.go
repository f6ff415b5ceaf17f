package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sweeper removes stale scratch files. *ffmpeg.Engine satisfies it.
type Sweeper interface {
	SweepScratch(olderThan time.Duration) (int, error)
}

// SweepScratchJob deletes engine scratch files left behind by interrupted runs.
type SweepScratchJob struct {
	JobID     string
	sweeper   Sweeper
	olderThan time.Duration
	log       *logrus.Entry
}

// NewSweepScratchJob creates a sweep for files older than olderThan.
func NewSweepScratchJob(sweeper Sweeper, olderThan time.Duration, logger *logrus.Logger) *SweepScratchJob {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id := "sweep-" + uuid.NewString()
	return &SweepScratchJob{
		JobID:     id,
		sweeper:   sweeper,
		olderThan: olderThan,
		log:       logger.WithField("job_id", id),
	}
}

// ID returns the unique identifier of the job.
func (j *SweepScratchJob) ID() string {
	return j.JobID
}

// Execute runs the sweep.
func (j *SweepScratchJob) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := j.sweeper.SweepScratch(j.olderThan)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.WithField("removed", n).Info("scratch files swept")
	}
	return nil
}
