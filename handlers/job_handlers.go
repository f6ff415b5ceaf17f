package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"verbatim/internal/db"
	"verbatim/utils"
)

// GetJobStatus godoc
// @Summary Get a tracked job
// @Description Returns the status of a transcription or voice-over job recorded in the history store.
// @Tags jobs
// @Produce json
// @Param jobId path string true "Job ID (UUID)"
// @Success 200 {object} models.ProcessingJob
// @Failure 400 {object} ErrorResponse "Invalid job ID"
// @Failure 404 {object} ErrorResponse "Job not found"
// @Failure 503 {object} ErrorResponse "Job tracking disabled"
// @Router /api/v1/jobs/{jobId} [get]
func (h *ApplicationHandler) GetJobStatus(c *fiber.Ctx) error {
	if h.JobStore == nil {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Job tracking is not enabled")
	}

	jobIDStr := c.Params("jobId")
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		h.Logger.Warnf("Invalid job ID format: %s", jobIDStr)
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	job, err := h.JobStore.GetJob(c.UserContext(), jobID)
	if errors.Is(err, db.ErrJobNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Error fetching job")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve job status")
	}

	h.Logger.WithField("job_id", jobID).Debugf("Retrieved job status: %s", job.Status)
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}
