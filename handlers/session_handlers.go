package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"verbatim/internal/db"
	"verbatim/internal/jobs"
	"verbatim/internal/session"
	"verbatim/middleware"
	"verbatim/models"
	"verbatim/utils"
)

// busyMessage is shown when the worker queue refuses a run.
const busyMessage = "Server is busy. Please try again."

// UpdateOptionsRequest changes the session's translation target and voice-over emotion.
// Omitted fields are left unchanged; an empty targetLanguage disables translation.
type UpdateOptionsRequest struct {
	TargetLanguage *string `json:"targetLanguage,omitempty"`
	Emotion        *string `json:"emotion,omitempty" validate:"omitempty,min=1"`
}

// RunAccepted is returned when a pipeline step has been queued.
type RunAccepted struct {
	JobID     string     `json:"job_id"`
	DBJobID   *uuid.UUID `json:"db_job_id,omitempty"`
	SessionID uuid.UUID  `json:"session_id"`
	Kind      string     `json:"kind"`
}

// RunAcceptedResponse wraps RunAccepted in the standard envelope.
type RunAcceptedResponse struct {
	Status string      `json:"status"`
	Data   RunAccepted `json:"data"`
}

// GetSession godoc
// @Summary Get the current session
// @Description Returns the active session: file, status, trail, transcript and voice-over.
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/v1/session [get]
func (h *ApplicationHandler) GetSession(c *fiber.Ctx) error {
	return utils.RespondWithJSON(c, fiber.StatusOK, h.Session.Snapshot())
}

// UpdateOptions godoc
// @Summary Update session options
// @Description Sets the target language for the next submission and the emotion for the next voice-over.
// @Tags session
// @Accept json
// @Produce json
// @Param options body UpdateOptionsRequest true "Options to change"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Unknown language or emotion"
// @Router /api/v1/session/options [patch]
func (h *ApplicationHandler) UpdateOptions(c *fiber.Ctx) error {
	req := new(UpdateOptionsRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse options JSON")
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid options",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	if req.TargetLanguage != nil {
		if err := h.Session.SetTargetLanguage(utils.SanitizeInput(*req.TargetLanguage)); err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
	}
	if req.Emotion != nil {
		if err := h.Session.SetEmotion(models.Emotion(utils.SanitizeInput(*req.Emotion))); err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, h.Session.Snapshot())
}

// SubmitSession godoc
// @Summary Transcribe the selected file
// @Description Queues extraction (for video) and transcription of the selected file. Poll GET /session for progress.
// @Tags session
// @Produce json
// @Success 202 {object} RunAcceptedResponse "Transcription queued"
// @Failure 400 {object} ErrorResponse "No file selected"
// @Failure 409 {object} ErrorResponse "A step is already running"
// @Failure 503 {object} ErrorResponse "Job queue is full"
// @Router /api/v1/session/submit [post]
func (h *ApplicationHandler) SubmitSession(c *fiber.Ctx) error {
	run, err := h.Session.BeginSubmit()
	if err != nil {
		return respondAdmission(c, err)
	}
	return h.enqueue(c, run)
}

// RequestVoiceover godoc
// @Summary Generate a voice-over script
// @Description Queues a voice-over script for the current transcript using the session emotion.
// @Tags session
// @Produce json
// @Success 202 {object} RunAcceptedResponse "Voice-over queued"
// @Failure 400 {object} ErrorResponse "No transcript available"
// @Failure 409 {object} ErrorResponse "A step is already running"
// @Failure 503 {object} ErrorResponse "Job queue is full"
// @Router /api/v1/session/voiceover [post]
func (h *ApplicationHandler) RequestVoiceover(c *fiber.Ctx) error {
	run, err := h.Session.BeginVoiceover()
	if err != nil {
		return respondAdmission(c, err)
	}
	return h.enqueue(c, run)
}

// ClearSession godoc
// @Summary Clear the session
// @Description Discards the file, transcript and voice-over. Language and emotion are kept.
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/v1/session [delete]
func (h *ApplicationHandler) ClearSession(c *fiber.Ctx) error {
	snap := h.Session.Clear()
	h.Logger.WithField("session_id", snap.SessionID).Info("Session cleared")
	return utils.RespondWithJSON(c, fiber.StatusOK, snap)
}

// enqueue hands an admitted run to the worker pool. A refused run is aborted so the
// session does not stay busy forever.
func (h *ApplicationHandler) enqueue(c *fiber.Ctx, run *session.Run) error {
	job := jobs.NewPipelineJob(run, h.tracker(), h.JobTimeout, h.Logger)
	log := h.Logger.WithFields(logrus.Fields{
		"job_id":     job.ID(),
		"session_id": run.SessionID(),
		"job_type":   job.Type(),
		"request_id": middleware.RequestID(c),
	})

	accepted := RunAccepted{JobID: job.ID(), SessionID: run.SessionID(), Kind: job.Type()}
	if h.JobStore != nil {
		row, err := h.JobStore.CreateJob(context.WithoutCancel(c.UserContext()), job.Type(), run.SessionID())
		if err != nil {
			log.WithError(err).Warn("Could not create job record, continuing untracked")
		} else {
			job.SetDBJobID(row.ID)
			accepted.DBJobID = &row.ID
		}
	}

	if err := h.Jobs.SubmitJob(job); err != nil {
		log.WithError(err).Error("Failed to queue job")
		if accepted.DBJobID != nil {
			if uerr := h.JobStore.UpdateJobStatus(context.WithoutCancel(c.UserContext()), *accepted.DBJobID, db.JobFailed, busyMessage); uerr != nil {
				log.WithError(uerr).Warn("Could not mark refused job as failed")
			}
		}
		run.Abort(busyMessage)
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, busyMessage)
	}

	log.Info("Job queued")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, accepted)
}

func respondAdmission(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrNoFile):
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No file selected")
	case errors.Is(err, session.ErrNoTranscript):
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No transcript available. Transcribe a file first.")
	case errors.Is(err, session.ErrBusy):
		return utils.RespondWithError(c, fiber.StatusConflict, "A processing step is already running")
	default:
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
}
