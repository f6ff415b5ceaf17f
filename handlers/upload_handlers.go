package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"verbatim/internal/session"
	"verbatim/models"
	"verbatim/utils"
)

// SessionResponse wraps a session snapshot in the standard envelope.
type SessionResponse struct {
	Status string           `json:"status"`
	Data   session.Snapshot `json:"data"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SelectFile godoc
// @Summary Select the file to transcribe
// @Description Validates the uploaded audio or video file and makes it the active file of the session. Any previous transcript or voice-over is discarded.
// @Tags session
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio or video file (max 500 MB)"
// @Success 200 {object} SessionResponse "File selected"
// @Failure 400 {object} ErrorResponse "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponse "File too large"
// @Router /api/v1/session/file [post]
func (h *ApplicationHandler) SelectFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No file provided")
	}

	contentType := header.Header.Get(fiber.HeaderContentType)
	// Size and type are checked from the part header before the body is buffered.
	if err := session.Check(header.Filename, contentType, header.Size, h.MaxUploadBytes); err != nil {
		return h.respondValidation(c, err)
	}

	fh, err := header.Open()
	if err != nil {
		h.Logger.WithError(err).Error("Error opening uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read uploaded file")
	}
	defer fh.Close()

	data, err := io.ReadAll(fh)
	if err != nil {
		h.Logger.WithError(err).Error("Error reading uploaded file")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read uploaded file")
	}

	snap, err := h.Session.Select(models.MediaFile{Name: header.Filename, ContentType: contentType, Data: data})
	if err != nil {
		return h.respondValidation(c, err)
	}

	h.Logger.WithFields(logrus.Fields{
		"session_id": snap.SessionID,
		"file":       snap.FileName,
		"bytes":      snap.FileSize,
	}).Info("File selected for session")
	return utils.RespondWithJSON(c, fiber.StatusOK, snap)
}

func (h *ApplicationHandler) respondValidation(c *fiber.Ctx, err error) error {
	var verr *session.ValidationError
	if !errors.As(err, &verr) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	status := fiber.StatusBadRequest
	if verr.Reason == session.ReasonTooLarge {
		status = fiber.StatusRequestEntityTooLarge
	}
	return utils.RespondWithError(c, status, verr.UserMessage())
}
