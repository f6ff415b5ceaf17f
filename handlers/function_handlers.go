package handlers

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"verbatim/internal/assistant"
	"verbatim/models"
	"verbatim/utils"
)

// TranscribeFunction godoc
// @Summary Transcribe an audio or video file
// @Description Sends the file to the hosted model and returns a verbatim transcription, followed by a translation when targetLanguage is given.
// @Tags functions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio or video file"
// @Param targetLanguage formData string false "Language to translate into"
// @Success 200 {object} models.TranscribeResponse
// @Failure 400 {object} models.FunctionError "No file provided"
// @Failure 500 {object} models.FunctionError "Model or configuration failure"
// @Router /functions/v1/transcribe [post]
func (h *ApplicationHandler) TranscribeFunction(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, "No file provided", "")
	}
	fh, err := header.Open()
	if err != nil {
		return utils.RespondWithFunctionError(c, fiber.StatusInternalServerError, "Could not read file", "Error: "+err.Error())
	}
	defer fh.Close()
	data, err := io.ReadAll(fh)
	if err != nil {
		return utils.RespondWithFunctionError(c, fiber.StatusInternalServerError, "Could not read file", "Error: "+err.Error())
	}

	f := models.MediaFile{
		Name:        header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}
	lang := utils.SanitizeInput(c.FormValue("targetLanguage"))

	resp, err := h.Functions.Transcribe(c.UserContext(), f, lang)
	if err != nil {
		return h.respondFunctionError(c, "transcribe", err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// VoiceoverFunction godoc
// @Summary Generate a voice-over script
// @Description Rewrites text as a voice-over script in the requested emotion and language. Emotion defaults to neutral and language to English.
// @Tags functions
// @Accept json
// @Produce json
// @Param request body models.VoiceoverRequest true "Text, emotion and language"
// @Success 200 {object} models.VoiceoverResponse
// @Failure 400 {object} models.FunctionError "No text provided"
// @Failure 500 {object} models.FunctionError "Model or configuration failure"
// @Router /functions/v1/generate-voiceover [post]
func (h *ApplicationHandler) VoiceoverFunction(c *fiber.Ctx) error {
	req := new(models.VoiceoverRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, "Invalid request body", "Error: "+err.Error())
	}
	req.Text = strings.TrimSpace(req.Text)
	req.Emotion = utils.SanitizeInput(req.Emotion)
	req.Language = utils.SanitizeInput(req.Language)
	if err := h.validate.Struct(req); err != nil {
		return utils.RespondWithFunctionError(c, fiber.StatusBadRequest, "No text provided",
			strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	resp, err := h.Functions.Voiceover(c.UserContext(), *req)
	if err != nil {
		return h.respondFunctionError(c, "generate-voiceover", err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *ApplicationHandler) respondFunctionError(c *fiber.Ctx, function string, err error) error {
	var aerr *assistant.Error
	if errors.As(err, &aerr) {
		if aerr.Status >= fiber.StatusInternalServerError {
			h.Logger.WithError(err).WithField("function", function).Error("Function failed")
		}
		return utils.RespondWithFunctionError(c, aerr.Status, aerr.UserMessage(), aerr.Details())
	}
	h.Logger.WithError(err).WithField("function", function).Error("Function failed")
	return utils.RespondWithFunctionError(c, fiber.StatusInternalServerError, "Internal server error", "Error: "+err.Error())
}
