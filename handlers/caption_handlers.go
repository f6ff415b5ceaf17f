package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"verbatim/internal/captions"
	"verbatim/utils"
)

// CaptionListResponse is the JSON form of the caption cues.
type CaptionListResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// DownloadCaptions godoc
// @Summary Download captions as SRT
// @Description Builds SRT captions from the current transcript. Use section to pick the original or translated half of a translated transcript.
// @Tags exports
// @Produce plain
// @Param section query string false "original or translation"
// @Success 200 {string} string "SRT document"
// @Failure 400 {object} ErrorResponse "Unknown section"
// @Failure 404 {object} ErrorResponse "No transcript or empty section"
// @Router /api/v1/session/captions.srt [get]
func (h *ApplicationHandler) DownloadCaptions(c *fiber.Ctx) error {
	text, fileName, status, msg := h.captionSource(c)
	if status != 0 {
		return utils.RespondWithError(c, status, msg)
	}
	return utils.RespondWithAttachment(c, captions.ContentType, srtName(fileName), captions.FromTranscript(text))
}

// ListCaptions godoc
// @Summary List caption cues
// @Description Returns the timed caption cues of the current transcript as JSON.
// @Tags exports
// @Produce json
// @Param section query string false "original or translation"
// @Success 200 {object} CaptionListResponse
// @Failure 400 {object} ErrorResponse "Unknown section"
// @Failure 404 {object} ErrorResponse "No transcript or empty section"
// @Router /api/v1/session/captions [get]
func (h *ApplicationHandler) ListCaptions(c *fiber.Ctx) error {
	text, _, status, msg := h.captionSource(c)
	if status != 0 {
		return utils.RespondWithError(c, status, msg)
	}
	cues := captions.Models(captions.Entries(captions.Lines(text)))
	return utils.RespondWithJSON(c, fiber.StatusOK, cues)
}

// DownloadVoiceover godoc
// @Summary Download the voice-over script
// @Description Returns the generated voice-over script as a text file named after its emotion.
// @Tags exports
// @Produce plain
// @Success 200 {string} string "Voice-over script"
// @Failure 404 {object} ErrorResponse "No voice-over generated"
// @Router /api/v1/session/voiceover.txt [get]
func (h *ApplicationHandler) DownloadVoiceover(c *fiber.Ctx) error {
	snap := h.Session.Snapshot()
	if snap.Voiceover == nil || strings.TrimSpace(snap.Voiceover.Text) == "" {
		return utils.RespondWithError(c, fiber.StatusNotFound, "No voice-over script available")
	}
	name := "voiceover-" + string(snap.Voiceover.Emotion) + ".txt"
	return utils.RespondWithAttachment(c, fiber.MIMETextPlainCharsetUTF8, name, snap.Voiceover.Text)
}

// captionSource resolves the transcript text for the requested section. A non-zero status
// means the request cannot be served and msg explains why.
func (h *ApplicationHandler) captionSource(c *fiber.Ctx) (text, fileName string, status int, msg string) {
	section := strings.ToLower(utils.SanitizeInput(c.Query("section")))
	switch section {
	case "", "original", "translation":
	default:
		return "", "", fiber.StatusBadRequest, "section must be original or translation"
	}

	snap := h.Session.Snapshot()
	if strings.TrimSpace(snap.Transcript) == "" {
		return "", "", fiber.StatusNotFound, "No transcript available"
	}
	text = captions.Section(snap.Transcript, section)
	if strings.TrimSpace(text) == "" {
		return "", "", fiber.StatusNotFound, "The transcript has no " + section + " section"
	}
	return text, snap.FileName, 0, ""
}

// srtName names the caption file after the source media, e.g. talk.mp4 becomes talk.srt.
func srtName(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "transcription"
	}
	return base + ".srt"
}
