package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the session API under /api/v1 and the function endpoints under
// /functions/v1.
func (h *ApplicationHandler) RegisterRoutes(app fiber.Router) {
	apiV1 := app.Group("/api/v1")

	// Session routes
	sess := apiV1.Group("/session")
	sess.Get("", h.GetSession)
	sess.Delete("", h.ClearSession)
	sess.Post("/file", h.SelectFile)
	sess.Patch("/options", h.UpdateOptions)
	sess.Post("/submit", h.SubmitSession)
	sess.Post("/voiceover", h.RequestVoiceover)

	// Exports
	sess.Get("/captions", h.ListCaptions)
	sess.Get("/captions.srt", h.DownloadCaptions)
	sess.Get("/voiceover.txt", h.DownloadVoiceover)

	apiV1.Get("/jobs/:jobId", h.GetJobStatus)

	fns := app.Group("/functions/v1")
	fns.Post("/transcribe", h.TranscribeFunction)
	fns.Post("/generate-voiceover", h.VoiceoverFunction)
}
