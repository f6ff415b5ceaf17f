// Package docs holds the OpenAPI description served at /swagger. Regenerate with
// `swag init -g cmd/gateway/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/jobs/{jobId}": {
            "get": {
                "description": "Returns the status of a transcription or voice-over job recorded in the history store.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get a tracked job",
                "parameters": [
                    {"type": "string", "description": "Job ID (UUID)", "name": "jobId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ProcessingJob"}},
                    "400": {"description": "Invalid job ID", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Job not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Job tracking disabled", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session": {
            "get": {
                "description": "Returns the active session: file, status, trail, transcript and voice-over.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Get the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SessionResponse"}}
                }
            },
            "delete": {
                "description": "Discards the file, transcript and voice-over. Language and emotion are kept.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Clear the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SessionResponse"}}
                }
            }
        },
        "/api/v1/session/captions": {
            "get": {
                "description": "Returns the timed caption cues of the current transcript as JSON.",
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "List caption cues",
                "parameters": [
                    {"type": "string", "description": "original or translation", "name": "section", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CaptionListResponse"}},
                    "400": {"description": "Unknown section", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No transcript or empty section", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/captions.srt": {
            "get": {
                "description": "Builds SRT captions from the current transcript. Use section to pick the original or translated half of a translated transcript.",
                "produces": ["text/plain"],
                "tags": ["exports"],
                "summary": "Download captions as SRT",
                "parameters": [
                    {"type": "string", "description": "original or translation", "name": "section", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "SRT document", "schema": {"type": "string"}},
                    "400": {"description": "Unknown section", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "No transcript or empty section", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/file": {
            "post": {
                "description": "Validates the uploaded audio or video file and makes it the active file of the session. Any previous transcript or voice-over is discarded.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Select the file to transcribe",
                "parameters": [
                    {"type": "file", "description": "Audio or video file (max 500 MB)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "File selected", "schema": {"$ref": "#/definitions/handlers.SessionResponse"}},
                    "400": {"description": "Missing file or unsupported type", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/options": {
            "patch": {
                "description": "Sets the target language for the next submission and the emotion for the next voice-over.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Update session options",
                "parameters": [
                    {"description": "Options to change", "name": "options", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateOptionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SessionResponse"}},
                    "400": {"description": "Unknown language or emotion", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/submit": {
            "post": {
                "description": "Queues extraction (for video) and transcription of the selected file. Poll GET /session for progress.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Transcribe the selected file",
                "responses": {
                    "202": {"description": "Transcription queued", "schema": {"$ref": "#/definitions/handlers.RunAcceptedResponse"}},
                    "400": {"description": "No file selected", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "A step is already running", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Job queue is full", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/voiceover": {
            "post": {
                "description": "Queues a voice-over script for the current transcript using the session emotion.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Generate a voice-over script",
                "responses": {
                    "202": {"description": "Voice-over queued", "schema": {"$ref": "#/definitions/handlers.RunAcceptedResponse"}},
                    "400": {"description": "No transcript available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "A step is already running", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Job queue is full", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session/voiceover.txt": {
            "get": {
                "description": "Returns the generated voice-over script as a text file named after its emotion.",
                "produces": ["text/plain"],
                "tags": ["exports"],
                "summary": "Download the voice-over script",
                "responses": {
                    "200": {"description": "Voice-over script", "schema": {"type": "string"}},
                    "404": {"description": "No voice-over generated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/functions/v1/generate-voiceover": {
            "post": {
                "description": "Rewrites text as a voice-over script in the requested emotion and language. Emotion defaults to neutral and language to English.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["functions"],
                "summary": "Generate a voice-over script",
                "parameters": [
                    {"description": "Text, emotion and language", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.VoiceoverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.VoiceoverResponse"}},
                    "400": {"description": "No text provided", "schema": {"$ref": "#/definitions/models.FunctionError"}},
                    "500": {"description": "Model or configuration failure", "schema": {"$ref": "#/definitions/models.FunctionError"}}
                }
            }
        },
        "/functions/v1/transcribe": {
            "post": {
                "description": "Sends the file to the hosted model and returns a verbatim transcription, followed by a translation when targetLanguage is given.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["functions"],
                "summary": "Transcribe an audio or video file",
                "parameters": [
                    {"type": "file", "description": "Audio or video file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Language to translate into", "name": "targetLanguage", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TranscribeResponse"}},
                    "400": {"description": "No file provided", "schema": {"$ref": "#/definitions/models.FunctionError"}},
                    "500": {"description": "Model or configuration failure", "schema": {"$ref": "#/definitions/models.FunctionError"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CaptionListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Caption"}},
                "status": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handlers.RunAccepted": {
            "type": "object",
            "properties": {
                "db_job_id": {"type": "string"},
                "job_id": {"type": "string"},
                "kind": {"type": "string"},
                "session_id": {"type": "string"}
            }
        },
        "handlers.RunAcceptedResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/handlers.RunAccepted"},
                "status": {"type": "string"}
            }
        },
        "handlers.SessionResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/session.Snapshot"},
                "status": {"type": "string"}
            }
        },
        "handlers.UpdateOptionsRequest": {
            "type": "object",
            "properties": {
                "emotion": {"type": "string"},
                "targetLanguage": {"type": "string"}
            }
        },
        "models.Caption": {
            "type": "object",
            "properties": {
                "end_time": {"type": "number"},
                "index": {"type": "integer"},
                "start_time": {"type": "number"},
                "text": {"type": "string"}
            }
        },
        "models.FunctionError": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.ProcessingJob": {
            "type": "object",
            "properties": {
                "completed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "error_message": {"type": "string"},
                "id": {"type": "string"},
                "job_type": {"type": "string"},
                "session_id": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "models.TranscribeResponse": {
            "type": "object",
            "properties": {
                "fileName": {"type": "string"},
                "fileSize": {"type": "integer"},
                "success": {"type": "boolean"},
                "targetLanguage": {"type": "string"},
                "transcription": {"type": "string"}
            }
        },
        "models.TranscriptSections": {
            "type": "object",
            "properties": {
                "language": {"type": "string"},
                "original": {"type": "string"},
                "translation": {"type": "string"}
            }
        },
        "models.VoiceoverRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "emotion": {"type": "string"},
                "language": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "models.VoiceoverResponse": {
            "type": "object",
            "properties": {
                "emotion": {"type": "string"},
                "emotionDescription": {"type": "string"},
                "language": {"type": "string"},
                "originalText": {"type": "string"},
                "success": {"type": "boolean"},
                "voiceoverScript": {"type": "string"}
            }
        },
        "models.VoiceoverScript": {
            "type": "object",
            "properties": {
                "emotion": {"type": "string"},
                "language": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "session.Snapshot": {
            "type": "object",
            "properties": {
                "audio_extracted": {"type": "boolean"},
                "content_type": {"type": "string"},
                "emotion": {"type": "string"},
                "error": {"type": "string"},
                "file_name": {"type": "string"},
                "file_size": {"type": "integer"},
                "sections": {"$ref": "#/definitions/models.TranscriptSections"},
                "session_id": {"type": "string"},
                "status": {"type": "string"},
                "target_language": {"type": "string"},
                "trail": {"type": "array", "items": {"type": "string"}},
                "transcript": {"type": "string"},
                "updated_at": {"type": "string"},
                "voiceover": {"$ref": "#/definitions/models.VoiceoverScript"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Verbatim API",
	Description:      "Transcription, translation, caption export and voice-over scripts for uploaded audio and video.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
