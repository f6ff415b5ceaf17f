package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"verbatim/config"
	"verbatim/internal/aiclient"
	"verbatim/internal/assistant"
	"verbatim/internal/ffmpeg"
	"verbatim/internal/session"
	"verbatim/models"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	settings   *config.Settings
	logger     *logrus.Logger
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

// ensureConfig loads settings once. Logs go to stderr so stdout carries only results.
func (c *commandContext) ensureConfig() (*config.Settings, *logrus.Logger, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		settings, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verbose == nil || !*c.verbose {
			settings.Logging.Level = "warn"
		}
		logger, err := config.InitLogger(settings.Logging)
		if err != nil {
			c.configErr = err
			return
		}
		logger.SetOutput(os.Stderr)
		c.settings, c.logger = settings, logger
	})
	return c.settings, c.logger, c.configErr
}

// pipeline is the set of collaborators a local run needs.
type pipeline struct {
	engine    *ffmpeg.Engine
	extractor *ffmpeg.Extractor
	orch      *session.Orchestrator
}

func (c *commandContext) newPipeline() (*pipeline, error) {
	settings, logger, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	engine := ffmpeg.NewEngine(ffmpeg.Options{
		Binary:      settings.Media.FFmpegBinary,
		ScratchRoot: settings.Media.ScratchDir,
		Logger:      logger,
	})
	extractor := ffmpeg.NewExtractor(engine, logger, nil)

	var transcriber session.Transcriber
	var voiceover session.VoiceoverGenerator
	if settings.RemoteFunctions() {
		remote := aiclient.NewAIClient(aiclient.Config{
			BaseURL: settings.Functions.BaseURL,
			APIKey:  settings.Functions.APIKey,
			Timeout: settings.FunctionsTimeout(),
		}, logger, nil)
		transcriber, voiceover = remote, remote
	} else {
		svc := assistant.New(assistant.Config{
			BaseURL:         settings.Model.BaseURL,
			APIKey:          settings.Model.APIKey,
			TranscribeModel: settings.Model.TranscribeModel,
			VoiceoverModel:  settings.Model.VoiceoverModel,
			CacheTTL:        settings.CacheTTL(),
		}, logger, nil)
		transcriber, voiceover = svc, svc
	}

	orch := session.New(session.Options{
		Preparer:    extractor,
		Transcriber: transcriber,
		Voiceover:   voiceover,
		MaxBytes:    settings.MaxUploadBytes(),
		Logger:      logger,
	})
	return &pipeline{engine: engine, extractor: extractor, orch: orch}, nil
}

// readMedia loads a local file. The content type is sniffed since there is no upload header.
func readMedia(path string) (models.MediaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.MediaFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return models.MediaFile{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func writeOutput(path, content string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
