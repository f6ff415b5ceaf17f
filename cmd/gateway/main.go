package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"verbatim/config"
	_ "verbatim/docs"
	"verbatim/handlers"
	"verbatim/internal/aiclient"
	"verbatim/internal/assistant"
	"verbatim/internal/db"
	"verbatim/internal/ffmpeg"
	"verbatim/internal/jobs"
	"verbatim/internal/metrics"
	"verbatim/internal/session"
	"verbatim/internal/worker"
	"verbatim/middleware"
	"verbatim/utils"
)

// @title Verbatim API
// @version 1.0
// @description Transcription, translation, caption export and voice-over scripts for uploaded audio and video.
// @BasePath /
func main() {
	cfgPath := os.Getenv("VERBATIM_CONFIG")
	if cfgPath == "" {
		cfgPath = "verbatim.toml"
	}
	settings, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := config.InitLogger(settings.Logging)
	if err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(registry)

	engine := ffmpeg.NewEngine(ffmpeg.Options{
		Binary:      settings.Media.FFmpegBinary,
		ScratchRoot: settings.Media.ScratchDir,
		Logger:      logger,
		Metrics:     rec,
	})
	extractor := ffmpeg.NewExtractor(engine, logger, rec)

	functions := assistant.New(assistant.Config{
		BaseURL:         settings.Model.BaseURL,
		APIKey:          settings.Model.APIKey,
		TranscribeModel: settings.Model.TranscribeModel,
		VoiceoverModel:  settings.Model.VoiceoverModel,
		CacheTTL:        settings.CacheTTL(),
	}, logger, rec)

	opts := session.Options{
		Preparer:    extractor,
		Transcriber: functions,
		Voiceover:   functions,
		MaxBytes:    settings.MaxUploadBytes(),
		Logger:      logger,
		Metrics:     rec,
	}
	if settings.RemoteFunctions() {
		remote := aiclient.NewAIClient(aiclient.Config{
			BaseURL: settings.Functions.BaseURL,
			APIKey:  settings.Functions.APIKey,
			Timeout: settings.FunctionsTimeout(),
		}, logger, rec)
		opts.Transcriber = remote
		opts.Voiceover = remote
		logger.WithField("base_url", settings.Functions.BaseURL).Info("Session pipeline uses remote functions")
	}

	var jobStore handlers.JobStore
	if supabaseClient, err := config.NewSupabaseClient(settings.Supabase); err == nil {
		store := db.NewStore(supabaseClient, logger)
		opts.History = store
		jobStore = store
		logger.Info("History persistence enabled")
	} else if errors.Is(err, config.ErrSupabaseNotConfigured) {
		logger.Info("Supabase not configured, history persistence disabled")
	} else {
		logger.Fatalf("Failed to initialize Supabase: %v", err)
	}

	orch := session.New(opts)

	workCtx, stopWork := context.WithCancel(context.Background())
	defer stopWork()
	dispatcher := worker.NewDispatcher(settings.Workers.Count, settings.Workers.QueueSize, logger)
	dispatcher.Run(workCtx)

	h := handlers.NewApplicationHandler(orch, functions, dispatcher, jobStore, logger)
	h.JobTimeout = settings.JobTimeout()
	h.MaxUploadBytes = settings.MaxUploadBytes()

	app := newApp(settings, h, engine, registry, logger)

	health := newHealthServer(logger)
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(logger))))
	if _, err := scheduler.AddFunc(settings.Media.SweepSchedule, func() {
		job := jobs.NewSweepScratchJob(engine, settings.ScratchMaxAge(), logger)
		if err := dispatcher.SubmitJob(job); err != nil {
			logger.WithError(err).Warn("Scratch sweep skipped")
		}
	}); err != nil {
		logger.Fatalf("Invalid sweep schedule %q: %v", settings.Media.SweepSchedule, err)
	}
	if _, err := scheduler.AddFunc("@every 30s", func() { health.reportEngine(engine.Ready()) }); err != nil {
		logger.Fatalf("Failed to schedule health refresh: %v", err)
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("Starting API Gateway on %s", settings.Server.Addr)
		errCh <- app.Listen(settings.Server.Addr)
	}()
	if settings.Server.GRPCAddr != "" {
		go func() {
			logger.Infof("Starting gRPC health service on %s", settings.Server.GRPCAddr)
			errCh <- health.serve(settings.Server.GRPCAddr)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server stopped unexpectedly")
		}
	}

	shutdown(settings.ShutdownTimeout(), logger, func() error {
		return app.ShutdownWithTimeout(settings.ShutdownTimeout())
	}, func() error {
		health.stop()
		<-scheduler.Stop().Done()
		dispatcher.Stop()
		stopWork()
		return engine.Close()
	})
	logger.Info("Gateway stopped")
}

func newApp(settings *config.Settings, h *handlers.ApplicationHandler, engine *ffmpeg.Engine, registry *prometheus.Registry, logger *logrus.Logger) *fiber.App {
	appCfg := fiber.Config{
		AppName: "verbatim",
		// Multipart framing needs headroom over the file limit; the gate enforces the real one.
		BodyLimit: int(settings.MaxUploadBytes() + 16<<20),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return utils.RespondWithError(c, code, err.Error())
		},
	}
	if len(settings.Server.TrustedProxies) > 0 {
		appCfg.EnableTrustedProxyCheck = true
		appCfg.TrustedProxies = settings.Server.TrustedProxies
		appCfg.ProxyHeader = fiber.HeaderXForwardedFor
	}
	app := fiber.New(appCfg)

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  settings.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		ExposeHeaders: "Content-Disposition, " + middleware.RequestIDHeader,
	}))
	app.Use(middleware.RequestLogger(logger))
	if settings.Server.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        settings.Server.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				// Polling the session and scraping metrics are not rate limited.
				return c.Method() == fiber.MethodGet
			},
			LimitReached: func(c *fiber.Ctx) error {
				return utils.RespondWithError(c, fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
			},
		}))
	}

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":         "ok",
			"message":        "API Gateway is healthy",
			"engine_ready":   engine.Ready(),
			"engine_version": engine.Version(),
			"history":        settings.HistoryEnabled(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	h.RegisterRoutes(app)
	return app
}

// shutdown runs each step in order, logging failures, within the overall timeout.
func shutdown(timeout time.Duration, logger *logrus.Logger, steps ...func() error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, step := range steps {
			if err := step(); err != nil {
				logger.WithError(err).Warn("Shutdown step failed")
			}
		}
	}()
	if timeout <= 0 {
		<-done
		return
	}
	select {
	case <-done:
	case <-time.After(timeout + 5*time.Second):
		logger.Warn("Shutdown timed out")
	}
}
