package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Server holds the HTTP and gRPC listener settings.
type Server struct {
	Addr            string   `toml:"addr" validate:"required"`
	GRPCAddr        string   `toml:"grpc_addr"`
	CORSOrigins     string   `toml:"cors_origins"`
	RateLimit       int      `toml:"rate_limit" validate:"gte=0"`
	ShutdownSeconds int      `toml:"shutdown_seconds" validate:"gte=0"`
	TrustedProxies  []string `toml:"trusted_proxies"`
}

// Media holds the transcoding engine and upload settings.
type Media struct {
	FFmpegBinary      string `toml:"ffmpeg_binary" validate:"required"`
	ScratchDir        string `toml:"scratch_dir"`
	MaxUploadMB       int64  `toml:"max_upload_mb" validate:"gt=0"`
	ScratchMaxAgeMins int    `toml:"scratch_max_age_minutes" validate:"gt=0"`
	SweepSchedule     string `toml:"sweep_schedule" validate:"required"`
}

// Functions points the session pipeline at the transcribe and voice-over functions.
// An empty BaseURL runs them in-process.
type Functions struct {
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=0"`
}

// Model configures the hosted model behind the in-process functions.
type Model struct {
	BaseURL         string `toml:"base_url" validate:"omitempty,url"`
	APIKey          string `toml:"api_key"`
	TranscribeModel string `toml:"transcribe_model"`
	VoiceoverModel  string `toml:"voiceover_model"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes" validate:"gte=0"`
}

// Supabase enables history persistence when both fields are set.
type Supabase struct {
	URL        string `toml:"url" validate:"omitempty,url"`
	ServiceKey string `toml:"service_key"`
}

// Workers sizes the background job pool.
type Workers struct {
	Count         int `toml:"count" validate:"gte=1"`
	QueueSize     int `toml:"queue_size" validate:"gte=1"`
	JobTimeoutMin int `toml:"job_timeout_minutes" validate:"gte=0"`
}

// Logging controls the logrus logger.
type Logging struct {
	Level      string `toml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format     string `toml:"format" validate:"oneof=json text"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `toml:"max_age_days" validate:"gte=0"`
}

// Settings is the full service configuration.
type Settings struct {
	Server    Server    `toml:"server"`
	Media     Media     `toml:"media"`
	Functions Functions `toml:"functions"`
	Model     Model     `toml:"model"`
	Supabase  Supabase  `toml:"supabase"`
	Workers   Workers   `toml:"workers"`
	Logging   Logging   `toml:"logging"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Server: Server{
			Addr:            ":8080",
			GRPCAddr:        ":9090",
			CORSOrigins:     "*",
			RateLimit:       120,
			ShutdownSeconds: 30,
		},
		Media: Media{
			FFmpegBinary:      "ffmpeg",
			MaxUploadMB:       500,
			ScratchMaxAgeMins: 60,
			SweepSchedule:     "@every 15m",
		},
		Functions: Functions{
			TimeoutSeconds: 600,
		},
		Model: Model{
			BaseURL:         "https://ai.gateway.lovable.dev/v1",
			CacheTTLMinutes: 10,
		},
		Workers: Workers{
			Count:         2,
			QueueSize:     16,
			JobTimeoutMin: 15,
		},
		Logging: Logging{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

// Load reads settings from path when it exists, then applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Settings, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (s *Settings) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("VERBATIM_ADDR", &s.Server.Addr)
	str("VERBATIM_GRPC_ADDR", &s.Server.GRPCAddr)
	str("VERBATIM_CORS_ORIGINS", &s.Server.CORSOrigins)
	str("VERBATIM_FFMPEG", &s.Media.FFmpegBinary)
	str("VERBATIM_SCRATCH_DIR", &s.Media.ScratchDir)
	str("VERBATIM_FUNCTIONS_URL", &s.Functions.BaseURL)
	str("VERBATIM_FUNCTIONS_KEY", &s.Functions.APIKey)
	str("VERBATIM_MODEL_BASE_URL", &s.Model.BaseURL)
	str("AI_GATEWAY_API_KEY", &s.Model.APIKey)
	str("SUPABASE_URL", &s.Supabase.URL)
	str("SUPABASE_SERVICE_KEY", &s.Supabase.ServiceKey)
	str("VERBATIM_LOG_LEVEL", &s.Logging.Level)
	str("VERBATIM_LOG_FORMAT", &s.Logging.Format)
	str("VERBATIM_LOG_FILE", &s.Logging.File)

	if err := num("VERBATIM_WORKERS", &s.Workers.Count); err != nil {
		return err
	}
	if err := num("VERBATIM_RATE_LIMIT", &s.Server.RateLimit); err != nil {
		return err
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (s *Settings) MaxUploadBytes() int64 {
	return s.Media.MaxUploadMB << 20
}

// ScratchMaxAge is how old a scratch file must be before the sweeper removes it.
func (s *Settings) ScratchMaxAge() time.Duration {
	return time.Duration(s.Media.ScratchMaxAgeMins) * time.Minute
}

// FunctionsTimeout bounds each remote function call.
func (s *Settings) FunctionsTimeout() time.Duration {
	return time.Duration(s.Functions.TimeoutSeconds) * time.Second
}

// JobTimeout bounds each background job; zero means none.
func (s *Settings) JobTimeout() time.Duration {
	return time.Duration(s.Workers.JobTimeoutMin) * time.Minute
}

// ShutdownTimeout bounds graceful shutdown.
func (s *Settings) ShutdownTimeout() time.Duration {
	return time.Duration(s.Server.ShutdownSeconds) * time.Second
}

// CacheTTL is how long identical voice-over requests are served from cache.
func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.Model.CacheTTLMinutes) * time.Minute
}

// HistoryEnabled reports whether Supabase credentials are present.
func (s *Settings) HistoryEnabled() bool {
	return s.Supabase.URL != "" && s.Supabase.ServiceKey != ""
}

// RemoteFunctions reports whether the pipeline calls functions over HTTP.
func (s *Settings) RemoteFunctions() bool {
	return s.Functions.BaseURL != ""
}
