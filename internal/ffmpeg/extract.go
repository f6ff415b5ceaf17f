package ffmpeg

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"verbatim/internal/metrics"
	"verbatim/models"
)

// WAVContentType is the MIME type of extracted audio.
const WAVContentType = "audio/wav"

var videoExtensions = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
	"ogg":  true,
}

// IsVideoLike reports whether f must go through audio extraction before upload.
func IsVideoLike(f models.MediaFile) bool {
	if strings.HasPrefix(f.MediaType(), "video/") {
		return true
	}
	return videoExtensions[f.Ext()]
}

// Extractor turns video containers into mono 16 kHz 16-bit PCM WAV files.
type Extractor struct {
	engine  *Engine
	log     *logrus.Entry
	metrics *metrics.Recorder
}

// NewExtractor creates an extractor backed by engine.
func NewExtractor(engine *Engine, logger *logrus.Logger, rec *metrics.Recorder) *Extractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Extractor{
		engine:  engine,
		log:     logger.WithField("component", "extractor"),
		metrics: rec,
	}
}

// Prepare returns the file to upload: extracted WAV audio for video-like input, the
// original file otherwise. The boolean reports whether extraction ran.
func (x *Extractor) Prepare(ctx context.Context, f models.MediaFile) (models.MediaFile, bool, error) {
	if !IsVideoLike(f) {
		return f, false, nil
	}
	out, err := x.ExtractAudio(ctx, f)
	if err != nil {
		return models.MediaFile{}, true, err
	}
	return out, true, nil
}

// ExtractAudio strips video and writes the audio track as mono, 16000 Hz, pcm_s16le WAV.
// Scratch files are removed afterwards; a failed removal is logged and never returned.
func (x *Extractor) ExtractAudio(ctx context.Context, in models.MediaFile) (out models.MediaFile, err error) {
	start := time.Now()
	defer func() { x.metrics.Extraction(err, time.Since(start)) }()

	if err := x.engine.EnsureInitialized(ctx); err != nil {
		return models.MediaFile{}, err
	}

	token := x.engine.token()
	inputName := "input_" + token + "_" + SanitizeName(in.Name)
	outputName := "output_" + token + ".wav"
	defer x.discard(inputName, outputName)

	if err := x.engine.WriteFile(inputName, in.Data); err != nil {
		return models.MediaFile{}, &Error{Stage: "transcode", Message: "failed to stage input", Err: err}
	}

	entry := x.log.WithFields(logrus.Fields{"file": in.Name, "bytes": len(in.Data)})
	entry.Debug("extracting audio")
	if _, err := x.engine.Exec(ctx, buildExtractArgs(inputName, outputName)...); err != nil {
		entry.WithError(err).Error("audio extraction failed")
		return models.MediaFile{}, err
	}

	data, err := x.engine.ReadFile(outputName)
	if err != nil {
		return models.MediaFile{}, &Error{Stage: "read", Message: "ffmpeg completed but output is unreadable", Err: err}
	}
	if len(data) == 0 {
		return models.MediaFile{}, &Error{Stage: "read", Message: "ffmpeg produced an empty audio file"}
	}

	entry.WithFields(logrus.Fields{"wav_bytes": len(data), "took": time.Since(start).String()}).Info("audio extracted")
	return models.MediaFile{
		Name:        WAVName(in.Name),
		ContentType: WAVContentType,
		Data:        data,
	}, nil
}

func (x *Extractor) discard(names ...string) {
	for _, name := range names {
		if err := x.engine.DeleteFile(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			x.log.WithError(err).WithField("file", name).Warn("scratch cleanup failed")
		}
	}
}

// buildExtractArgs drops video and downmixes to mono 16 kHz signed 16-bit little-endian PCM.
func buildExtractArgs(inputName, outputName string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputName,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-acodec", "pcm_s16le",
		outputName,
	}
}

// SanitizeName keeps ASCII letters, digits, dot, dash and underscore and replaces every
// other character with an underscore.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// WAVName replaces the final extension of name with .wav, falling back to audio.wav.
func WAVName(name string) string {
	base := name
	if i := strings.LastIndexByte(base, '.'); i >= 0 && i < len(base)-1 && !strings.ContainsRune(base[i+1:], '/') {
		base = base[:i]
	}
	if base == "" {
		base = "audio"
	}
	return base + ".wav"
}
