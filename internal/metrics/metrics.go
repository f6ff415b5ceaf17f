package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the pipeline collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	transitions      *prometheus.CounterVec
	extractions      *prometheus.CounterVec
	extractDuration  prometheus.Histogram
	remoteCalls      *prometheus.CounterVec
	remoteDuration   *prometheus.HistogramVec
	engineInits      *prometheus.CounterVec
	scratchSweptFile prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "verbatim",
				Name:      "session_transitions_total",
				Help:      "Session status transitions",
			},
			[]string{"from", "to"},
		),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "verbatim",
				Name:      "audio_extractions_total",
				Help:      "Audio extraction attempts by outcome",
			},
			[]string{"outcome"},
		),
		extractDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "verbatim",
				Name:      "audio_extraction_duration_seconds",
				Help:      "Wall time of ffmpeg audio extraction",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "verbatim",
				Name:      "remote_calls_total",
				Help:      "Outbound transcribe and voice-over calls by outcome",
			},
			[]string{"call", "outcome"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "verbatim",
				Name:      "remote_call_duration_seconds",
				Help:      "Outbound call latency",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"call"},
		),
		engineInits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "verbatim",
				Name:      "engine_initializations_total",
				Help:      "Transcoding engine initialization attempts by outcome",
			},
			[]string{"outcome"},
		),
		scratchSweptFile: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "verbatim",
				Name:      "scratch_files_swept_total",
				Help:      "Abandoned engine scratch files removed by the sweeper",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			r.transitions,
			r.extractions,
			r.extractDuration,
			r.remoteCalls,
			r.remoteDuration,
			r.engineInits,
			r.scratchSweptFile,
		)
	}
	return r
}

// Transition counts one status change.
func (r *Recorder) Transition(from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(from, to).Inc()
}

// Extraction records an audio extraction and how long it took.
func (r *Recorder) Extraction(err error, took time.Duration) {
	if r == nil {
		return
	}
	r.extractions.WithLabelValues(outcome(err)).Inc()
	r.extractDuration.Observe(took.Seconds())
}

// RemoteCall records one outbound call named call.
func (r *Recorder) RemoteCall(call string, err error, took time.Duration) {
	if r == nil {
		return
	}
	r.remoteCalls.WithLabelValues(call, outcome(err)).Inc()
	r.remoteDuration.WithLabelValues(call).Observe(took.Seconds())
}

// EngineInit records one engine initialization attempt.
func (r *Recorder) EngineInit(err error) {
	if r == nil {
		return
	}
	r.engineInits.WithLabelValues(outcome(err)).Inc()
}

// ScratchSwept adds n removed scratch files.
func (r *Recorder) ScratchSwept(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.scratchSweptFile.Add(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
