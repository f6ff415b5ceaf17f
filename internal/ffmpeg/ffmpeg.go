package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"verbatim/internal/metrics"
)

// ErrNotInitialized is returned by file and exec operations before EnsureInitialized succeeded.
var ErrNotInitialized = errors.New("transcoding engine not initialized")

// ErrInvalidName is returned for scratch file names that would escape the engine workspace.
var ErrInvalidName = errors.New("invalid scratch file name")

// ErrClosed is returned to callers whose initialization was overtaken by Close.
var ErrClosed = errors.New("transcoding engine closed during initialization")

const probeTimeout = 15 * time.Second

// CommandLog captures one ffmpeg invocation.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stderr   string   `json:"stderr"`
}

// Error is a stage-aware engine failure with optional command context.
type Error struct {
	Stage      string
	Message    string
	CommandLog CommandLog
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.CommandLog.Command == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s (cmd=%s exit=%d)", e.Stage, e.Message, e.CommandLog.Command, e.CommandLog.ExitCode)
}

// UserMessage is the short text shown when audio preparation fails.
func (e *Error) UserMessage() string {
	return "Audio extraction failed: " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for tests.
type commandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// Options configures an Engine.
type Options struct {
	// Binary is the ffmpeg executable name or path. Defaults to "ffmpeg".
	Binary string
	// ScratchRoot is the parent directory of the engine workspace. Defaults to os.TempDir().
	ScratchRoot string
	Logger      *logrus.Logger
	Metrics     *metrics.Recorder
}

type engineState struct {
	path    string
	dir     string
	version string
}

// Engine is an owned handle on the ffmpeg binary and its private scratch workspace.
// The workspace plays the role of the engine's virtual filesystem: WriteFile, Exec,
// ReadFile and DeleteFile all address files by bare name inside it.
type Engine struct {
	binary      string
	scratchRoot string
	runner      commandRunner
	lookPath    func(file string) (string, error)
	now         func() time.Time
	log         *logrus.Entry
	metrics     *metrics.Recorder

	group    singleflight.Group
	mu       sync.RWMutex
	state    *engineState
	epoch    uint64 // bumped by Close; a load started in an older epoch is discarded
	loads    atomic.Int64
	lastTick atomic.Int64
}

// NewEngine returns an uninitialized engine. Nothing touches the system until EnsureInitialized.
func NewEngine(opts Options) *Engine {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		binary:      binary,
		scratchRoot: opts.ScratchRoot,
		runner:      execRunner{},
		lookPath:    exec.LookPath,
		now:         time.Now,
		log:         logger.WithField("component", "ffmpeg"),
		metrics:     opts.Metrics,
	}
}

// EnsureInitialized loads the engine on first use. Concurrent callers share one in-flight
// load; once a load succeeds every later call returns immediately. A failed load is not
// remembered, so the next call tries again.
func (e *Engine) EnsureInitialized(ctx context.Context) error {
	if e.current() != nil {
		return nil
	}

	ch := e.group.DoChan("load", func() (interface{}, error) {
		if st := e.current(); st != nil {
			return st, nil
		}
		e.mu.RLock()
		epoch := e.epoch
		e.mu.RUnlock()

		// The load outlives any single caller's cancellation since others may be waiting on it.
		st, err := e.load(context.WithoutCancel(ctx))
		e.metrics.EngineInit(err)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		if e.epoch != epoch {
			e.mu.Unlock()
			if rmErr := os.RemoveAll(st.dir); rmErr != nil {
				e.log.WithError(rmErr).WithField("scratch", st.dir).Warn("failed to remove abandoned scratch workspace")
			}
			return nil, ErrClosed
		}
		e.state = st
		e.mu.Unlock()
		return st, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the engine has been initialized.
func (e *Engine) Ready() bool {
	return e.current() != nil
}

// Loads returns how many initialization attempts actually ran.
func (e *Engine) Loads() int64 {
	return e.loads.Load()
}

// Version returns the first line of `ffmpeg -version` once initialized.
func (e *Engine) Version() string {
	if st := e.current(); st != nil {
		return st.version
	}
	return ""
}

func (e *Engine) current() *engineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) load(ctx context.Context) (*engineState, error) {
	e.loads.Add(1)

	path, err := e.lookPath(e.binary)
	if err != nil {
		return nil, &Error{Stage: "init", Message: fmt.Sprintf("ffmpeg binary %q not found", e.binary), Err: err}
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	args := []string{"-hide_banner", "-version"}
	res, err := e.runner.Run(probeCtx, "", path, args...)
	if err != nil {
		return nil, &Error{
			Stage:      "init",
			Message:    "ffmpeg version probe failed",
			CommandLog: CommandLog{Command: path, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr},
			Err:        err,
		}
	}

	dir, err := os.MkdirTemp(e.scratchRoot, "verbatim-ffmpeg-*")
	if err != nil {
		return nil, &Error{Stage: "init", Message: "failed to create scratch workspace", Err: err}
	}

	version := strings.TrimSpace(strings.SplitN(res.Stdout, "\n", 2)[0])
	e.log.WithFields(logrus.Fields{"path": path, "version": version, "scratch": dir}).Info("transcoding engine ready")
	return &engineState{path: path, dir: dir, version: version}, nil
}

// token returns a strictly increasing timestamp-derived value used to keep scratch names apart.
func (e *Engine) token() string {
	now := e.now().UnixNano()
	for {
		last := e.lastTick.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if e.lastTick.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

func (e *Engine) resolve(name string) (string, error) {
	st := e.current()
	if st == nil {
		return "", ErrNotInitialized
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(st.dir, name), nil
}

// WriteFile stores data under name in the scratch workspace.
func (e *Engine) WriteFile(name string, data []byte) error {
	path, err := e.resolve(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ReadFile returns the contents of a scratch file.
func (e *Engine) ReadFile(name string) ([]byte, error) {
	path, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// DeleteFile removes a scratch file.
func (e *Engine) DeleteFile(name string) error {
	path, err := e.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Exec runs ffmpeg with args inside the scratch workspace, so file arguments are bare names.
func (e *Engine) Exec(ctx context.Context, args ...string) (CommandLog, error) {
	st := e.current()
	if st == nil {
		return CommandLog{}, ErrNotInitialized
	}
	res, err := e.runner.Run(ctx, st.dir, st.path, args...)
	log := CommandLog{Command: st.path, Args: args, ExitCode: res.ExitCode, Stderr: res.Stderr}
	if err != nil {
		return log, &Error{Stage: "transcode", Message: "ffmpeg exited with an error", CommandLog: log, Err: err}
	}
	return log, nil
}

// SweepScratch removes workspace files last modified before now-olderThan and returns how
// many were removed. It is a no-op before initialization.
func (e *Engine) SweepScratch(olderThan time.Duration) (int, error) {
	st := e.current()
	if st == nil {
		return 0, nil
	}
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return 0, err
	}
	cutoff := e.now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(st.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.log.WithError(err).WithField("file", entry.Name()).Warn("scratch sweep could not remove file")
			continue
		}
		removed++
	}
	e.metrics.ScratchSwept(removed)
	return removed, nil
}

// Close removes the scratch workspace. A load still in flight is discarded when it
// finishes. The engine may be initialized again afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	st := e.state
	e.state = nil
	e.epoch++
	e.mu.Unlock()
	if st == nil {
		return nil
	}
	return os.RemoveAll(st.dir)
}
