// Package supervisor launches Claude CLI executions, pumps their output
// through the line framer and classifier, and tears them down without
// leaking processes.
package supervisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/claude"
	"github.com/agentdeck/agentdeck/internal/ndjson"
	"github.com/agentdeck/agentdeck/internal/protocol"
	"github.com/agentdeck/agentdeck/internal/registry"
)

// ErrLaunchFailed means the OS refused to spawn, or the spawned process
// had no usable pid. Nothing was registered.
var ErrLaunchFailed = errors.New("launch failed")

// DefaultKillGracePeriod is how long a cancelled execution gets to exit
// after the graceful signal before it is forcefully killed.
const DefaultKillGracePeriod = 5 * time.Second

// taskSummaryLimit bounds the prompt prefix kept for display.
const taskSummaryLimit = 80

const (
	eventBufferSize = 256
	readChunkSize   = 4096
)

// Supervisor owns the process lifecycle for every execution. One
// supervisor serves any number of concurrent executions; each execution
// runs three goroutines (stdout pump, stderr pump, exit wait) and only
// the exit-wait goroutine removes the execution from the registry.
type Supervisor struct {
	locator  *claude.Locator
	registry *registry.Registry
	logger   *slog.Logger
	grace    time.Duration

	events chan protocol.Event
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithKillGracePeriod overrides the delay between the graceful and the
// forceful termination signal.
func WithKillGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.grace = d
	}
}

// New creates a supervisor with its own empty registry.
func New(locator *claude.Locator, logger *slog.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		locator:  locator,
		registry: registry.New(),
		logger:   logger,
		grace:    DefaultKillGracePeriod,
		events:   make(chan protocol.Event, eventBufferSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the stream of events for all executions. Per-session
// order matches the byte order the process produced on each stream; no
// order holds across sessions. The channel is never closed.
func (s *Supervisor) Events() <-chan protocol.Event {
	return s.events
}

// Registry exposes the query surface over live executions.
func (s *Supervisor) Registry() *registry.Registry {
	return s.registry
}

// Launch starts one execution and returns its session id. Request
// validation, binary resolution, and spawning all fail synchronously;
// after a successful return, everything else arrives as events.
func (s *Supervisor) Launch(req claude.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	bin, err := s.locator.Locate()
	if err != nil {
		return "", err
	}

	args, err := claude.BuildArgs(req)
	if err != nil {
		return "", err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = req.WorkDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stdout pipe: %v", ErrLaunchFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return "", fmt.Errorf("%w: stderr pipe: %v", ErrLaunchFailed, err)
	}

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return "", fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	if cmd.Process == nil || cmd.Process.Pid <= 0 {
		stdout.Close()
		stderr.Close()
		return "", fmt.Errorf("%w: process has no pid", ErrLaunchFailed)
	}

	handle := &registry.Handle{
		SessionID:   sessionID,
		PID:         cmd.Process.Pid,
		StartedAt:   time.Now(),
		WorkDir:     req.WorkDir,
		Model:       req.Model,
		TaskSummary: summarize(req.Prompt),
		Cmd:         cmd,
	}

	if err := s.registry.Insert(handle); err != nil {
		// Spawned but unregistrable; reap it so nothing leaks.
		_ = cmd.Process.Kill()
		go func() { _ = cmd.Wait() }()
		return "", err
	}

	s.logger.Info("execution started",
		"session", sessionID,
		"pid", handle.PID,
		"model", req.Model,
		"mode", req.Mode,
		"dir", req.WorkDir)

	s.emit(protocol.Started(sessionID, time.Now()))

	var pumps sync.WaitGroup
	pumps.Add(2)
	go s.pumpStdout(handle, stdout, &pumps)
	go s.pumpStderr(handle, stderr, &pumps)
	go s.waitForExit(handle, &pumps)

	return sessionID, nil
}

// Cancel requests termination of a live execution. Returns false when no
// such execution exists, which is not an error. Fire-and-forget: the
// graceful signal is sent, a forceful kill is scheduled after the grace
// period, and registry cleanup still happens on the normal exit-wait
// path. Safe to call repeatedly.
func (s *Supervisor) Cancel(sessionID string) bool {
	handle, ok := s.registry.Get(sessionID)
	if !ok {
		return false
	}

	s.logger.Info("cancelling execution", "session", sessionID, "pid", handle.PID)

	if err := handle.Signal(syscall.SIGTERM); err != nil {
		// The exit-wait path is the source of truth for whether the
		// process is gone; the scheduled kill is the retry.
		s.logger.Warn("graceful signal failed",
			"session", sessionID,
			"error", err)
	}

	if handle.ScheduleKill(s.grace, func() {
		s.logger.Warn("grace period elapsed, killing",
			"session", sessionID,
			"pid", handle.PID)
		if err := handle.Kill(); err != nil {
			s.logger.Warn("forceful kill failed",
				"session", sessionID,
				"error", err)
		}
	}) {
		s.logger.Debug("forceful kill scheduled",
			"session", sessionID,
			"grace", s.grace)
	}

	return true
}

func (s *Supervisor) pumpStdout(h *registry.Handle, r io.Reader, pumps *sync.WaitGroup) {
	defer pumps.Done()

	framer := ndjson.NewFramer()
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range framer.Push(buf[:n]) {
				s.emit(protocol.Classify(line, h.SessionID, time.Now()))
			}
		}
		if err != nil {
			if tail, ok := framer.Flush(); ok {
				s.emit(protocol.Classify(tail, h.SessionID, time.Now()))
			}
			return
		}
	}
}

func (s *Supervisor) pumpStderr(h *registry.Handle, r io.Reader, pumps *sync.WaitGroup) {
	defer pumps.Done()

	// stderr is diagnostic, not protocol-bearing: forward each chunk as
	// read, without line framing.
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.emit(protocol.StreamError(h.SessionID, string(buf[:n]), time.Now()))
		}
		if err != nil {
			return
		}
	}
}

// waitForExit is the single place that finalizes an execution: it emits
// the terminal event and removes the handle from the registry.
func (s *Supervisor) waitForExit(h *registry.Handle, pumps *sync.WaitGroup) {
	// Wait would close the pipes out from under the pumps; let them
	// drain to EOF first. This also guarantees Exited is the last event.
	pumps.Wait()

	err := h.Cmd.Wait()
	h.FinishKillTimer()

	exitCode := -1
	if h.Cmd.ProcessState != nil {
		exitCode = h.Cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.logger.Info("execution exited", "session", h.SessionID, "code", exitCode)
	case errors.As(err, &exitErr):
		// Nonzero exit or signal death: an ordinary exit, not a runtime
		// process error.
		s.logger.Info("execution exited",
			"session", h.SessionID,
			"code", exitCode)
	default:
		s.logger.Warn("execution failed",
			"session", h.SessionID,
			"error", err)
		s.emit(protocol.StreamError(h.SessionID, err.Error(), time.Now()))
	}

	s.emit(protocol.Exited(h.SessionID, exitCode, time.Now()))
	s.registry.Remove(h.SessionID)
}

func (s *Supervisor) emit(ev protocol.Event) {
	// Blocking send: a slow collaborator backpressures the pumps (and
	// through them the pipe) instead of costing unbounded memory.
	s.events <- ev
}

func summarize(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= taskSummaryLimit {
		return prompt
	}
	return string(runes[:taskSummaryLimit]) + "..."
}
