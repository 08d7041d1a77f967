// Package registry tracks every in-flight execution. It is the sole
// long-lived owner of the underlying OS process handles; collaborators
// get session ids and Info snapshots, never the process itself.
package registry

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrDuplicateSession means an insert was attempted for a session id that
// is still live.
var ErrDuplicateSession = errors.New("session already registered")

// Handle represents one live OS process. Created only after a spawn
// succeeded with a usable pid.
type Handle struct {
	SessionID   string
	PID         int
	StartedAt   time.Time
	WorkDir     string
	Model       string
	TaskSummary string

	// Cmd is owned collectively by the execution's pump goroutines; only
	// the exit-wait goroutine may finalize it.
	Cmd *exec.Cmd

	mu        sync.Mutex
	killTimer *time.Timer
	killDone  bool
}

// Info is the externally visible snapshot of a handle.
type Info struct {
	SessionID   string    `json:"session_id"`
	PID         int       `json:"pid"`
	StartedAt   time.Time `json:"started_at"`
	WorkDir     string    `json:"work_dir"`
	Model       string    `json:"model"`
	TaskSummary string    `json:"task_summary"`
}

// Info returns the query-surface snapshot for this handle.
func (h *Handle) Info() Info {
	return Info{
		SessionID:   h.SessionID,
		PID:         h.PID,
		StartedAt:   h.StartedAt,
		WorkDir:     h.WorkDir,
		Model:       h.Model,
		TaskSummary: h.TaskSummary,
	}
}

// Signal delivers sig to the process.
func (h *Handle) Signal(sig os.Signal) error {
	if h.Cmd == nil || h.Cmd.Process == nil {
		return fmt.Errorf("session %s has no process", h.SessionID)
	}
	return h.Cmd.Process.Signal(sig)
}

// Kill forcefully terminates the process.
func (h *Handle) Kill() error {
	if h.Cmd == nil || h.Cmd.Process == nil {
		return fmt.Errorf("session %s has no process", h.SessionID)
	}
	return h.Cmd.Process.Kill()
}

// ScheduleKill arms a one-shot forceful-kill timer. Returns false if a
// timer is already pending or the execution has already been finalized;
// a second cancellation therefore never stacks a second timer.
func (h *Handle) ScheduleKill(after time.Duration, kill func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.killDone || h.killTimer != nil {
		return false
	}
	h.killTimer = time.AfterFunc(after, kill)
	return true
}

// FinishKillTimer stops any pending forceful-kill timer and prevents new
// ones from being armed. Called exactly once, by the exit-wait goroutine,
// so a process id that the OS may reuse is never signalled late.
func (h *Handle) FinishKillTimer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.killDone = true
	if h.killTimer != nil {
		h.killTimer.Stop()
		h.killTimer = nil
	}
}

// Registry is a concurrency-safe directory of live executions keyed by
// session id.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
	}
}

// Insert registers a handle. At most one handle may exist per live
// session id; a second insert is rejected.
func (r *Registry) Insert(h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handles[h.SessionID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSession, h.SessionID)
	}
	r.handles[h.SessionID] = h
	return nil
}

// Get looks up a live execution.
func (r *Registry) Get(sessionID string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[sessionID]
	return h, ok
}

// List returns a snapshot of all live executions. Safe to iterate while
// the registry keeps changing.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]Info, 0, len(r.handles))
	for _, h := range r.handles {
		infos = append(infos, h.Info())
	}
	return infos
}

// Remove deregisters a session. Idempotent: removing an absent key is a
// no-op, which lets exit-driven and cancel-driven cleanup race harmlessly.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, sessionID)
}

// Len reports the number of live executions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
