package protocol

import (
	"time"
)

// Kind discriminates the events emitted for a running execution
type Kind string

const (
	// KindStarted is emitted once, immediately after an execution is
	// registered and before any of its output.
	KindStarted Kind = "started"
	// KindMessage carries one structured record decoded from the CLI's
	// stream-json output.
	KindMessage Kind = "message"
	// KindRawOutput carries a stdout line that did not parse as a
	// structured record. Common and not a fault.
	KindRawOutput Kind = "raw_output"
	// KindStreamError carries diagnostic content from the process's
	// stderr, or a runtime process failure.
	KindStreamError Kind = "stream_error"
	// KindExited is the terminal event. Exactly one per execution,
	// always last.
	KindExited Kind = "exited"
)

// Event is one item on an execution's event stream. Events for a given
// session are delivered in the order the process produced the underlying
// bytes; no ordering holds across sessions or between the stdout and
// stderr pumps of one session.
type Event struct {
	Kind      Kind           `json:"kind"`
	SessionID string         `json:"session_id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"` // KindMessage
	Line      string         `json:"line,omitempty"`    // KindRawOutput
	Text      string         `json:"text,omitempty"`    // KindStreamError
	ExitCode  int            `json:"exit_code"`         // KindExited
}

// Started builds the registration event for a session.
func Started(sessionID string, now time.Time) Event {
	return Event{Kind: KindStarted, SessionID: sessionID, Timestamp: now}
}

// StreamError builds a stderr/runtime-failure event.
func StreamError(sessionID, text string, now time.Time) Event {
	return Event{Kind: KindStreamError, SessionID: sessionID, Text: text, Timestamp: now}
}

// Exited builds the terminal event for a session.
func Exited(sessionID string, exitCode int, now time.Time) Event {
	return Event{Kind: KindExited, SessionID: sessionID, ExitCode: exitCode, Timestamp: now}
}
