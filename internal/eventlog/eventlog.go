package eventlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/agentdeck/agentdeck/internal/ndjson"
	"github.com/agentdeck/agentdeck/internal/protocol"
)

// EventLog appends stream events to an NDJSON transcript file, one
// record per event, mirroring the session transcripts the surrounding
// application keeps on disk.
type EventLog struct {
	file    *os.File
	encoder *ndjson.Encoder
	logger  *slog.Logger
	mu      sync.Mutex
}

// SessionPath returns the transcript path for a session under dir.
func SessionPath(dir, sessionID string) string {
	return filepath.Join(dir, sessionID+".jsonl")
}

// New opens (or creates) an event log for appending.
func New(logPath string, logger *slog.Logger) (*EventLog, error) {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &EventLog{
		file:    file,
		encoder: ndjson.NewEncoder(file, logger),
		logger:  logger,
	}, nil
}

// Write appends one event to the log
func (l *EventLog) Write(ev protocol.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.encoder.Encode(ev)
}

// Close closes the event log file
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
