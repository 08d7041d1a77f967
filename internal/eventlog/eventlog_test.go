package eventlog

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/internal/protocol"
)

func TestEventLogAppendsOneRecordPerEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := SessionPath(t.TempDir(), "sess-1")

	log, err := New(path, logger)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, log.Write(protocol.Started("sess-1", now)))
	require.NoError(t, log.Write(protocol.Classify(`{"type":"token"}`, "sess-1", now)))
	require.NoError(t, log.Write(protocol.Exited("sess-1", 0, now)))
	require.NoError(t, log.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var kinds []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		kinds = append(kinds, record["kind"].(string))
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"started", "message", "exited"}, kinds)
}

func TestEventLogCreatesMissingDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "nested", "dir", "sess-2.jsonl")

	log, err := New(path, logger)
	require.NoError(t, err)
	require.NoError(t, log.Write(protocol.Started("sess-2", time.Now())))
	require.NoError(t, log.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestEventLogAppendsAcrossReopens(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := SessionPath(t.TempDir(), "sess-3")

	first, err := New(path, logger)
	require.NoError(t, err)
	require.NoError(t, first.Write(protocol.Started("sess-3", time.Now())))
	require.NoError(t, first.Close())

	second, err := New(path, logger)
	require.NoError(t, err)
	require.NoError(t, second.Write(protocol.Exited("sess-3", 0, time.Now())))
	require.NoError(t, second.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"started"`)
	assert.Contains(t, string(data), `"exited"`)
}
