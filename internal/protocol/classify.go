package protocol

import (
	"encoding/json"
	"strings"
	"time"
)

// Classify routes one decoded stdout line. A line that parses as a JSON
// object becomes a KindMessage event with the session id and capture time
// injected into the record (the CLI knows neither); any other line is
// forwarded verbatim as KindRawOutput. Classify never fails: non-JSON
// output is an expected case, not an error.
func Classify(line, sessionID string, now time.Time) Event {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return rawOutput(line, sessionID, now)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return rawOutput(line, sessionID, now)
	}

	payload["session_id"] = sessionID
	payload["timestamp"] = now

	return Event{
		Kind:      KindMessage,
		SessionID: sessionID,
		Timestamp: now,
		Payload:   payload,
	}
}

func rawOutput(line, sessionID string, now time.Time) Event {
	return Event{
		Kind:      KindRawOutput,
		SessionID: sessionID,
		Timestamp: now,
		Line:      line,
	}
}
