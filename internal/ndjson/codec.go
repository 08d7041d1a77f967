package ndjson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// MaxLineSize is the maximum size of a single NDJSON record (256 KiB).
// A stream that produces a longer unterminated run is force-framed at this
// boundary so a misbehaving process cannot grow the carry buffer without
// bound.
const MaxLineSize = 256 * 1024

// Encoder writes NDJSON records to an output stream
type Encoder struct {
	writer *bufio.Writer
	logger *slog.Logger
}

// NewEncoder creates a new NDJSON encoder
func NewEncoder(w io.Writer, logger *slog.Logger) *Encoder {
	return &Encoder{
		writer: bufio.NewWriter(w),
		logger: logger,
	}
}

// Encode writes a value as a single JSON line
func (e *Encoder) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if len(data) > MaxLineSize {
		e.logger.Error("record exceeds size limit",
			"size", len(data),
			"limit", MaxLineSize)
		return fmt.Errorf("record size %d exceeds limit %d", len(data), MaxLineSize)
	}

	if _, err := e.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := e.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	// Flush immediately so tail -f style consumers see records in real time
	if err := e.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

// Framer splits a stream of arbitrary byte chunks into newline-delimited
// lines. Chunks may contain zero, one, or many terminated lines, and may
// split a line across chunk boundaries; the unterminated tail is carried
// over to the next Push. Call Flush once the stream has ended to recover a
// final line that was never newline-terminated.
type Framer struct {
	carry bytes.Buffer
}

// NewFramer creates an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push appends a chunk and returns the complete lines it finished, in
// arrival order, without their line terminators. A carried tail that grows
// past MaxLineSize is emitted as-is and the buffer reset.
func (f *Framer) Push(chunk []byte) []string {
	f.carry.Write(chunk)

	var lines []string
	for {
		data := f.carry.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(data[:i]), "\r")
		f.carry.Next(i + 1)
		lines = append(lines, line)
	}

	if f.carry.Len() > MaxLineSize {
		lines = append(lines, f.carry.String())
		f.carry.Reset()
	}

	return lines
}

// Flush returns the carried tail, if any. The second return is false when
// the stream ended on a newline and there is nothing left to emit.
func (f *Framer) Flush() (string, bool) {
	if f.carry.Len() == 0 {
		return "", false
	}
	line := f.carry.String()
	f.carry.Reset()
	return line, true
}
