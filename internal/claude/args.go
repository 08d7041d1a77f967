// Package claude knows how to find the Claude Code CLI and how to invoke
// it in stream-json mode.
package claude

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a request rejected before any process is spawned.
var ErrInvalidRequest = errors.New("invalid execution request")

// Mode selects how a new execution relates to prior conversation state.
type Mode string

const (
	// ModeFresh starts a brand new conversation.
	ModeFresh Mode = "fresh"
	// ModeContinue continues the most recent conversation in the project.
	ModeContinue Mode = "continue"
	// ModeResume resumes a specific prior session by id.
	ModeResume Mode = "resume"
)

// Request describes one execution of the CLI. Immutable once submitted.
type Request struct {
	Prompt    string
	Model     string
	WorkDir   string
	Mode      Mode
	SessionID string // required for ModeResume, ignored otherwise
}

// Validate rejects requests that must never reach a spawn attempt.
func (r Request) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	}
	switch r.Mode {
	case ModeFresh, ModeContinue:
	case ModeResume:
		if r.SessionID == "" {
			return fmt.Errorf("%w: resume requires a session id", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}
	return nil
}

// BuildArgs produces the exact argument vector for a request. Pure; the
// stream-json output format is a fixed protocol choice, not a caller knob.
func BuildArgs(r Request) ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var args []string
	switch r.Mode {
	case ModeContinue:
		args = append(args, "-c")
	case ModeResume:
		args = append(args, "--resume", r.SessionID)
	}

	args = append(args,
		"-p", r.Prompt,
		"--model", r.Model,
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
	)

	return args, nil
}
