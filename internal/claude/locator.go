package claude

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrBinaryNotFound means no candidate path survived the validation probe.
var ErrBinaryNotFound = errors.New("claude binary not found")

// versionMarker must appear in `claude --version` output for a candidate
// to be accepted. Guards against an unrelated binary that happens to be
// named claude.
const versionMarker = "Claude Code"

// probeTimeout bounds the version probe for a single candidate.
const probeTimeout = 10 * time.Second

var semverPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Installation is the result of a synchronous version/installation check.
// A validated binary with no recognizable version string still counts as
// installed.
type Installation struct {
	Installed bool   `json:"is_installed"`
	Version   string `json:"version,omitempty"`
	RawOutput string `json:"raw_output"`
	Path      string `json:"path,omitempty"`
}

// Locator finds a working Claude CLI binary. An explicitly configured
// path is tried first, then `claude` on PATH, then a fixed list of
// conventional install locations. Every candidate is validated by an
// actual --version invocation; failing candidates are skipped, not fatal.
type Locator struct {
	preferred string
	logger    *slog.Logger

	// probe runs `path --version` and returns its combined output.
	// Overridable in tests.
	probe func(path string) (string, error)
}

// NewLocator creates a locator. preferred may be empty.
func NewLocator(preferred string, logger *slog.Logger) *Locator {
	return &Locator{
		preferred: preferred,
		logger:    logger,
		probe:     runVersionProbe,
	}
}

// Locate returns the first candidate that passes the validation probe,
// or ErrBinaryNotFound.
func (l *Locator) Locate() (string, error) {
	for _, candidate := range l.candidates() {
		out, err := l.probe(candidate)
		if err != nil {
			l.logger.Debug("candidate failed version probe",
				"path", candidate,
				"error", err)
			continue
		}
		if !strings.Contains(out, versionMarker) {
			l.logger.Debug("candidate output missing marker",
				"path", candidate)
			continue
		}
		return candidate, nil
	}
	return "", ErrBinaryNotFound
}

// CheckInstallation answers "is the CLI installed, and what version".
// Never returns an error: a missing binary yields Installed=false, and a
// validated binary with unparseable version output yields Installed=true
// with an empty Version.
func (l *Locator) CheckInstallation() Installation {
	path, err := l.Locate()
	if err != nil {
		return Installation{Installed: false}
	}

	out, err := l.probe(path)
	if err != nil {
		// Validated a moment ago but now failing; treat as not installed.
		l.logger.Warn("version probe failed after successful locate",
			"path", path,
			"error", err)
		return Installation{Installed: false, RawOutput: out}
	}

	return Installation{
		Installed: true,
		Version:   semverPattern.FindString(out),
		RawOutput: strings.TrimSpace(out),
		Path:      path,
	}
}

func (l *Locator) candidates() []string {
	var paths []string
	if l.preferred != "" {
		paths = append(paths, l.preferred)
	}
	if found, err := exec.LookPath("claude"); err == nil {
		paths = append(paths, found)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".claude", "local", "claude"),
			filepath.Join(home, ".local", "bin", "claude"),
			filepath.Join(home, ".npm-global", "bin", "claude"),
			filepath.Join(home, "bin", "claude"),
		)
	}
	paths = append(paths,
		"/usr/local/bin/claude",
		"/opt/homebrew/bin/claude",
	)
	return paths
}

func runVersionProbe(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("version probe failed: %w", err)
	}
	return string(out), nil
}
