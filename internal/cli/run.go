package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/claude"
	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/eventlog"
	"github.com/agentdeck/agentdeck/internal/protocol"
	"github.com/agentdeck/agentdeck/internal/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Launch one Claude execution and stream its events",
	Long: `Launch the Claude CLI with the given prompt and print every decoded
event as it arrives. Ctrl-C requests a graceful stop; the process is
killed if it has not exited within the configured grace period.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("model", "", "Model identifier (default: from config)")
	runCmd.Flags().String("dir", "", "Project working directory (default: current directory)")
	runCmd.Flags().BoolP("continue", "c", false, "Continue the most recent conversation")
	runCmd.Flags().String("resume", "", "Resume a specific session by id")
	runCmd.Flags().String("log-dir", "", "Directory for NDJSON event transcripts (default: from config)")
}

// buildRequest translates CLI flags into an execution request. The
// continue and resume flags are mutually exclusive.
func buildRequest(cfg *config.Config, prompt, model, dir string, continueLatest bool, resumeID string) (claude.Request, error) {
	if continueLatest && resumeID != "" {
		return claude.Request{}, fmt.Errorf("--continue and --resume are mutually exclusive")
	}

	if model == "" {
		model = cfg.Model
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return claude.Request{}, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		dir = cwd
	}

	req := claude.Request{
		Prompt:  prompt,
		Model:   model,
		WorkDir: dir,
		Mode:    claude.ModeFresh,
	}
	switch {
	case continueLatest:
		req.Mode = claude.ModeContinue
	case resumeID != "":
		req.Mode = claude.ModeResume
		req.SessionID = resumeID
	}
	return req, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Discover(cfgPath)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	dir, _ := cmd.Flags().GetString("dir")
	continueLatest, _ := cmd.Flags().GetBool("continue")
	resumeID, _ := cmd.Flags().GetString("resume")
	logDir, _ := cmd.Flags().GetString("log-dir")
	if logDir == "" {
		logDir = cfg.EventLogDir
	}

	req, err := buildRequest(cfg, args[0], model, dir, continueLatest, resumeID)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	locator := claude.NewLocator(cfg.BinaryPath, logger)
	sup := supervisor.New(locator, logger,
		supervisor.WithKillGracePeriod(cfg.KillGracePeriod()))

	sessionID, err := sup.Launch(req)
	if err != nil {
		return fmt.Errorf("could not start execution: %w", err)
	}

	var transcript *eventlog.EventLog
	if logDir != "" {
		transcript, err = eventlog.New(eventlog.SessionPath(logDir, sessionID), logger)
		if err != nil {
			return err
		}
		defer transcript.Close()
	}

	// Ctrl-C asks the supervisor for a graceful stop; the exit event
	// still arrives on the normal path below.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			sup.Cancel(sessionID)
		}
	}()

	for ev := range sup.Events() {
		if ev.SessionID != sessionID {
			continue
		}
		if transcript != nil {
			if err := transcript.Write(ev); err != nil {
				logger.Warn("failed to write transcript", "error", err)
			}
		}
		switch ev.Kind {
		case protocol.KindStarted:
			fmt.Fprintf(os.Stderr, "session %s started\n", ev.SessionID)
		case protocol.KindMessage:
			line, err := json.Marshal(ev.Payload)
			if err != nil {
				logger.Warn("failed to render message", "error", err)
				continue
			}
			fmt.Println(string(line))
		case protocol.KindRawOutput:
			fmt.Println(ev.Line)
		case protocol.KindStreamError:
			fmt.Fprint(os.Stderr, ev.Text)
		case protocol.KindExited:
			if ev.ExitCode != 0 {
				return fmt.Errorf("session ended with an error (exit code %d)", ev.ExitCode)
			}
			return nil
		}
	}
	return nil
}
