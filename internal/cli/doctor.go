package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/internal/claude"
	"github.com/agentdeck/agentdeck/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the Claude CLI is installed",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Discover(cfgPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	info := claude.NewLocator(cfg.BinaryPath, logger).CheckInstallation()
	if !info.Installed {
		return fmt.Errorf("claude CLI not found; install it or set binary_path in %s", config.FileName)
	}

	fmt.Printf("claude CLI: installed\n")
	fmt.Printf("  path:    %s\n", info.Path)
	if info.Version != "" {
		fmt.Printf("  version: %s\n", info.Version)
	} else {
		fmt.Printf("  version: unknown\n")
	}
	return nil
}
