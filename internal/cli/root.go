package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentdeck",
	Short: "Process execution core for the Claude Code CLI",
	Long: `agentdeck launches the Claude Code CLI as a supervised child process,
decodes its stream-json output in real time, and tracks every in-flight
execution in a concurrent registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(doctorCmd)

	rootCmd.PersistentFlags().String("config", "", "Path to agentdeck.json config file (default: working directory, then ~/.config/agentdeck)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
