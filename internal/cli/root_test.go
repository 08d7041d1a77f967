package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	require.True(t, names["run"], "run subcommand should be registered")
	require.True(t, names["doctor"], "doctor subcommand should be registered")
}

func TestRunCommandFlags(t *testing.T) {
	for _, name := range []string{"model", "dir", "continue", "resume", "log-dir"} {
		require.NotNil(t, runCmd.Flags().Lookup(name), "run should expose --%s", name)
	}
}

func TestConfigFlagIsPersistent(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
