package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"run", "classify", "extract", "fields", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "residential-checks", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRunCommand_Flags(t *testing.T) {
	for _, name := range []string{"progress", "no-signatures"} {
		flag := runCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "run command should have --%s flag", name)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestRunCommand_Args(t *testing.T) {
	assert.Error(t, runCmd.Args(runCmd, nil))
	assert.NoError(t, runCmd.Args(runCmd, []string{"in"}))
	assert.NoError(t, runCmd.Args(runCmd, []string{"in", "out.xlsx"}))
	assert.Error(t, runCmd.Args(runCmd, []string{"in", "out.xlsx", "extra"}))
}

func TestExtractCommand_Flags(t *testing.T) {
	flag := extractCmd.Flags().Lookup("kind")
	require.NotNil(t, flag, "extract command should have --kind flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
