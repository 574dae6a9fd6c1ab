package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Creation(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "relabufd", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, Version)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestNewRootCommand_PersistentFlags(t *testing.T) {
	cmd := NewRootCommand()
	pf := cmd.PersistentFlags()

	for _, name := range []string{"config", "log-level", "log-format", "timeout"} {
		t.Run(name, func(t *testing.T) {
			flag := pf.Lookup(name)
			require.NotNil(t, flag, "flag %q should be registered", name)
		})
	}

	configFlag := pf.Lookup("config")
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestNewRootCommand_SubcommandsMounted(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "run")
	assert.Contains(t, names, "version")
}

func TestLoadConfig_FromEnvWhenNoPathGiven(t *testing.T) {
	opts := &RootOptions{}
	cfg, err := loadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "synthetic", cfg.Source.Kind)
}

func TestLoadConfig_AppliesLogOverrides(t *testing.T) {
	opts := &RootOptions{LogLevel: "debug", LogFormat: "console"}
	cfg, err := loadConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestBuildLogger_Succeeds(t *testing.T) {
	cfg, err := loadConfig(&RootOptions{})
	require.NoError(t, err)

	logger, err := buildLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestExecute_HelpFlag(t *testing.T) {
	rootCmd := NewRootCommand()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "relabufd")
}

func TestExecute_VersionFlag(t *testing.T) {
	rootCmd := NewRootCommand()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--version"})

	err := rootCmd.Execute()
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), Version)
}
