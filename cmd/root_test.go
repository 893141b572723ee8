package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "edharness", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	for _, name := range []string{"config", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "edharness version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "edharness version 1.0.0\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	original := rootCmd.Version
	defer SetVersion(original)
	SetVersion("0.4.0")

	var buf bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)
	assert.Equal(t, "edharness version 0.4.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"run", "list", "compare", "clean", "mcp", "version", "self-update"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestRunOptionsOutput(t *testing.T) {
	tests := []struct {
		opts runOptions
		want string
	}{
		{runOptions{}, "console"},
		{runOptions{tui: true}, "tui"},
		{runOptions{quiet: true}, "quiet"},
		{runOptions{json: true}, "json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(tt.opts.output()))
	}
}

func TestRunFlagsAreExclusive(t *testing.T) {
	cmd := newRunCmd()
	cmd.SetArgs([]string{"--tui", "--json"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.RunE = func(*cobra.Command, []string) error { return nil }

	err := cmd.Execute()
	assert.ErrorContains(t, err, "none of the others can be")
}

func TestCleanRequiresATarget(t *testing.T) {
	cmd := newCleanCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.RunE = func(*cobra.Command, []string) error { return nil }

	err := cmd.Execute()
	assert.ErrorContains(t, err, "at least one of the flags")
}
