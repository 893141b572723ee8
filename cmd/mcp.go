package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edharness/internal/agent"
	"edharness/internal/app"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the harness as an MCP server on stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout so that AI assistants
can list suites, run them, compare screenshots and clean levels.

Logs are written to stderr; stdout carries the protocol only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd, &app.Config{Out: os.Stderr})
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			srv := agent.NewServer(application.Services(), rootCmd.Version)
			return srv.Serve(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
