package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"edharness/internal/app"
	"edharness/internal/suite"
)

type listOptions struct {
	suites     []string
	cases      []string
	tags       []string
	suitesPath string
	json       bool
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suites and their cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.suites, "suite", nil, "suite name or glob pattern (repeatable)")
	f.StringSliceVar(&opts.cases, "case", nil, "case name or glob pattern (repeatable)")
	f.StringSliceVar(&opts.tags, "tag", nil, "test case ID or glob pattern (repeatable)")
	f.StringVar(&opts.suitesPath, "suites", "", "directory or file with YAML suites (default: built-in suites)")
	f.BoolVar(&opts.json, "json", false, "print the suites as JSON")
	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	application, err := newApplication(cmd, &app.Config{SuitesPath: opts.suitesPath})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	suites, err := application.Services().LoadSuites()
	if err != nil {
		return err
	}
	suites, err = suite.FilterSuites(suites, suite.Filter{Suites: opts.suites, Cases: opts.cases, Tags: opts.tags})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data, err := json.MarshalIndent(suites, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal suites: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SUITE", "LEVEL", "CASE", "SCRIPT", "TEST CASES")
	for _, s := range suites {
		for _, c := range s.Cases {
			t.Row(s.Name, valueOr(s.Level, "-"), c.Name, c.Script, strings.Join(c.TestCaseIDs, ", "))
		}
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
