package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"edharness/internal/app"
	"edharness/pkg/logging"
)

// errTestsFailed makes the process exit non-zero when a case did not pass.
var errTestsFailed = errors.New("some tests did not pass")

type runOptions struct {
	suites     []string
	cases      []string
	tags       []string
	suitesPath string
	scriptsDir string
	reportDir  string
	parallel   int
	failFast   bool
	tui        bool
	quiet      bool
	json       bool
	verbose    bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run test suites against the editor",
		Long: `Runs the selected suites. Suites run concurrently up to --parallel; the
cases of a suite run in order because later cases build on the level set up
by earlier ones.

Selection patterns are globs: --suite 'AllComponents*' --case '*Setup*'.
--tag selects cases by test case ID, e.g. --tag C34603773.

The command exits with status 1 when any case failed, errored or was skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.suites, "suite", nil, "suite name or glob pattern (repeatable)")
	f.StringSliceVar(&opts.cases, "case", nil, "case name or glob pattern (repeatable)")
	f.StringSliceVar(&opts.tags, "tag", nil, "test case ID or glob pattern (repeatable)")
	f.StringVar(&opts.suitesPath, "suites", "", "directory or file with YAML suites (default: built-in suites)")
	f.StringVar(&opts.scriptsDir, "scripts", "", "directory holding the test scripts of suites that set no work_dir")
	f.StringVar(&opts.reportDir, "report", "", "directory to write the JSON report to")
	f.IntVar(&opts.parallel, "parallel", 0, "number of suites run at once (default from configuration)")
	f.BoolVar(&opts.failFast, "fail-fast", false, "skip remaining cases after the first failure")
	f.BoolVar(&opts.tui, "tui", false, "show a live terminal view")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "print failures and a summary line only")
	f.BoolVar(&opts.json, "json", false, "print the report as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print case starts and the output tail of failed cases")
	cmd.MarkFlagsMutuallyExclusive("tui", "quiet", "json")

	return cmd
}

func (o *runOptions) output() app.OutputMode {
	switch {
	case o.tui:
		return app.OutputTUI
	case o.quiet:
		return app.OutputQuiet
	case o.json:
		return app.OutputJSON
	default:
		return app.OutputConsole
	}
}

func runRun(cmd *cobra.Command, opts *runOptions) error {
	cfg := &app.Config{
		SuitesPath: opts.suitesPath,
		ScriptsDir: opts.scriptsDir,
		ReportDir:  opts.reportDir,
		Parallel:   opts.parallel,
		FailFast:   opts.failFast,
		Output:     opts.output(),
		Verbose:    opts.verbose,
	}
	cfg.Filter.Suites = opts.suites
	cfg.Filter.Cases = opts.cases
	cfg.Filter.Tags = opts.tags

	application, err := newApplication(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	report, err := application.Run(commandContext(cmd))
	if err != nil {
		return err
	}
	if report.TotalCases == 0 {
		logging.Warn("CLI", "No case matched the selection")
	}
	if !report.Passed() {
		return errTestsFailed
	}
	return nil
}
