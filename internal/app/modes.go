package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"edharness/internal/reporting"
	"edharness/internal/suite"
	"edharness/internal/tui"
	"edharness/pkg/logging"
)

// runCLIMode runs the suites with a line-oriented reporter writing to out.
func runCLIMode(ctx context.Context, config *Config, services *Services, runCfg suite.RunConfig, suites []suite.Suite, out io.Writer) (*suite.Report, error) {
	logging.Debug("CLI", "Running in %s mode", config.Output)
	return services.NewRunner(config.reporter(out)).Run(ctx, runCfg, suites)
}

type runOutcome struct {
	report *suite.Report
	err    error
}

// runTUIMode runs the suites behind the live view. Quitting the view cancels
// the run; the final summary is printed to out once the view is gone.
func runTUIMode(ctx context.Context, config *Config, services *Services, runCfg suite.RunConfig, suites []suite.Suite, out io.Writer) (*suite.Report, error) {
	level, err := logging.ParseLevel(services.Config.Logging.Level)
	if err != nil {
		return nil, err
	}
	logChan := logging.InitForTUI(level)
	defer logging.InitForCLI(level, os.Stderr)
	defer logging.CloseTUIChannel()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg)
	done := make(chan struct{})
	p, _ := tui.NewProgram(updates, logChan, level == logging.LevelDebug, tea.WithContext(ctx))

	outcome := make(chan runOutcome, 1)
	go func() {
		report, err := services.NewRunner(reporting.NewTUIReporter(updates, done)).Run(runCtx, runCfg, suites)
		outcome <- runOutcome{report: report, err: err}
	}()

	_, tuiErr := p.Run()
	close(done)
	cancel()
	res := <-outcome

	if tuiErr != nil && !errors.Is(tuiErr, tea.ErrProgramKilled) {
		logging.Error("TUI-Lifecycle", tuiErr, "Error running TUI program")
		return res.report, fmt.Errorf("tui: %w", tuiErr)
	}
	if res.err != nil {
		return nil, res.err
	}
	reporting.NewConsoleReporter(out, config.Verbose).ReportRunResult(*res.report)
	return res.report, nil
}
