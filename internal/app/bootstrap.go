package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"edharness/internal/config"
	"edharness/internal/reporting"
	"edharness/internal/suite"
	"edharness/pkg/logging"
)

// Application is the main application structure that bootstraps and runs edharness
type Application struct {
	config   *Config
	services *Services
	out      io.Writer
}

// NewApplication loads the layered configuration, applies the command line
// overrides, initialises logging and builds the services.
func NewApplication(cfg *Config) (*Application, error) {
	harnessCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load harness configuration: %w", err)
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return newApplication(cfg, harnessCfg, out)
}

func newApplication(cfg *Config, harnessCfg config.HarnessConfig, out io.Writer) (*Application, error) {
	cfg.applyOverrides(&harnessCfg)
	harnessCfg.Workspace = harnessCfg.Workspace.WithDefaults()

	level, err := logging.ParseLevel(harnessCfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	// Logs go to stderr so JSON reports on stdout stay parseable.
	logging.InitForCLI(level, os.Stderr)

	if err := harnessCfg.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid configuration")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.HarnessConfig = &harnessCfg
	logging.Debug("Bootstrap", "editor %s, project %s, golden platform %s",
		harnessCfg.Editor.Binary, harnessCfg.Workspace.Project, harnessCfg.Golden.Platform)

	return &Application{
		config:   cfg,
		services: InitializeServices(harnessCfg),
		out:      out,
	}, nil
}

// Services returns the wired services, for commands that do not run suites.
func (a *Application) Services() *Services {
	return a.services
}

// Run loads the suites, runs those selected by the filter in the configured
// output mode and saves the JSON report when a report directory is set.
func (a *Application) Run(ctx context.Context) (*suite.Report, error) {
	suites, err := a.services.LoadSuites()
	if err != nil {
		return nil, fmt.Errorf("failed to load suites: %w", err)
	}
	runCfg := a.services.RunConfig(a.config.Filter)

	var report *suite.Report
	if a.config.Output == OutputTUI {
		report, err = runTUIMode(ctx, a.config, a.services, runCfg, suites, a.out)
	} else {
		report, err = runCLIMode(ctx, a.config, a.services, runCfg, suites, a.out)
	}
	if err != nil {
		return nil, err
	}

	if dir := a.services.Config.Runner.ReportPath; dir != "" {
		path, err := reporting.SaveReport(dir, *report)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to save report")
			return report, err
		}
		logging.Info("Bootstrap", "Report saved to %s", path)
	}
	return report, nil
}
