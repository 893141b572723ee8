package app

import (
	"io"

	"edharness/internal/config"
	"edharness/internal/reporting"
	"edharness/internal/suite"
)

// OutputMode selects how progress and results are presented.
type OutputMode string

const (
	OutputConsole OutputMode = "console"
	OutputQuiet   OutputMode = "quiet"
	OutputJSON    OutputMode = "json"
	OutputTUI     OutputMode = "tui"
)

// Config holds the application configuration taken from the command line.
// Zero values leave the loaded configuration untouched.
type Config struct {
	ConfigPath string
	LogLevel   string

	SuitesPath string
	ScriptsDir string
	ReportDir  string
	Parallel   int
	FailFast   bool

	Filter  suite.Filter
	Output  OutputMode
	Verbose bool
	// Out receives reports; os.Stdout when nil.
	Out io.Writer

	// HarnessConfig is filled by NewApplication.
	HarnessConfig *config.HarnessConfig
}

// NewConfig creates a new application configuration
func NewConfig(configPath, logLevel string) *Config {
	return &Config{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Output:     OutputConsole,
	}
}

// applyOverrides copies command line values over the loaded configuration.
func (c *Config) applyOverrides(hc *config.HarnessConfig) {
	if c.LogLevel != "" {
		hc.Logging.Level = c.LogLevel
	}
	if c.SuitesPath != "" {
		hc.Runner.SuitesPath = c.SuitesPath
	}
	if c.ScriptsDir != "" {
		hc.Runner.ScriptsDir = c.ScriptsDir
	}
	if c.ReportDir != "" {
		hc.Runner.ReportPath = c.ReportDir
	}
	if c.Parallel > 0 {
		hc.Runner.Parallel = c.Parallel
	}
	if c.FailFast {
		hc.Runner.FailFast = true
	}
}

// reporter returns the reporter for the non-interactive output modes.
func (c *Config) reporter(out io.Writer) suite.Reporter {
	switch c.Output {
	case OutputQuiet:
		return reporting.NewQuietReporter(out)
	case OutputJSON:
		return reporting.NewJSONReporter(out)
	default:
		return reporting.NewConsoleReporter(out, c.Verbose)
	}
}
