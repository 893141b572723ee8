package app

import (
	"os"
	"path/filepath"

	"edharness/internal/artifacts"
	"edharness/internal/config"
	"edharness/internal/harness"
	"edharness/internal/screenshot"
	"edharness/internal/suite"
)

// Services holds everything a run needs, built once from the configuration.
type Services struct {
	Config   config.HarnessConfig
	Launcher harness.Launcher
	Comparer screenshot.Comparer
	Locks    *artifacts.LevelLock
}

// LockDir is shared by every harness process on the machine so that two runs
// never rebuild the same level at once.
func LockDir() string {
	return filepath.Join(os.TempDir(), "edharness", "locks")
}

// InitializeServices wires the editor launcher, the screenshot comparer and
// the level locks from cfg.
func InitializeServices(cfg config.HarnessConfig) *Services {
	return &Services{
		Config: cfg,
		Launcher: &harness.ProcessLauncher{
			Binary:     cfg.Editor.Binary,
			Args:       cfg.Editor.Args,
			ScriptFlag: cfg.Editor.ScriptFlag,
			ArgsFlag:   cfg.Editor.ArgsFlag,
			Env:        cfg.Editor.Env,
		},
		Comparer: &screenshot.PixelComparer{
			Threshold: cfg.Golden.Threshold,
			DiffDir:   filepath.Join(cfg.Logging.Dir, "diffs"),
		},
		Locks: artifacts.NewLevelLock(LockDir()),
	}
}

// LoadSuites loads the configured suites, or the built-in ones when no suites
// path is set.
func (s *Services) LoadSuites() ([]suite.Suite, error) {
	return suite.Load(s.Config.Runner.SuitesPath, s.Config.Runner.ScriptsDir)
}

// NewRunner creates a suite runner that reports to reporter.
func (s *Services) NewRunner(reporter suite.Reporter) *suite.Runner {
	return suite.NewRunner(suite.Options{
		Launcher:       s.Launcher,
		Comparer:       s.Comparer,
		Workspace:      s.Config.Workspace,
		Golden:         s.Config.Golden,
		Locks:          s.Locks,
		Reporter:       reporter,
		LogDir:         s.Config.Logging.Dir,
		DefaultTimeout: s.Config.Runner.DefaultTimeout,
	})
}

// RunConfig combines the configured scheduling with filter.
func (s *Services) RunConfig(filter suite.Filter) suite.RunConfig {
	return suite.RunConfig{
		Filter:   filter,
		Parallel: s.Config.Runner.Parallel,
		FailFast: s.Config.Runner.FailFast,
	}
}
