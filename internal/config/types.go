package config

import "time"

// HarnessConfig is the top-level configuration structure for edharness.
type HarnessConfig struct {
	Workspace Workspace     `yaml:"workspace"`
	Editor    EditorConfig  `yaml:"editor"`
	Golden    GoldenConfig  `yaml:"golden"`
	Logging   LoggingConfig `yaml:"logging"`
	Runner    RunnerConfig  `yaml:"runner"`
}

// Workspace locates the editor project and its platform cache on disk.
type Workspace struct {
	EngineRoot          string `yaml:"engineRoot,omitempty"`
	Project             string `yaml:"project,omitempty"`
	PlatformCache       string `yaml:"platformCache,omitempty"`       // defaults to <engineRoot>/<project>/Cache/<platform>
	ScreenshotSubfolder string `yaml:"screenshotSubfolder,omitempty"` // relative to PlatformCache
}

// EditorConfig describes how the editor is launched.
type EditorConfig struct {
	Binary     string            `yaml:"binary,omitempty"`
	Args       []string          `yaml:"args,omitempty"`       // passed before the script flag
	ScriptFlag string            `yaml:"scriptFlag,omitempty"` // flag that names the test script
	ArgsFlag   string            `yaml:"argsFlag,omitempty"`   // flag that carries the joined cfg args
	Env        map[string]string `yaml:"env,omitempty"`
}

// GoldenConfig locates reference screenshots.
type GoldenConfig struct {
	Root      string  `yaml:"root,omitempty"`
	Platform  string  `yaml:"platform,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty"`
}

// LoggingConfig controls harness logging and where captured editor output is kept.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	Dir   string `yaml:"dir,omitempty"`
}

// RunnerConfig controls suite scheduling and reporting.
type RunnerConfig struct {
	SuitesPath     string        `yaml:"suitesPath,omitempty"` // empty runs the built-in suites
	ScriptsDir     string        `yaml:"scriptsDir,omitempty"` // test scripts of suites that set no workDir
	Parallel       int           `yaml:"parallel,omitempty"`
	FailFast       bool          `yaml:"failFast,omitempty"`
	ReportPath     string        `yaml:"reportPath,omitempty"`
	DefaultTimeout time.Duration `yaml:"defaultTimeout,omitempty"`
}
