package config

import (
	"runtime"
	"time"
)

const (
	// DefaultScreenshotSubfolder is where the editor's screenshot helper writes captures.
	DefaultScreenshotSubfolder = "user/PythonTests/Automated/Screenshots"
	// DefaultScriptFlag names the editor flag that runs a test script.
	DefaultScriptFlag = "--runpythontest"
	// DefaultArgsFlag names the editor flag that forwards arguments to the script.
	DefaultArgsFlag = "--runpythonargs"
	// DefaultThreshold is the minimum similarity for a screenshot to match its golden image.
	DefaultThreshold = 0.99
)

// GetDefaultConfig returns the configuration used when no file overrides it.
func GetDefaultConfig() HarnessConfig {
	return HarnessConfig{
		Workspace: Workspace{
			Project:             "AtomTest",
			ScreenshotSubfolder: DefaultScreenshotSubfolder,
		},
		Editor: EditorConfig{
			Binary:     "Editor",
			Args:       []string{"--autotest_mode", "--skipWelcomeScreenDialog"},
			ScriptFlag: DefaultScriptFlag,
			ArgsFlag:   DefaultArgsFlag,
		},
		Golden: GoldenConfig{
			Root:      "GoldenImages",
			Platform:  GoldenPlatform(runtime.GOOS),
			Threshold: DefaultThreshold,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   ".edharness/logs",
		},
		Runner: RunnerConfig{
			Parallel:       1,
			DefaultTimeout: 180 * time.Second,
		},
	}
}

// GoldenPlatform maps a GOOS value to the directory name golden images are filed under.
func GoldenPlatform(goos string) string {
	switch goos {
	case "windows":
		return "Windows"
	case "darwin":
		return "Mac"
	default:
		return "Linux"
	}
}

// cachePlatform maps a GOOS value to the asset cache folder the editor writes into.
func cachePlatform(goos string) string {
	switch goos {
	case "windows":
		return "pc"
	case "darwin":
		return "mac"
	default:
		return "linux"
	}
}
