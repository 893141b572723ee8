package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/edharness"
	projectConfigDir = ".edharness"
	configFileName   = "config.yaml"
)

// LoadConfig loads the harness configuration by layering default, user, project
// and, when explicitPath is not empty, an explicit configuration file.
func LoadConfig(explicitPath string) (HarnessConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if config, err = overlayIfExists(config, userConfigPath); err != nil {
		return HarnessConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if config, err = overlayIfExists(config, projectConfigPath); err != nil {
		return HarnessConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	if explicitPath != "" {
		explicit, err := loadConfigFromFile(explicitPath)
		if err != nil {
			return HarnessConfig{}, fmt.Errorf("error loading config from %s: %w", explicitPath, err)
		}
		config = mergeConfigs(config, explicit)
	}

	config.Workspace = config.Workspace.WithDefaults()
	return config, nil
}

func overlayIfExists(base HarnessConfig, path string) (HarnessConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a HarnessConfig from a YAML file.
func loadConfigFromFile(filePath string) (HarnessConfig, error) {
	var config HarnessConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return HarnessConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return HarnessConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in the
// overlay leave the base untouched.
func mergeConfigs(base, overlay HarnessConfig) HarnessConfig {
	merged := base

	ws := overlay.Workspace
	if ws.EngineRoot != "" {
		merged.Workspace.EngineRoot = ws.EngineRoot
	}
	if ws.Project != "" {
		merged.Workspace.Project = ws.Project
	}
	if ws.PlatformCache != "" {
		merged.Workspace.PlatformCache = ws.PlatformCache
	}
	if ws.ScreenshotSubfolder != "" {
		merged.Workspace.ScreenshotSubfolder = ws.ScreenshotSubfolder
	}

	ed := overlay.Editor
	if ed.Binary != "" {
		merged.Editor.Binary = ed.Binary
	}
	if ed.Args != nil {
		merged.Editor.Args = append([]string(nil), ed.Args...)
	}
	if ed.ScriptFlag != "" {
		merged.Editor.ScriptFlag = ed.ScriptFlag
	}
	if ed.ArgsFlag != "" {
		merged.Editor.ArgsFlag = ed.ArgsFlag
	}
	if len(ed.Env) > 0 {
		env := make(map[string]string, len(base.Editor.Env)+len(ed.Env))
		for k, v := range base.Editor.Env {
			env[k] = v
		}
		for k, v := range ed.Env {
			env[k] = v
		}
		merged.Editor.Env = env
	}

	if overlay.Golden.Root != "" {
		merged.Golden.Root = overlay.Golden.Root
	}
	if overlay.Golden.Platform != "" {
		merged.Golden.Platform = overlay.Golden.Platform
	}
	if overlay.Golden.Threshold != 0 {
		merged.Golden.Threshold = overlay.Golden.Threshold
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Dir != "" {
		merged.Logging.Dir = overlay.Logging.Dir
	}

	rn := overlay.Runner
	if rn.SuitesPath != "" {
		merged.Runner.SuitesPath = rn.SuitesPath
	}
	if rn.ScriptsDir != "" {
		merged.Runner.ScriptsDir = rn.ScriptsDir
	}
	if rn.Parallel != 0 {
		merged.Runner.Parallel = rn.Parallel
	}
	if rn.FailFast {
		merged.Runner.FailFast = true
	}
	if rn.ReportPath != "" {
		merged.Runner.ReportPath = rn.ReportPath
	}
	if rn.DefaultTimeout != 0 {
		merged.Runner.DefaultTimeout = rn.DefaultTimeout
	}

	return merged
}

// WithDefaults fills the platform cache from the engine root when it was not set.
func (w Workspace) WithDefaults() Workspace {
	if w.PlatformCache == "" && w.EngineRoot != "" && w.Project != "" {
		w.PlatformCache = filepath.Join(w.EngineRoot, w.Project, "Cache", cachePlatform(runtime.GOOS))
	}
	if w.ScreenshotSubfolder == "" {
		w.ScreenshotSubfolder = DefaultScreenshotSubfolder
	}
	return w
}

// Validate checks that a loaded configuration can drive a run.
func (c HarnessConfig) Validate() error {
	if c.Editor.Binary == "" {
		return fmt.Errorf("editor.binary must be set")
	}
	if c.Editor.ScriptFlag == "" {
		return fmt.Errorf("editor.scriptFlag must be set")
	}
	if c.Workspace.Project == "" {
		return fmt.Errorf("workspace.project must be set")
	}
	// Level and cache paths are deleted during runs; never resolve them
	// against whatever directory the harness was started in.
	if c.Workspace.EngineRoot == "" {
		return fmt.Errorf("workspace.engineRoot must be set")
	}
	if c.Workspace.PlatformCache == "" {
		return fmt.Errorf("workspace.platformCache must be set")
	}
	if c.Golden.Threshold <= 0 || c.Golden.Threshold > 1 {
		return fmt.Errorf("golden.threshold must be in (0, 1], got %v", c.Golden.Threshold)
	}
	if c.Runner.Parallel < 1 || c.Runner.Parallel > 10 {
		return fmt.Errorf("runner.parallel must be between 1 and 10, got %d", c.Runner.Parallel)
	}
	if c.Runner.DefaultTimeout <= 0 {
		return fmt.Errorf("runner.defaultTimeout must be positive")
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
