package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edharness/internal/config"
	"edharness/internal/harness"
	"edharness/internal/screenshot"
	"edharness/internal/suite"
)

func TestInitializeServices(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Editor.Env = map[string]string{"O3DE_LOG": "1"}
	cfg.Logging.Dir = "/tmp/edharness-logs"

	s := InitializeServices(cfg)

	launcher, ok := s.Launcher.(*harness.ProcessLauncher)
	require.True(t, ok)
	assert.Equal(t, "Editor", launcher.Binary)
	assert.Equal(t, []string{"--autotest_mode", "--skipWelcomeScreenDialog"}, launcher.Args)
	assert.Equal(t, config.DefaultScriptFlag, launcher.ScriptFlag)
	assert.Equal(t, config.DefaultArgsFlag, launcher.ArgsFlag)
	assert.Equal(t, "1", launcher.Env["O3DE_LOG"])

	comparer, ok := s.Comparer.(*screenshot.PixelComparer)
	require.True(t, ok)
	assert.Equal(t, config.DefaultThreshold, comparer.Threshold)
	assert.Equal(t, filepath.Join("/tmp/edharness-logs", "diffs"), comparer.DiffDir)

	assert.NotNil(t, s.Locks)
	assert.NotNil(t, s.NewRunner(nil))
}

func TestServices_RunConfig(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Runner.Parallel = 3
	cfg.Runner.FailFast = true

	filter := suite.Filter{Suites: []string{"AllComponents*"}}
	rc := InitializeServices(cfg).RunConfig(filter)

	assert.Equal(t, filter, rc.Filter)
	assert.Equal(t, 3, rc.Parallel)
	assert.True(t, rc.FailFast)
}

func TestServices_LoadSuites(t *testing.T) {
	suites, err := InitializeServices(config.GetDefaultConfig()).LoadSuites()
	require.NoError(t, err)

	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = s.Name
	}
	assert.ElementsMatch(t, []string{"AllComponentsBasicTests", "AllComponentsIndepthTests"}, names)
}
