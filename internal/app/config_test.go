package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"edharness/internal/config"
	"edharness/internal/reporting"
)

func TestApplyOverrides(t *testing.T) {
	base := config.GetDefaultConfig()

	t.Run("zero values keep the loaded configuration", func(t *testing.T) {
		hc := base
		NewConfig("", "").applyOverrides(&hc)
		assert.Equal(t, base, hc)
	})

	t.Run("flags win", func(t *testing.T) {
		hc := base
		cfg := &Config{
			LogLevel:   "debug",
			SuitesPath: "suites",
			ScriptsDir: "scripts",
			ReportDir:  "reports",
			Parallel:   4,
			FailFast:   true,
		}
		cfg.applyOverrides(&hc)

		assert.Equal(t, "debug", hc.Logging.Level)
		assert.Equal(t, "suites", hc.Runner.SuitesPath)
		assert.Equal(t, "scripts", hc.Runner.ScriptsDir)
		assert.Equal(t, "reports", hc.Runner.ReportPath)
		assert.Equal(t, 4, hc.Runner.Parallel)
		assert.True(t, hc.Runner.FailFast)
		assert.Equal(t, 180*time.Second, hc.Runner.DefaultTimeout)
	})
}

func TestConfigReporter(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		output OutputMode
		want   interface{}
	}{
		{OutputConsole, &reporting.ConsoleReporter{}},
		{OutputQuiet, &reporting.QuietReporter{}},
		{OutputJSON, &reporting.JSONReporter{}},
		{"", &reporting.ConsoleReporter{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.output), func(t *testing.T) {
			cfg := &Config{Output: tt.output}
			assert.IsType(t, tt.want, cfg.reporter(&buf))
		})
	}
}
