package agent

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edharness/internal/app"
	"edharness/internal/artifacts"
	"edharness/internal/config"
	"edharness/internal/harness"
	"edharness/internal/screenshot"
	"edharness/internal/suite"
)

const levelSuite = `name: LevelSuite
level: tmp_level
cases:
  - name: Setup
    script: setup.py
    test_case_ids: [C34603773]
    expected_lines: ["level ready"]
`

type echoLauncher struct{}

func (echoLauncher) Launch(ctx context.Context, tc harness.TestCase, onLine func(string)) (harness.RunResult, error) {
	onLine("level ready")
	return harness.RunResult{Lines: []string{"level ready"}}, ctx.Err()
}

func newTestServer(t *testing.T) (*Server, *app.Services) {
	t.Helper()
	suitesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(suitesDir, "level.yaml"), []byte(levelSuite), 0644))

	cfg := config.GetDefaultConfig()
	cfg.Workspace.EngineRoot = t.TempDir()
	cfg.Workspace.PlatformCache = t.TempDir()
	cfg.Runner.SuitesPath = suitesDir
	cfg.Logging.Dir = t.TempDir()

	services := app.InitializeServices(cfg)
	services.Launcher = echoLauncher{}
	services.Locks = artifacts.NewLevelLock(t.TempDir())
	return NewServer(services, "test"), services
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_Tools(t *testing.T) {
	s, _ := newTestServer(t)

	var names []string
	for _, tool := range s.tools() {
		names = append(names, tool.Tool.Name)
		assert.NotNil(t, tool.Handler)
	}
	assert.Equal(t, []string{
		"harness_list_suites",
		"harness_run_suite",
		"harness_compare_screenshot",
		"harness_clean_level",
	}, names)
	assert.NotNil(t, s.MCPServer())
}

func TestHandleListSuites(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleListSuites(context.Background(), call("harness_list_suites", map[string]interface{}{}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var infos []suiteInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "LevelSuite", infos[0].Name)
	assert.Equal(t, "tmp_level", infos[0].Level)
	assert.Equal(t, []string{"C34603773"}, infos[0].Cases[0].TestCaseIDs)

	result, err = s.handleListSuites(context.Background(), call("harness_list_suites", map[string]interface{}{"suite": "Other*"}))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestHandleRunSuite(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleRunSuite(context.Background(), call("harness_run_suite", map[string]interface{}{"suite": "Level*"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var report suite.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, 1, report.PassedCases)
	assert.True(t, report.Passed())

	result, err = s.handleRunSuite(context.Background(), call("harness_run_suite", map[string]interface{}{"suite": "Nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), `No suite matches "Nope"`)

	result, err = s.handleRunSuite(context.Background(), call("harness_run_suite", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestHandleCompareScreenshot(t *testing.T) {
	s, _ := newTestServer(t)
	dir := t.TempDir()
	golden := filepath.Join(dir, "golden.png")
	same := filepath.Join(dir, "same.png")
	different := filepath.Join(dir, "different.png")
	writePNG(t, golden, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	writePNG(t, same, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	writePNG(t, different, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	result, err := s.handleCompareScreenshot(context.Background(), call("harness_compare_screenshot", map[string]interface{}{
		"produced": same, "golden": golden,
	}))
	require.NoError(t, err)
	var cmp screenshot.Comparison
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &cmp))
	assert.True(t, cmp.Passed)
	assert.Equal(t, config.DefaultThreshold, cmp.Threshold)

	result, err = s.handleCompareScreenshot(context.Background(), call("harness_compare_screenshot", map[string]interface{}{
		"produced": different, "golden": golden, "threshold": 0.9,
	}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &cmp))
	assert.False(t, cmp.Passed)
	assert.Equal(t, 0.9, cmp.Threshold)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing produced", map[string]interface{}{"golden": golden}, "produced is required"},
		{"missing golden file", map[string]interface{}{"produced": same, "golden": filepath.Join(dir, "nope.png")}, "Failed to compare"},
		{"bad threshold", map[string]interface{}{"produced": same, "golden": golden, "threshold": 1.5}, "threshold must be in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCompareScreenshot(context.Background(), call("harness_compare_screenshot", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleCleanLevel(t *testing.T) {
	s, services := newTestServer(t)
	ws := services.Config.Workspace

	level := artifacts.LevelPath(ws, "tmp_level")
	require.NoError(t, os.MkdirAll(filepath.Join(level, "Objects"), 0755))
	shot := artifacts.CachedScreenshotPath(ws, "AtomBasicLevelSetup.ppm")
	require.NoError(t, os.MkdirAll(filepath.Dir(shot), 0755))
	require.NoError(t, os.WriteFile(shot, []byte("P6"), 0644))

	args := map[string]interface{}{"level": "tmp_level", "screenshots": []any{"AtomBasicLevelSetup.ppm"}}
	result, err := s.handleCleanLevel(context.Background(), call("harness_clean_level", args))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "Deleted level tmp_level")
	assert.NoDirExists(t, level)
	assert.NoFileExists(t, shot)

	// Cleaning again succeeds.
	result, err = s.handleCleanLevel(context.Background(), call("harness_clean_level", args))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = s.handleCleanLevel(context.Background(), call("harness_clean_level", map[string]interface{}{
		"level": "tmp_level", "screenshots": "not-a-list",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	project := filepath.Join(ws.EngineRoot, ws.Project)
	result, err = s.handleCleanLevel(context.Background(), call("harness_clean_level", map[string]interface{}{"level": ".."}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not allowed")
	assert.DirExists(t, project)
}

func TestStringSlice(t *testing.T) {
	got, err := stringSlice(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = stringSlice([]any{"a.ppm", "b.ppm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ppm", "b.ppm"}, got)

	_, err = stringSlice([]any{"a.ppm", 3})
	assert.Error(t, err)
}
