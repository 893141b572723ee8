package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"edharness/internal/artifacts"
	"edharness/internal/screenshot"
	"edharness/internal/suite"
	"edharness/pkg/logging"
)

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("harness_list_suites",
				mcp.WithDescription("List the configured test suites with their level and cases"),
				mcp.WithString("suite",
					mcp.Description("Glob pattern restricting the suites listed"),
				),
			),
			Handler: s.handleListSuites,
		},
		{
			Tool: mcp.NewTool("harness_run_suite",
				mcp.WithDescription("Run test suites against the editor and return the JSON report"),
				mcp.WithString("suite",
					mcp.Required(),
					mcp.Description("Suite name or glob pattern"),
				),
				mcp.WithString("case",
					mcp.Description("Case name or glob pattern; all cases when empty"),
				),
				mcp.WithString("tag",
					mcp.Description("Test case ID or glob pattern, e.g. C34603773"),
				),
				mcp.WithBoolean("fail_fast",
					mcp.Description("Skip the remaining cases after the first failure"),
				),
			),
			Handler: s.handleRunSuite,
		},
		{
			Tool: mcp.NewTool("harness_compare_screenshot",
				mcp.WithDescription("Compare a produced screenshot with its golden image"),
				mcp.WithString("produced",
					mcp.Required(),
					mcp.Description("Path of the screenshot captured by the editor"),
				),
				mcp.WithString("golden",
					mcp.Required(),
					mcp.Description("Path of the golden image"),
				),
				mcp.WithNumber("threshold",
					mcp.Description("Minimum similarity in (0, 1]; the configured threshold when omitted"),
				),
			),
			Handler: s.handleCompareScreenshot,
		},
		{
			Tool: mcp.NewTool("harness_clean_level",
				mcp.WithDescription("Delete a level directory and optionally cached screenshots"),
				mcp.WithString("level",
					mcp.Required(),
					mcp.Description("Level name below <engineRoot>/<project>/Levels"),
				),
				mcp.WithArray("screenshots",
					mcp.Description("Cached screenshot file names to delete as well"),
					mcp.Items(map[string]any{"type": "string"}),
				),
			),
			Handler: s.handleCleanLevel,
		},
	}
}

type suiteInfo struct {
	Name   string     `json:"name"`
	Level  string     `json:"level,omitempty"`
	Source string     `json:"source,omitempty"`
	Cases  []caseInfo `json:"cases"`
}

type caseInfo struct {
	Name        string   `json:"name"`
	Script      string   `json:"script"`
	TestCaseIDs []string `json:"test_case_ids,omitempty"`
	Screenshots int      `json:"screenshots,omitempty"`
}

func (s *Server) handleListSuites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	suites, err := s.services.LoadSuites()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load suites: %v", err)), nil
	}
	if pattern := req.GetString("suite", ""); pattern != "" {
		suites, err = suite.FilterSuites(suites, suite.Filter{Suites: []string{pattern}})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	infos := make([]suiteInfo, len(suites))
	for i, st := range suites {
		infos[i] = suiteInfo{Name: st.Name, Level: st.Level, Source: st.Source, Cases: make([]caseInfo, len(st.Cases))}
		for j, c := range st.Cases {
			infos[i].Cases[j] = caseInfo{Name: c.Name, Script: c.Script, TestCaseIDs: c.TestCaseIDs, Screenshots: len(c.Screenshots)}
		}
	}
	return jsonResult(infos)
}

func (s *Server) handleRunSuite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("suite")
	if err != nil {
		return mcp.NewToolResultError("suite is required"), nil
	}
	suites, err := s.services.LoadSuites()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load suites: %v", err)), nil
	}

	filter := suite.Filter{Suites: []string{pattern}}
	if c := req.GetString("case", ""); c != "" {
		filter.Cases = []string{c}
	}
	if tag := req.GetString("tag", ""); tag != "" {
		filter.Tags = []string{tag}
	}
	runCfg := s.services.RunConfig(filter)
	runCfg.FailFast = req.GetBool("fail_fast", runCfg.FailFast)

	selected, err := suite.FilterSuites(suites, filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(selected) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("No suite matches %q", pattern)), nil
	}

	logging.Info("Agent", "Running %d suite(s) for %s", len(selected), pattern)
	report, err := s.services.NewRunner(nil).Run(ctx, runCfg, selected)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Run failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (s *Server) handleCompareScreenshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	produced, err := req.RequireString("produced")
	if err != nil {
		return mcp.NewToolResultError("produced is required"), nil
	}
	golden, err := req.RequireString("golden")
	if err != nil {
		return mcp.NewToolResultError("golden is required"), nil
	}
	threshold := req.GetFloat("threshold", s.services.Config.Golden.Threshold)
	if threshold <= 0 || threshold > 1 {
		return mcp.NewToolResultError(fmt.Sprintf("threshold must be in (0, 1], got %v", threshold)), nil
	}

	cmp := &screenshot.PixelComparer{Threshold: threshold}
	result, err := cmp.Compare(ctx, produced, golden)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compare screenshots: %v", err)), nil
	}
	return jsonResult(result)
}

func (s *Server) handleCleanLevel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError("level is required"), nil
	}
	if err := artifacts.ValidateName("level", level); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	screenshots, err := stringSlice(req.GetArguments()["screenshots"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ws := s.services.Config.Workspace
	if s.services.Locks != nil {
		if err := s.services.Locks.Lock(ctx, level); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Level %s is busy: %v", level, err)), nil
		}
		defer s.services.Locks.Unlock(level)
	}

	if err := artifacts.CleanLevel(ws, level); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete level: %v", err)), nil
	}
	if err := artifacts.CleanScreenshots(ws, screenshots); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete screenshots: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted level %s (%s) and %d cached screenshot(s)",
		level, artifacts.LevelPath(ws, level), len(screenshots))), nil
}

func stringSlice(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("screenshots must be an array of file names")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("screenshots must be an array of file names")
		}
		out = append(out, name)
	}
	return out, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
