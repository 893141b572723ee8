package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edharness/internal/harness"
	"edharness/internal/screenshot"
	"edharness/internal/suite"
)

func sampleReport() suite.Report {
	failed := suite.CaseResult{
		Suite:    "AllComponentsIndepthTests",
		Case:     "AllComponentsIndepthTests",
		Result:   suite.ResultFailed,
		Duration: 1500 * time.Millisecond,
		Error:    "validation failure",
		Verdict: &harness.Verdict{
			MissingExpected:   []string{"Component tests completed"},
			MatchedUnexpected: []string{"Assert"},
		},
		Screenshots: []screenshot.Comparison{
			{Pair: screenshot.Pair{Produced: "/cache/AreaLight_1.ppm"}, Similarity: 0.5, Threshold: 0.99},
		},
		LogPath:    "/logs/run/AllComponentsIndepthTests/AllComponentsIndepthTests.log",
		OutputTail: []string{"Assert in renderer"},
	}
	passed := suite.CaseResult{
		Suite:    "AllComponentsIndepthTests",
		Case:     "BasicLevelSetup_SetsUpLevel",
		Result:   suite.ResultPassed,
		Duration: time.Second,
	}
	errored := suite.CaseResult{
		Suite:  "AllComponentsBasicTests",
		Case:   "AllComponentsTest",
		Result: suite.ResultError,
		Error:  "AllComponentsTest: timeout exceeded: editor still running after 3m0s",
	}

	return suite.Report{
		RunID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		StartTime:    time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Duration:     3 * time.Second,
		TotalCases:   3,
		PassedCases:  1,
		FailedCases:  1,
		ErrorCases:   1,
		Suites: []suite.SuiteResult{
			{Suite: "AllComponentsIndepthTests", Result: suite.ResultFailed, Cases: []suite.CaseResult{passed, failed}},
			{Suite: "AllComponentsBasicTests", Result: suite.ResultError, Cases: []suite.CaseResult{errored}},
		},
	}
}

func replay(r suite.Reporter, report suite.Report) {
	r.ReportStart(report.RunID, suite.RunConfig{Parallel: 2}, []suite.Suite{{Name: "AllComponentsIndepthTests", Cases: []suite.Case{{Name: "a"}, {Name: "b"}}}})
	for _, s := range report.Suites {
		for _, c := range s.Cases {
			r.ReportCaseStart(s.Suite, suite.Case{Name: c.Case, Script: c.Case + ".py"})
			r.ReportCaseResult(c)
		}
		r.ReportSuiteResult(s)
	}
	r.ReportRunResult(report)
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	replay(NewConsoleReporter(&buf, false), sampleReport())
	out := buf.String()

	assert.Contains(t, out, "edharness run 0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Contains(t, out, "1 suite(s), 2 case(s), parallel 2")
	assert.Contains(t, out, "AllComponentsIndepthTests/BasicLevelSetup_SetsUpLevel")
	assert.Contains(t, out, "AllComponentsIndepthTests/AllComponentsIndepthTests")
	assert.NotContains(t, out, "…")
	assert.Contains(t, out, "PASSED")
	assert.Contains(t, out, "missing:    Component tests completed")
	assert.Contains(t, out, "unexpected: Assert")
	assert.Contains(t, out, "FAIL AreaLight_1.ppm")
	assert.Contains(t, out, "timeout exceeded")
	assert.Contains(t, out, "log: /logs/run/")
	assert.Contains(t, out, "33.3% passed")
	assert.Contains(t, out, "Some tests did not pass")
	assert.NotContains(t, out, "Assert in renderer", "output tail is verbose only")
	assert.NotContains(t, out, "🎯", "case starts are verbose only")
}

func TestConsoleReporter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	replay(NewConsoleReporter(&buf, true), sampleReport())
	out := buf.String()

	assert.Contains(t, out, "🎯 AllComponentsIndepthTests/AllComponentsIndepthTests (AllComponentsIndepthTests.py)")
	assert.Contains(t, out, "│ Assert in renderer")
	assert.Contains(t, out, "suite AllComponentsBasicTests")
}

func TestConsoleReporter_AllPassed(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleReporter(&buf, false).ReportRunResult(suite.Report{RunID: "r", TotalCases: 2, PassedCases: 2})
	assert.Contains(t, buf.String(), "All tests passed!")
}

func TestPadColumn(t *testing.T) {
	assert.Equal(t, "abc  ", padColumn("abc", 5))
	assert.Equal(t, "abcdefgh", padColumn("abcdefgh", 5))
	// Wide runes take two cells.
	assert.Equal(t, "日本 ", padColumn("日本", 5))
}

func TestConsoleReporter_NameColumnFitsLongestName(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false)
	r.ReportStart("run", suite.RunConfig{}, []suite.Suite{
		{Name: "AllComponentsIndepthTests", Cases: []suite.Case{{Name: "BasicLevelSetup_SetsUpLevel"}, {Name: "AllComponentsIndepthTests"}}},
		{Name: "Smoke", Cases: []suite.Case{{Name: "Hello"}}},
	})
	buf.Reset()

	r.ReportCaseResult(suite.CaseResult{Suite: "AllComponentsIndepthTests", Case: "BasicLevelSetup_SetsUpLevel", Result: suite.ResultPassed})
	r.ReportCaseResult(suite.CaseResult{Suite: "Smoke", Case: "Hello", Result: suite.ResultPassed})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "AllComponentsIndepthTests/BasicLevelSetup_SetsUpLevel ")
	assert.NotContains(t, buf.String(), "…")
	assert.Equal(t, strings.Index(lines[0], "PASSED"), strings.Index(lines[1], "PASSED"))
}

func TestQuietReporter(t *testing.T) {
	var buf bytes.Buffer
	replay(NewQuietReporter(&buf), sampleReport())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "AllComponentsIndepthTests/AllComponentsIndepthTests: validation failure")
	assert.Contains(t, lines[1], "AllComponentsBasicTests/AllComponentsTest")
	assert.Equal(t, "❌ 2/3 tests did not pass", lines[2])

	buf.Reset()
	NewQuietReporter(&buf).ReportRunResult(suite.Report{TotalCases: 4, PassedCases: 4})
	assert.Equal(t, "✅ All 4 tests passed\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	replay(NewJSONReporter(&buf), sampleReport())

	var decoded suite.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", decoded.RunID)
	require.Len(t, decoded.Suites, 2)
	assert.Equal(t, suite.ResultFailed, decoded.Suites[0].Cases[1].Result)
	assert.Equal(t, []string{"Component tests completed"}, decoded.Suites[0].Cases[1].Verdict.MissingExpected)
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveReport(dir+"/reports", sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "edharness-report-20261015-093000-0f8fad5b.json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id": "0f8fad5b-d9cb-469f-a165-70867728950e"`)
}

func TestTUIReporter(t *testing.T) {
	updates := make(chan tea.Msg, 16)
	done := make(chan struct{})
	r := NewTUIReporter(updates, done)

	r.ReportStart("run", suite.RunConfig{}, nil)
	r.ReportCaseStart("S", suite.Case{Name: "c"})
	r.ReportCaseResult(suite.CaseResult{Case: "c", Result: suite.ResultPassed})
	r.ReportSuiteResult(suite.SuiteResult{Suite: "S"})
	r.ReportRunResult(suite.Report{RunID: "run"})

	require.Len(t, updates, 5)
	assert.IsType(t, RunStartedMsg{}, <-updates)
	assert.IsType(t, CaseStartedMsg{}, <-updates)
	finished := (<-updates).(CaseFinishedMsg)
	assert.Equal(t, suite.ResultPassed, finished.Result.Result)
	assert.IsType(t, SuiteFinishedMsg{}, <-updates)
	assert.IsType(t, RunFinishedMsg{}, <-updates)

	// Once the TUI is gone sends return instead of blocking.
	close(done)
	blocked := NewTUIReporter(make(chan tea.Msg), done)
	blocked.ReportRunResult(suite.Report{})
}

func TestDetails(t *testing.T) {
	report := sampleReport()
	failed := report.Suites[0].Cases[1]

	lines := Details(failed, false)
	assert.Equal(t, []string{
		"missing:    Component tests completed",
		"unexpected: Assert",
		"FAIL AreaLight_1.ppm: similarity 0.5000 (threshold 0.9900)",
		"log: /logs/run/AllComponentsIndepthTests/AllComponentsIndepthTests.log",
	}, lines)

	withTail := Details(failed, true)
	assert.Equal(t, "│ Assert in renderer", withTail[len(withTail)-1])

	halted := suite.CaseResult{Verdict: &harness.Verdict{Halted: true, OffendingLine: "Traceback (most recent call last):"}}
	assert.Equal(t, []string{"halted on: Traceback (most recent call last):"}, Details(halted, false))

	assert.Equal(t, []string{"boom"}, Details(suite.CaseResult{Error: "boom"}, false))
}
