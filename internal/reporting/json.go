package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"edharness/internal/suite"
)

// JSONReporter prints nothing until the run ends, then the whole report as JSON.
type JSONReporter struct {
	out io.Writer
}

// NewJSONReporter writes to out.
func NewJSONReporter(out io.Writer) *JSONReporter {
	return &JSONReporter{out: out}
}

// ReportStart does nothing; only the final report is written.
func (r *JSONReporter) ReportStart(string, suite.RunConfig, []suite.Suite) {}

func (r *JSONReporter) ReportCaseStart(string, suite.Case) {}

func (r *JSONReporter) ReportCaseResult(suite.CaseResult) {}

func (r *JSONReporter) ReportSuiteResult(suite.SuiteResult) {}

// ReportRunResult writes the report as indented JSON.
func (r *JSONReporter) ReportRunResult(report suite.Report) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(r.out, `{"error": "failed to marshal results: %v"}`+"\n", err)
		return
	}
	fmt.Fprintln(r.out, string(data))
}

// SaveReport writes report as indented JSON into dir and returns the file path.
func SaveReport(dir string, report suite.Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := report.StartTime.Format("20060102-150405")
	if report.StartTime.IsZero() {
		timestamp = time.Now().Format("20060102-150405")
	}
	path := filepath.Join(dir, fmt.Sprintf("edharness-report-%s-%s.json", timestamp, shortID(report.RunID)))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
