package reporting

import (
	"fmt"
	"io"
	"sync"

	"edharness/internal/suite"
)

// QuietReporter prints failures and one summary line, for CI logs.
type QuietReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewQuietReporter writes to out.
func NewQuietReporter(out io.Writer) *QuietReporter {
	return &QuietReporter{out: out}
}

// ReportStart does nothing; the quiet reporter prints failures only.
func (r *QuietReporter) ReportStart(string, suite.RunConfig, []suite.Suite) {}

func (r *QuietReporter) ReportCaseStart(string, suite.Case) {}

// ReportCaseResult prints a line for a case that did not pass.
func (r *QuietReporter) ReportCaseResult(result suite.CaseResult) {
	if result.Result != suite.ResultFailed && result.Result != suite.ResultError {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s/%s: %s\n", Symbol(result.Result), result.Suite, result.Case, result.Error)
}

func (r *QuietReporter) ReportSuiteResult(suite.SuiteResult) {}

// ReportRunResult prints the one-line summary.
func (r *QuietReporter) ReportRunResult(report suite.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if report.Passed() {
		fmt.Fprintf(r.out, "✅ All %d tests passed\n", report.PassedCases)
		return
	}
	fmt.Fprintf(r.out, "❌ %d/%d tests did not pass\n", report.TotalCases-report.PassedCases, report.TotalCases)
}
