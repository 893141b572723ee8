package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"edharness/internal/suite"
)

// minNameColumnWidth keeps short runs aligned; longer names widen the column.
const minNameColumnWidth = 32

// ConsoleReporter prints a line per finished case and a summary at the end.
type ConsoleReporter struct {
	mu        sync.Mutex
	out       io.Writer
	verbose   bool
	styles    styles
	nameWidth int
}

// NewConsoleReporter writes to out. Verbose adds case starts, expectation
// details and the tail of the editor output of failed cases.
func NewConsoleReporter(out io.Writer, verbose bool) *ConsoleReporter {
	return &ConsoleReporter{
		out:     out,
		verbose:   verbose,
		styles:    newStyles(lipgloss.NewRenderer(out)),
		nameWidth: minNameColumnWidth,
	}
}

// ReportStart prints the run header and sizes the name column.
func (r *ConsoleReporter) ReportStart(runID string, config suite.RunConfig, suites []suite.Suite) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cases := 0
	for _, s := range suites {
		cases += len(s.Cases)
		for _, c := range s.Cases {
			r.nameWidth = max(r.nameWidth, runewidth.StringWidth(s.Name+"/"+c.Name))
		}
	}
	fmt.Fprintln(r.out, r.styles.title.Render(fmt.Sprintf("🧪 edharness run %s", runID)))
	fmt.Fprintf(r.out, "   %d suite(s), %d case(s), parallel %d, fail fast %t\n\n",
		len(suites), cases, max(config.Parallel, 1), config.FailFast)
}

// ReportCaseStart prints the case being started in verbose mode.
func (r *ConsoleReporter) ReportCaseStart(suiteName string, c suite.Case) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("🎯 %s/%s (%s)", suiteName, c.Name, c.Script)
	if len(c.TestCaseIDs) > 0 {
		line += " " + strings.Join(c.TestCaseIDs, ", ")
	}
	fmt.Fprintln(r.out, r.styles.dim.Render(line))
}

// ReportCaseResult prints one line per case and the details of failures.
func (r *ConsoleReporter) ReportCaseResult(result suite.CaseResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := padColumn(result.Suite+"/"+result.Case, r.nameWidth)
	status := r.styles.result[result.Result].Render(string(result.Result))
	fmt.Fprintf(r.out, "%s %s %s %s\n", Symbol(result.Result), name, status,
		r.styles.dim.Render(result.Duration.Round(time.Millisecond).String()))

	if result.Result == suite.ResultPassed {
		return
	}
	for _, line := range Details(result, r.verbose) {
		fmt.Fprintln(r.out, r.styles.detail.Render(line))
	}
}

// Details lists why a case did not pass: the verdict or error, failed
// screenshots and the log path. With tail set the captured output tail follows.
func Details(result suite.CaseResult, tail bool) []string {
	var lines []string
	if v := result.Verdict; v != nil {
		if v.Halted {
			lines = append(lines, fmt.Sprintf("halted on: %s", v.OffendingLine))
		}
		for _, m := range v.MissingExpected {
			lines = append(lines, fmt.Sprintf("missing:    %s", m))
		}
		for _, u := range v.MatchedUnexpected {
			lines = append(lines, fmt.Sprintf("unexpected: %s", u))
		}
	} else if result.Error != "" {
		lines = append(lines, result.Error)
	}
	for _, c := range result.Screenshots {
		if !c.Passed {
			lines = append(lines, c.String())
		}
	}
	if result.LogPath != "" {
		lines = append(lines, "log: "+result.LogPath)
	}
	if tail {
		for _, l := range result.OutputTail {
			lines = append(lines, "│ "+l)
		}
	}
	return lines
}

// ReportSuiteResult prints the suite outcome in verbose mode.
func (r *ConsoleReporter) ReportSuiteResult(result suite.SuiteResult) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s suite %s %s (%v)\n\n", Symbol(result.Result), result.Suite,
		r.styles.result[result.Result].Render(string(result.Result)), result.Duration.Round(time.Millisecond))
}

// ReportRunResult prints the summary.
func (r *ConsoleReporter) ReportRunResult(report suite.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Run %s complete in %v\n", report.RunID, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "✅ Passed:  %d\n", report.PassedCases)
	if report.FailedCases > 0 {
		fmt.Fprintf(&b, "❌ Failed:  %d\n", report.FailedCases)
	}
	if report.ErrorCases > 0 {
		fmt.Fprintf(&b, "💥 Errors:  %d\n", report.ErrorCases)
	}
	if report.SkippedCases > 0 {
		fmt.Fprintf(&b, "⏭️ Skipped: %d\n", report.SkippedCases)
	}
	fmt.Fprintf(&b, "📈 Total:   %d (%.1f%% passed)\n", report.TotalCases, successRate(report))
	if report.Passed() {
		b.WriteString("🎉 All tests passed!")
	} else {
		b.WriteString("💔 Some tests did not pass")
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.styles.summary.Render(b.String()))
}

func successRate(report suite.Report) float64 {
	if report.TotalCases == 0 {
		return 0
	}
	return float64(report.PassedCases) / float64(report.TotalCases) * 100
}

// padColumn pads s to width terminal cells. Longer values are kept whole.
func padColumn(s string, width int) string {
	return runewidth.FillRight(s, width)
}
