package reporting

import (
	tea "github.com/charmbracelet/bubbletea"

	"edharness/internal/suite"
)

// RunStartedMsg announces a run to the TUI.
type RunStartedMsg struct {
	RunID  string
	Config suite.RunConfig
	Suites []suite.Suite
}

// CaseStartedMsg is sent when a case begins.
type CaseStartedMsg struct {
	Suite string
	Case  suite.Case
}

// CaseFinishedMsg is sent when a case has a result.
type CaseFinishedMsg struct {
	Result suite.CaseResult
}

// SuiteFinishedMsg is sent when every case of a suite has a result.
type SuiteFinishedMsg struct {
	Result suite.SuiteResult
}

// RunFinishedMsg carries the final report.
type RunFinishedMsg struct {
	Report suite.Report
}

// TUIReporter forwards progress to the TUI as tea messages. Sends block until
// the TUI takes them or done is closed, so results are never dropped while the
// TUI is alive.
type TUIReporter struct {
	updates chan<- tea.Msg
	done    <-chan struct{}
}

// NewTUIReporter sends on updates until done is closed.
func NewTUIReporter(updates chan<- tea.Msg, done <-chan struct{}) *TUIReporter {
	return &TUIReporter{updates: updates, done: done}
}

func (t *TUIReporter) send(msg tea.Msg) {
	select {
	case t.updates <- msg:
	case <-t.done:
	}
}

// ReportStart sends a RunStartedMsg listing the selected suites.
func (t *TUIReporter) ReportStart(runID string, config suite.RunConfig, suites []suite.Suite) {
	t.send(RunStartedMsg{RunID: runID, Config: config, Suites: suites})
}

// ReportCaseStart sends a CaseStartedMsg so the view can show a spinner.
func (t *TUIReporter) ReportCaseStart(suiteName string, c suite.Case) {
	t.send(CaseStartedMsg{Suite: suiteName, Case: c})
}

// ReportCaseResult sends a CaseFinishedMsg.
func (t *TUIReporter) ReportCaseResult(result suite.CaseResult) {
	t.send(CaseFinishedMsg{Result: result})
}

// ReportSuiteResult sends a SuiteFinishedMsg.
func (t *TUIReporter) ReportSuiteResult(result suite.SuiteResult) {
	t.send(SuiteFinishedMsg{Result: result})
}

// ReportRunResult sends the final report as a RunFinishedMsg.
func (t *TUIReporter) ReportRunResult(report suite.Report) {
	t.send(RunFinishedMsg{Report: report})
}
