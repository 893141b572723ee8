package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"edharness/internal/suite"
	"edharness/pkg/logging"
)

const (
	maxLogLines       = 500
	logPaneHeight     = 10
	statusMessageTime = 3 * time.Second
)

type rowState int

const (
	rowPending rowState = iota
	rowRunning
	rowDone
)

// caseRow is one case of the run as shown in the list.
type caseRow struct {
	suite  string
	name   string
	script string
	state  rowState
	result suite.CaseResult
}

func (r caseRow) key() string {
	return rowKey(r.suite, r.name)
}

func rowKey(suiteName, caseName string) string {
	return suiteName + "/" + caseName
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// newLogEntryMsg carries one entry from the logging channel.
type newLogEntryMsg struct {
	entry logging.LogEntry
}

type updatesClosedMsg struct{}

type logsClosedMsg struct{}

// clearStatusMsg clears the status line unless a newer message replaced it.
type clearStatusMsg struct {
	id int
}

// Model is the Bubble Tea model of the run view.
type Model struct {
	updates <-chan tea.Msg
	logs    <-chan logging.LogEntry

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	logView viewport.Model

	runID    string
	rows     []caseRow
	index    map[string]int
	selected int
	report   *suite.Report

	logLines []string
	showLog  bool
	debug    bool

	statusMsg  string
	statusKind statusKind
	statusID   int

	width    int
	height   int
	quitting bool

	// copyToClipboard is replaced in tests; the system clipboard is not
	// available on headless machines.
	copyToClipboard func(string) error
}

// NewModel builds the run view. updates carries the reporting messages of the
// run, logs the entries of the logging TUI channel; either may be nil. With
// debug set, debug log entries are shown too.
func NewModel(updates <-chan tea.Msg, logs <-chan logging.LogEntry, debug bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		updates:         updates,
		logs:            logs,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		spinner:         s,
		logView:         viewport.New(80, logPaneHeight),
		index:           make(map[string]int),
		showLog:         true,
		debug:           debug,
		copyToClipboard: clipboard.WriteAll,
	}
}

// Init starts the spinner and the channel readers.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.updates != nil {
		cmds = append(cmds, waitForUpdate(m.updates))
	}
	if m.logs != nil {
		cmds = append(cmds, waitForLogEntry(m.logs))
	}
	return tea.Batch(cmds...)
}

// Finished reports whether the run delivered its final report.
func (m *Model) Finished() bool {
	return m.report != nil
}

// Report returns the final report, or nil while the run is in progress.
func (m *Model) Report() *suite.Report {
	return m.report
}

func waitForUpdate(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return msg
	}
}

func waitForLogEntry(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return logsClosedMsg{}
		}
		return newLogEntryMsg{entry: entry}
	}
}

// setStatus shows msg in the status line and schedules its removal.
func (m *Model) setStatus(msg string, kind statusKind) tea.Cmd {
	m.statusID++
	m.statusMsg = msg
	m.statusKind = kind
	id := m.statusID
	return tea.Tick(statusMessageTime, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func formatLogEntry(entry logging.LogEntry) string {
	line := fmt.Sprintf("%s [%s] [%s] %s",
		entry.Timestamp.Format("15:04:05.000"), entry.Level, entry.Subsystem, entry.Message)
	if entry.Err != nil {
		line = fmt.Sprintf("%s -- Error: %v", line, entry.Err)
	}
	return line
}
