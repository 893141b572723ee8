package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"edharness/internal/reporting"
	"edharness/internal/suite"
	"edharness/pkg/logging"
)

// Update applies one message to the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.logView.Width = max(msg.Width-logPanelStyle.GetHorizontalFrameSize(), 0)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reporting.RunStartedMsg:
		m.startRun(msg)
		return m, m.nextUpdate()

	case reporting.CaseStartedMsg:
		if i, ok := m.index[rowKey(msg.Suite, msg.Case.Name)]; ok {
			m.rows[i].state = rowRunning
		}
		return m, m.nextUpdate()

	case reporting.CaseFinishedMsg:
		m.finishCase(msg.Result)
		return m, m.nextUpdate()

	case reporting.SuiteFinishedMsg:
		return m, m.nextUpdate()

	case reporting.RunFinishedMsg:
		report := msg.Report
		m.report = &report
		return m, m.nextUpdate()

	case updatesClosedMsg:
		return m, nil

	case newLogEntryMsg:
		m.appendLogEntry(msg.entry)
		return m, m.nextLogEntry()

	case logsClosedMsg:
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.statusMsg = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) startRun(msg reporting.RunStartedMsg) {
	m.runID = msg.RunID
	m.rows = m.rows[:0]
	m.index = make(map[string]int)
	m.selected = 0
	m.report = nil
	for _, s := range msg.Suites {
		for _, c := range s.Cases {
			row := caseRow{suite: s.Name, name: c.Name, script: c.Script}
			m.index[row.key()] = len(m.rows)
			m.rows = append(m.rows, row)
		}
	}
}

func (m *Model) finishCase(result suite.CaseResult) {
	i, ok := m.index[rowKey(result.Suite, result.Case)]
	if !ok {
		return
	}
	m.rows[i].state = rowDone
	m.rows[i].result = result
}

// copySelected puts the failure details of the highlighted case on the
// clipboard.
func (m *Model) copySelected() tea.Cmd {
	if len(m.rows) == 0 {
		return m.setStatus("No case selected", statusInfo)
	}
	row := m.rows[m.selected]
	if row.state != rowDone || row.result.Result == suite.ResultPassed {
		return m.setStatus("No failure details for "+row.key(), statusInfo)
	}

	text := failureText(row.result)
	if err := m.copyToClipboard(text); err != nil {
		logging.Error("TUI", err, "Failed to copy failure details")
		return m.setStatus("Copy failed", statusError)
	}
	return m.setStatus("Failure details of "+row.key()+" copied", statusSuccess)
}

func failureText(result suite.CaseResult) string {
	var b strings.Builder
	b.WriteString(rowKey(result.Suite, result.Case))
	b.WriteString(": ")
	b.WriteString(string(result.Result))
	if len(result.TestCaseIDs) > 0 {
		b.WriteString(" (" + strings.Join(result.TestCaseIDs, ", ") + ")")
	}
	b.WriteString("\n")
	for _, line := range reporting.Details(result, true) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) appendLogEntry(entry logging.LogEntry) {
	if entry.Level < logging.LevelInfo && !m.debug {
		return
	}
	m.logLines = append(m.logLines, formatLogEntry(entry))
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logView.SetContent(renderLogLines(m.logLines))
	m.logView.GotoBottom()
}

func (m *Model) nextUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return waitForUpdate(m.updates)
}

func (m *Model) nextLogEntry() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	return waitForLogEntry(m.logs)
}
