package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"edharness/internal/reporting"
	"edharness/internal/suite"
)

const nameColumnWidth = 56

// View renders the header, case list, details, log pane and status line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader(), m.renderRows()}
	if details := m.renderDetails(); details != "" {
		sections = append(sections, details)
	}
	if m.showLog {
		sections = append(sections, m.renderLogPane())
	}
	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	if m.report != nil {
		r := m.report
		verdict := "🎉 All tests passed"
		if !r.Passed() {
			verdict = "💔 Some tests did not pass"
		}
		return headerStyle.Render(fmt.Sprintf("%s  %d passed, %d failed, %d errors, %d skipped in %v",
			verdict, r.PassedCases, r.FailedCases, r.ErrorCases, r.SkippedCases, r.Duration.Round(time.Millisecond)))
	}
	if m.runID == "" {
		return headerStyle.Render(m.spinner.View() + " Loading suites...")
	}

	done := 0
	for _, row := range m.rows {
		if row.state == rowDone {
			done++
		}
	}
	return headerStyle.Render(fmt.Sprintf("%s Run %s  %d/%d cases", m.spinner.View(), m.runID, done, len(m.rows)))
}

func (m *Model) renderRows() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("  no cases")
	}

	lines := make([]string, 0, len(m.rows))
	for i, row := range m.rows {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}

		name := fitColumn(row.key(), nameColumnWidth)
		var line string
		switch row.state {
		case rowPending:
			line = fmt.Sprintf("%s·  %s %s", cursor, name, dimStyle.Render("pending"))
		case rowRunning:
			line = fmt.Sprintf("%s%s %s %s", cursor, m.spinner.View(), name, dimStyle.Render("running "+row.script))
		default:
			res := row.result.Result
			line = fmt.Sprintf("%s%s %s %s %s", cursor, reporting.Symbol(res), name,
				resultStyles[res].Render(string(res)), dimStyle.Render(row.result.Duration.Round(time.Millisecond).String()))
		}
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderDetails shows why the highlighted case did not pass.
func (m *Model) renderDetails() string {
	if len(m.rows) == 0 {
		return ""
	}
	row := m.rows[m.selected]
	if row.state != rowDone || row.result.Result == suite.ResultPassed {
		return ""
	}
	lines := reporting.Details(row.result, false)
	if len(lines) == 0 {
		return ""
	}
	return detailStyle.Render("\n" + strings.Join(lines, "\n"))
}

func (m *Model) renderLogPane() string {
	title := logTitleStyle.Render("📜 Log")
	return logPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.logView.View()))
}

func (m *Model) renderStatus() string {
	helpView := m.help.View(m.keys)
	if m.statusMsg == "" {
		return helpView
	}
	style := dimStyle
	switch m.statusKind {
	case statusSuccess:
		style = statusSuccessStyle
	case statusError:
		style = statusErrorStyle
	}
	return style.Render(m.statusMsg) + "\n" + helpView
}

// renderLogLines tints each line by its level keyword.
func renderLogLines(lines []string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line
		for keyword, style := range logLevelStyles {
			if strings.Contains(line, keyword) {
				out[i] = style.Render(line)
				break
			}
		}
	}
	return strings.Join(out, "\n")
}

func fitColumn(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
