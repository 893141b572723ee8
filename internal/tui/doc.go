// Package tui implements the live terminal view of a harness run.
//
// The view is a Bubble Tea program. It receives run progress as the tea
// messages emitted by reporting.TUIReporter and log entries from the
// pkg/logging TUI channel, and renders:
//
//   - a header with a spinner while cases are running and the totals once the
//     run has finished
//   - one row per selected case, in suite and declaration order
//   - the failure details of the highlighted case
//   - an optional pane with the most recent log entries
//
// Keys: ↑/↓ (or k/j) move the highlight, c copies the failure details of the
// highlighted case to the clipboard, L toggles the log pane, h toggles the
// full help and q quits. Quitting before the run finishes cancels it.
package tui
