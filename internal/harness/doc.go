// Package harness launches the editor against a single test case and judges the
// run.
//
// A run has two halves. Adapter.Run starts the editor through a Launcher,
// streams its merged stdout/stderr line by line, and enforces the case's time
// budget; when the budget elapses the whole process group is terminated and
// the partial output is returned together with ErrTimeoutExceeded. Evaluate is
// a pure function of the captured lines and the case: every expected substring
// must appear in some line, no forbidden substring may appear in any line.
//
// Failures carry one of four kinds so callers can tell a broken harness from a
// regressed editor:
//
//	ErrLaunchFailure     the editor or the script could not be started
//	ErrTimeoutExceeded   the editor outlived the time budget
//	ErrValidationFailure output or screenshots did not match expectations
//	ErrPrecursorMissing  an artifact from an earlier phase is absent
//
// Every captured run is also written to a durable log for post-mortem reading.
package harness
