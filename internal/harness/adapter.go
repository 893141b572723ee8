package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"edharness/pkg/logging"
)

// errHalted is the cancellation cause used when a forbidden line aborts a run.
var errHalted = errors.New("halted on unexpected line")

// Adapter runs test cases through a Launcher and judges them.
type Adapter struct {
	launcher Launcher
	logDir   string
}

// NewAdapter creates an adapter. Captured output is persisted under logDir;
// an empty logDir disables the durable log.
func NewAdapter(launcher Launcher, logDir string) *Adapter {
	return &Adapter{
		launcher: launcher,
		logDir:   logDir,
	}
}

// Run launches the editor for tc and captures its output within tc.Timeout.
//
// On timeout the returned error wraps ErrTimeoutExceeded and the returned
// RunResult holds the output captured until then. A run halted by a forbidden
// line is not an error; Evaluate reports it.
func (a *Adapter) Run(ctx context.Context, tc TestCase) (RunResult, error) {
	if err := tc.Validate(); err != nil {
		return RunResult{}, NewError(ErrLaunchFailure, tc.ID, err)
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, tc.Timeout)
	defer cancelTimeout()
	runCtx, halt := context.WithCancelCause(timeoutCtx)
	defer halt(nil)

	var (
		haltOnce sync.Once
		haltedOn string
	)
	onLine := func(line string) {
		logging.Debug("Editor", "[%s] %s", tc.ID, line)
		if !tc.HaltOnUnexpected {
			return
		}
		for _, forbidden := range tc.UnexpectedLines {
			if strings.Contains(line, forbidden) {
				haltOnce.Do(func() {
					haltedOn = line
					halt(errHalted)
				})
				return
			}
		}
	}

	logging.Info("Adapter", "running %s (%s, timeout %v)", tc.ID, tc.Script, tc.Timeout)
	result, err := a.launcher.Launch(runCtx, tc, onLine)
	if errors.Is(context.Cause(runCtx), errHalted) {
		// onLine ran on the capture goroutine, which Launch has joined.
		result.HaltedOn = haltedOn
	}

	if path, werr := a.writeLog(tc, result, err); werr != nil {
		logging.Warn("Adapter", "could not persist output of %s: %v", tc.ID, werr)
	} else {
		result.LogPath = path
	}

	if err == nil {
		if result.ExitCode != 0 {
			logging.Warn("Adapter", "editor for %s exited with status %d", tc.ID, result.ExitCode)
		}
		return result, nil
	}

	var herr *Error
	switch {
	case errors.As(err, &herr):
		if herr.Result == nil {
			herr.Result = &result
		}
		return result, herr
	case result.HaltedOn != "" && errors.Is(err, context.Canceled) && ctx.Err() == nil:
		logging.Warn("Adapter", "%s halted on unexpected line %q", tc.ID, result.HaltedOn)
		return result, nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return result, &Error{
			Kind:   ErrTimeoutExceeded,
			CaseID: tc.ID,
			Result: &result,
			Err:    fmt.Errorf("editor still running after %v", tc.Timeout),
		}
	default:
		return result, fmt.Errorf("%s: run interrupted: %w", tc.ID, err)
	}
}

// LaunchAndValidate runs tc and evaluates the result. The error wraps
// ErrValidationFailure when the verdict fails.
func (a *Adapter) LaunchAndValidate(ctx context.Context, tc TestCase) (RunResult, Verdict, error) {
	result, err := a.Run(ctx, tc)
	if err != nil {
		return result, Verdict{}, err
	}

	verdict := Evaluate(result, tc)
	if !verdict.Passed {
		return result, verdict, &Error{
			Kind:    ErrValidationFailure,
			CaseID:  tc.ID,
			Result:  &result,
			Verdict: &verdict,
			Err:     errors.New(verdict.Summary()),
		}
	}
	logging.Info("Adapter", "%s passed in %v", tc.ID, result.Duration.Round(time.Millisecond))
	return result, verdict, nil
}

// writeLog persists the captured output of one run.
func (a *Adapter) writeLog(tc TestCase, result RunResult, runErr error) (string, error) {
	if a.logDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(a.logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# case: %s\n", tc.ID)
	fmt.Fprintf(&b, "# script: %s\n", tc.Script)
	fmt.Fprintf(&b, "# args: %s\n", strings.Join(tc.Args, " "))
	fmt.Fprintf(&b, "# exit code: %d\n", result.ExitCode)
	fmt.Fprintf(&b, "# duration: %v\n", result.Duration)
	if result.HaltedOn != "" {
		fmt.Fprintf(&b, "# halted on: %s\n", result.HaltedOn)
	}
	if runErr != nil {
		fmt.Fprintf(&b, "# error: %v\n", runErr)
	}
	for _, line := range result.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	path := filepath.Join(a.logDir, SanitizeFileName(tc.ID)+".log")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return path, nil
}

// SanitizeFileName makes a case or suite name safe to use as a file name.
func SanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)

	sanitized := replacer.Replace(name)
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	return sanitized
}
