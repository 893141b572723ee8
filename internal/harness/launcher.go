package harness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"edharness/pkg/logging"
)

// Launcher starts the editor for a test case and streams its output.
//
// Launch blocks until the process exits or ctx is done. When ctx is done the
// launcher must terminate the process and everything it spawned before
// returning, and return the lines captured so far together with ctx.Err().
// onLine is called for every captured line, in order, from a single goroutine.
type Launcher interface {
	Launch(ctx context.Context, tc TestCase, onLine func(string)) (RunResult, error)
}

// ProcessLauncher runs the editor binary as a child process.
type ProcessLauncher struct {
	// Binary is the editor executable, looked up in PATH when not absolute.
	Binary string
	// Args go before the script flag, e.g. --autotest_mode.
	Args []string
	// ScriptFlag precedes the script path.
	ScriptFlag string
	// ArgsFlag precedes the test case args joined by spaces. Empty disables it.
	ArgsFlag string
	// Env is added to the inherited environment.
	Env map[string]string
	// KillGrace is how long a terminated editor gets before it is killed.
	KillGrace time.Duration
}

const defaultKillGrace = 10 * time.Second

// maxLineSize bounds a single captured line; editors occasionally dump large blobs.
const maxLineSize = 1024 * 1024

// Launch implements Launcher.
func (l *ProcessLauncher) Launch(ctx context.Context, tc TestCase, onLine func(string)) (RunResult, error) {
	binary, err := exec.LookPath(l.Binary)
	if err != nil {
		return RunResult{ExitCode: -1}, NewError(ErrLaunchFailure, tc.ID, fmt.Errorf("editor binary %q not found: %w", l.Binary, err))
	}

	// The editor runs inside WorkDir; the script path must stay valid there.
	workDir := tc.WorkDir
	if workDir != "" {
		if workDir, err = filepath.Abs(workDir); err != nil {
			return RunResult{ExitCode: -1}, NewError(ErrLaunchFailure, tc.ID, fmt.Errorf("resolve work dir: %w", err))
		}
	}
	script := tc.Script
	if !filepath.IsAbs(script) {
		script = filepath.Join(workDir, script)
	}
	if info, err := os.Stat(script); err != nil {
		return RunResult{ExitCode: -1}, NewError(ErrLaunchFailure, tc.ID, fmt.Errorf("test script: %w", err))
	} else if info.IsDir() {
		return RunResult{ExitCode: -1}, NewError(ErrLaunchFailure, tc.ID, fmt.Errorf("test script %s is a directory", script))
	}

	cmd := exec.Command(binary, l.CommandArgs(script, tc.Args)...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), l.envPairs()...)
	setProcessGroup(cmd)

	capture := newLineCapture(onLine)
	cmd.Stdout = capture.writer
	cmd.Stderr = capture.writer
	// Grandchildren that inherit the pipe must not keep Wait blocked forever.
	cmd.WaitDelay = l.killGrace()

	logging.Debug("Launcher", "starting %s %s", binary, strings.Join(cmd.Args[1:], " "))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		capture.close()
		return RunResult{ExitCode: -1}, NewError(ErrLaunchFailure, tc.ID, fmt.Errorf("failed to start editor: %w", err))
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		waitErr = l.terminate(cmd, done, tc.ID)
	}
	capture.close()

	result := RunResult{
		Lines:    capture.lines(),
		ExitCode: exitCode(cmd, waitErr),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	return result, nil
}

// CommandArgs composes the editor command line for a script and its args.
func (l *ProcessLauncher) CommandArgs(script string, args []string) []string {
	out := make([]string, 0, len(l.Args)+4)
	out = append(out, l.Args...)
	out = append(out, l.ScriptFlag, script)
	if l.ArgsFlag != "" && len(args) > 0 {
		out = append(out, l.ArgsFlag, strings.Join(args, " "))
	}
	return out
}

func (l *ProcessLauncher) envPairs() []string {
	keys := make([]string, 0, len(l.Env))
	for k := range l.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+l.Env[k])
	}
	return pairs
}

func (l *ProcessLauncher) killGrace() time.Duration {
	if l.KillGrace > 0 {
		return l.KillGrace
	}
	return defaultKillGrace
}

// terminate asks the process group to stop, then kills it after the grace
// period. It returns only once the process has been reaped.
func (l *ProcessLauncher) terminate(cmd *exec.Cmd, done <-chan error, caseID string) error {
	if err := signalGroup(cmd, false); err != nil {
		logging.Debug("Launcher", "terminate signal failed for %s: %v", caseID, err)
	}

	select {
	case err := <-done:
		return err
	case <-time.After(l.killGrace()):
		logging.Warn("Launcher", "editor for %s ignored termination, killing", caseID)
	}

	if err := signalGroup(cmd, true); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logging.Error("Launcher", err, "failed to kill editor for %s", caseID)
	}
	return <-done
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// lineCapture collects output written to its pipe as lines.
type lineCapture struct {
	reader *io.PipeReader
	writer *io.PipeWriter
	onLine func(string)
	wg     sync.WaitGroup
	mu     sync.RWMutex
	buf    []string
}

func newLineCapture(onLine func(string)) *lineCapture {
	lc := &lineCapture{onLine: onLine}
	lc.reader, lc.writer = io.Pipe()

	lc.wg.Add(1)
	go lc.captureOutput()
	return lc
}

func (lc *lineCapture) captureOutput() {
	defer lc.wg.Done()

	scanner := bufio.NewScanner(lc.reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lc.mu.Lock()
		lc.buf = append(lc.buf, line)
		lc.mu.Unlock()
		if lc.onLine != nil {
			lc.onLine(line)
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Warn("Launcher", "output capture stopped early: %v", err)
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, lc.reader)
	}
}

// close closes the capture pipe and waits for the reader to finish.
func (lc *lineCapture) close() {
	lc.writer.Close()
	lc.wg.Wait()
}

func (lc *lineCapture) lines() []string {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return cloneStrings(lc.buf)
}
