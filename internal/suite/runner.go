package suite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"edharness/internal/artifacts"
	"edharness/internal/config"
	"edharness/internal/harness"
	"edharness/internal/screenshot"
	"edharness/pkg/logging"
)

const outputTailLines = 20

// Options wires a Runner to the editor, the workspace and a reporter.
type Options struct {
	Launcher harness.Launcher
	// Comparer defaults to a PixelComparer using Golden.Threshold.
	Comparer  screenshot.Comparer
	Workspace config.Workspace
	Golden    config.GoldenConfig
	// Locks serialises access to levels; nil disables level locking.
	Locks    *artifacts.LevelLock
	Reporter Reporter
	// LogDir receives captured output as <LogDir>/<runID>/<suite>/<case>.log
	// and diff images under <LogDir>/<runID>/<suite>/diffs/<case>.
	LogDir         string
	DefaultTimeout time.Duration
}

// Runner executes suites.
type Runner struct {
	opts     Options
	newRunID func() string
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Comparer == nil {
		opts.Comparer = &screenshot.PixelComparer{Threshold: opts.Golden.Threshold}
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 180 * time.Second
	}
	return &Runner{
		opts:     opts,
		newRunID: uuid.NewString,
	}
}

// Run filters suites by cfg and runs what is left. Suites run concurrently up
// to cfg.Parallel; the cases of a suite run in order. The error is non-nil only
// when the run could not start; case failures are in the report.
func (r *Runner) Run(ctx context.Context, cfg RunConfig, suites []Suite) (*Report, error) {
	selected, err := FilterSuites(suites, cfg.Filter)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:         r.newRunID(),
		StartTime:     time.Now(),
		Configuration: cfg,
	}
	r.opts.Reporter.ReportStart(report.RunID, cfg, selected)
	logging.Info("Suite", "run %s: %d suite(s), parallel %d", report.RunID, len(selected), max(cfg.Parallel, 1))

	results := make([]SuiteResult, len(selected))
	var stop atomic.Bool

	p := pool.New().WithMaxGoroutines(max(cfg.Parallel, 1))
	for i, s := range selected {
		p.Go(func() {
			results[i] = r.runSuite(ctx, report.RunID, s, cfg.FailFast, &stop)
			r.opts.Reporter.ReportSuiteResult(results[i])
		})
	}
	p.Wait()

	report.Suites = results
	for _, sr := range results {
		for _, cr := range sr.Cases {
			report.count(cr.Result)
		}
	}
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	r.opts.Reporter.ReportRunResult(*report)
	return report, nil
}

func (r *Runner) runSuite(ctx context.Context, runID string, s Suite, failFast bool, stop *atomic.Bool) (res SuiteResult) {
	res = SuiteResult{
		Suite:     s.Name,
		Level:     s.Level,
		StartTime: time.Now(),
		Cases:     make([]CaseResult, 0, len(s.Cases)),
	}
	defer func() {
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
		res.Result = suiteOutcome(res.Cases)
	}()

	if failFast && stop.Load() {
		r.closeCases(&res, s.Cases, ResultSkipped, "skipped after an earlier failure")
		return res
	}

	if s.Level != "" && r.opts.Locks != nil {
		if err := r.opts.Locks.Lock(ctx, s.Level); err != nil {
			logging.Error("Suite", err, "suite %s could not lock its level", s.Name)
			r.closeCases(&res, s.Cases, ResultError, err.Error())
			return res
		}
		defer r.opts.Locks.Unlock(s.Level)
	}

	suiteDir := r.logDir(runID, s.Name)
	adapter := harness.NewAdapter(r.opts.Launcher, suiteDir)
	for i, c := range s.Cases {
		if ctx.Err() != nil {
			r.closeCases(&res, s.Cases[i:], ResultSkipped, "run cancelled")
			return res
		}
		if failFast && stop.Load() {
			r.closeCases(&res, s.Cases[i:], ResultSkipped, "skipped after an earlier failure")
			return res
		}

		r.opts.Reporter.ReportCaseStart(s.Name, c)
		cr := r.runCase(ctx, adapter, r.comparer(suiteDir, c), s, c)
		res.Cases = append(res.Cases, cr)
		r.opts.Reporter.ReportCaseResult(cr)

		if cr.Result != ResultPassed {
			logging.Warn("Suite", "%s/%s %s: %s", s.Name, c.Name, cr.Result, cr.Error)
			if failFast {
				stop.Store(true)
			}
		}
	}
	return res
}

// runCase runs the per-case protocol: precursor checks, cleanup, launch and
// validation, screenshot comparison and, when asked, level teardown.
func (r *Runner) runCase(ctx context.Context, adapter *harness.Adapter, cmp screenshot.Comparer, s Suite, c Case) (cr CaseResult) {
	cr = CaseResult{
		Suite:       s.Name,
		Case:        c.Name,
		TestCaseIDs: c.TestCaseIDs,
		StartTime:   time.Now(),
		ExitCode:    -1,
	}
	defer func() {
		cr.EndTime = time.Now()
		cr.Duration = cr.EndTime.Sub(cr.StartTime)
	}()

	ws := r.opts.Workspace
	if c.TeardownLevel {
		defer func() {
			if err := artifacts.CleanLevel(ws, s.Level); err != nil {
				logging.Error("Suite", err, "teardown of level %s failed", s.Level)
				if cr.Result == ResultPassed {
					cr.Result = ResultError
					cr.Error = fmt.Sprintf("teardown failed: %v", err)
				}
			}
		}()
	}

	tc, err := s.TestCase(c, r.opts.DefaultTimeout)
	if err != nil {
		r.finish(&cr, harness.NewError(harness.ErrLaunchFailure, c.Name, err))
		return cr
	}

	if c.RequiresLevel {
		if err := artifacts.RequireLevel(ws, c.Name, s.Level); err != nil {
			r.finish(&cr, err)
			return cr
		}
	}
	pairs := r.screenshotPairs(s, c)
	goldens := make([]string, len(pairs))
	for i, p := range pairs {
		goldens[i] = p.Golden
	}
	if err := artifacts.RequireFiles(c.Name, goldens...); err != nil {
		r.finish(&cr, err)
		return cr
	}

	if c.CleanLevel {
		if err := artifacts.CleanLevel(ws, s.Level); err != nil {
			r.finish(&cr, fmt.Errorf("failed to clean level: %w", err))
			return cr
		}
	}
	if err := artifacts.CleanScreenshots(ws, c.Screenshots); err != nil {
		r.finish(&cr, fmt.Errorf("failed to remove stale screenshots: %w", err))
		return cr
	}

	result, verdict, err := adapter.LaunchAndValidate(ctx, tc)
	cr.ExitCode = result.ExitCode
	cr.HaltedOn = result.HaltedOn
	cr.LogPath = result.LogPath
	cr.OutputTail = tail(result.Lines, outputTailLines)
	if err == nil || harness.KindOf(err) == harness.ErrValidationFailure {
		cr.Verdict = &verdict
	}
	if err != nil {
		r.finish(&cr, err)
		return cr
	}

	if len(pairs) > 0 {
		comparisons, err := screenshot.CompareAll(ctx, cmp, c.Name, pairs)
		cr.Screenshots = comparisons
		if err != nil {
			r.finish(&cr, err)
			return cr
		}
	}

	cr.Result = ResultPassed
	return cr
}

// finish records err on cr. Validation failures are FAILED, anything else ERROR.
func (r *Runner) finish(cr *CaseResult, err error) {
	cr.Error = err.Error()
	kind := harness.KindOf(err)
	if kind != nil {
		cr.ErrorKind = kind.Error()
	}
	if kind == harness.ErrValidationFailure {
		cr.Result = ResultFailed
		return
	}
	cr.Result = ResultError
}

// closeCases records cases that will not run.
func (r *Runner) closeCases(res *SuiteResult, cases []Case, result Result, reason string) {
	now := time.Now()
	for _, c := range cases {
		cr := CaseResult{
			Suite:       res.Suite,
			Case:        c.Name,
			TestCaseIDs: c.TestCaseIDs,
			Result:      result,
			StartTime:   now,
			EndTime:     now,
			Error:       reason,
			ExitCode:    -1,
		}
		res.Cases = append(res.Cases, cr)
		r.opts.Reporter.ReportCaseResult(cr)
	}
}

func (r *Runner) screenshotPairs(s Suite, c Case) []screenshot.Pair {
	if len(c.Screenshots) == 0 {
		return nil
	}

	golden := r.opts.Golden
	if !filepath.IsAbs(golden.Root) {
		golden.Root = filepath.Join(s.WorkDir, golden.Root)
	}

	produced := artifacts.CachedScreenshotPaths(r.opts.Workspace, c.Screenshots)
	goldens := artifacts.GoldenPaths(golden, s.Name, c.Screenshots)
	pairs := make([]screenshot.Pair, len(c.Screenshots))
	for i := range c.Screenshots {
		pairs[i] = screenshot.Pair{Produced: produced[i], Golden: goldens[i]}
	}
	return pairs
}

// comparer sends diff images of a case to <suite log dir>/diffs/<case>.
func (r *Runner) comparer(suiteDir string, c Case) screenshot.Comparer {
	d, ok := r.opts.Comparer.(screenshot.DiffDirComparer)
	if !ok || suiteDir == "" {
		return r.opts.Comparer
	}
	return d.WithDiffDir(filepath.Join(suiteDir, "diffs", harness.SanitizeFileName(c.Name)))
}

func (r *Runner) logDir(runID, suiteName string) string {
	if r.opts.LogDir == "" {
		return ""
	}
	return filepath.Join(r.opts.LogDir, runID, harness.SanitizeFileName(suiteName))
}

func suiteOutcome(cases []CaseResult) Result {
	outcome := ResultPassed
	for _, c := range cases {
		switch c.Result {
		case ResultError:
			return ResultError
		case ResultFailed:
			outcome = ResultFailed
		case ResultSkipped:
			if outcome == ResultPassed {
				outcome = ResultSkipped
			}
		}
	}
	return outcome
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

type nopReporter struct{}

func (nopReporter) ReportStart(string, RunConfig, []Suite) {}
func (nopReporter) ReportCaseStart(string, Case) {}
func (nopReporter) ReportCaseResult(CaseResult) {}
func (nopReporter) ReportSuiteResult(SuiteResult) {}
func (nopReporter) ReportRunResult(Report) {}
