package suite

import (
	"fmt"
	"time"

	"edharness/internal/artifacts"
	"edharness/internal/harness"
	"edharness/internal/screenshot"
)

// Result is the outcome of a case or suite.
type Result string

const (
	// ResultPassed means every expectation held.
	ResultPassed Result = "PASSED"
	// ResultFailed means the editor ran but its output or screenshots were wrong.
	ResultFailed Result = "FAILED"
	// ResultError means the harness could not run or judge the case.
	ResultError Result = "ERROR"
	// ResultSkipped means the case never ran.
	ResultSkipped Result = "SKIPPED"
)

// Suite is a group of cases sharing a level.
type Suite struct {
	// Name identifies the suite; golden images live under a directory of this name.
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Level is the level the cases work on. It is the default script argument.
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
	// WorkDir holds the test scripts and golden images. Relative paths resolve
	// against the suite file.
	WorkDir string `yaml:"work_dir,omitempty" json:"work_dir,omitempty"`
	// Timeout is the default editor time budget of the cases.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// UnexpectedLines are forbidden in every case, in addition to the case's own.
	UnexpectedLines []string `yaml:"unexpected_lines,omitempty" json:"unexpected_lines,omitempty"`
	Cases           []Case   `yaml:"cases" json:"cases"`

	// Source is the file the suite was loaded from.
	Source string `yaml:"-" json:"source,omitempty"`
}

// Case is one editor launch within a suite.
type Case struct {
	Name        string        `yaml:"name" json:"name"`
	TestCaseIDs []string      `yaml:"test_case_ids,omitempty" json:"test_case_ids,omitempty"`
	Script      string        `yaml:"script" json:"script"`
	Args        []string      `yaml:"args,omitempty" json:"args,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	ExpectedLines    []string `yaml:"expected_lines,omitempty" json:"expected_lines,omitempty"`
	UnexpectedLines  []string `yaml:"unexpected_lines,omitempty" json:"unexpected_lines,omitempty"`
	HaltOnUnexpected bool     `yaml:"halt_on_unexpected,omitempty" json:"halt_on_unexpected,omitempty"`

	// CleanLevel deletes the level before launching.
	CleanLevel bool `yaml:"clean_level,omitempty" json:"clean_level,omitempty"`
	// RequiresLevel fails the case before launch when the level does not exist.
	RequiresLevel bool `yaml:"requires_level,omitempty" json:"requires_level,omitempty"`
	// TeardownLevel deletes the level after the case, whatever its outcome.
	TeardownLevel bool `yaml:"teardown_level,omitempty" json:"teardown_level,omitempty"`
	// Screenshots are compared against golden images after a passing run.
	Screenshots []string `yaml:"screenshots,omitempty" json:"screenshots,omitempty"`
}

// Validate checks a suite for mistakes that would only surface mid-run.
func (s Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("suite %s: no cases", s.Name)
	}
	if s.Level != "" {
		if err := artifacts.ValidateName("level", s.Level); err != nil {
			return fmt.Errorf("suite %s: %w", s.Name, err)
		}
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("suite %s: case %d has no name", s.Name, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("suite %s: duplicate case %s", s.Name, c.Name)
		}
		seen[c.Name] = true
		if c.Script == "" {
			return fmt.Errorf("suite %s: case %s has no script", s.Name, c.Name)
		}
		if s.Level == "" && (c.CleanLevel || c.RequiresLevel || c.TeardownLevel) {
			return fmt.Errorf("suite %s: case %s manages a level but the suite has none", s.Name, c.Name)
		}
		for _, shot := range c.Screenshots {
			if err := artifacts.ValidateName("screenshot", shot); err != nil {
				return fmt.Errorf("suite %s: case %s: %w", s.Name, c.Name, err)
			}
		}
	}
	return nil
}

// TestCase builds the harness test case for c. defaultTimeout applies when
// neither the case nor the suite sets one.
func (s Suite) TestCase(c Case, defaultTimeout time.Duration) (harness.TestCase, error) {
	args := c.Args
	if len(args) == 0 && s.Level != "" {
		args = []string{s.Level}
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = s.Timeout
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return harness.NewTestCase(harness.TestCase{
		ID:               c.Name,
		Script:           c.Script,
		WorkDir:          s.WorkDir,
		Timeout:          timeout,
		Args:             args,
		ExpectedLines:    c.ExpectedLines,
		UnexpectedLines:  mergeUnique(c.UnexpectedLines, s.UnexpectedLines),
		HaltOnUnexpected: c.HaltOnUnexpected,
	})
}

func mergeUnique(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// Filter selects what to run. Patterns use doublestar syntax; an empty list
// matches everything.
type Filter struct {
	Suites []string `json:"suites,omitempty"`
	Cases  []string `json:"cases,omitempty"`
	// Tags match the test case IDs of a case.
	Tags []string `json:"tags,omitempty"`
}

// RunConfig controls one run.
type RunConfig struct {
	Filter   Filter `json:"filter"`
	Parallel int    `json:"parallel"`
	FailFast bool   `json:"fail_fast"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Suite       string    `json:"suite"`
	Case        string    `json:"case"`
	TestCaseIDs []string  `json:"test_case_ids,omitempty"`
	Result      Result    `json:"result"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	// Duration of the whole case including preparation and teardown.
	Duration time.Duration `json:"duration"`
	// Error explains a non-passing result.
	Error string `json:"error,omitempty"`
	// ErrorKind names the harness error kind behind an ERROR or FAILED result.
	ErrorKind   string                  `json:"error_kind,omitempty"`
	Verdict     *harness.Verdict        `json:"verdict,omitempty"`
	ExitCode    int                     `json:"exit_code"`
	HaltedOn    string                  `json:"halted_on,omitempty"`
	LogPath     string                  `json:"log_path,omitempty"`
	OutputTail  []string                `json:"output_tail,omitempty"`
	Screenshots []screenshot.Comparison `json:"screenshots,omitempty"`
}

// SuiteResult is the outcome of one suite.
type SuiteResult struct {
	Suite     string        `json:"suite"`
	Level     string        `json:"level,omitempty"`
	Result    Result        `json:"result"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Cases     []CaseResult  `json:"cases"`
}

// Report is the outcome of a whole run.
type Report struct {
	RunID     string        `json:"run_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	TotalCases   int `json:"total_cases"`
	PassedCases  int `json:"passed_cases"`
	FailedCases  int `json:"failed_cases"`
	ErrorCases   int `json:"error_cases"`
	SkippedCases int `json:"skipped_cases"`

	Suites        []SuiteResult `json:"suites"`
	Configuration RunConfig     `json:"configuration"`
}

// Passed reports whether every case that ran passed and none was skipped.
func (r Report) Passed() bool {
	return r.TotalCases > 0 && r.PassedCases == r.TotalCases
}

func (r *Report) count(res Result) {
	r.TotalCases++
	switch res {
	case ResultPassed:
		r.PassedCases++
	case ResultFailed:
		r.FailedCases++
	case ResultError:
		r.ErrorCases++
	case ResultSkipped:
		r.SkippedCases++
	}
}

// Reporter receives progress while suites run. Suites run concurrently, so
// implementations must be safe for concurrent use.
type Reporter interface {
	ReportStart(runID string, config RunConfig, suites []Suite)
	ReportCaseStart(suite string, c Case)
	ReportCaseResult(result CaseResult)
	ReportSuiteResult(result SuiteResult)
	ReportRunResult(report Report)
}
