package harness

import (
	"fmt"
	"strings"
	"time"
)

// DefaultUnexpectedLines are the crash markers forbidden in nearly every case.
var DefaultUnexpectedLines = []string{
	"Traceback (most recent call last):",
}

// TestCase describes one launch of the editor. Build it with NewTestCase so the
// invariants hold; after that it is treated as a value and never mutated.
type TestCase struct {
	// ID identifies the case in logs and reports.
	ID string `json:"id" yaml:"id"`
	// Script is the editor test script, relative to WorkDir.
	Script string `json:"script" yaml:"script"`
	// WorkDir is where Script lives and where the editor is started.
	WorkDir string `json:"work_dir" yaml:"work_dir"`
	// Timeout is the time budget for the whole editor run.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// Args are forwarded to the script in order.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
	// ExpectedLines must each appear in some captured line.
	ExpectedLines []string `json:"expected_lines,omitempty" yaml:"expected_lines,omitempty"`
	// UnexpectedLines must not appear in any captured line.
	UnexpectedLines []string `json:"unexpected_lines,omitempty" yaml:"unexpected_lines,omitempty"`
	// HaltOnUnexpected aborts the run at the first forbidden line.
	HaltOnUnexpected bool `json:"halt_on_unexpected,omitempty" yaml:"halt_on_unexpected,omitempty"`
}

// NewTestCase validates tc and returns a copy that shares no slices with it.
func NewTestCase(tc TestCase) (TestCase, error) {
	if err := tc.Validate(); err != nil {
		return TestCase{}, err
	}
	tc.Args = cloneStrings(tc.Args)
	tc.ExpectedLines = cloneStrings(tc.ExpectedLines)
	tc.UnexpectedLines = cloneStrings(tc.UnexpectedLines)
	return tc, nil
}

// Validate reports whether the case can be run and judged.
func (tc TestCase) Validate() error {
	if tc.ID == "" {
		return fmt.Errorf("test case id is required")
	}
	if tc.Script == "" {
		return fmt.Errorf("test case %s: script is required", tc.ID)
	}
	if tc.Timeout <= 0 {
		return fmt.Errorf("test case %s: timeout must be positive", tc.ID)
	}

	// An empty substring matches every line, which would make the verdict meaningless.
	for _, s := range tc.ExpectedLines {
		if s == "" {
			return fmt.Errorf("test case %s: expected lines must not be empty", tc.ID)
		}
	}
	forbidden := make(map[string]struct{}, len(tc.UnexpectedLines))
	for _, s := range tc.UnexpectedLines {
		if s == "" {
			return fmt.Errorf("test case %s: unexpected lines must not be empty", tc.ID)
		}
		forbidden[s] = struct{}{}
	}
	for _, s := range tc.ExpectedLines {
		if _, ok := forbidden[s]; ok {
			return fmt.Errorf("test case %s: %q is both expected and unexpected", tc.ID, s)
		}
	}
	return nil
}

// RunResult is what one editor launch produced.
type RunResult struct {
	// Lines is the merged output in arrival order.
	Lines []string `json:"lines,omitempty"`
	// ExitCode is the process exit status, or -1 when it was killed.
	ExitCode int `json:"exit_code"`
	// Duration is the wall time from start until the process was reaped.
	Duration time.Duration `json:"duration"`
	// HaltedOn is the forbidden line that triggered an early abort, if any.
	HaltedOn string `json:"halted_on,omitempty"`
	// LogPath is where the captured output was persisted.
	LogPath string `json:"log_path,omitempty"`
}

// Verdict is the judgement of a RunResult against a TestCase.
type Verdict struct {
	Passed            bool     `json:"passed"`
	MissingExpected   []string `json:"missing_expected,omitempty"`
	MatchedUnexpected []string `json:"matched_unexpected,omitempty"`
	// OffendingLine is the first captured line that held a forbidden substring.
	OffendingLine string `json:"offending_line,omitempty"`
	// Halted is set when evaluation stopped at the first forbidden line.
	Halted bool `json:"halted,omitempty"`
}

// Summary renders the verdict for logs and error messages.
func (v Verdict) Summary() string {
	if v.Passed {
		return "all expected lines found, no unexpected lines"
	}

	var b strings.Builder
	if v.Halted {
		fmt.Fprintf(&b, "halted on unexpected line %q", v.OffendingLine)
		return b.String()
	}
	if len(v.MissingExpected) > 0 {
		fmt.Fprintf(&b, "%d expected line(s) missing: %s", len(v.MissingExpected), quoteJoin(v.MissingExpected))
	}
	if len(v.MatchedUnexpected) > 0 {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%d unexpected line(s) found: %s", len(v.MatchedUnexpected), quoteJoin(v.MatchedUnexpected))
	}
	return b.String()
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
