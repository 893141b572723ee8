package harness

import (
	"errors"
	"fmt"
)

var (
	// ErrLaunchFailure means the editor or its script could not be started.
	ErrLaunchFailure = errors.New("launch failure")
	// ErrTimeoutExceeded means the editor did not exit within the time budget.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrValidationFailure means output or screenshots did not match expectations.
	ErrValidationFailure = errors.New("validation failure")
	// ErrPrecursorMissing means an artifact produced by an earlier phase is absent.
	ErrPrecursorMissing = errors.New("precursor missing")
)

// Error attaches the failing case and whatever diagnostics were gathered to one
// of the error kinds above. errors.Is matches both the kind and the cause.
type Error struct {
	Kind    error
	CaseID  string
	Result  *RunResult
	Verdict *Verdict
	Err     error
}

// NewError builds an Error of the given kind.
func NewError(kind error, caseID string, cause error) *Error {
	return &Error{Kind: kind, CaseID: caseID, Err: cause}
}

func (e *Error) Error() string {
	prefix := e.Kind.Error()
	if e.CaseID != "" {
		prefix = fmt.Sprintf("%s: %s", e.CaseID, prefix)
	}
	if e.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the error kind carried by err, or nil when err has none.
func KindOf(err error) error {
	for _, kind := range []error{ErrLaunchFailure, ErrTimeoutExceeded, ErrValidationFailure, ErrPrecursorMissing} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsInfrastructure reports whether err means the harness could not do its job,
// as opposed to the editor producing wrong results.
func IsInfrastructure(err error) bool {
	kind := KindOf(err)
	return kind == ErrLaunchFailure || kind == ErrTimeoutExceeded || kind == ErrPrecursorMissing
}

// PartialResult returns the output captured before err happened, if any.
func PartialResult(err error) (RunResult, bool) {
	var herr *Error
	if errors.As(err, &herr) && herr.Result != nil {
		return *herr.Result, true
	}
	return RunResult{}, false
}
