package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := fs.ErrNotExist
	err := NewError(ErrLaunchFailure, "C1", cause)

	assert.ErrorIs(t, err, ErrLaunchFailure)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrTimeoutExceeded)
	assert.Equal(t, "C1: launch failure: file does not exist", err.Error())

	wrapped := fmt.Errorf("suite: %w", err)
	assert.Equal(t, ErrLaunchFailure, KindOf(wrapped))
	assert.True(t, IsInfrastructure(wrapped))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err   error
		kind  error
		infra bool
	}{
		{NewError(ErrTimeoutExceeded, "a", nil), ErrTimeoutExceeded, true},
		{NewError(ErrPrecursorMissing, "a", nil), ErrPrecursorMissing, true},
		{NewError(ErrValidationFailure, "a", nil), ErrValidationFailure, false},
		{errors.New("plain"), nil, false},
		{nil, nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err))
		assert.Equal(t, tt.infra, IsInfrastructure(tt.err))
	}
}

func TestPartialResult(t *testing.T) {
	result := RunResult{Lines: []string{"started"}, ExitCode: -1}
	err := fmt.Errorf("wrapped: %w", &Error{Kind: ErrTimeoutExceeded, CaseID: "x", Result: &result})

	got, ok := PartialResult(err)
	assert.True(t, ok)
	assert.Equal(t, []string{"started"}, got.Lines)

	_, ok = PartialResult(errors.New("other"))
	assert.False(t, ok)
}
