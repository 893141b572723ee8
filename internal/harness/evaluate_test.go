package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		tc          TestCase
		lines       []string
		wantPassed  bool
		wantMissing []string
		wantMatched []string
		wantHalted  bool
	}{
		{
			name: "expected present and no forbidden",
			tc: TestCase{
				ExpectedLines:   []string{"Entity created: True"},
				UnexpectedLines: []string{"Traceback"},
			},
			lines:      []string{"Entity created: True", "done"},
			wantPassed: true,
		},
		{
			name: "traceback only fails on both counts",
			tc: TestCase{
				ExpectedLines:   []string{"Entity created: True"},
				UnexpectedLines: []string{"Traceback"},
			},
			lines:       []string{"Traceback (most recent call last):"},
			wantMissing: []string{"Entity created: True"},
			wantMatched: []string{"Traceback"},
		},
		{
			name: "expected lines may appear in any order",
			tc: TestCase{
				ExpectedLines: []string{"Light_test: Entity deleted: True", "Light Entity successfully created"},
			},
			lines: []string{
				"[Info] Light Entity successfully created",
				"[Info] Light_test: Entity deleted: True",
			},
			wantPassed: true,
		},
		{
			name: "matching is case sensitive",
			tc: TestCase{
				ExpectedLines: []string{"Component tests completed"},
			},
			lines:       []string{"component tests completed"},
			wantMissing: []string{"Component tests completed"},
		},
		{
			name: "one line can satisfy several expectations",
			tc: TestCase{
				ExpectedLines: []string{"Viewport", "expected size: True"},
			},
			lines:      []string{"Viewport is set to the expected size: True"},
			wantPassed: true,
		},
		{
			name: "all missing items are reported without halting",
			tc: TestCase{
				ExpectedLines:   []string{"Level created", "Entity spawned", "Viewport ready"},
				UnexpectedLines: []string{"Assert", "failed to open"},
			},
			lines:       []string{"Entity spawned", "Assert triggered", "failed to open file"},
			wantMissing: []string{"Level created", "Viewport ready"},
			wantMatched: []string{"Assert", "failed to open"},
		},
		{
			name: "halt stops at the first forbidden line",
			tc: TestCase{
				ExpectedLines:    []string{"never checked"},
				UnexpectedLines:  []string{"Traceback", "Assert"},
				HaltOnUnexpected: true,
			},
			lines:       []string{"start", "Assert in renderer", "Traceback (most recent call last):"},
			wantMatched: []string{"Assert"},
			wantHalted:  true,
		},
		{
			name: "halt flag alone does not fail a clean run",
			tc: TestCase{
				ExpectedLines:    []string{"Basic level created"},
				UnexpectedLines:  []string{"Traceback"},
				HaltOnUnexpected: true,
			},
			lines:      []string{"Basic level created"},
			wantPassed: true,
		},
		{
			name:       "no expectations and no output passes",
			tc:         TestCase{},
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(RunResult{Lines: tt.lines}, tt.tc)
			assert.Equal(t, tt.wantPassed, v.Passed)
			assert.Equal(t, tt.wantMissing, v.MissingExpected)
			assert.Equal(t, tt.wantMatched, v.MatchedUnexpected)
			assert.Equal(t, tt.wantHalted, v.Halted)
		})
	}
}

func TestEvaluate_HaltIdentifiesOffendingLine(t *testing.T) {
	tc := TestCase{
		ExpectedLines:    []string{"Entity created: True"},
		UnexpectedLines:  []string{"Traceback (most recent call last):"},
		HaltOnUnexpected: true,
	}
	lines := []string{"Entity created: True", "Traceback (most recent call last):", "  File \"x.py\""}

	v := Evaluate(RunResult{Lines: lines}, tc)

	assert.False(t, v.Passed)
	assert.True(t, v.Halted)
	assert.Equal(t, "Traceback (most recent call last):", v.OffendingLine)
	assert.Nil(t, v.MissingExpected, "expectations are not checked once halted")
}

func TestEvaluate_OffendingLineIsFirstHit(t *testing.T) {
	tc := TestCase{UnexpectedLines: []string{"Assert"}}
	v := Evaluate(RunResult{Lines: []string{"ok", "Assert one", "Assert two"}}, tc)

	assert.Equal(t, "Assert one", v.OffendingLine)
	assert.Equal(t, []string{"Assert"}, v.MatchedUnexpected)
}
