package harness

import "strings"

// Evaluate judges captured output against a test case.
//
// Matching is case-sensitive substring search. Expected lines may appear in any
// order. With HaltOnUnexpected the scan ends at the first line holding a
// forbidden substring and the verdict fails without checking expectations.
func Evaluate(result RunResult, tc TestCase) Verdict {
	found := make([]bool, len(tc.ExpectedLines))
	hit := make([]bool, len(tc.UnexpectedLines))
	var offending string

	for _, line := range result.Lines {
		for i, forbidden := range tc.UnexpectedLines {
			if !strings.Contains(line, forbidden) {
				continue
			}
			if tc.HaltOnUnexpected {
				return Verdict{
					Passed:            false,
					MatchedUnexpected: []string{forbidden},
					OffendingLine:     line,
					Halted:            true,
				}
			}
			hit[i] = true
			if offending == "" {
				offending = line
			}
		}
		for i, expected := range tc.ExpectedLines {
			if !found[i] && strings.Contains(line, expected) {
				found[i] = true
			}
		}
	}

	v := Verdict{OffendingLine: offending}
	for i, ok := range found {
		if !ok {
			v.MissingExpected = append(v.MissingExpected, tc.ExpectedLines[i])
		}
	}
	for i, ok := range hit {
		if ok {
			v.MatchedUnexpected = append(v.MatchedUnexpected, tc.UnexpectedLines[i])
		}
	}
	v.Passed = len(v.MissingExpected) == 0 && len(v.MatchedUnexpected) == 0
	return v
}
