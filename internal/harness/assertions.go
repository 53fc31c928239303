package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/triage"
)

// AssertionError is returned when an expectation does not hold.
type AssertionError struct {
	Field    string // Expectation that failed, e.g. "triage"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpect checks outcome against every field set in expect and
// returns one error per mismatch.
func EvaluateExpect(outcome ir.RunResult, expect Expect) []error {
	var errs []error

	if string(outcome.Type) != expect.Type {
		errs = append(errs, &AssertionError{
			Field:    "type",
			Expected: expect.Type,
			Actual:   describeOutcome(outcome),
		})
		// The remaining fields are meaningless across types.
		return errs
	}

	if expect.Attempts != nil && *expect.Attempts != outcome.Attempts {
		errs = append(errs, &AssertionError{
			Field:    "attempts",
			Expected: fmt.Sprint(*expect.Attempts),
			Actual:   fmt.Sprint(outcome.Attempts),
		})
	}

	if expect.FailingRepr != "" && expect.FailingRepr != outcome.FailingRepr {
		errs = append(errs, &AssertionError{
			Field:    "failing_repr",
			Expected: expect.FailingRepr,
			Actual:   outcome.FailingRepr,
		})
	}

	if expect.Triage != nil && !slices.Equal(causeKeys(expect.Triage), causeKeys(outcome.Triage)) {
		errs = append(errs, &AssertionError{
			Field:    "triage",
			Expected: triage.Describe(triage.Parse(expect.Triage)),
			Actual:   triage.Describe(triage.Parse(outcome.Triage)),
		})
	}

	return errs
}

// causeKeys returns the sorted combo keys of raw so that triage lists
// compare as sets.
func causeKeys(raw [][]string) []string {
	sets := triage.Parse(raw)
	keys := make([]string, len(sets))
	for i, s := range sets {
		keys[i] = string(s.Key())
	}
	slices.Sort(keys)
	return keys
}

func describeOutcome(r ir.RunResult) string {
	if r.Failed() {
		return fmt.Sprintf("fail after %d attempts on %s", r.Attempts, r.FailingRepr)
	}
	return fmt.Sprintf("%s after %d attempts", r.Type, r.Attempts)
}
