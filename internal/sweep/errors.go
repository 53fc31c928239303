package sweep

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/mutsweep/internal/ir"
)

// Error is a sweep failure with structured context.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Seed is the affected seed.
	Seed int64

	// Combo is the affected combo key, if any.
	Combo string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes sweep errors.
type ErrorCode string

const (
	// ErrCodeConsistencyViolation indicates shrunk and unshrunk runs of the
	// same combo and seed disagree on when the failure was first found.
	ErrCodeConsistencyViolation ErrorCode = "CONSISTENCY_VIOLATION"

	// ErrCodeIncompleteSweep indicates merged fragments do not cover every
	// combo of a seed.
	ErrCodeIncompleteSweep ErrorCode = "INCOMPLETE_SWEEP"

	// ErrCodeWorkerFailed indicates a worker stopped before emitting its
	// fragment.
	ErrCodeWorkerFailed ErrorCode = "WORKER_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s (seed=%d", e.Code, e.Message, e.Seed)
	if e.Combo != "" {
		msg += ", combo=" + e.Combo
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsConsistencyError reports whether err is a shrink consistency violation.
func IsConsistencyError(err error) bool {
	return hasCode(err, ErrCodeConsistencyViolation)
}

// IsIncompleteSweep reports whether err is an incomplete merge.
func IsIncompleteSweep(err error) bool {
	return hasCode(err, ErrCodeIncompleteSweep)
}

// IsWorkerError reports whether err is a worker failure.
func IsWorkerError(err error) bool {
	return hasCode(err, ErrCodeWorkerFailed)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// NewConsistencyError reports a shrink/no-shrink disagreement for one combo.
func NewConsistencyError(seed int64, combo string, unshrunk, shrunk ir.RunResult) *Error {
	return &Error{
		Code:    ErrCodeConsistencyViolation,
		Message: "shrunk and unshrunk runs disagree on the first failure",
		Seed:    seed,
		Combo:   combo,
		Details: map[string]string{
			"unshrunk": describeResult(unshrunk),
			"shrunk":   describeResult(shrunk),
			"diff":     cmp.Diff(unshrunk, shrunk),
		},
	}
}

// NewIncompleteError reports a merged record that does not match the
// enumerated combos.
func NewIncompleteError(seed int64, want, got int, missing []string) *Error {
	details := map[string]string{
		"want": strconv.Itoa(want),
		"got":  strconv.Itoa(got),
	}
	if len(missing) > 0 {
		details["missing"] = fmt.Sprint(missing)
	}
	return &Error{
		Code:    ErrCodeIncompleteSweep,
		Message: fmt.Sprintf("merged %d of %d combos", got, want),
		Seed:    seed,
		Details: details,
	}
}

// NewWorkerError reports a worker that stopped early.
func NewWorkerError(seed int64, worker int, combo string, err error) *Error {
	return &Error{
		Code:    ErrCodeWorkerFailed,
		Message: fmt.Sprintf("worker %d failed", worker),
		Seed:    seed,
		Combo:   combo,
		Details: map[string]string{"worker": strconv.Itoa(worker)},
		Err:     err,
	}
}

func describeResult(r ir.RunResult) string {
	data, err := ir.MarshalCanonical(r.Value())
	if err != nil {
		return fmt.Sprintf("%+v", r)
	}
	return string(data)
}
