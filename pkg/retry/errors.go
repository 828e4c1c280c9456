package retry

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt       RetryErrorCause = "zero attempt"
	ErrExhaustedAttempts RetryErrorCause = "exhausted attempt"
	ErrCanceled          RetryErrorCause = "canceled"
)

type RetryError struct {
	Message   string
	Retryable bool
	Cause     RetryErrorCause
	// Last is the error returned by the final attempt, if any.
	Last failure.ClassifiedError
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry error: %s, %s", e.Cause, e.Message)
}

func (e *RetryError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RetryError) IsRetryable() bool {
	return e.Retryable
}

// Is allows errors.Is to match RetryError types
func (e *RetryError) Is(target error) bool {
	_, ok := target.(*RetryError)
	return ok
}

func (e *RetryError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}
