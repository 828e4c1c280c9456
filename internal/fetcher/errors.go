package fetcher

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"github.com/rohmanhakim/docs-harvester/pkg/retry"
)

type FetchErrorCause string

const (
	ErrCauseInvalidRequest        FetchErrorCause = "invalid request"
	ErrCauseCanceled              FetchErrorCause = "canceled"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseBodyTooLarge          FetchErrorCause = "response body too large"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestPageForbidden  FetchErrorCause = "forbidden"
	ErrCauseRequestNotFound       FetchErrorCause = "not found"
	ErrCauseRequestClientError    FetchErrorCause = "client error"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
)

type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure, ErrCauseReadResponseBodyError, ErrCauseRequest5xx:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestTooMany, ErrCauseRequestPageForbidden:
		return metadata.CausePolicyDisallow
	case ErrCauseBodyTooLarge, ErrCauseRequestNotFound, ErrCauseRequestClientError, ErrCauseRedirectLimitExceeded:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}

// StatusOf digs the HTTP status out of a fetch or retry error. Zero means
// no response was received.
func StatusOf(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}

// ErrorClass names the failure for the attempt log.
func ErrorClass(err error) string {
	var retryErr *retry.RetryError
	var fetchErr *FetchError
	hasRetry := errors.As(err, &retryErr)
	hasFetch := errors.As(err, &fetchErr)

	switch {
	case hasRetry && hasFetch && retryErr.Cause == retry.ErrExhaustedAttempts:
		return "retries exhausted: " + string(fetchErr.Cause)
	case hasRetry:
		return string(retryErr.Cause)
	case hasFetch:
		return string(fetchErr.Cause)
	}
	return "unknown"
}
