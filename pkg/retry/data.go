package retry

import (
	"time"

	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"github.com/rohmanhakim/docs-harvester/pkg/timeutil"
)

// RetryParam holds the parameters for retry logic.
// Values come from config; the handler never reads config itself.
type RetryParam struct {
	BaseDelay    time.Duration
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam
}

func NewRetryParam(
	baseDelay time.Duration,
	jitter time.Duration,
	randomSeed int64,
	maxAttempts int,
	backoffParam timeutil.BackoffParam,
) RetryParam {
	return RetryParam{
		BaseDelay:    baseDelay,
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoffParam,
	}
}

// Result carries the outcome of a retried call together with the number
// of attempts that were made.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

func (r Result[T]) Attempts() int {
	return r.attempts
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
