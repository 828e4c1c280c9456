package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"github.com/rohmanhakim/docs-harvester/pkg/timeutil"
)

// Retry executes fn up to MaxAttempts times, sleeping with exponential
// backoff plus jitter between attempts. Only retryable errors trigger
// another attempt.
func Retry[T any](retryParam RetryParam, fn func() (T, failure.ClassifiedError)) Result[T] {
	return RetryContext(context.Background(), retryParam, fn)
}

// RetryContext is Retry with a context that aborts the backoff sleep.
func RetryContext[T any](
	ctx context.Context,
	retryParam RetryParam,
	fn func() (T, failure.ClassifiedError),
) Result[T] {
	if retryParam.MaxAttempts < 1 {
		return Result[T]{
			err: &RetryError{
				Message:   "max attempt cannot be 0",
				Cause:     ErrZeroAttempt,
				Retryable: true,
			},
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	var lastErr failure.ClassifiedError
	attempt := 1
	for ; attempt <= retryParam.MaxAttempts; attempt++ {
		value, err := fn()
		if err == nil {
			return Result[T]{value: value, attempts: attempt}
		}
		lastErr = err

		if !isErrorRetryable(err) {
			return Result[T]{err: err, attempts: attempt}
		}
		if attempt == retryParam.MaxAttempts {
			break
		}

		delay := timeutil.ExponentialBackoffDelay(
			attempt,
			retryParam.Jitter,
			*rng,
			retryParam.BackoffParam,
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result[T]{
				err: &RetryError{
					Message:   ctx.Err().Error(),
					Cause:     ErrCanceled,
					Retryable: false,
					Last:      lastErr,
				},
				attempts: attempt,
			}
		case <-timer.C:
		}
	}

	return Result[T]{
		err: &RetryError{
			Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
			Cause:     ErrExhaustedAttempts,
			Retryable: true,
			Last:      lastErr,
		},
		attempts: retryParam.MaxAttempts,
	}
}

// isErrorRetryable defaults to true for errors that do not say otherwise.
func isErrorRetryable(err failure.ClassifiedError) bool {
	if r, ok := err.(failure.Retryable); ok {
		return r.IsRetryable()
	}
	return true
}
