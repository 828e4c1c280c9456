package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest value in durations, or zero when empty.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	max := durations[0]
	for _, d := range durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// ComputeJitter returns a pseudo-random duration in [0, max).
func ComputeJitter(max time.Duration, rng rand.Rand) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes initial * multiplier^(count-1), capped at
// the configured maximum, plus jitter. Counts below 1 are treated as 1.
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng rand.Rand,
	backoffParam BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	exponent := float64(backoffCount - 1)
	delay := float64(backoffParam.InitialDuration()) * math.Pow(backoffParam.Multiplier(), exponent)
	if max := float64(backoffParam.MaxDuration()); max > 0 && delay > max {
		delay = max
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay) + ComputeJitter(jitter, rng)
}
