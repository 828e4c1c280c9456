package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/docs-harvester/pkg/timeutil"
)

// RateLimiter enforces a minimum spacing between requests to the same host.
// It is the only state shared between references resolved in parallel.
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	SetBackoffParam(param timeutil.BackoffParam)
	SetCrawlDelay(host string, delay time.Duration)
	Backoff(host string)
	ResetBackoff(host string)
	MarkLastFetchAsNow(host string)
	ResolveDelay(host string) time.Duration
	Reserve(host string) time.Duration
	Wait(ctx context.Context, host string) error
}

type ConcurrentRateLimiter struct {
	mu           sync.RWMutex
	rngMu        sync.Mutex
	baseDelay    time.Duration
	jitter       time.Duration
	backoffParam timeutil.BackoffParam
	hostTimings  map[string]hostTiming
	rng          *rand.Rand
}

func NewConcurrentRateLimiter() *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		hostTimings:  make(map[string]hostTiming),
		backoffParam: timeutil.NewBackoffParam(time.Second, 2.0, 30*time.Second),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ConcurrentRateLimiter) SetBaseDelay(baseDelay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseDelay = baseDelay
}

func (r *ConcurrentRateLimiter) SetJitter(jitter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jitter = jitter
}

func (r *ConcurrentRateLimiter) SetBackoffParam(param timeutil.BackoffParam) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backoffParam = param
}

func (r *ConcurrentRateLimiter) SetRandomSeed(randomSeed int64) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	r.rng = rand.New(rand.NewSource(randomSeed))
}

// SetRNG allows injecting a custom random number generator for testing
func (r *ConcurrentRateLimiter) SetRNG(rng *rand.Rand) {
	if rng == nil {
		return
	}
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	r.rng = rng
}

// SetCrawlDelay sets a per-host delay, separate from the global base delay.
func (r *ConcurrentRateLimiter) SetCrawlDelay(host string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	timing.crawlDelay = delay
	r.hostTimings[host] = timing
}

// Backoff increments the host's backoff counter after a 429 or 5xx.
func (r *ConcurrentRateLimiter) Backoff(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	timing.backoffCount++
	timing.backoffDelay = timeutil.ExponentialBackoffDelay(
		timing.backoffCount,
		0,
		*rand.New(rand.NewSource(0)),
		r.backoffParam,
	)
	r.hostTimings[host] = timing
}

// ResetBackoff clears the backoff state after a successful request.
func (r *ConcurrentRateLimiter) ResetBackoff(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing, exists := r.hostTimings[host]
	if !exists {
		return
	}
	timing.backoffCount = 0
	timing.backoffDelay = 0
	r.hostTimings[host] = timing
}

func (r *ConcurrentRateLimiter) MarkLastFetchAsNow(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	timing.lastFetchAt = time.Now()
	r.hostTimings[host] = timing
}

func (r *ConcurrentRateLimiter) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return timeutil.ComputeJitter(max, *r.rng)
}

// ResolveDelay returns how long a caller should still wait before hitting
// host: max(base, crawlDelay, backoff) + jitter - elapsed, floored at zero.
// Unknown hosts need no delay.
func (r *ConcurrentRateLimiter) ResolveDelay(host string) time.Duration {
	r.mu.RLock()
	timing, exists := r.hostTimings[host]
	base := r.baseDelay
	jitter := r.jitter
	r.mu.RUnlock()

	if !exists || timing.lastFetchAt.IsZero() {
		return 0
	}

	spacing := timeutil.MaxDuration([]time.Duration{base, timing.crawlDelay, timing.backoffDelay})
	spacing += r.computeJitter(jitter)

	elapsed := time.Since(timing.lastFetchAt)
	if elapsed < spacing {
		return spacing - elapsed
	}
	return 0
}

// Reserve atomically claims the next request slot for host and returns how
// long the caller must sleep before using it. Concurrent callers for the
// same host receive successive, non-overlapping slots.
func (r *ConcurrentRateLimiter) Reserve(host string) time.Duration {
	jitterValue := r.computeJitter(r.currentJitter())

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	timing, exists := r.hostTimings[host]
	if !exists || timing.lastFetchAt.IsZero() {
		timing.lastFetchAt = now
		r.hostTimings[host] = timing
		return 0
	}

	spacing := timeutil.MaxDuration([]time.Duration{r.baseDelay, timing.crawlDelay, timing.backoffDelay})
	spacing += jitterValue

	slot := timing.lastFetchAt.Add(spacing)
	if slot.Before(now) {
		slot = now
	}
	timing.lastFetchAt = slot
	r.hostTimings[host] = timing
	return slot.Sub(now)
}

// Wait blocks until host may be contacted again or ctx is done.
func (r *ConcurrentRateLimiter) Wait(ctx context.Context, host string) error {
	delay := r.Reserve(host)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *ConcurrentRateLimiter) currentJitter() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jitter
}

func (r *ConcurrentRateLimiter) BaseDelay() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDelay
}

func (r *ConcurrentRateLimiter) Jitter() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jitter
}

// HostTimings returns a shallow copy of the per-host state.
func (r *ConcurrentRateLimiter) HostTimings() map[string]hostTiming {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copyMap := make(map[string]hostTiming, len(r.hostTimings))
	for k, v := range r.hostTimings {
		copyMap[k] = v
	}
	return copyMap
}
