package fetcher_test

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/fetcher"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/limiter"
	"github.com/rohmanhakim/docs-harvester/pkg/retry"
	"github.com/rohmanhakim/docs-harvester/pkg/timeutil"
	"github.com/stretchr/testify/require"
)

// recordingSink is a test double for metadata.MetadataSink
type recordingSink struct {
	mu          sync.Mutex
	fetchEvents []fetchEvent
	errorEvents []errorEvent
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	contentType string
	retryCount  int
}

type errorEvent struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

func (m *recordingSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		contentType: contentType,
		retryCount:  retryCount,
	})
}

func (m *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorEvents = append(m.errorEvents, errorEvent{action: action, cause: cause, attrs: attrs})
}

func (m *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
}

func (m *recordingSink) RecordOutcome(refID string, status string, source string, attempts int, files int) {
}

func (m *recordingSink) fetches() []fetchEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fetchEvent(nil), m.fetchEvents...)
}

func (m *recordingSink) errors() []errorEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]errorEvent(nil), m.errorEvents...)
}

// createTestRetryParam creates retry parameters for testing
func createTestRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,                // baseDelay
		time.Millisecond, // jitter
		42,               // randomSeed
		maxAttempts,      // maxAttempts
		timeutil.NewBackoffParam(
			time.Millisecond,
			2.0,
			5*time.Millisecond,
		),
	)
}

func newTestLimiter() *limiter.ConcurrentRateLimiter {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(0)
	rl.SetJitter(0)
	rl.SetBackoffParam(timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond))
	return rl
}

func newTestClient(sink metadata.MetadataSink, maxAttempts int) *fetcher.HttpClient {
	return fetcher.NewHttpClient(sink, newTestLimiter(), fetcher.ClientParam{
		UserAgent:    "docs-harvester-test",
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
		RetryParam:   createTestRetryParam(maxAttempts),
	})
}

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}
