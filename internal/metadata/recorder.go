package metadata

import (
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata is write-only. No component may read it to influence which source is
tried next, whether to retry, or what status a reference ends in. It exists for
post-run auditability and failure diagnostics.

Events are emitted synchronously in the order a single worker produces them;
no ordering across references resolved in parallel is implied.
*/
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
	// RecordOutcome is emitted once per reference after its record is final.
	RecordOutcome(refID string, status string, source string, attempts int, files int)
}

// LogSink writes metadata events as structured zerolog entries.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	event := s.log.Warn().
		Str("event", "error").
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Stringer("cause", cause)
	withAttrs(event, attrs).Msg(details)
}

func (s *LogSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	s.log.Debug().
		Str("event", "fetch").
		Str("url", fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("retry_count", retryCount).
		Send()
}

func (s *LogSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	event := s.log.Info().
		Str("event", "artifact").
		Str("kind", string(kind)).
		Str("path", path)
	withAttrs(event, attrs).Send()
}

func (s *LogSink) RecordOutcome(refID string, status string, source string, attempts int, files int) {
	s.log.Info().
		Str("event", "outcome").
		Str("ref_id", refID).
		Str("status", status).
		Str("source", source).
		Int("attempts", attempts).
		Int("files", files).
		Send()
}

func withAttrs(event *zerolog.Event, attrs []Attribute) *zerolog.Event {
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	return event
}

// NoopSink discards every event.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordOutcome(refID string, status string, source string, attempts int, files int) {}
