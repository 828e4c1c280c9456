package metadata_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &event))
		events = append(events, event)
	}
	return events
}

func TestLogSink_RecordError(t *testing.T) {
	var buf bytes.Buffer
	sink := metadata.NewLogSink(zerolog.New(&buf))

	sink.RecordError(
		time.Now(),
		"fetcher",
		"HttpClient.Get",
		metadata.CausePolicyDisallow,
		"access forbidden (403)",
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, "https://acf.gov/a.pdf")},
	)

	events := decodeLines(t, &buf)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0]["event"])
	assert.Equal(t, "policy_disallow", events[0]["cause"])
	assert.Equal(t, "fetcher", events[0]["package"])
	assert.Equal(t, "https://acf.gov/a.pdf", events[0]["url"])
	assert.Equal(t, "access forbidden (403)", events[0]["message"])
}

func TestLogSink_RecordFetchAndArtifact(t *testing.T) {
	var buf bytes.Buffer
	sink := metadata.NewLogSink(zerolog.New(&buf))

	sink.RecordFetch("https://acf.gov/a.pdf", 200, time.Second, "application/pdf", 0)
	sink.RecordArtifact(metadata.ArtifactDocument, "/out/0001/a.pdf", []metadata.Attribute{
		metadata.NewAttr(metadata.AttrRefID, "0001"),
	})

	events := decodeLines(t, &buf)
	require.Len(t, events, 2)
	assert.Equal(t, "fetch", events[0]["event"])
	assert.EqualValues(t, 200, events[0]["http_status"])
	assert.Equal(t, "artifact", events[1]["event"])
	assert.Equal(t, "document", events[1]["kind"])
	assert.Equal(t, "0001", events[1]["ref_id"])
}

func TestLogSink_RecordOutcome(t *testing.T) {
	var buf bytes.Buffer
	sink := metadata.NewLogSink(zerolog.New(&buf))

	sink.RecordOutcome("0042", "success", "archive", 3, 1)

	events := decodeLines(t, &buf)
	require.Len(t, events, 1)
	assert.Equal(t, "outcome", events[0]["event"])
	assert.Equal(t, "0042", events[0]["ref_id"])
	assert.Equal(t, "archive", events[0]["source"])
	assert.EqualValues(t, 3, events[0]["attempts"])
}

func TestErrorCause_String(t *testing.T) {
	assert.Equal(t, "unknown", metadata.CauseUnknown.String())
	assert.Equal(t, "retry_failure", metadata.CauseRetryFailure.String())
	assert.Equal(t, "unknown", metadata.ErrorCause(99).String())
}
