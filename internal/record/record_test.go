package record_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, record.StatusPending.IsTerminal())
	for _, s := range []record.Status{
		record.StatusSuccess,
		record.StatusFailed,
		record.StatusNoURLs,
		record.StatusValidationFailed,
	} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestNew_IsPending(t *testing.T) {
	rec := record.New("0007")
	assert.Equal(t, record.StatusPending, rec.Status)
	assert.Empty(t, rec.Attempts)
	assert.NotNil(t, rec.Files)
}

func TestDocumentRecord_SucceedIsWriteOnce(t *testing.T) {
	rec := record.New("0007")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	files := []record.ArtifactFile{{Filename: "pi-20-01.pdf", Source: record.SourceDirect}}

	require.NoError(t, rec.Succeed(record.SourceDirect, files, now))
	assert.Equal(t, record.StatusSuccess, rec.Status)
	assert.Equal(t, record.SourceDirect, rec.SourceUsed)
	assert.Equal(t, now, rec.HarvestedAt)

	err := rec.Succeed(record.SourceArchive, files, now)
	var recErr *record.RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, record.ErrCauseAlreadyTerminal, recErr.Cause)
	assert.Equal(t, record.SourceDirect, rec.SourceUsed)
	assert.Len(t, rec.Files, 1)

	assert.Error(t, rec.Close(record.StatusFailed, now))
	assert.Equal(t, record.StatusSuccess, rec.Status)
}

func TestDocumentRecord_CloseRejectsSuccessAndPending(t *testing.T) {
	rec := record.New("0008")
	assert.Error(t, rec.Close(record.StatusSuccess, time.Now()))
	assert.Error(t, rec.Close(record.StatusPending, time.Now()))
	assert.Equal(t, record.StatusPending, rec.Status)

	require.NoError(t, rec.Close(record.StatusNoURLs, time.Now()))
	assert.Equal(t, record.StatusNoURLs, rec.Status)
}

func TestDocumentRecord_AttemptLogIsAppendOnly(t *testing.T) {
	rec := record.New("0009")
	first := record.FetchAttempt{Source: record.SourceDirect, URL: "https://acf.gov/a", HTTPStatus: 403, Outcome: record.OutcomeHTTPError}
	rec.AppendAttempts(first)
	rec.AppendAttempts(
		record.FetchAttempt{Source: record.SourceArchive, URL: "https://web.archive.org/web/2020id_/https://acf.gov/a", Outcome: record.OutcomeRejected, Reason: validator.ReasonArchiveErrorPage},
	)

	require.Len(t, rec.Attempts, 2)
	assert.Equal(t, first, rec.Attempts[0])

	last, ok := rec.LastRejection()
	require.True(t, ok)
	assert.Equal(t, validator.ReasonArchiveErrorPage, last.Reason)
}
