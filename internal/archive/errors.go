package archive

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type ArchiveErrorCause string

const (
	ErrCauseIndexUnavailable ArchiveErrorCause = "snapshot index unavailable"
	ErrCauseIndexMalformed   ArchiveErrorCause = "snapshot index response malformed"
	ErrCauseInvalidTarget    ArchiveErrorCause = "invalid target url"
)

type ArchiveError struct {
	Message   string
	Retryable bool
	Cause     ArchiveErrorCause
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error: %s: %s", e.Cause, e.Message)
}

func (e *ArchiveError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ArchiveError) IsRetryable() bool {
	return e.Retryable
}

// mapArchiveErrorToMetadataCause is observational only.
func mapArchiveErrorToMetadataCause(err *ArchiveError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseIndexUnavailable:
		return metadata.CauseNetworkFailure
	case ErrCauseIndexMalformed, ErrCauseInvalidTarget:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
