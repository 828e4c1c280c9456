package record

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type RecordErrorCause string

const (
	ErrCauseAlreadyTerminal RecordErrorCause = "record already terminal"
	ErrCauseNotTerminal     RecordErrorCause = "record not terminal"
	ErrCauseReadFailure     RecordErrorCause = "read failed"
	ErrCauseDecodeFailure   RecordErrorCause = "decode failed"
	ErrCauseWriteFailure    RecordErrorCause = "write failed"
)

type RecordError struct {
	Message   string
	Retryable bool
	Cause     RecordErrorCause
	RefID     string
}

func (e *RecordError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("record error: %s (%s)", e.Cause, e.RefID)
	}
	return fmt.Sprintf("record error: %s (%s): %s", e.Cause, e.RefID, e.Message)
}

func (e *RecordError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RecordError) IsRetryable() bool {
	return e.Retryable
}

// MapRecordErrorToMetadataCause is observational only.
func MapRecordErrorToMetadataCause(err *RecordError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseAlreadyTerminal, ErrCauseNotTerminal:
		return metadata.CauseInvariantViolation
	case ErrCauseReadFailure, ErrCauseDecodeFailure, ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
