package report

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type ReportErrorCause string

const (
	ErrCauseReadFailure  ReportErrorCause = "read failed"
	ErrCauseWriteFailure ReportErrorCause = "write failed"
)

type ReportError struct {
	Message   string
	Retryable bool
	Cause     ReportErrorCause
	Path      string
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report error: %s: %s", e.Cause, e.Message)
}

func (e *ReportError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// MapReportErrorToMetadataCause is observational only.
func MapReportErrorToMetadataCause(err *ReportError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseReadFailure, ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
