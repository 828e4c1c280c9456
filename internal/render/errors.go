package render

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type RenderErrorCause string

const (
	ErrCauseReadFailure       RenderErrorCause = "capture unreadable"
	ErrCauseNotHTML           RenderErrorCause = "not html"
	ErrCauseNoContent         RenderErrorCause = "no content"
	ErrCauseConversionFailure RenderErrorCause = "conversion failed"
	ErrCauseWriteFailure      RenderErrorCause = "write failed"
)

type RenderError struct {
	Message   string
	Retryable bool
	Cause     RenderErrorCause
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error: %s: %s", e.Cause, e.Message)
}

func (e *RenderError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func mapRenderErrorToMetadataCause(err *RenderError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseNoContent, ErrCauseConversionFailure:
		return metadata.CauseContentInvalid
	case ErrCauseReadFailure, ErrCauseWriteFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
