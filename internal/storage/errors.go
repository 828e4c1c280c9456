package storage

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCauseDiskFull              StorageErrorCause = "disk is full"
	ErrCauseWriteFailure          StorageErrorCause = "write failed"
	ErrCausePathError             StorageErrorCause = "path error"
	ErrCauseHashComputationFailed StorageErrorCause = "hash computation failed"
	ErrCauseMirrorFailure         StorageErrorCause = "mirror upload failed"
	ErrCauseMirrorUnavailable     StorageErrorCause = "mirror unavailable"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StorageError) IsRetryable() bool {
	return e.Retryable
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull, ErrCauseWriteFailure, ErrCausePathError,
		ErrCauseMirrorFailure, ErrCauseMirrorUnavailable:
		return metadata.CauseStorageFailure
	case ErrCauseHashComputationFailed:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
