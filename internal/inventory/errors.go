package inventory

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

type InventoryErrorCause string

const (
	ErrCauseReadFailure  InventoryErrorCause = "read failed"
	ErrCauseParseFailure InventoryErrorCause = "parse failed"
	ErrCauseInvalidRange InventoryErrorCause = "invalid row range"
)

type InventoryError struct {
	Message string
	Path    string
	Cause   InventoryErrorCause
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("inventory error: %s: %s: %s", e.Cause, e.Path, e.Message)
}

func (e *InventoryError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *InventoryError) IsRetryable() bool {
	return false
}
