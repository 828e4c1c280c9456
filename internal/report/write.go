package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/docs-harvester/pkg/fileutil"
)

const (
	SummaryPrefix    = "harvest_summary"
	ValidationPrefix = "validation"

	timestampLayout = "20060102_150405"
)

// Filename builds <prefix>_<timestamp>.json.
func Filename(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, at.UTC().Format(timestampLayout))
}

// WriteJSON writes v as indented JSON into dir and returns the file path.
func WriteJSON(dir string, prefix string, at time.Time, v any) (string, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", &ReportError{Message: err.Error(), Cause: ErrCauseWriteFailure, Path: dir}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &ReportError{Message: err.Error(), Cause: ErrCauseWriteFailure}
	}
	path := filepath.Join(dir, Filename(prefix, at))
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", &ReportError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, Path: path}
	}
	return path, nil
}
