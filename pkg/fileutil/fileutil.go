package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

const MaxFilenameLength = 100

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir creates dir joined with path if it does not exist yet.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := append([]string{dir}, path...)
	if err := os.MkdirAll(filepath.Join(targetPath...), 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// SanitizeFilename replaces runs of unsafe characters with "_" and caps the
// length while keeping the extension. Empty input yields "document".
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = strings.Trim(unsafeFilenameChars.ReplaceAllString(stem, "_"), "._")
	ext = unsafeFilenameChars.ReplaceAllString(ext, "")
	if ext == "." {
		ext = ""
	}
	if stem == "" {
		stem = "document"
	}

	if limit := MaxFilenameLength - len(ext); len(stem) > limit {
		stem = stem[:limit]
	}
	return stem + ext
}

// UniqueFilename returns name, or name with a "_N" suffix before the
// extension when taken reports the name as already used.
func UniqueFilename(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !taken(candidate) {
			return candidate
		}
	}
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
