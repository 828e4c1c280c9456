package storage_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
)

type recordedError struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

type recordedArtifact struct {
	kind metadata.ArtifactKind
	path string
}

// metadataSinkMock records the storage events it observes.
type metadataSinkMock struct {
	mu        sync.Mutex
	errors    []recordedError
	artifacts []recordedArtifact
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, recordedError{action: action, cause: cause, attrs: attrs})
}

func (m *metadataSinkMock) RecordFetch(string, int, time.Duration, string, int) {}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, recordedArtifact{kind: kind, path: path})
}

func (m *metadataSinkMock) RecordOutcome(string, string, string, int, int) {}

type putCall struct {
	objectName  string
	body        []byte
	contentType string
}

type fakeMirror struct {
	puts   []putCall
	failOn string
}

func (f *fakeMirror) Bucket() string {
	return "harvest-mirror"
}

func (f *fakeMirror) Put(ctx context.Context, objectName string, body []byte, contentType string) error {
	if f.failOn != "" && objectName == f.failOn {
		return errors.New("upload refused")
	}
	f.puts = append(f.puts, putCall{objectName: objectName, body: body, contentType: contentType})
	return nil
}
