package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "harvest/0001/doc.pdf", storage.ObjectName("harvest", "0001", "doc.pdf"))
	assert.Equal(t, "0001/doc.pdf", storage.ObjectName("", "0001", "doc.pdf"))
	assert.Equal(t, "a/b/0001/doc.pdf", storage.ObjectName("/a/b/", "0001", "doc.pdf"))
}

func TestMirrorFiles(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "doc.pdf")
	record := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(record, []byte("{}"), 0644))

	mirror := &fakeMirror{}
	sink := &metadataSinkMock{}

	n := storage.MirrorFiles(context.Background(), mirror, sink, "runs", "0003", []string{pdf, record})

	assert.Equal(t, 2, n)
	require.Len(t, mirror.puts, 2)
	assert.Equal(t, "runs/0003/doc.pdf", mirror.puts[0].objectName)
	assert.Equal(t, "application/pdf", mirror.puts[0].contentType)
	assert.Equal(t, []byte("%PDF"), mirror.puts[0].body)
	assert.Equal(t, "runs/0003/metadata.json", mirror.puts[1].objectName)
	assert.Equal(t, "application/json", mirror.puts[1].contentType)

	require.Len(t, sink.artifacts, 2)
	assert.Equal(t, metadata.ArtifactMirror, sink.artifacts[0].kind)
}

func TestMirrorFiles_FailuresAreObservedNotFatal(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	require.NoError(t, os.WriteFile(good, []byte("%PDF"), 0644))
	missing := filepath.Join(dir, "missing.pdf")
	refused := filepath.Join(dir, "refused.docx")
	require.NoError(t, os.WriteFile(refused, []byte("PK"), 0644))

	mirror := &fakeMirror{failOn: "0004/refused.docx"}
	sink := &metadataSinkMock{}

	n := storage.MirrorFiles(context.Background(), mirror, sink, "", "0004", []string{missing, good, refused})

	assert.Equal(t, 1, n)
	require.Len(t, sink.errors, 2)
	for _, e := range sink.errors {
		assert.Equal(t, "MirrorFiles", e.action)
		assert.Equal(t, metadata.CauseStorageFailure, e.cause)
	}
}

func TestNewMinioMirror_RequiresEndpointAndBucket(t *testing.T) {
	_, err := storage.NewMinioMirror(context.Background(), storage.MinioParam{Bucket: "b"})
	require.Error(t, err)

	_, err = storage.NewMinioMirror(context.Background(), storage.MinioParam{Endpoint: "localhost:9000"})
	require.Error(t, err)
}
