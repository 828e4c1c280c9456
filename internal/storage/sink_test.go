package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/internal/storage"
	"github.com/rohmanhakim/docs-harvester/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSink_WritesUnderReferenceDirectory(t *testing.T) {
	outputDir := t.TempDir()
	sink := &metadataSinkMock{}
	s := storage.NewLocalSink(sink, outputDir, hashutil.HashAlgoSHA256)

	body := []byte("%PDF-1.4 content")
	result, err := s.Write("0042", "pi-20-01.pdf", body)
	require.Nil(t, err)

	assert.Equal(t, filepath.Join(outputDir, "0042", "pi-20-01.pdf"), result.Path())
	assert.Equal(t, "pi-20-01.pdf", result.Filename())
	assert.Equal(t, int64(len(body)), result.Size())
	assert.Equal(t, "sha256", result.HashAlgo())

	expectedHash, hashErr := hashutil.HashBytes(body, hashutil.HashAlgoSHA256)
	require.NoError(t, hashErr)
	assert.Equal(t, expectedHash, result.Hash())

	onDisk, readErr := os.ReadFile(result.Path())
	require.NoError(t, readErr)
	assert.Equal(t, body, onDisk)

	require.Len(t, sink.artifacts, 1)
	assert.Equal(t, metadata.ArtifactDocument, sink.artifacts[0].kind)
	assert.Empty(t, sink.errors)
}

func TestLocalSink_SanitizesAndDeduplicatesNames(t *testing.T) {
	s := storage.NewLocalSink(&metadataSinkMock{}, t.TempDir(), hashutil.HashAlgoBLAKE3, "metadata.json")

	first, err := s.Write("0001", "IM 21/01 (final).pdf", []byte("a"))
	require.Nil(t, err)
	second, err := s.Write("0001", "IM 21/01 (final).pdf", []byte("b"))
	require.Nil(t, err)
	reserved, err := s.Write("0001", "metadata.json", []byte("{}"))
	require.Nil(t, err)
	otherRef, err := s.Write("0002", "IM 21/01 (final).pdf", []byte("c"))
	require.Nil(t, err)

	assert.Equal(t, "IM_21_01_final.pdf", first.Filename())
	assert.Equal(t, "IM_21_01_final_1.pdf", second.Filename())
	assert.Equal(t, "metadata_1.json", reserved.Filename())
	assert.Equal(t, "IM_21_01_final.pdf", otherRef.Filename())
	assert.Equal(t, "blake3", first.HashAlgo())
}

func TestLocalSink_ForgetAllowsOverwriteOnRerun(t *testing.T) {
	s := storage.NewLocalSink(&metadataSinkMock{}, t.TempDir(), hashutil.HashAlgoSHA256)

	_, err := s.Write("0007", "doc.pdf", []byte("first run"))
	require.Nil(t, err)
	s.Forget("0007")
	again, err := s.Write("0007", "doc.pdf", []byte("second run"))
	require.Nil(t, err)

	assert.Equal(t, "doc.pdf", again.Filename())
	onDisk, readErr := os.ReadFile(again.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "second run", string(onDisk))

	entries, readErr := os.ReadDir(s.Dir("0007"))
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)
}

func TestLocalSink_WriteFailureIsRecorded(t *testing.T) {
	outputDir := t.TempDir()
	// a regular file where the reference directory should be
	blocker := filepath.Join(outputDir, "0009")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	sink := &metadataSinkMock{}
	s := storage.NewLocalSink(sink, outputDir, hashutil.HashAlgoSHA256)

	_, err := s.Write("0009", "doc.pdf", []byte("body"))
	require.NotNil(t, err)

	storageErr, ok := err.(*storage.StorageError)
	require.True(t, ok)
	assert.Equal(t, storage.ErrCausePathError, storageErr.Cause)

	require.Len(t, sink.errors, 1)
	assert.Equal(t, "LocalSink.Write", sink.errors[0].action)
	assert.Equal(t, metadata.CauseStorageFailure, sink.errors[0].cause)
	assert.Empty(t, sink.artifacts)
}

func TestLocalSink_UnsupportedHashAlgo(t *testing.T) {
	s := storage.NewLocalSink(&metadataSinkMock{}, t.TempDir(), hashutil.HashAlgo("md5"))

	_, err := s.Write("0001", "doc.pdf", []byte("body"))
	require.NotNil(t, err)
	storageErr, ok := err.(*storage.StorageError)
	require.True(t, ok)
	assert.Equal(t, storage.ErrCauseHashComputationFailed, storageErr.Cause)
}
