package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"github.com/rohmanhakim/docs-harvester/pkg/fileutil"
	"github.com/rohmanhakim/docs-harvester/pkg/hashutil"
)

/*
Responsibilities
- Persist accepted artifacts under <outputDir>/<refID>/
- Keep filenames safe and collision-free within a reference directory
- Hash every written artifact

Output Characteristics
- Stable directory layout
- Overwrite-safe reruns: a rerun replaces files of the same name rather than
  piling up suffixed copies
*/

type Sink interface {
	Write(refID string, filename string, body []byte) (WriteResult, failure.ClassifiedError)
	// Dir is the directory holding refID's artifacts.
	Dir(refID string) string
	// Forget drops the names claimed for refID.
	Forget(refID string)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
	outputDir    string
	hashAlgo     hashutil.HashAlgo
	reserved     map[string]struct{}

	mu    sync.Mutex
	taken map[string]map[string]struct{}
}

// NewLocalSink builds a sink rooted at outputDir. Reserved names are never
// handed out to artifacts, so files such as the record JSON stay intact.
func NewLocalSink(
	metadataSink metadata.MetadataSink,
	outputDir string,
	hashAlgo hashutil.HashAlgo,
	reserved ...string,
) *LocalSink {
	r := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		r[name] = struct{}{}
	}
	return &LocalSink{
		metadataSink: metadataSink,
		outputDir:    outputDir,
		hashAlgo:     hashAlgo,
		reserved:     r,
		taken:        make(map[string]map[string]struct{}),
	}
}

func (s *LocalSink) Dir(refID string) string {
	return filepath.Join(s.outputDir, refID)
}

func (s *LocalSink) Write(
	refID string,
	filename string,
	body []byte,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(refID, filename, body)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrRefID, refID),
				metadata.NewAttr(metadata.AttrWritePath, err.Path),
			},
		)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactDocument,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrRefID, refID),
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrContentHash, writeResult.Hash()),
		},
	)
	return writeResult, nil
}

func (s *LocalSink) write(
	refID string,
	filename string,
	body []byte,
) (WriteResult, *StorageError) {
	dir := s.Dir(refID)
	if err := fileutil.EnsureDir(dir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCausePathError,
			Path:      dir,
		}
	}

	hash, err := hashutil.HashBytes(body, s.hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}

	name := s.claim(refID, fileutil.SanitizeFilename(filename))
	fullPath := filepath.Join(dir, name)
	if err := os.WriteFile(fullPath, body, 0644); err != nil {
		s.release(refID, name)
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	return NewWriteResult(fullPath, name, hash, string(s.hashAlgo), int64(len(body))), nil
}

// claim picks the first free name for refID in this run and marks it used.
func (s *LocalSink) claim(refID string, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, ok := s.taken[refID]
	if !ok {
		names = make(map[string]struct{})
		s.taken[refID] = names
	}
	chosen := fileutil.UniqueFilename(name, func(candidate string) bool {
		if _, reserved := s.reserved[candidate]; reserved {
			return true
		}
		_, used := names[candidate]
		return used
	})
	names[chosen] = struct{}{}
	return chosen
}

func (s *LocalSink) release(refID string, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.taken[refID], name)
}

// Forget drops the names claimed for refID so a later resolution of the same
// reference starts from a clean slate.
func (s *LocalSink) Forget(refID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.taken, refID)
}
