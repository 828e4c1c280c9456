package record

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rohmanhakim/docs-harvester/pkg/fileutil"
)

// MetadataFilename is the record file kept beside a reference's artifacts.
const MetadataFilename = "metadata.json"

// Store persists terminal records and answers resume lookups.
type Store interface {
	// Load returns the stored record for refID. found is false when nothing
	// has been stored yet.
	Load(ctx context.Context, refID string) (rec DocumentRecord, found bool, err error)
	// Save persists a terminal record.
	Save(ctx context.Context, rec DocumentRecord) error
}

// LocalStore keeps one metadata.json per reference directory.
type LocalStore struct {
	outputDir string
}

func NewLocalStore(outputDir string) *LocalStore {
	return &LocalStore{outputDir: outputDir}
}

func (s *LocalStore) Path(refID string) string {
	return filepath.Join(s.outputDir, refID, MetadataFilename)
}

func (s *LocalStore) Load(ctx context.Context, refID string) (DocumentRecord, bool, error) {
	data, err := os.ReadFile(s.Path(refID))
	if errors.Is(err, fs.ErrNotExist) {
		return DocumentRecord{}, false, nil
	}
	if err != nil {
		return DocumentRecord{}, false, &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadFailure, RefID: refID}
	}

	var rec DocumentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return DocumentRecord{}, false, &RecordError{Message: err.Error(), Cause: ErrCauseDecodeFailure, RefID: refID}
	}
	return rec, true, nil
}

// Save writes through a temp file and rename so a reader never sees a
// half-written record.
func (s *LocalStore) Save(ctx context.Context, rec DocumentRecord) error {
	if !rec.IsTerminal() {
		return &RecordError{Message: "refusing to persist " + string(rec.Status), Cause: ErrCauseNotTerminal, RefID: rec.RefID}
	}

	dir := filepath.Join(s.outputDir, rec.RefID)
	if err := fileutil.EnsureDir(dir); err != nil {
		return &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return &RecordError{Message: err.Error(), Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}

	tmp, err := os.CreateTemp(dir, ".metadata-*.json")
	if err != nil {
		return &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}
	if err := tmp.Close(); err != nil {
		return &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}
	if err := os.Rename(tmp.Name(), s.Path(rec.RefID)); err != nil {
		return &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}
	return nil
}
