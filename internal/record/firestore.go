package record

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps records as documents of one collection, keyed by
// reference identity.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient creates a client for projectID. Honors
// FIRESTORE_EMULATOR_HOST like every firestore client.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Load(ctx context.Context, refID string) (DocumentRecord, bool, error) {
	snap, err := s.doc(refID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return DocumentRecord{}, false, nil
	}
	if err != nil {
		return DocumentRecord{}, false, &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadFailure, RefID: refID}
	}

	var rec DocumentRecord
	if err := snap.DataTo(&rec); err != nil {
		return DocumentRecord{}, false, &RecordError{Message: err.Error(), Cause: ErrCauseDecodeFailure, RefID: refID}
	}
	return rec, true, nil
}

func (s *FirestoreStore) Save(ctx context.Context, rec DocumentRecord) error {
	if !rec.IsTerminal() {
		return &RecordError{Message: "refusing to persist " + string(rec.Status), Cause: ErrCauseNotTerminal, RefID: rec.RefID}
	}
	if _, err := s.doc(rec.RefID).Set(ctx, rec); err != nil {
		return &RecordError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, RefID: rec.RefID}
	}
	return nil
}

// document ids may not contain '/'
func (s *FirestoreStore) doc(refID string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(strings.ReplaceAll(refID, "/", "_"))
}
