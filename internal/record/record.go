package record

import "time"

// New opens a pending record for refID.
func New(refID string) DocumentRecord {
	return DocumentRecord{
		RefID:    refID,
		Status:   StatusPending,
		URLs:     []string{},
		Attempts: []FetchAttempt{},
		Files:    []ArtifactFile{},
	}
}

func (r *DocumentRecord) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// AppendAttempts adds entries to the attempt log. Entries already in the log
// are never rewritten.
func (r *DocumentRecord) AppendAttempts(attempts ...FetchAttempt) {
	r.Attempts = append(r.Attempts, attempts...)
}

// AppendRejected keeps the audit trail of candidates the validator refused.
func (r *DocumentRecord) AppendRejected(rejected ...RejectedArtifact) {
	r.Rejected = append(r.Rejected, rejected...)
}

// Succeed moves a pending record to success. It is the only transition that
// sets files and the source used.
func (r *DocumentRecord) Succeed(source Source, files []ArtifactFile, at time.Time) error {
	if err := r.transition(StatusSuccess, at); err != nil {
		return err
	}
	r.SourceUsed = source
	r.Files = append(r.Files, files...)
	return nil
}

// Close moves a pending record to a non-success terminal status.
func (r *DocumentRecord) Close(status Status, at time.Time) error {
	if status == StatusSuccess || !status.IsTerminal() {
		return &RecordError{
			Message: "close requires failed, no_urls or validation_failed, got " + string(status),
			Cause:   ErrCauseNotTerminal,
			RefID:   r.RefID,
		}
	}
	return r.transition(status, at)
}

func (r *DocumentRecord) transition(status Status, at time.Time) error {
	if r.Status.IsTerminal() {
		return &RecordError{
			Message: "cannot move from " + string(r.Status) + " to " + string(status),
			Cause:   ErrCauseAlreadyTerminal,
			RefID:   r.RefID,
		}
	}
	r.Status = status
	r.HarvestedAt = at
	return nil
}

// LastRejection returns the reason of the most recent rejected attempt.
func (r *DocumentRecord) LastRejection() (FetchAttempt, bool) {
	for i := len(r.Attempts) - 1; i >= 0; i-- {
		if r.Attempts[i].Outcome == OutcomeRejected {
			return r.Attempts[i], true
		}
	}
	return FetchAttempt{}, false
}
