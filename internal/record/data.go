package record

import (
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/validator"
)

// Status is the lifecycle state of a DocumentRecord.
type Status string

const (
	StatusPending          Status = "pending"
	StatusSuccess          Status = "success"
	StatusFailed           Status = "failed"
	StatusNoURLs           Status = "no_urls"
	StatusValidationFailed Status = "validation_failed"
)

// Statuses lists every status in report order.
var Statuses = []Status{
	StatusSuccess,
	StatusValidationFailed,
	StatusFailed,
	StatusNoURLs,
	StatusPending,
}

// IsTerminal reports whether s is a sink state for the resolver.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusNoURLs, StatusValidationFailed:
		return true
	}
	return false
}

// Source names a step of the source chain, in priority order.
type Source string

const (
	SourcePortal  Source = "portal"
	SourceDirect  Source = "direct"
	SourceArchive Source = "archive"
)

// AttemptOutcome summarizes what a single fetch attempt produced.
type AttemptOutcome string

const (
	OutcomeFetched             AttemptOutcome = "fetched"
	OutcomeHTTPError           AttemptOutcome = "http_error"
	OutcomeTransportError      AttemptOutcome = "transport_error"
	OutcomeUnusableContentType AttemptOutcome = "unusable_content_type"
	OutcomeNoSnapshot          AttemptOutcome = "no_snapshot"
	OutcomeRedirectRejected    AttemptOutcome = "redirect_rejected"
	OutcomeInvalidURL          AttemptOutcome = "invalid_url"
	OutcomeAccepted            AttemptOutcome = "accepted"
	OutcomeRejected            AttemptOutcome = "rejected"
	OutcomeError               AttemptOutcome = "error"
)

// FetchAttempt is one entry of the append-only attempt log.
type FetchAttempt struct {
	Source      Source           `json:"source" firestore:"source"`
	URL         string           `json:"url" firestore:"url"`
	HTTPStatus  int              `json:"http_status,omitempty" firestore:"http_status,omitempty"`
	ErrorClass  string           `json:"error_class,omitempty" firestore:"error_class,omitempty"`
	ContentType string           `json:"content_type,omitempty" firestore:"content_type,omitempty"`
	Outcome     AttemptOutcome   `json:"outcome" firestore:"outcome"`
	Reason      validator.Reason `json:"reason,omitempty" firestore:"reason,omitempty"`
	Detail      string           `json:"detail,omitempty" firestore:"detail,omitempty"`
	Timestamp   time.Time        `json:"timestamp" firestore:"timestamp"`
}

// ArtifactFile describes an accepted artifact written to reference storage.
type ArtifactFile struct {
	Filename       string            `json:"filename" firestore:"filename"`
	SourceURL      string            `json:"source_url" firestore:"source_url"`
	Size           int64             `json:"size" firestore:"size"`
	Hash           string            `json:"hash" firestore:"hash"`
	HashAlgo       string            `json:"hash_algo" firestore:"hash_algo"`
	ContentType    string            `json:"content_type,omitempty" firestore:"content_type,omitempty"`
	Source         Source            `json:"source" firestore:"source"`
	NeedsRendering bool              `json:"needs_rendering,omitempty" firestore:"needs_rendering,omitempty"`
	Validation     validator.Outcome `json:"validation" firestore:"validation"`
	Rendered       []string          `json:"rendered,omitempty" firestore:"rendered,omitempty"`
}

// RejectedArtifact keeps the audit trail of a candidate the validator
// turned down. Its bytes are never stored.
type RejectedArtifact struct {
	Filename    string            `json:"filename" firestore:"filename"`
	SourceURL   string            `json:"source_url" firestore:"source_url"`
	Size        int64             `json:"size" firestore:"size"`
	ContentType string            `json:"content_type,omitempty" firestore:"content_type,omitempty"`
	Source      Source            `json:"source" firestore:"source"`
	Validation  validator.Outcome `json:"validation" firestore:"validation"`
}

// DocumentRecord is the single outcome of resolving one reference.
type DocumentRecord struct {
	RefID        string   `json:"ref_id" firestore:"ref_id"`
	Office       string   `json:"office,omitempty" firestore:"office,omitempty"`
	DocNumber    string   `json:"doc_number,omitempty" firestore:"doc_number,omitempty"`
	Title        string   `json:"title,omitempty" firestore:"title,omitempty"`
	IssueDate    string   `json:"issue_date,omitempty" firestore:"issue_date,omitempty"`
	DocType      string   `json:"doc_type,omitempty" firestore:"doc_type,omitempty"`
	URLs         []string `json:"urls" firestore:"urls"`
	PortalURL    string   `json:"portal_url,omitempty" firestore:"portal_url,omitempty"`
	PortalStatus string   `json:"portal_status,omitempty" firestore:"portal_status,omitempty"`

	Status     Status             `json:"status" firestore:"status"`
	SourceUsed Source             `json:"source_used,omitempty" firestore:"source_used,omitempty"`
	Attempts   []FetchAttempt     `json:"attempts" firestore:"attempts"`
	Files      []ArtifactFile     `json:"files" firestore:"files"`
	Rejected   []RejectedArtifact `json:"rejected,omitempty" firestore:"rejected,omitempty"`

	RunID            string    `json:"run_id,omitempty" firestore:"run_id,omitempty"`
	HarvestedAt      time.Time `json:"harvested_at" firestore:"harvested_at"`
	HarvesterVersion string    `json:"harvester_version,omitempty" firestore:"harvester_version,omitempty"`
}
