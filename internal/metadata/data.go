package metadata

/*
ErrorCause is a closed, canonical classification used only for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause never drives retry, fallback to the next source, or abort decisions.
  - Packages map their local error causes onto this table; they do not invent meanings.
  - ErrorCause does not encode severity or retryability.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport or remote availability problems: timeouts, DNS, resets, 5xx.

# CausePolicyDisallow
  - The remote side refused us: 401/403, 429, access-control redirects.

# CauseContentInvalid
  - Bytes were fetched but are not a usable document: unusable content-type,
    validator rejection, unparseable snapshot index.

# CauseStorageFailure
  - Persisting artifacts or records failed: disk full, permissions, object store errors.

# CauseInvariantViolation
  - An internal consistency check failed, including recovered panics.

# CauseRetryFailure
  - Retries were exhausted for a transient failure.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
	CauseRetryFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactDocument ArtifactKind = "document"
	ArtifactCapture  ArtifactKind = "html_capture"
	ArtifactRendered ArtifactKind = "rendered"
	ArtifactRecord   ArtifactKind = "record"
	ArtifactReport   ArtifactKind = "report"
	ArtifactMirror   ArtifactKind = "mirror"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrHost        AttributeKey = "host"
	AttrRefID       AttributeKey = "ref_id"
	AttrSource      AttributeKey = "source"
	AttrStatus      AttributeKey = "status"
	AttrReason      AttributeKey = "reason"
	AttrHTTPStatus  AttributeKey = "http_status"
	AttrWritePath   AttributeKey = "write_path"
	AttrContentHash AttributeKey = "content_hash"
	AttrMessage     AttributeKey = "message"
	AttrBucket      AttributeKey = "bucket"
)
