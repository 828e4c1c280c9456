package validator

// Reason is the closed set of validation verdicts.
type Reason string

const (
	ReasonOK               Reason = "ok"
	ReasonNotFound         Reason = "not_found"
	ReasonEmpty            Reason = "empty"
	ReasonTooSmall         Reason = "too_small"
	ReasonTypeMismatch     Reason = "type_mismatch"
	ReasonAccessDenied     Reason = "access_denied"
	ReasonArchiveErrorPage Reason = "archive_error_page"
	ReasonGenericErrorPage Reason = "generic_error_page"
	ReasonEmptyShell       Reason = "empty_shell"
	ReasonInsufficientText Reason = "insufficient_text"
)

// Reasons lists every verdict in a stable order, used by reports.
var Reasons = []Reason{
	ReasonOK,
	ReasonNotFound,
	ReasonEmpty,
	ReasonTooSmall,
	ReasonTypeMismatch,
	ReasonAccessDenied,
	ReasonArchiveErrorPage,
	ReasonGenericErrorPage,
	ReasonEmptyShell,
	ReasonInsufficientText,
}

// FileType is the type detected from content, independent of any extension.
type FileType string

const (
	TypePDF           FileType = "pdf"
	TypeZipBased      FileType = "zip_based"
	TypeOLE           FileType = "ole"
	TypePNG           FileType = "png"
	TypeJPG           FileType = "jpg"
	TypeGIF           FileType = "gif"
	TypeRTF           FileType = "rtf"
	TypeHTML          FileType = "html"
	TypeText          FileType = "text"
	TypeUnknownBinary FileType = "unknown_binary"
)

// IsBinaryDocument reports whether t is a document or image format that is
// accepted without text inspection.
func (t FileType) IsBinaryDocument() bool {
	switch t {
	case TypePDF, TypeZipBased, TypeOLE, TypeRTF, TypePNG, TypeJPG, TypeGIF:
		return true
	}
	return false
}

func (t FileType) IsMarkup() bool {
	return t == TypeHTML || t == TypeText
}

// Details is the diagnostic bag attached to every Outcome.
type Details struct {
	ActualType        FileType `json:"actual_type,omitempty" firestore:"actual_type,omitempty"`
	DeclaredType      string   `json:"declared_type,omitempty" firestore:"declared_type,omitempty"`
	SizeBytes         int64    `json:"size_bytes" firestore:"size_bytes"`
	VisibleChars      int      `json:"visible_chars,omitempty" firestore:"visible_chars,omitempty"`
	MatchedIndicators []string `json:"matched_indicators,omitempty" firestore:"matched_indicators,omitempty"`
	PageCount         int      `json:"page_count,omitempty" firestore:"page_count,omitempty"`
}

// Outcome is produced once per candidate artifact and never mutated.
type Outcome struct {
	Accepted bool    `json:"accepted" firestore:"accepted"`
	Reason   Reason  `json:"reason" firestore:"reason"`
	Details  Details `json:"details" firestore:"details"`
}

func accept(details Details) Outcome {
	return Outcome{Accepted: true, Reason: ReasonOK, Details: details}
}

func reject(reason Reason, details Details) Outcome {
	return Outcome{Accepted: false, Reason: reason, Details: details}
}
