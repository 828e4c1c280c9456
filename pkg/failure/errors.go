package failure

type Severity int

// resolver control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// ClassifiedError is returned across package boundaries so callers can
// decide between moving on to the next source and aborting the run.
type ClassifiedError interface {
	error
	Severity() Severity
}

// Retryable is implemented by errors that know whether repeating the
// same operation may succeed.
type Retryable interface {
	IsRetryable() bool
}
