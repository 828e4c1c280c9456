package resolver

import (
	"github.com/rohmanhakim/docs-harvester/internal/fetcher"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
)

const (
	DefaultArchiveDirectURLs  = 3
	DefaultArchiveMaxVariants = 3
)

type Param struct {
	// ArchiveDirectURLs bounds how many direct URLs seed the archive step.
	ArchiveDirectURLs int
	// ArchiveMaxVariants bounds how many variants the archive step tries.
	ArchiveMaxVariants int
	// Version is stamped into every record.
	Version string
}

func NewParam(archiveDirectURLs int, archiveMaxVariants int, version string) Param {
	return Param{
		ArchiveDirectURLs:  archiveDirectURLs,
		ArchiveMaxVariants: archiveMaxVariants,
		Version:            version,
	}
}

// Sources are the three fetchers of the chain.
type Sources struct {
	Portal  fetcher.SourceFetcher
	Direct  fetcher.SourceFetcher
	Archive fetcher.SourceFetcher
}

// judged is a candidate together with its verdict.
type judged struct {
	candidate fetcher.Candidate
	outcome   validator.Outcome
}

// stepResult is what one URL contributed to the record.
type stepResult struct {
	accepted []judged
	// rejected is true when the validator refused any candidate.
	rejected bool
}
