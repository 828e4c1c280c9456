package resolver

import (
	"context"
	"fmt"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/archive"
	"github.com/rohmanhakim/docs-harvester/internal/fetcher"
	"github.com/rohmanhakim/docs-harvester/internal/inventory"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/storage"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/rs/zerolog"
)

/*
 Resolver is the source chain for one reference.

 - Sources run in fixed order: portal, direct, archive.
 - Every candidate is validated as soon as it is fetched.
 - The first step that yields an accepted artifact wins; later steps are
   skipped.
 - The attempt log is append-only. Every request and every verdict lands in
   it, including the ones that lost.
 - A record leaves Resolve terminal. Nothing inside resolution panics out.

 Fetchers never decide to move on to the next source; only the resolver
 does, and only from validator verdicts.
*/
type Resolver struct {
	sources      Sources
	validator    *validator.Validator
	sink         storage.Sink
	metadataSink metadata.MetadataSink
	log          zerolog.Logger
	param        Param
	now          func() time.Time

	store    record.Store
	renderer Renderer
	mirror   storage.Mirror
}

func NewResolver(
	sources Sources,
	v *validator.Validator,
	sink storage.Sink,
	metadataSink metadata.MetadataSink,
	log zerolog.Logger,
	param Param,
) *Resolver {
	if param.ArchiveDirectURLs < 1 {
		param.ArchiveDirectURLs = DefaultArchiveDirectURLs
	}
	if param.ArchiveMaxVariants < 1 {
		param.ArchiveMaxVariants = DefaultArchiveMaxVariants
	}
	return &Resolver{
		sources:      sources,
		validator:    v,
		sink:         sink,
		metadataSink: metadataSink,
		log:          log,
		param:        param,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Resolve runs the chain for ref and returns its terminal record.
func (r *Resolver) Resolve(ctx context.Context, ref inventory.Reference, xref inventory.CrossRef) (rec record.DocumentRecord) {
	rec = r.open(ref, xref)

	defer func() {
		if recovered := recover(); recovered != nil {
			r.metadataSink.RecordError(
				time.Now(),
				"resolver",
				"Resolver.Resolve",
				metadata.CauseInvariantViolation,
				fmt.Sprintf("%v", recovered),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrRefID, ref.ID)},
			)
			r.log.Error().
				Str("ref_id", ref.ID).
				Interface("panic", recovered).
				Str("stack", string(debug.Stack())).
				Msg("resolution aborted")
			rec = r.abort(rec, fmt.Sprintf("unexpected error: %v", recovered))
		}
	}()

	r.sink.Forget(ref.ID)

	portalURL, hasPortal := xref.PortalURL(ref.ID)
	if len(ref.URLs) == 0 && !hasPortal {
		r.close(&rec, record.StatusNoURLs)
		return rec
	}

	rejected := false

	if hasPortal {
		step := r.try(ctx, &rec, r.sources.Portal, record.SourcePortal, portalURL)
		rejected = rejected || step.rejected
		if r.succeed(&rec, record.SourcePortal, step) {
			return rec
		}
	}

	for _, raw := range ref.URLs {
		step := r.try(ctx, &rec, r.sources.Direct, record.SourceDirect, raw)
		rejected = rejected || step.rejected
		if r.succeed(&rec, record.SourceDirect, step) {
			return rec
		}
	}

	for _, variant := range archive.Variants(r.archiveSeeds(ref, portalURL), r.param.ArchiveMaxVariants) {
		step := r.try(ctx, &rec, r.sources.Archive, record.SourceArchive, variant)
		rejected = rejected || step.rejected
		if r.succeed(&rec, record.SourceArchive, step) {
			return rec
		}
	}

	// accepted content that could not be stored is a failure, not a
	// validation verdict
	if rejected {
		r.close(&rec, record.StatusValidationFailed)
	} else {
		r.close(&rec, record.StatusFailed)
	}
	return rec
}

func (r *Resolver) open(ref inventory.Reference, xref inventory.CrossRef) record.DocumentRecord {
	rec := record.New(ref.ID)
	rec.Office = ref.Office
	rec.DocNumber = ref.DocNumber
	rec.Title = ref.Title
	rec.IssueDate = ref.IssueDate
	rec.DocType = ref.DocType
	rec.URLs = append(rec.URLs, ref.URLs...)
	if portal, ok := xref.PortalURL(ref.ID); ok {
		rec.PortalURL = portal
	}
	rec.PortalStatus = xref.Status(ref.ID)
	rec.HarvesterVersion = r.param.Version
	return rec
}

// archiveSeeds are the URLs the archive step builds variants from: the
// first few direct URLs and the previously matched URL. A reference known
// only through the portal falls back to the portal URL.
func (r *Resolver) archiveSeeds(ref inventory.Reference, portalURL string) []string {
	limit := r.param.ArchiveDirectURLs
	if limit > len(ref.URLs) {
		limit = len(ref.URLs)
	}
	seeds := append([]string{}, ref.URLs[:limit]...)
	if ref.MatchedURL != "" {
		seeds = append(seeds, ref.MatchedURL)
	}
	if len(seeds) == 0 && portalURL != "" {
		seeds = append(seeds, portalURL)
	}
	return seeds
}

// try fetches one URL through one source, validates what came back and
// appends the annotated attempts to rec.
func (r *Resolver) try(
	ctx context.Context,
	rec *record.DocumentRecord,
	source fetcher.SourceFetcher,
	sourceName record.Source,
	raw string,
) stepResult {
	target, err := url.Parse(raw)
	if err != nil || target.Host == "" {
		detail := "missing host"
		if err != nil {
			detail = err.Error()
		}
		rec.AppendAttempts(record.FetchAttempt{
			Source:    sourceName,
			URL:       raw,
			Outcome:   record.OutcomeInvalidURL,
			Detail:    detail,
			Timestamp: r.now(),
		})
		return stepResult{}
	}

	result := source.Fetch(ctx, *target)
	attempts := append([]record.FetchAttempt(nil), result.Attempts...)

	var step stepResult
	for _, candidate := range result.Candidates {
		verdict := r.judge(candidate, attempts, rec)
		if verdict.outcome.Accepted {
			step.accepted = append(step.accepted, verdict)
		} else {
			step.rejected = true
		}
	}

	// the listing page itself only counts when none of its links did
	if len(step.accepted) == 0 && result.Fallback != nil {
		verdict := r.judge(*result.Fallback, attempts, rec)
		if verdict.outcome.Accepted {
			step.accepted = append(step.accepted, verdict)
		} else {
			step.rejected = true
		}
	}

	rec.AppendAttempts(attempts...)
	return step
}

// judge validates one candidate and writes the verdict onto the attempt
// that fetched it.
func (r *Resolver) judge(candidate fetcher.Candidate, attempts []record.FetchAttempt, rec *record.DocumentRecord) judged {
	outcome := r.validator.Validate(candidate.Body, candidate.DeclaredExtension())

	if i := candidate.AttemptIndex; i >= 0 && i < len(attempts) {
		attempts[i].Reason = outcome.Reason
		if outcome.Accepted {
			attempts[i].Outcome = record.OutcomeAccepted
		} else {
			attempts[i].Outcome = record.OutcomeRejected
		}
	}

	if !outcome.Accepted {
		rec.AppendRejected(record.RejectedArtifact{
			Filename:    candidate.Filename,
			SourceURL:   candidate.SourceURL,
			Size:        int64(len(candidate.Body)),
			ContentType: candidate.ContentType,
			Source:      candidate.Source,
			Validation:  outcome,
		})
		r.log.Debug().
			Str("ref_id", rec.RefID).
			Str("source", string(candidate.Source)).
			Str("url", candidate.SourceURL).
			Str("reason", string(outcome.Reason)).
			Msg("candidate rejected")
	}
	return judged{candidate: candidate, outcome: outcome}
}

// succeed stores the accepted artifacts of a step and, if at least one was
// written, closes the record as success.
func (r *Resolver) succeed(rec *record.DocumentRecord, source record.Source, step stepResult) bool {
	if len(step.accepted) == 0 {
		return false
	}

	var files []record.ArtifactFile
	for _, accepted := range step.accepted {
		written, err := r.sink.Write(rec.RefID, accepted.candidate.Filename, accepted.candidate.Body)
		if err != nil {
			rec.AppendAttempts(record.FetchAttempt{
				Source:      source,
				URL:         accepted.candidate.SourceURL,
				ContentType: accepted.candidate.ContentType,
				ErrorClass:  "storage",
				Outcome:     record.OutcomeError,
				Reason:      accepted.outcome.Reason,
				Detail:      err.Error(),
				Timestamp:   r.now(),
			})
			continue
		}
		files = append(files, record.ArtifactFile{
			Filename:       written.Filename(),
			SourceURL:      accepted.candidate.SourceURL,
			Size:           written.Size(),
			Hash:           written.Hash(),
			HashAlgo:       written.HashAlgo(),
			ContentType:    accepted.candidate.ContentType,
			Source:         source,
			NeedsRendering: accepted.candidate.NeedsRendering,
			Validation:     accepted.outcome,
		})
	}
	if len(files) == 0 {
		return false
	}

	if err := rec.Succeed(source, files, r.now()); err != nil {
		r.log.Error().Err(err).Str("ref_id", rec.RefID).Msg("record transition refused")
		return false
	}
	return true
}

func (r *Resolver) close(rec *record.DocumentRecord, status record.Status) {
	if err := rec.Close(status, r.now()); err != nil {
		r.log.Error().Err(err).Str("ref_id", rec.RefID).Msg("record transition refused")
	}
}

// abort records an unexpected failure. A record that already reached a
// terminal status keeps it.
func (r *Resolver) abort(rec record.DocumentRecord, detail string) record.DocumentRecord {
	rec.AppendAttempts(record.FetchAttempt{
		Outcome:    record.OutcomeError,
		ErrorClass: "panic",
		Detail:     detail,
		Timestamp:  r.now(),
	})
	if !rec.IsTerminal() {
		r.close(&rec, record.StatusFailed)
	}
	return rec
}
