package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/archive"
	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"golang.org/x/sync/errgroup"
)

// PageCaptureFilename names an HTML page kept as the document itself.
const PageCaptureFilename = "page_content.html"

// SourceFetcher materializes candidate artifacts for one URL. It never
// validates; every request it makes is reported in Result.Attempts.
type SourceFetcher interface {
	Fetch(ctx context.Context, target url.URL) Result
}

// Getter is the request primitive source fetchers are built on.
type Getter interface {
	Get(ctx context.Context, target url.URL) (Response, failure.ClassifiedError)
}

type FetcherParam struct {
	Policy          LinkPolicy
	LinkConcurrency int
}

// planner holds the fetch-then-scrape logic shared by every source.
type planner struct {
	getter          Getter
	source          record.Source
	policy          LinkPolicy
	linkConcurrency int
	// rejectLanding reports responses that ended somewhere they must not.
	rejectLanding func(requested url.URL, final url.URL) bool
	// linkBase and linkTarget let a source resolve page links against
	// another URL and request them somewhere else. nil means as found.
	linkBase   func(final url.URL) url.URL
	linkTarget func(final url.URL, link url.URL) url.URL
}

func newPlanner(getter Getter, source record.Source, param FetcherParam) planner {
	concurrency := param.LinkConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return planner{
		getter:          getter,
		source:          source,
		policy:          param.Policy,
		linkConcurrency: concurrency,
	}
}

func (p *planner) plan(ctx context.Context, target url.URL) Result {
	var result Result

	response, err := p.getter.Get(ctx, target)
	if err != nil {
		result.Attempts = append(result.Attempts, p.failedAttempt(target, err))
		return result
	}
	if p.landedBadly(target, response) {
		result.Attempts = append(result.Attempts, p.redirectRejectedAttempt(target, response))
		return result
	}

	contentType := EffectiveContentType(response)
	attempt := p.fetchedAttempt(target, response, contentType)

	switch ClassifyResponse(contentType, response.finalURL, target) {
	case KindDocument:
		result.Attempts = append(result.Attempts, attempt)
		result.Candidates = append(result.Candidates, p.candidate(target, response, contentType, 0))

	case KindPage:
		result.Attempts = append(result.Attempts, attempt)
		page := p.candidate(target, response, contentType, 0)
		page.Filename = PageCaptureFilename
		page.NeedsRendering = true

		links := p.scrape(response)
		if len(links) == 0 {
			result.Candidates = append(result.Candidates, page)
			return result
		}

		for _, outcome := range p.fetchLinks(ctx, links) {
			index := len(result.Attempts)
			result.Attempts = append(result.Attempts, outcome.attempt)
			if outcome.candidate != nil {
				outcome.candidate.AttemptIndex = index
				result.Candidates = append(result.Candidates, *outcome.candidate)
			}
		}
		if len(result.Candidates) == 0 {
			result.Candidates = append(result.Candidates, page)
		} else {
			result.Fallback = &page
		}

	default:
		attempt.Outcome = record.OutcomeUnusableContentType
		attempt.Detail = "unusable content-type: " + contentType
		result.Attempts = append(result.Attempts, attempt)
	}
	return result
}

func (p *planner) scrape(response Response) []url.URL {
	base := response.finalURL
	if p.linkBase != nil {
		base = p.linkBase(base)
	}
	links := ScrapeLinks(response.body, base, p.policy)
	if p.linkTarget != nil {
		for i := range links {
			links[i] = p.linkTarget(response.finalURL, links[i])
		}
	}
	return links
}

type linkOutcome struct {
	attempt   record.FetchAttempt
	candidate *Candidate
}

// fetchLinks downloads sibling document links concurrently. Outcomes keep
// the page's link order regardless of completion order.
func (p *planner) fetchLinks(ctx context.Context, links []url.URL) []linkOutcome {
	outcomes := make([]linkOutcome, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.linkConcurrency)
	for i, link := range links {
		g.Go(func() error {
			defer func() {
				if recovered := recover(); recovered != nil {
					outcomes[i] = linkOutcome{attempt: p.panickedAttempt(link, recovered)}
				}
			}()
			outcomes[i] = p.fetchLink(gctx, link)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (p *planner) fetchLink(ctx context.Context, link url.URL) linkOutcome {
	response, err := p.getter.Get(ctx, link)
	if err != nil {
		return linkOutcome{attempt: p.failedAttempt(link, err)}
	}
	if p.landedBadly(link, response) {
		return linkOutcome{attempt: p.redirectRejectedAttempt(link, response)}
	}

	contentType := EffectiveContentType(response)
	attempt := p.fetchedAttempt(link, response, contentType)
	if ClassifyContentType(contentType) == KindUnusable {
		attempt.Outcome = record.OutcomeUnusableContentType
		attempt.Detail = "unusable content-type: " + contentType
		return linkOutcome{attempt: attempt}
	}
	candidate := p.candidate(link, response, contentType, 0)
	return linkOutcome{attempt: attempt, candidate: &candidate}
}

func (p *planner) landedBadly(requested url.URL, response Response) bool {
	return p.rejectLanding != nil && p.rejectLanding(requested, response.finalURL)
}

func (p *planner) candidate(requested url.URL, response Response, contentType string, attemptIndex int) Candidate {
	return Candidate{
		Body:         response.body,
		ContentType:  contentType,
		SourceURL:    response.finalURL.String(),
		RequestedURL: requested.String(),
		Filename:     GuessFilename(response, requested),
		Source:       p.source,
		AttemptIndex: attemptIndex,
	}
}

func (p *planner) fetchedAttempt(target url.URL, response Response, contentType string) record.FetchAttempt {
	attempt := record.FetchAttempt{
		Source:      p.source,
		URL:         target.String(),
		HTTPStatus:  response.statusCode,
		ContentType: contentType,
		Outcome:     record.OutcomeFetched,
		Timestamp:   time.Now().UTC(),
	}
	if final := response.finalURL.String(); final != "" && final != target.String() {
		attempt.Detail = "redirected to " + final
	}
	return attempt
}

func (p *planner) redirectRejectedAttempt(target url.URL, response Response) record.FetchAttempt {
	attempt := p.fetchedAttempt(target, response, response.contentType)
	attempt.Outcome = record.OutcomeRedirectRejected
	attempt.Detail = "landed on access-control host: " + response.finalURL.String()
	return attempt
}

// panickedAttempt records a sibling fetch that panicked. The page and its
// other links are unaffected.
func (p *planner) panickedAttempt(target url.URL, recovered any) record.FetchAttempt {
	return record.FetchAttempt{
		Source:     p.source,
		URL:        target.String(),
		ErrorClass: "panic",
		Outcome:    record.OutcomeError,
		Detail:     fmt.Sprintf("%v", recovered),
		Timestamp:  time.Now().UTC(),
	}
}

func (p *planner) failedAttempt(target url.URL, err error) record.FetchAttempt {
	attempt := record.FetchAttempt{
		Source:     p.source,
		URL:        target.String(),
		HTTPStatus: StatusOf(err),
		ErrorClass: ErrorClass(err),
		Outcome:    record.OutcomeTransportError,
		Detail:     err.Error(),
		Timestamp:  time.Now().UTC(),
	}
	if attempt.HTTPStatus > 0 {
		attempt.Outcome = record.OutcomeHTTPError
	}
	return attempt
}

// LiveFetcher requests the URL itself. It serves both the portal and the
// direct step; only the source tag differs.
type LiveFetcher struct {
	planner
}

func NewLiveFetcher(getter Getter, source record.Source, param FetcherParam) *LiveFetcher {
	return &LiveFetcher{planner: newPlanner(getter, source, param)}
}

func (l *LiveFetcher) Fetch(ctx context.Context, target url.URL) Result {
	return l.plan(ctx, target)
}

type ArchiveParam struct {
	FetcherParam
	SnapshotBase       string
	AccessControlHosts []string
}

// ArchiveFetcher resolves a URL to its newest capture in the snapshot index
// and fetches the capture's raw content.
type ArchiveFetcher struct {
	planner
	index        archive.Index
	snapshotBase string
}

func NewArchiveFetcher(getter Getter, index archive.Index, param ArchiveParam) *ArchiveFetcher {
	p := newPlanner(getter, record.SourceArchive, param.FetcherParam)
	hosts := param.AccessControlHosts
	p.rejectLanding = func(requested url.URL, final url.URL) bool {
		return archive.IsAccessControlRedirect(requested.String(), final.String(), hosts)
	}
	base := param.SnapshotBase
	if base == "" {
		base = archive.DefaultSnapshotURL
	}

	// Raw captures keep the page's own links: resolve them against the
	// captured URL and request them through the same capture time.
	p.linkBase = func(final url.URL) url.URL {
		if original, ok := archive.OriginalFromSnapshot(final.String()); ok {
			if u, err := url.Parse(original); err == nil {
				return *u
			}
		}
		return final
	}
	p.linkTarget = func(final url.URL, link url.URL) url.URL {
		timestamp, _, ok := archive.ParseSnapshotURL(final.String())
		if !ok || timestamp == "" {
			return link
		}
		if _, _, already := archive.ParseSnapshotURL(link.String()); already {
			return link
		}
		wrapped, err := url.Parse(archive.SnapshotURL(base, timestamp, link.String()))
		if err != nil {
			return link
		}
		return *wrapped
	}
	return &ArchiveFetcher{planner: p, index: index, snapshotBase: base}
}

func (a *ArchiveFetcher) Fetch(ctx context.Context, target url.URL) Result {
	snapshots, err := a.index.Lookup(ctx, target.String())
	if err != nil {
		return Result{Attempts: []record.FetchAttempt{{
			Source:     record.SourceArchive,
			URL:        target.String(),
			ErrorClass: "snapshot index unavailable",
			Outcome:    record.OutcomeTransportError,
			Detail:     err.Error(),
			Timestamp:  time.Now().UTC(),
		}}}
	}

	newest, ok := archive.Newest(snapshots)
	if !ok {
		return Result{Attempts: []record.FetchAttempt{{
			Source:    record.SourceArchive,
			URL:       target.String(),
			Outcome:   record.OutcomeNoSnapshot,
			Detail:    fmt.Sprintf("%d captures, none usable", len(snapshots)),
			Timestamp: time.Now().UTC(),
		}}}
	}

	original := newest.Original
	if original == "" {
		original = target.String()
	}
	snapshotURL, err := url.Parse(archive.SnapshotURL(a.snapshotBase, newest.Timestamp, original))
	if err != nil {
		return Result{Attempts: []record.FetchAttempt{{
			Source:    record.SourceArchive,
			URL:       target.String(),
			Outcome:   record.OutcomeInvalidURL,
			Detail:    err.Error(),
			Timestamp: time.Now().UTC(),
		}}}
	}
	return a.plan(ctx, *snapshotURL)
}
