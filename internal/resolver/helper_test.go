package resolver_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/fetcher"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/internal/resolver"
	"github.com/rohmanhakim/docs-harvester/internal/storage"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/rohmanhakim/docs-harvester/pkg/hashutil"
	"github.com/rs/zerolog"
)

// stubFetcher answers from a fixed table and remembers what it was asked.
// Unknown URLs answer with a 404 attempt.
type stubFetcher struct {
	source  record.Source
	results map[string]fetcher.Result
	panicOn string

	mu    sync.Mutex
	calls []string
}

func newStub(source record.Source) *stubFetcher {
	return &stubFetcher{source: source, results: make(map[string]fetcher.Result)}
}

func (s *stubFetcher) Fetch(ctx context.Context, target url.URL) fetcher.Result {
	raw := target.String()
	s.mu.Lock()
	s.calls = append(s.calls, raw)
	s.mu.Unlock()

	if s.panicOn != "" && raw == s.panicOn {
		panic("fetcher exploded")
	}
	if result, ok := s.results[raw]; ok {
		return result
	}
	return fetcher.Result{Attempts: []record.FetchAttempt{{
		Source:     s.source,
		URL:        raw,
		HTTPStatus: 404,
		ErrorClass: "not found",
		Outcome:    record.OutcomeHTTPError,
		Timestamp:  time.Now(),
	}}}
}

func (s *stubFetcher) called() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// failing answers raw with an HTTP error attempt.
func (s *stubFetcher) failing(raw string, status int) {
	s.results[raw] = fetcher.Result{Attempts: []record.FetchAttempt{{
		Source:     s.source,
		URL:        raw,
		HTTPStatus: status,
		Outcome:    record.OutcomeHTTPError,
		Timestamp:  time.Now(),
	}}}
}

// document answers raw with a single binary candidate.
func (s *stubFetcher) document(raw string, filename string, body []byte) {
	s.results[raw] = fetcher.Result{
		Candidates: []fetcher.Candidate{{
			Body:         body,
			ContentType:  "application/pdf",
			SourceURL:    raw,
			RequestedURL: raw,
			Filename:     filename,
			Source:       s.source,
		}},
		Attempts: []record.FetchAttempt{s.fetched(raw, "application/pdf")},
	}
}

// page answers raw with an HTML page that had no document links.
func (s *stubFetcher) page(raw string, body []byte) {
	s.results[raw] = fetcher.Result{
		Candidates: []fetcher.Candidate{s.pageCandidate(raw, body)},
		Attempts:   []record.FetchAttempt{s.fetched(raw, "text/html")},
	}
}

// listing answers raw with a page whose links produced the given bodies.
func (s *stubFetcher) listing(raw string, pageBody []byte, links map[string][]byte, order []string) {
	result := fetcher.Result{Attempts: []record.FetchAttempt{s.fetched(raw, "text/html")}}
	for _, name := range order {
		linkURL := strings.TrimSuffix(raw, "/") + "/" + name
		result.Attempts = append(result.Attempts, s.fetched(linkURL, "application/pdf"))
		result.Candidates = append(result.Candidates, fetcher.Candidate{
			Body:         links[name],
			ContentType:  "application/pdf",
			SourceURL:    linkURL,
			RequestedURL: linkURL,
			Filename:     name,
			Source:       s.source,
			AttemptIndex: len(result.Attempts) - 1,
		})
	}
	page := s.pageCandidate(raw, pageBody)
	result.Fallback = &page
	s.results[raw] = result
}

func (s *stubFetcher) pageCandidate(raw string, body []byte) fetcher.Candidate {
	return fetcher.Candidate{
		Body:           body,
		ContentType:    "text/html",
		SourceURL:      raw,
		RequestedURL:   raw,
		Filename:       fetcher.PageCaptureFilename,
		Source:         s.source,
		NeedsRendering: true,
	}
}

func (s *stubFetcher) fetched(raw string, contentType string) record.FetchAttempt {
	return record.FetchAttempt{
		Source:      s.source,
		URL:         raw,
		HTTPStatus:  200,
		ContentType: contentType,
		Outcome:     record.OutcomeFetched,
		Timestamp:   time.Now(),
	}
}

type fixture struct {
	portal  *stubFetcher
	direct  *stubFetcher
	archive *stubFetcher
	sink    *storage.LocalSink
	outDir  string
	r       *resolver.Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		portal:  newStub(record.SourcePortal),
		direct:  newStub(record.SourceDirect),
		archive: newStub(record.SourceArchive),
		outDir:  t.TempDir(),
	}
	f.sink = storage.NewLocalSink(&metadata.NoopSink{}, f.outDir, hashutil.HashAlgoSHA256, record.MetadataFilename)
	f.r = resolver.NewResolver(
		resolver.Sources{Portal: f.portal, Direct: f.direct, Archive: f.archive},
		validator.New(validator.DefaultRules()),
		f.sink,
		&metadata.NoopSink{},
		zerolog.Nop(),
		resolver.NewParam(3, 3, "test"),
	)
	return f
}

func pdf(size int) []byte {
	return []byte("%PDF-1.7\n" + strings.Repeat("x", size))
}

func article() []byte {
	return []byte("<html><head><title>Guidance</title></head><body><main><h1>Program Instruction</h1><p>" +
		strings.Repeat("The agency shall report each quarter on program outcomes and expenditures. ", 150) +
		"</p></main></body></html>")
}

func accessDeniedPage() []byte {
	return []byte("<html><head><title>Access Denied</title></head><body><h1>Access Denied</h1>" +
		"<p>You don't have permission to access this page on this server.</p>" +
		strings.Repeat("<p>Reference number 18.5d2f.</p>", 6) + "</body></html>")
}

func sources(attempts []record.FetchAttempt) []record.Source {
	var out []record.Source
	for _, a := range attempts {
		out = append(out, a.Source)
	}
	return out
}
