package fetcher

import (
	"net/http"
	"net/url"

	"github.com/rohmanhakim/docs-harvester/internal/record"
	"github.com/rohmanhakim/docs-harvester/pkg/fileutil"
)

// HTTP boundary

type Response struct {
	requestURL  url.URL
	finalURL    url.URL
	statusCode  int
	contentType string
	headers     http.Header
	body        []byte
	attempts    int
}

func (r *Response) RequestURL() url.URL {
	return r.requestURL
}

// FinalURL is the URL after redirects.
func (r *Response) FinalURL() url.URL {
	return r.finalURL
}

func (r *Response) Code() int {
	return r.statusCode
}

func (r *Response) ContentType() string {
	return r.contentType
}

func (r *Response) Header(key string) string {
	return r.headers.Get(key)
}

func (r *Response) Body() []byte {
	return r.body
}

func (r *Response) Attempts() int {
	return r.attempts
}

// NewResponseForTest builds a Response without a network round-trip.
func NewResponseForTest(
	requestURL url.URL,
	finalURL url.URL,
	statusCode int,
	contentType string,
	headers http.Header,
	body []byte,
) Response {
	if headers == nil {
		headers = http.Header{}
	}
	return Response{
		requestURL:  requestURL,
		finalURL:    finalURL,
		statusCode:  statusCode,
		contentType: contentType,
		headers:     headers,
		body:        body,
		attempts:    1,
	}
}

// Candidate is a set of bytes a source produced, pending validation.
type Candidate struct {
	Body         []byte
	ContentType  string
	SourceURL    string
	RequestedURL string
	Filename     string
	Source       record.Source
	// NeedsRendering marks an HTML page kept as the document itself.
	NeedsRendering bool
	// AttemptIndex points at the attempt in Result.Attempts that produced
	// the bytes.
	AttemptIndex int
}

// DeclaredExtension is the extension the candidate claims through its name,
// without the leading dot.
func (c Candidate) DeclaredExtension() string {
	return fileutil.GetFileExtension(c.Filename)
}

// Result is everything one source produced for one target URL.
type Result struct {
	Candidates []Candidate
	// Fallback is the listing page itself, kept when the page had document
	// links. It is only considered if none of Candidates is accepted.
	Fallback *Candidate
	Attempts []record.FetchAttempt
}

// Produced reports whether the source yielded any bytes at all.
func (r Result) Produced() bool {
	return len(r.Candidates) > 0 || r.Fallback != nil
}
