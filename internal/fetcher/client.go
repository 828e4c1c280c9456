package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
	"github.com/rohmanhakim/docs-harvester/pkg/limiter"
	"github.com/rohmanhakim/docs-harvester/pkg/retry"
)

/*
Responsibilities

- Perform HTTP GET requests for every source
- Apply headers and per-request timeouts
- Wait for the per-host politeness slot before each request
- Classify responses and retry transient failures

Fetch Semantics

- 5xx, 429 and transport failures are retried with backoff
- A Retry-After in seconds becomes the host's minimum spacing
- Any other 4xx fails immediately so the chain can move on
- Redirect chains are bounded by the http.Client
- Bodies above the configured cap are refused
- Every request is reported to the metadata sink

The client never interprets content; it returns bytes and headers.
*/

const (
	maxRedirects  = 10
	maxRetryAfter = 2 * time.Minute
)

type ClientParam struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	RetryParam   retry.RetryParam
}

type HttpClient struct {
	metadataSink metadata.MetadataSink
	rateLimiter  limiter.RateLimiter
	httpClient   *http.Client
	param        ClientParam
}

func NewHttpClient(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	param ClientParam,
) *HttpClient {
	return &HttpClient{
		metadataSink: metadataSink,
		rateLimiter:  rateLimiter,
		httpClient: &http.Client{
			Timeout: param.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		param: param,
	}
}

// Get fetches target, following redirects, retrying transient failures.
func (h *HttpClient) Get(ctx context.Context, target url.URL) (Response, failure.ClassifiedError) {
	callerMethod := "HttpClient.Get"
	startTime := time.Now()

	result := retry.RetryContext(ctx, h.param.RetryParam, func() (Response, failure.ClassifiedError) {
		return h.performGet(ctx, target)
	})

	duration := time.Since(startTime)
	response := result.Value()
	statusCode := response.statusCode
	if result.IsFailure() {
		statusCode = StatusOf(result.Err())
	}
	h.metadataSink.RecordFetch(
		target.String(),
		statusCode,
		duration,
		response.contentType,
		result.Attempts()-1,
	)

	if err := result.Err(); err != nil {
		h.recordError(callerMethod, target, err)
		return Response{}, err
	}
	response.attempts = result.Attempts()
	return response, nil
}

// GetBody is Get reduced to the body, for JSON endpoints.
func (h *HttpClient) GetBody(ctx context.Context, target url.URL) ([]byte, failure.ClassifiedError) {
	response, err := h.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return response.body, nil
}

func (h *HttpClient) recordError(callerMethod string, target url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, target.String()),
			},
		)
		return
	}

	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, target.String()),
				metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchError.StatusCode)),
			},
		)
	}
}

func (h *HttpClient) performGet(ctx context.Context, target url.URL) (Response, failure.ClassifiedError) {
	host := target.Hostname()
	if err := h.rateLimiter.Wait(ctx, host); err != nil {
		return Response{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCanceled,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidRequest,
		}
	}
	for key, value := range requestHeaders(h.param.UserAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, &FetchError{
				Message:   ctx.Err().Error(),
				Retryable: false,
				Cause:     ErrCauseCanceled,
			}
		}
		// Network/transport errors are retryable
		return Response{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if fetchErr := classifyStatus(resp.StatusCode); fetchErr != nil {
		if fetchErr.Retryable {
			if delay, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				h.rateLimiter.SetCrawlDelay(host, delay)
			}
			h.rateLimiter.Backoff(host)
		}
		return Response{}, fetchErr
	}
	h.rateLimiter.ResetBackoff(host)

	body, readErr := readBody(resp.Body, h.param.MaxBodyBytes)
	if readErr != nil {
		return Response{}, readErr
	}

	return Response{
		requestURL:  target,
		finalURL:    *resp.Request.URL,
		statusCode:  resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		headers:     resp.Header,
		body:        body,
	}, nil
}

func classifyStatus(code int) *FetchError {
	switch {
	case code >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", code),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: code,
		}

	case code == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: code,
		}

	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return &FetchError{
			Message:    fmt.Sprintf("access forbidden (%d)", code),
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: code,
		}

	case code == http.StatusNotFound || code == http.StatusGone:
		return &FetchError{
			Message:    fmt.Sprintf("not found (%d)", code),
			Retryable:  false,
			Cause:      ErrCauseRequestNotFound,
			StatusCode: code,
		}

	case code >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", code),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: code,
		}

	case code >= 300:
		// only reached once the redirect limit is exceeded
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", code),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: code,
		}
	}
	return nil
}

func readBody(body io.Reader, maxBytes int64) ([]byte, failure.ClassifiedError) {
	reader := body
	if maxBytes > 0 {
		reader = io.LimitReader(body, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &FetchError{
			Message:   fmt.Sprintf("body exceeds %d bytes", maxBytes),
			Retryable: false,
			Cause:     ErrCauseBodyTooLarge,
		}
	}
	return data, nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// retryAfter reads a Retry-After header given in seconds. HTTP-date values
// are ignored; backoff covers them.
func retryAfter(value string) (time.Duration, bool) {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0, false
	}
	delay := time.Duration(seconds) * time.Second
	if delay > maxRetryAfter {
		delay = maxRetryAfter
	}
	return delay, true
}
