package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"github.com/rohmanhakim/docs-harvester/pkg/failure"
)

const (
	DefaultIndexURL    = "https://web.archive.org/cdx/search/cdx"
	DefaultSnapshotURL = "https://web.archive.org/web/"

	// indexRowLimit is sent negated: the index returns its last rows, which
	// are the newest captures.
	indexRowLimit = 10
)

// BodyGetter performs one GET with the caller's retry and politeness rules
// and returns the response body of a 2xx answer.
type BodyGetter interface {
	GetBody(ctx context.Context, target url.URL) ([]byte, failure.ClassifiedError)
}

// Index answers which captures exist for a URL.
type Index interface {
	Lookup(ctx context.Context, target string) ([]Snapshot, error)
}

// CDXIndex queries a CDX snapshot index and caches its answers per target
// for the lifetime of the run.
type CDXIndex struct {
	getter       BodyGetter
	indexURL     url.URL
	cache        Cache
	metadataSink metadata.MetadataSink
}

func NewCDXIndex(
	getter BodyGetter,
	indexURL url.URL,
	cache Cache,
	metadataSink metadata.MetadataSink,
) *CDXIndex {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &CDXIndex{
		getter:       getter,
		indexURL:     indexURL,
		cache:        cache,
		metadataSink: metadataSink,
	}
}

func (x *CDXIndex) Lookup(ctx context.Context, target string) ([]Snapshot, error) {
	if cached, ok := x.cache.Get(target); ok {
		return cached, nil
	}

	snapshots, err := x.lookup(ctx, target)
	if err != nil {
		var archiveErr *ArchiveError
		if errors.As(err, &archiveErr) {
			x.metadataSink.RecordError(
				time.Now(),
				"archive",
				"CDXIndex.Lookup",
				mapArchiveErrorToMetadataCause(archiveErr),
				err.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, target)},
			)
		}
		return nil, err
	}

	x.cache.Put(target, snapshots)
	return snapshots, nil
}

func (x *CDXIndex) lookup(ctx context.Context, target string) ([]Snapshot, error) {
	if target == "" {
		return nil, &ArchiveError{Message: "empty target", Cause: ErrCauseInvalidTarget}
	}

	query := x.indexURL
	values := url.Values{}
	values.Set("url", target)
	values.Set("output", "json")
	values.Set("limit", strconv.Itoa(-indexRowLimit))
	values.Set("fl", "timestamp,statuscode,original,mimetype")
	values.Set("filter", "statuscode:200")
	values.Set("collapse", "digest")
	query.RawQuery = values.Encode()

	body, err := x.getter.GetBody(ctx, query)
	if err != nil {
		retryable := true
		if r, ok := err.(failure.Retryable); ok {
			retryable = r.IsRetryable()
		}
		return nil, &ArchiveError{Message: err.Error(), Retryable: retryable, Cause: ErrCauseIndexUnavailable}
	}
	return ParseCDX(body)
}

// ParseCDX decodes the JSON table output of a CDX query. The first row is
// the field header; an empty body means no captures.
func ParseCDX(body []byte) ([]Snapshot, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []Snapshot{}, nil
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &ArchiveError{Message: err.Error(), Cause: ErrCauseIndexMalformed}
	}
	if len(rows) < 2 {
		return []Snapshot{}, nil
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[name] = i
	}
	for _, required := range []string{"timestamp", "original"} {
		if _, ok := columns[required]; !ok {
			return nil, &ArchiveError{Message: "missing column " + required, Cause: ErrCauseIndexMalformed}
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	snapshots := make([]Snapshot, 0, len(rows)-1)
	for _, row := range rows[1:] {
		status, _ := strconv.Atoi(field(row, "statuscode"))
		snapshots = append(snapshots, Snapshot{
			Timestamp:  field(row, "timestamp"),
			StatusCode: status,
			Original:   field(row, "original"),
			MimeType:   field(row, "mimetype"),
		})
	}
	return snapshots, nil
}
