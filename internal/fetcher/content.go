package fetcher

import (
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/rohmanhakim/docs-harvester/pkg/fileutil"
	"github.com/rohmanhakim/docs-harvester/pkg/urlutil"
)

// ContentKind is how a response is handled, decided from its declared
// content type.
type ContentKind int

const (
	KindUnusable ContentKind = iota
	// KindDocument responses are a single candidate artifact.
	KindDocument
	// KindPage responses are scanned for document links.
	KindPage
)

func (k ContentKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindPage:
		return "page"
	default:
		return "unusable"
	}
}

var documentTypeMarkers = []string{
	"pdf",
	"msword",
	"officedocument",
	"octet-stream",
	"ms-excel",
	"ms-powerpoint",
	"rtf",
	"spreadsheet",
	"zip",
}

// ClassifyContentType maps a Content-Type header value to a ContentKind.
// Document markers win over the text family so text/rtf is a document.
func ClassifyContentType(contentType string) ContentKind {
	ct := strings.ToLower(contentType)
	for _, marker := range documentTypeMarkers {
		if strings.Contains(ct, marker) {
			return KindDocument
		}
	}
	if strings.Contains(ct, "html") || strings.Contains(ct, "text") {
		return KindPage
	}
	return KindUnusable
}

// ClassifyResponse refines ClassifyContentType with the URLs of the
// response: plain text served from a .txt URL is the document itself, not a
// page to scrape.
func ClassifyResponse(contentType string, urls ...url.URL) ContentKind {
	kind := ClassifyContentType(contentType)
	if kind != KindPage || !strings.Contains(strings.ToLower(contentType), "text/plain") {
		return kind
	}
	for _, u := range urls {
		if strings.EqualFold(path.Ext(u.Path), ".txt") {
			return KindDocument
		}
	}
	return kind
}

// EffectiveContentType falls back to sniffing when the server sent no
// Content-Type header.
func EffectiveContentType(response Response) string {
	if strings.TrimSpace(response.contentType) != "" {
		return response.contentType
	}
	return http.DetectContentType(response.body)
}

// content type fragment -> extension, checked in order
var extensionByType = []struct {
	marker string
	ext    string
}{
	{"pdf", ".pdf"},
	{"msword", ".doc"},
	{"wordprocessingml", ".docx"},
	{"spreadsheetml", ".xlsx"},
	{"ms-excel", ".xls"},
	{"presentationml", ".pptx"},
	{"ms-powerpoint", ".ppt"},
	{"html", ".html"},
	{"plain", ".txt"},
	{"rtf", ".rtf"},
}

// ExtensionForContentType returns the extension used when no name can be
// taken from the response or URL.
func ExtensionForContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	for _, entry := range extensionByType {
		if strings.Contains(ct, entry.marker) {
			return entry.ext
		}
	}
	return ".bin"
}

var dispositionFilename = regexp.MustCompile(`filename\*?="?([^";\n]+)"?`)

// GuessFilename picks a sanitized name for a downloaded body: the
// Content-Disposition filename, then the final URL basename, then the
// requested URL basename, then "document" plus an extension derived from
// the content type. URL basenames only count if they carry an extension.
func GuessFilename(response Response, requested url.URL) string {
	if name := dispositionName(response.Header("Content-Disposition")); name != "" {
		return fileutil.SanitizeFilename(name)
	}
	for _, u := range []url.URL{response.finalURL, requested} {
		if name := urlutil.Basename(u); name != "" && strings.Contains(name, ".") {
			return fileutil.SanitizeFilename(name)
		}
	}
	return "document" + ExtensionForContentType(EffectiveContentType(response))
}

func dispositionName(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return path.Base(strings.ReplaceAll(name, "\\", "/"))
		}
	}
	if match := dispositionFilename.FindStringSubmatch(header); match != nil {
		name := strings.TrimSpace(match[1])
		// RFC 5987 form: charset'lang'value
		if parts := strings.SplitN(name, "'", 3); len(parts) == 3 {
			if decoded, err := url.PathUnescape(parts[2]); err == nil {
				name = decoded
			}
		}
		return path.Base(strings.ReplaceAll(name, "\\", "/"))
	}
	return ""
}
