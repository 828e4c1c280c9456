package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/docs-harvester/pkg/urlutil"
)

// LinkPolicy decides which anchors on a listing page are document links.
type LinkPolicy struct {
	Extensions map[string]struct{}
	// Denylist entries are matched as substrings of the lowercased URL.
	Denylist []string
	MaxLinks int
}

var DocumentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".rtf", ".txt"}

// ArchiveExtensions adds the data formats archived pages often link to.
var ArchiveExtensions = append(append([]string{}, DocumentExtensions...), ".csv", ".zip")

// SiteFurniture is the default denylist of links that are never documents.
var SiteFurniture = []string{
	"vulnerability-disclosure",
	"privacy-policy",
	"accessibility",
	"foia",
	"disclaimers",
	"nofear",
	"plainlanguage",
	"usa.gov",
	"facebook.com",
	"twitter.com",
	"youtube.com",
	"linkedin.com",
}

const DefaultMaxLinks = 15

func NewLinkPolicy(extensions []string, denylist []string, maxLinks int) LinkPolicy {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	lowered := make([]string, 0, len(denylist))
	for _, entry := range denylist {
		lowered = append(lowered, strings.ToLower(entry))
	}
	return LinkPolicy{Extensions: allowed, Denylist: lowered, MaxLinks: maxLinks}
}

func (p LinkPolicy) allows(u url.URL) bool {
	if _, ok := p.Extensions[urlutil.Extension(u)]; !ok {
		return false
	}
	full := strings.ToLower(u.String())
	for _, entry := range p.Denylist {
		if strings.Contains(full, entry) {
			return false
		}
	}
	return true
}

// ScrapeLinks returns the document links of an HTML page in document order,
// resolved against the page URL (or its <base href>), deduplicated and
// capped at MaxLinks. Links back to the page itself are dropped.
func ScrapeLinks(body []byte, pageURL url.URL, policy LinkPolicy) []url.URL {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, ok := urlutil.Resolve(pageURL, href); ok {
			base = resolved
		}
	}

	canonical := urlutil.Canonicalize(pageURL)
	self := canonical.String()
	seen := map[string]struct{}{self: {}}
	links := []url.URL{}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		link, ok := urlutil.Resolve(base, href)
		if !ok || !policy.allows(link) {
			return true
		}
		key := link.String()
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		links = append(links, link)
		return policy.MaxLinks <= 0 || len(links) < policy.MaxLinks
	})
	return links
}
