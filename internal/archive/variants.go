package archive

import (
	"net/url"
	"strings"
)

// RewriteRule derives an alternate historical location of a URL. A rule
// that does not apply returns false.
type RewriteRule struct {
	Name    string
	Rewrite func(u url.URL) (url.URL, bool)
}

// Rules is the ordered rewrite set; site moves are tried before path
// renames.
var Rules = []RewriteRule{
	{Name: "host_swap", Rewrite: swapHost},
	{Name: "section_swap", Rewrite: swapSection},
	{Name: "archive_prefix", Rewrite: insertArchiveSegment},
}

const (
	legacyHost  = "www.acf.hhs.gov"
	currentHost = "acf.gov"
)

func swapHost(u url.URL) (url.URL, bool) {
	switch strings.ToLower(u.Host) {
	case currentHost, "www." + currentHost:
		u.Host = legacyHost
	case legacyHost, "acf.hhs.gov":
		u.Host = currentHost
	default:
		return url.URL{}, false
	}
	return u, true
}

func swapSection(u url.URL) (url.URL, bool) {
	switch {
	case strings.Contains(u.Path, "/resource/"):
		u.Path = strings.Replace(u.Path, "/resource/", "/policy-guidance/", 1)
	case strings.Contains(u.Path, "/policy-guidance/"):
		u.Path = strings.Replace(u.Path, "/policy-guidance/", "/resource/", 1)
	default:
		return url.URL{}, false
	}
	u.RawPath = ""
	return u, true
}

// /cb/policy/x becomes https://acf.gov/cb/archive/policy/x
func insertArchiveSegment(u url.URL) (url.URL, bool) {
	host := strings.ToLower(u.Host)
	if host != currentHost && host != legacyHost && host != "www."+currentHost {
		return url.URL{}, false
	}
	path := strings.TrimRight(u.Path, "/")
	if strings.Contains(path, "/archive/") {
		return url.URL{}, false
	}
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 3 || parts[2] == "" {
		return url.URL{}, false
	}
	u.Scheme = "https"
	u.Host = currentHost
	u.Path = "/" + parts[1] + "/archive/" + parts[2]
	u.RawPath = ""
	return u, true
}

// Variants expands urls into candidate archive lookups. The URLs themselves
// come first in input order, then the rewrites of each; duplicates are
// dropped keeping first occurrence and the list is cut at limit. limit <= 0
// means unbounded.
func Variants(urls []string, limit int) []string {
	variants := []string{}
	seen := map[string]struct{}{}
	full := func() bool {
		return limit > 0 && len(variants) >= limit
	}
	add := func(v string) {
		if _, dup := seen[v]; dup || full() {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	parsed := make([]*url.URL, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		add(raw)
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			parsed = append(parsed, u)
		}
	}

	for _, u := range parsed {
		for _, rule := range Rules {
			if full() {
				return variants
			}
			if rewritten, ok := rule.Rewrite(*u); ok {
				add(rewritten.String())
			}
		}
	}
	return variants
}
