package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// Canonicalize maps equivalent spellings of a document URL to one form:
//   - scheme and host are lowercased
//   - default ports are omitted
//   - the fragment is removed
//
// Query strings and trailing slashes are kept; document servers commonly
// address files through them.
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	return canonical
}

// Resolve parses href relative to base. Only http(s) results are returned.
func Resolve(base url.URL, href string) (url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return url.URL{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return url.URL{}, false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return url.URL{}, false
	}
	return Canonicalize(*resolved), true
}

// Basename returns the unescaped last path segment, or "" for directory-like paths.
func Basename(u url.URL) string {
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}

// Extension returns the lowercased extension of the URL path including the dot.
func Extension(u url.URL) string {
	return strings.ToLower(path.Ext(u.Path))
}

// DedupeStrings removes exact duplicates and blanks, keeping first occurrence order.
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// lowerASCII converts ASCII characters to lowercase, allocating only when needed.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}

	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
