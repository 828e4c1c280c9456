package archive

import (
	"net/url"
	"strings"
)

// Newest picks the most recent capture with a 200 status. Timestamps are
// fixed-width, so string order is time order.
func Newest(snapshots []Snapshot) (Snapshot, bool) {
	var best Snapshot
	found := false
	for _, s := range snapshots {
		if !s.OK() {
			continue
		}
		if _, valid := s.Time(); !valid {
			continue
		}
		if !found || s.Timestamp > best.Timestamp {
			best = s
			found = true
		}
	}
	return best, found
}

// SnapshotURL builds the raw-content replay URL of a capture.
func SnapshotURL(base string, timestamp string, original string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + timestamp + "id_/" + original
}

// ParseSnapshotURL splits a replay URL such as
// https://web.archive.org/web/20200101000000id_/https://acf.gov/a.pdf into
// the capture timestamp and the captured URL.
func ParseSnapshotURL(snapshot string) (timestamp string, original string, ok bool) {
	idx := strings.Index(snapshot, "/web/")
	if idx < 0 {
		return "", "", false
	}
	rest := snapshot[idx+len("/web/"):]
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 {
		return "", "", false
	}
	segment := rest[:slash]
	original = rest[slash+1:]

	// some redirects collapse the double slash of the embedded scheme
	for _, scheme := range []string{"https:/", "http:/"} {
		if strings.HasPrefix(original, scheme) && !strings.HasPrefix(original, scheme+"/") {
			original = scheme + "/" + original[len(scheme):]
		}
	}
	if !strings.HasPrefix(original, "http://") && !strings.HasPrefix(original, "https://") {
		return "", "", false
	}

	// the timestamp segment may carry a replay modifier such as id_
	digits := 0
	for digits < len(segment) && segment[digits] >= '0' && segment[digits] <= '9' {
		digits++
	}
	return segment[:digits], original, true
}

// OriginalFromSnapshot extracts the captured URL from a replay URL.
func OriginalFromSnapshot(snapshot string) (string, bool) {
	_, original, ok := ParseSnapshotURL(snapshot)
	return original, ok
}

// IsAccessControlRedirect reports whether a fetch that finished at finalURL
// landed on one of the access-control hosts while the requested URL did not
// belong to that host. Replay URLs are compared by the URL they captured.
func IsAccessControlRedirect(requested string, finalURL string, accessControlHosts []string) bool {
	landedHost := hostOf(unwrapSnapshot(finalURL))
	requestedHost := hostOf(unwrapSnapshot(requested))
	if landedHost == "" {
		return false
	}
	for _, blocked := range accessControlHosts {
		blocked = strings.ToLower(blocked)
		if strings.Contains(landedHost, blocked) && !strings.Contains(requestedHost, blocked) {
			return true
		}
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func unwrapSnapshot(raw string) string {
	if original, ok := OriginalFromSnapshot(raw); ok {
		return original
	}
	return raw
}
