package validator

import "regexp"

// IndicatorFamily is a named, closed set of case-insensitive phrases that
// mark a page as junk. A family with MaxVisibleChars > 0 only rejects pages
// whose visible text is shorter than that bound.
type IndicatorFamily struct {
	Name            string
	Reason          Reason
	Phrases         []string
	MaxVisibleChars int
}

var AccessDeniedIndicators = IndicatorFamily{
	Name:   "access_denied",
	Reason: ReasonAccessDenied,
	Phrases: []string{
		"access denied",
		"you don't have permission to access",
		"403 forbidden",
		"department of justice",
		"justice.gov",
		"you are not authorized",
		"access to this page is restricted",
	},
}

var ArchiveErrorIndicators = IndicatorFamily{
	Name:   "archive_error",
	Reason: ReasonArchiveErrorPage,
	Phrases: []string{
		"the wayback machine has not archived",
		"this url has been excluded from the wayback machine",
		"hrly captures",
		"web.archive.org/web/",
		"sorry. this url has been excluded",
		"this snapshot cannot be displayed",
		"wayback machine doesn't have that page archived",
		"got an http 302 response",
	},
}

var GenericErrorIndicators = IndicatorFamily{
	Name:   "generic_error",
	Reason: ReasonGenericErrorPage,
	Phrases: []string{
		"page not found",
		"404 not found",
		"404 error",
		"the page you are looking for",
		"this page has been removed",
		"this page is no longer available",
		"the requested url was not found",
		"we're sorry, but the page you requested",
		"content no longer available",
		"has been archived or removed",
		"server error",
		"500 internal server error",
		"502 bad gateway",
		"503 service unavailable",
	},
	MaxVisibleChars: 2000,
}

// ShellPatterns mark pages that are navigation chrome around missing content.
var ShellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)skip\s+to\s+(main\s+)?content`),
	regexp.MustCompile(`(?i)skip\s+navigation`),
}

// Rules is the data the validator runs on. Families are checked in order.
type Rules struct {
	MinSizeBytes       int
	UnknownBinaryFloor int
	MinTextChars       int
	Families           []IndicatorFamily
	ShellPatterns      []*regexp.Regexp
	DocumentExtensions map[string]struct{}
}

// DefaultRules returns the production rule set.
func DefaultRules() Rules {
	return Rules{
		MinSizeBytes:       200,
		UnknownBinaryFloor: 5000,
		MinTextChars:       500,
		Families: []IndicatorFamily{
			AccessDeniedIndicators,
			ArchiveErrorIndicators,
			GenericErrorIndicators,
		},
		ShellPatterns: ShellPatterns,
		DocumentExtensions: map[string]struct{}{
			"pdf":  {},
			"doc":  {},
			"docx": {},
			"xls":  {},
			"xlsx": {},
			"ppt":  {},
			"pptx": {},
			"rtf":  {},
		},
	}
}

// WithMinTextChars returns a copy of r with a different visible-text floor.
func (r Rules) WithMinTextChars(n int) Rules {
	r.MinTextChars = n
	return r
}
