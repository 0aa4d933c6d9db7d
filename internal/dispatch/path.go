package dispatch

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower applies the case normalization used for path matching.
func Lower(s string) string {
	// cases.Caser carries state, so one per call.
	return cases.Lower(language.Und).String(s)
}

// Segments normalizes a request path into its segment sequence.
//
// The path is lower-cased and split on "/" and the leading empty segment is
// dropped, so "" and "/" both yield an empty (non-nil) slice. One trailing
// separator after a non-empty segment is ignored: "/contacts/" equals
// "/contacts", while "//" keeps its two empty segments.
func Segments(path string) []string {
	path = strings.TrimPrefix(Lower(path), "/")
	if path == "" {
		return []string{}
	}

	if len(path) > 1 && strings.HasSuffix(path, "/") && !strings.HasSuffix(path, "//") {
		path = strings.TrimSuffix(path, "/")
	}

	return strings.Split(path, "/")
}
