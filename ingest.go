package sheetreplace

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// Upload is one uploaded file: a spreadsheet or an archive of spreadsheets
type Upload struct {
	Filename string
	Data     []byte
}

// Request is one batch to process
type Request struct {
	Spec    ReplacementSpec
	Uploads []Upload
	Sources []GridSource
}

// ValidatePatterns checks that every pattern is a valid glob
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// MatchesAny reports whether name, compared case-insensitively with '/'
// separators, matches one of patterns.
func MatchesAny(patterns []string, name string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(name, `\`, "/"))
	for _, p := range patterns {
		if ok, err := doublestar.Match(strings.ToLower(p), normalized); err == nil && ok {
			return true
		}
	}
	return false
}

// isArchive reports whether an upload is a zip bundle
func isArchive(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}
