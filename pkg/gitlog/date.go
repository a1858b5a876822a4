package gitlog

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// epoch is the sentinel for unparseable dates. A commit pinned to the
// epoch can never qualify as new or as a milestone inside a window.
var epoch = time.Unix(0, 0).UTC()

// Layouts git emits with --date=iso, plus strict ISO-8601 and naive
// fallbacks.
const (
	gitISOLayout   = "2006-01-02 15:04:05 -0700"
	naiveLayout    = "2006-01-02 15:04:05"
	naiveISOLayout = "2006-01-02T15:04:05"
	dateOnlyLayout = "2006-01-02"
)

// ParseDate normalizes a git author date string into a timezone-aware
// instant. Runs of whitespace are collapsed first. Dates without a zone
// offset are labeled UTC; dates whose offset is present but unparseable
// have it dropped and are labeled UTC rather than failing. Dates that
// cannot be parsed at all degrade to the Unix epoch with a warning.
func ParseDate(logger *zap.SugaredLogger, raw string) time.Time {
	s := strings.Join(strings.Fields(raw), " ")

	// A '+' or a third '-' signals a trailing zone offset; the date's own
	// hyphens account for the first two.
	if strings.Contains(s, "+") || strings.Count(s, "-") > 2 {
		if t, err := time.Parse(gitISOLayout, s); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		if i := strings.LastIndex(s, " "); i > 0 {
			if t, ok := parseNaive(s[:i]); ok {
				return t
			}
		}
	}

	if t, ok := parseNaive(s); ok {
		return t
	}

	logger.Warnf("failed to parse date %q, pinning to epoch", raw)
	return epoch
}

func parseNaive(s string) (time.Time, bool) {
	for _, layout := range []string{naiveLayout, naiveISOLayout, dateOnlyLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
