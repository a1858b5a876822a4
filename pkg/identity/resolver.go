// package identity resolves multiple author email addresses believed to
// belong to the same person into a single contributor record.
//
// Resolution is deliberately best-effort: aggregates are grouped by the
// case-folded, whitespace-collapsed display name and nothing else. Two
// different people sharing a normalized name are merged incorrectly, and
// one person who changes display name and email at the same time is not
// merged at all. That imprecision is accepted; no fuzzy matching is done.
package identity

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rbowen/asf-highlights/pkg/insights"
)

// NormalizeName lowercases a display name and collapses runs of whitespace
// to single spaces.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Resolve merges per-email contributor aggregates that share a normalized
// display name. Groups of one pass through unchanged. For larger groups the
// commits are unioned, de-duplicated by hash and sorted ascending; the
// earliest commit across the group becomes the merged first commit, the
// display name comes from the member whose own first commit is latest
// (most-recent-spelling wins), and the output key is the key of the member
// holding the earliest commit. Epoch-sentinel dates still participate in
// the name tie-break. One audit line is logged per merged group.
//
// Resolve is idempotent: running it on its own output merges nothing
// further.
func Resolve(contributors map[string]*insights.Contributor, logger *zap.SugaredLogger) map[string]*insights.Contributor {
	type member struct {
		key string
		c   *insights.Contributor
	}

	groups := make(map[string][]member)
	for key, c := range contributors {
		n := NormalizeName(c.Name)
		groups[n] = append(groups[n], member{key: key, c: c})
	}

	resolved := make(map[string]*insights.Contributor, len(contributors))

	for _, members := range groups {
		if len(members) == 1 {
			resolved[members[0].key] = members[0].c
			continue
		}

		var all []insights.Commit
		emails := make([]string, 0, len(members))
		seenEmail := make(map[string]bool, len(members))
		earliest := members[0]
		latest := members[0]

		for _, m := range members {
			all = append(all, m.c.Commits...)
			if !seenEmail[m.c.Email] {
				seenEmail[m.c.Email] = true
				emails = append(emails, m.c.Email)
			}
			if m.c.FirstCommit.Timestamp.Before(earliest.c.FirstCommit.Timestamp) {
				earliest = m
			}
			if m.c.FirstCommit.Timestamp.After(latest.c.FirstCommit.Timestamp) {
				latest = m
			}
		}

		sort.Slice(all, func(i, j int) bool {
			return all[i].Timestamp.Before(all[j].Timestamp)
		})

		seenHash := make(map[string]bool, len(all))
		unique := make([]insights.Commit, 0, len(all))
		for _, commit := range all {
			if seenHash[commit.Hash] {
				continue
			}
			seenHash[commit.Hash] = true
			unique = append(unique, commit)
		}

		merged := &insights.Contributor{
			Name:         latest.c.Name,
			Email:        earliest.c.Email,
			AllEmails:    emails,
			FirstCommit:  earliest.c.FirstCommit,
			Commits:      unique,
			TotalCommits: len(unique),
		}
		if len(unique) > 0 {
			merged.FirstCommit = unique[0]
		}

		resolved[earliest.key] = merged

		logger.Infof("resolved identity for %q: %d email addresses, %d unique commits, earliest commit %s",
			merged.Name, len(emails), len(unique), merged.FirstCommit.Timestamp.Format("2006-01-02"))
	}

	return resolved
}
