package insights

import (
	"sort"
	"strings"
	"time"
)

// Contributor is the accumulating per-email record of every commit seen for
// that email during one extraction pass. After identity resolution a single
// Contributor may cover several email addresses (see AllEmails). A
// Contributor is owned by exactly one analysis pass and is never shared
// across repositories.
type Contributor struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	AllEmails    []string `json:"all_emails,omitempty"`
	FirstCommit  Commit   `json:"first_commit"`
	Commits      []Commit `json:"-"`
	TotalCommits int      `json:"total_commits"`
}

// BotFunc reports whether an authorship record belongs to an automated
// actor rather than a human.
type BotFunc func(name, email string) bool

// DateFunc normalizes a raw git date string into an instant.
type DateFunc func(raw string) time.Time

// BuildContributors folds raw authorship records into per-email contributor
// aggregates, keyed by lowercased author email. Records classified as
// automated are dropped before aggregation, so commit ordinals never count
// bot commits. The aggregate for an email is created on first sight and
// updated on every later sighting: commits accumulate, and FirstCommit
// (along with the display name used on that commit) is replaced whenever an
// earlier timestamp is observed. Each aggregate's commit list is sorted
// ascending by timestamp before returning.
func BuildContributors(records []RawCommit, isBot BotFunc, parseDate DateFunc) map[string]*Contributor {
	contributors := make(map[string]*Contributor)

	for _, rec := range records {
		if isBot(rec.AuthorName, rec.AuthorEmail) {
			continue
		}

		commit := Commit{Timestamp: parseDate(rec.RawDate), Hash: rec.Hash}

		key := strings.ToLower(rec.AuthorEmail)
		c, ok := contributors[key]
		if !ok {
			c = &Contributor{
				Name:        rec.AuthorName,
				Email:       rec.AuthorEmail,
				FirstCommit: commit,
			}
			contributors[key] = c
		} else if commit.Timestamp.Before(c.FirstCommit.Timestamp) {
			// An earlier commit becomes the first commit, and the name
			// spelled on it wins until identity resolution runs.
			c.FirstCommit = commit
			c.Name = rec.AuthorName
		}
		c.Commits = append(c.Commits, commit)
	}

	for _, c := range contributors {
		sort.Slice(c.Commits, func(i, j int) bool {
			return c.Commits[i].Timestamp.Before(c.Commits[j].Timestamp)
		})
		c.TotalCommits = len(c.Commits)
	}

	return contributors
}
