// package insights provides the data structures and queries for contributor
// insights produced by the highlights analysis. A repository's raw git log
// is folded into per-contributor aggregates which are then queried for
// new-contributor and milestone events inside an analysis window.
package insights

import "time"

// RawCommit is a single authorship record as emitted by the git log walk,
// before any normalization. RawDate carries the date string verbatim as
// printed by git.
type RawCommit struct {
	AuthorName  string
	AuthorEmail string
	RawDate     string
	Hash        string
}

// Commit is a normalized commit reference. Timestamp always carries a
// definite zone offset; unparseable dates degrade to the Unix epoch
// upstream so they can never qualify as recent.
type Commit struct {
	Timestamp time.Time `json:"date"`
	Hash      string    `json:"hash"`
}
