package insights

import (
	"sort"
	"time"
)

// MilestoneNumbers is the fixed set of 1-based ordinal commit positions
// reported as milestones. Kept as data so the set is auditable and
// independently testable.
var MilestoneNumbers = []int{10, 25, 50, 100, 500, 1000}

// Window bounds one analysis run. A commit with a timestamp at or after
// Cutoff is in window; the boundary is inclusive.
type Window struct {
	Cutoff time.Time `json:"cutoff"`
}

// NewWindow returns a window covering the past days counted back from now.
func NewWindow(days int) Window {
	return Window{Cutoff: time.Now().UTC().AddDate(0, 0, -days)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Cutoff)
}

// NewContributor records a contributor whose first-ever commit in the
// repository landed inside the analysis window.
type NewContributor struct {
	Name            string    `json:"name"`
	GithubUsername  string    `json:"github_username"`
	Email           string    `json:"email"`
	FirstCommitDate time.Time `json:"first_commit_date"`
	FirstCommitHash string    `json:"first_commit_hash"`
}

// MilestoneEvent records a contributor crossing one of MilestoneNumbers
// inside the analysis window.
type MilestoneEvent struct {
	Name           string    `json:"name"`
	GithubUsername string    `json:"github_username"`
	Email          string    `json:"email"`
	CommitNumber   int       `json:"milestone_commit_number"`
	CommitDate     time.Time `json:"milestone_commit_date"`
	CommitHash     string    `json:"milestone_commit_hash"`
	TotalCommits   int       `json:"total_commits"`
}

// ProjectReport is the per-project result consumed by the report renderers
// and the database recorder.
type ProjectReport struct {
	NewContributors []NewContributor         `json:"new_contributors"`
	Milestones      map[int][]MilestoneEvent `json:"milestones"`
}

// EmptyMilestones returns a milestone map with an empty bucket for every
// milestone number.
func EmptyMilestones() map[int][]MilestoneEvent {
	m := make(map[int][]MilestoneEvent, len(MilestoneNumbers))
	for _, n := range MilestoneNumbers {
		m[n] = []MilestoneEvent{}
	}
	return m
}

// LoginFunc derives a forge username for a contributor, best effort.
type LoginFunc func(name, email string) string

// NewContributors returns every resolved contributor whose first-ever
// commit falls inside the window, sorted ascending by first commit date.
// This is a statement about the entire recorded history of the repository:
// the earliest commit the person ever made happens to occur inside the
// window.
func NewContributors(resolved map[string]*Contributor, w Window, login LoginFunc) []NewContributor {
	var fresh []NewContributor
	for _, c := range resolved {
		if !w.Contains(c.FirstCommit.Timestamp) {
			continue
		}
		fresh = append(fresh, NewContributor{
			Name:            c.Name,
			GithubUsername:  login(c.Name, c.Email),
			Email:           c.Email,
			FirstCommitDate: c.FirstCommit.Timestamp,
			FirstCommitHash: c.FirstCommit.Hash,
		})
	}
	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].FirstCommitDate.Before(fresh[j].FirstCommitDate)
	})
	return fresh
}

// Milestones returns, for each milestone number, the contributors whose
// commit at that 1-based position falls inside the window. Positions are
// computed over each contributor's de-duplicated, timestamp-ordered commit
// sequence, so a wide enough window can yield several milestone events for
// one contributor. Both this and NewContributors are read-only queries and
// may run in either order.
func Milestones(resolved map[string]*Contributor, w Window, login LoginFunc) map[int][]MilestoneEvent {
	milestones := EmptyMilestones()
	wanted := make(map[int]bool, len(MilestoneNumbers))
	for _, n := range MilestoneNumbers {
		wanted[n] = true
	}

	for _, c := range resolved {
		for i, commit := range c.Commits {
			number := i + 1
			if !wanted[number] || !w.Contains(commit.Timestamp) {
				continue
			}
			milestones[number] = append(milestones[number], MilestoneEvent{
				Name:           c.Name,
				GithubUsername: login(c.Name, c.Email),
				Email:          c.Email,
				CommitNumber:   number,
				CommitDate:     commit.Timestamp,
				CommitHash:     commit.Hash,
				TotalCommits:   c.TotalCommits,
			})
		}
	}

	for n := range milestones {
		events := milestones[n]
		sort.Slice(events, func(i, j int) bool {
			if events[i].CommitDate.Equal(events[j].CommitDate) {
				return events[i].Email < events[j].Email
			}
			return events[i].CommitDate.Before(events[j].CommitDate)
		})
	}

	return milestones
}
