package insights

import (
	"testing"
	"time"
)

func nameLogin(name, email string) string { return name }

func commitsAt(times ...time.Time) []Commit {
	commits := make([]Commit, 0, len(times))
	for i, ts := range times {
		commits = append(commits, Commit{Timestamp: ts, Hash: string(rune('a' + i))})
	}
	return commits
}

func TestWindowContainsIsInclusive(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}

	if !w.Contains(cutoff) {
		t.Fatal("a timestamp exactly at the cutoff must be in window")
	}
	if !w.Contains(cutoff.Add(time.Second)) {
		t.Fatal("a timestamp after the cutoff must be in window")
	}
	if w.Contains(cutoff.Add(-time.Microsecond)) {
		t.Fatal("a timestamp even a microsecond before the cutoff must be out of window")
	}
}

func TestNewContributors(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}

	inWindow := cutoff.Add(24 * time.Hour)
	beforeWindow := cutoff.Add(-24 * time.Hour)

	resolved := map[string]*Contributor{
		"fresh@example.org": {
			Name:        "Fresh",
			Email:       "fresh@example.org",
			FirstCommit: Commit{Timestamp: inWindow, Hash: "f1"},
			Commits:     commitsAt(inWindow),
		},
		"veteran@example.org": {
			// Active in the window but their first commit predates it, so
			// they are not new.
			Name:        "Veteran",
			Email:       "veteran@example.org",
			FirstCommit: Commit{Timestamp: beforeWindow, Hash: "v1"},
			Commits:     commitsAt(beforeWindow, inWindow),
		},
	}

	fresh := NewContributors(resolved, w, nameLogin)
	if len(fresh) != 1 {
		t.Fatalf("expected 1 new contributor, got %d", len(fresh))
	}
	if fresh[0].Email != "fresh@example.org" {
		t.Fatalf("unexpected new contributor: %+v", fresh[0])
	}
	if fresh[0].FirstCommitHash != "f1" {
		t.Fatalf("expected first commit hash f1, got %s", fresh[0].FirstCommitHash)
	}
}

func TestNewContributorsSortedByDate(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}

	resolved := map[string]*Contributor{
		"b@example.org": {
			Name:        "B",
			Email:       "b@example.org",
			FirstCommit: Commit{Timestamp: cutoff.Add(48 * time.Hour), Hash: "b1"},
		},
		"a@example.org": {
			Name:        "A",
			Email:       "a@example.org",
			FirstCommit: Commit{Timestamp: cutoff.Add(24 * time.Hour), Hash: "a1"},
		},
	}

	fresh := NewContributors(resolved, w, nameLogin)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 new contributors, got %d", len(fresh))
	}
	if fresh[0].Email != "a@example.org" || fresh[1].Email != "b@example.org" {
		t.Fatalf("expected contributors sorted by first commit date, got %+v", fresh)
	}
}

func TestMilestones(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}

	// Ten commits: nine before the window, the tenth exactly at the cutoff.
	times := make([]time.Time, 10)
	for i := 0; i < 9; i++ {
		times[i] = cutoff.Add(time.Duration(i-10) * 24 * time.Hour)
	}
	times[9] = cutoff

	resolved := map[string]*Contributor{
		"jane@example.org": {
			Name:         "Jane Doe",
			Email:        "jane@example.org",
			FirstCommit:  Commit{Timestamp: times[0], Hash: "a"},
			Commits:      commitsAt(times...),
			TotalCommits: 10,
		},
	}

	milestones := Milestones(resolved, w, nameLogin)
	events := milestones[10]
	if len(events) != 1 {
		t.Fatalf("expected one 10th-commit milestone, got %d", len(events))
	}
	event := events[0]
	if event.CommitNumber != 10 || event.TotalCommits != 10 {
		t.Fatalf("unexpected milestone event: %+v", event)
	}
	if !event.CommitDate.Equal(cutoff) {
		t.Fatal("a milestone commit exactly at the cutoff must qualify")
	}

	for _, n := range []int{25, 50, 100, 500, 1000} {
		if len(milestones[n]) != 0 {
			t.Fatalf("expected no %dth-commit milestones", n)
		}
	}
}

func TestMilestonesOutsideWindow(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}

	// The tenth commit lands one second before the cutoff.
	times := make([]time.Time, 10)
	for i := range times {
		times[i] = cutoff.Add(time.Duration(i-10)*24*time.Hour - time.Second)
	}

	resolved := map[string]*Contributor{
		"jane@example.org": {
			Name:         "Jane Doe",
			Email:        "jane@example.org",
			Commits:      commitsAt(times...),
			TotalCommits: 10,
		},
	}

	milestones := Milestones(resolved, w, nameLogin)
	if len(milestones[10]) != 0 {
		t.Fatal("a milestone commit before the cutoff must not qualify")
	}
}

func TestMultipleMilestonesInOneWindow(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := Window{Cutoff: cutoff}

	// 25 commits all inside the window: both the 10th and the 25th qualify.
	times := make([]time.Time, 25)
	for i := range times {
		times[i] = cutoff.Add(time.Duration(i) * time.Hour)
	}

	resolved := map[string]*Contributor{
		"jane@example.org": {
			Name:         "Jane Doe",
			Email:        "jane@example.org",
			Commits:      commitsAt(times...),
			TotalCommits: 25,
		},
	}

	milestones := Milestones(resolved, w, nameLogin)
	if len(milestones[10]) != 1 || len(milestones[25]) != 1 {
		t.Fatalf("expected both the 10th and 25th milestones, got %d and %d",
			len(milestones[10]), len(milestones[25]))
	}
}

func TestEmptyMilestones(t *testing.T) {
	t.Parallel()

	m := EmptyMilestones()
	if len(m) != len(MilestoneNumbers) {
		t.Fatalf("expected %d milestone buckets, got %d", len(MilestoneNumbers), len(m))
	}
	for _, n := range MilestoneNumbers {
		events, ok := m[n]
		if !ok || events == nil || len(events) != 0 {
			t.Fatalf("expected an empty bucket for milestone %d", n)
		}
	}
}
