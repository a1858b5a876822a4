package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rbowen/asf-highlights/pkg/insights"
)

func sampleProjects() map[string]*insights.ProjectReport {
	first := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)

	sparkMilestones := insights.EmptyMilestones()
	sparkMilestones[100] = append(sparkMilestones[100], insights.MilestoneEvent{
		Name:         "John Roe",
		Email:        "john@example.org",
		CommitNumber: 100,
		CommitDate:   first.Add(24 * time.Hour),
		TotalCommits: 104,
	})

	return map[string]*insights.ProjectReport{
		"spark": {
			NewContributors: []insights.NewContributor{
				{Name: "Jane Doe", GithubUsername: "janedoe", Email: "jane@example.org", FirstCommitDate: first},
				{Name: "Ann Lee", GithubUsername: "Ann Lee", Email: "ann@example.org", FirstCommitDate: first},
			},
			Milestones: sparkMilestones,
		},
		"flink": {
			NewContributors: []insights.NewContributor{
				{Name: "Bob Jones", GithubUsername: "Bob Jones", Email: "bob@example.org", FirstCommitDate: first},
			},
			Milestones: insights.EmptyMilestones(),
		},
	}
}

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()

	window := insights.Window{Cutoff: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)}
	rep := New(window, 7, "", sampleProjects())

	var buf bytes.Buffer
	if err := rep.WriteMarkdown(&buf); err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	out := buf.String()

	for _, want := range []string{
		"# ASF Weekly Highlights",
		"## New Contributors",
		"**Total new contributors: 3**",
		"### spark (2 new contributors)",
		"### flink (1 new contributor)",
		"- **janedoe** (Jane Doe) - First commit: 2025-01-22",
		"## Contributor Milestones",
		"### 100th Commit Milestone (1 contributor)",
		"- **John Roe** - 100th commit on 2025-01-23 (total: 104)",
		"## Summary",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown report missing %q:\n%s", want, out)
		}
	}

	// Busiest projects come first in the new contributor section.
	if strings.Index(out, "### spark") > strings.Index(out, "### flink") {
		t.Fatal("expected spark before flink in the new contributors section")
	}
}

func TestWriteMarkdownEmpty(t *testing.T) {
	t.Parallel()

	window := insights.Window{Cutoff: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)}
	rep := New(window, 7, "", map[string]*insights.ProjectReport{})

	var buf bytes.Buffer
	if err := rep.WriteMarkdown(&buf); err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if !strings.Contains(buf.String(), "No new contributors or milestones found") {
		t.Fatalf("expected the empty-report message, got:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	window := insights.Window{Cutoff: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)}
	rep := New(window, 7, "spark", sampleProjects())

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	var decoded struct {
		AnalysisPeriodDays    int    `json:"analysis_period_days"`
		TotalNewContributors  int    `json:"total_new_contributors"`
		TotalMilestoneCommits int    `json:"total_milestone_commits"`
		TargetProject         string `json:"target_project"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("could not decode json report: %s", err.Error())
	}
	if decoded.AnalysisPeriodDays != 7 {
		t.Fatalf("expected 7 analysis period days, got %d", decoded.AnalysisPeriodDays)
	}
	if decoded.TotalNewContributors != 3 || decoded.TotalMilestoneCommits != 1 {
		t.Fatalf("unexpected totals: %+v", decoded)
	}
	if decoded.TargetProject != "spark" {
		t.Fatalf("expected target project spark, got %q", decoded.TargetProject)
	}
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	window := insights.Window{Cutoff: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)}
	rep := New(window, 7, "", sampleProjects())

	mdPath, jsonPath, err := rep.WriteFiles(baseDir)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	for _, p := range []string{mdPath, jsonPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected report file %s to exist: %s", p, err.Error())
		}
	}
	if filepath.Ext(mdPath) != ".md" || filepath.Ext(jsonPath) != ".json" {
		t.Fatalf("unexpected report extensions: %s, %s", mdPath, jsonPath)
	}
}

func TestConvertToHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mdPath := filepath.Join(dir, "report.md")
	if err := os.WriteFile(mdPath, []byte("# Heading\n\nsome **bold** text\n"), 0o644); err != nil {
		t.Fatalf("could not write markdown file: %s", err.Error())
	}

	htmlPath, err := ConvertToHTML(mdPath)
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if htmlPath != filepath.Join(dir, "report.html") {
		t.Fatalf("unexpected html path: %s", htmlPath)
	}

	content, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("could not read html file: %s", err.Error())
	}
	html := string(content)
	for _, want := range []string{"<!DOCTYPE html>", "<h1", "<strong>bold</strong>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("html report missing %q:\n%s", want, html)
		}
	}
}
