// package report renders per-project analysis results as markdown, JSON
// and HTML files for human and machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rbowen/asf-highlights/pkg/insights"
)

// descendingMilestones orders milestone sections with the higher counts
// first, the way readers scan for the big numbers.
var descendingMilestones = []int{1000, 500, 100, 50, 25, 10}

// barChartWidth is the character width of the summary bar chart.
const barChartWidth = 40

// Report bundles one run's findings with the window that produced them.
type Report struct {
	Date     time.Time
	Window   insights.Window
	Days     int
	Project  string
	Projects map[string]*insights.ProjectReport
}

// New returns a Report for the given window and per-project findings.
// Project may be empty when the run covered everything.
func New(window insights.Window, days int, project string, projects map[string]*insights.ProjectReport) *Report {
	return &Report{
		Date:     time.Now().UTC(),
		Window:   window,
		Days:     days,
		Project:  project,
		Projects: projects,
	}
}

// TotalNewContributors sums new contributors across all projects.
func (r *Report) TotalNewContributors() int {
	total := 0
	for _, p := range r.Projects {
		total += len(p.NewContributors)
	}
	return total
}

// TotalMilestones sums milestone events across all projects and numbers.
func (r *Report) TotalMilestones() int {
	total := 0
	for _, p := range r.Projects {
		for _, events := range p.Milestones {
			total += len(events)
		}
	}
	return total
}

// WriteFiles writes the markdown and JSON reports under
// <baseDir>/reports/<date>/ and returns both paths.
func (r *Report) WriteFiles(baseDir string) (string, string, error) {
	date := r.Date.Format("2006-01-02")
	dir := filepath.Join(baseDir, "reports", date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("could not create reports directory: %s", err.Error())
	}

	stem := "asf_highlights_" + date
	if r.Project != "" {
		stem = "asf_highlights_" + r.Project + "_" + date
	}

	mdPath := filepath.Join(dir, stem+".md")
	mdFile, err := os.Create(mdPath)
	if err != nil {
		return "", "", fmt.Errorf("could not create markdown report: %s", err.Error())
	}
	defer mdFile.Close()
	if err := r.WriteMarkdown(mdFile); err != nil {
		return "", "", err
	}

	jsonPath := filepath.Join(dir, stem+".json")
	jsonFile, err := os.Create(jsonPath)
	if err != nil {
		return "", "", fmt.Errorf("could not create json report: %s", err.Error())
	}
	defer jsonFile.Close()
	if err := r.WriteJSON(jsonFile); err != nil {
		return "", "", err
	}

	return mdPath, jsonPath, nil
}

// WriteMarkdown renders the weekly highlights report: new contributors per
// project (busiest projects first), milestone sections from the largest
// milestone down, and a top-10 summary bar chart.
func (r *Report) WriteMarkdown(w io.Writer) error {
	date := r.Date.Format("2006-01-02")
	fmt.Fprintf(w, "# ASF Weekly Highlights - %s\n\n", date)
	if r.Project != "" {
		fmt.Fprintf(w, "Project: **%s**\n\n", r.Project)
	}
	fmt.Fprintf(w, "Analysis period: past %d days\n\n", r.Days)

	if len(r.Projects) == 0 {
		fmt.Fprintf(w, "No new contributors or milestones found in the specified time period.\n")
		return nil
	}

	r.writeNewContributors(w)
	r.writeMilestones(w)
	r.writeSummary(w)
	return nil
}

func (r *Report) writeNewContributors(w io.Writer) {
	fmt.Fprintf(w, "## New Contributors\n\n")
	fmt.Fprintf(w, "Contributors who made their **first commit ever** in the past %d days:\n\n", r.Days)

	total := r.TotalNewContributors()
	if total == 0 {
		fmt.Fprintf(w, "No new contributors found in the specified time period.\n\n")
		return
	}
	fmt.Fprintf(w, "**Total new contributors: %d**\n\n", total)

	for _, name := range r.projectsByContributorCount() {
		contributors := r.Projects[name].NewContributors
		fmt.Fprintf(w, "### %s (%d new contributor%s)\n\n", name, len(contributors), plural(len(contributors)))
		for _, contrib := range contributors {
			commitDate := contrib.FirstCommitDate.Format("2006-01-02")
			if contrib.GithubUsername != "" && contrib.GithubUsername != contrib.Name {
				fmt.Fprintf(w, "- **%s** (%s) - First commit: %s\n", contrib.GithubUsername, contrib.Name, commitDate)
			} else {
				fmt.Fprintf(w, "- **%s** - First commit: %s\n", contrib.Name, commitDate)
			}
		}
		fmt.Fprintf(w, "\n")
	}
}

func (r *Report) writeMilestones(w io.Writer) {
	fmt.Fprintf(w, "## Contributor Milestones\n\n")
	fmt.Fprintf(w, "Contributors who reached milestone commits (10th, 25th, 50th, 100th, 500th, 1000th) in the past %d days:\n\n", r.Days)

	total := r.TotalMilestones()
	if total == 0 {
		fmt.Fprintf(w, "No milestone commits found in the specified time period.\n\n")
		return
	}
	fmt.Fprintf(w, "**Total milestone commits: %d**\n\n", total)

	for _, number := range descendingMilestones {
		type projectEvent struct {
			project string
			event   insights.MilestoneEvent
		}
		var reached []projectEvent
		for _, name := range r.sortedProjectNames() {
			for _, event := range r.Projects[name].Milestones[number] {
				reached = append(reached, projectEvent{project: name, event: event})
			}
		}
		if len(reached) == 0 {
			continue
		}

		fmt.Fprintf(w, "### %dth Commit Milestone (%d contributor%s)\n\n", number, len(reached), plural(len(reached)))

		currentProject := ""
		for _, pe := range reached {
			if pe.project != currentProject {
				if currentProject != "" {
					fmt.Fprintf(w, "\n")
				}
				fmt.Fprintf(w, "**%s:**\n", pe.project)
				currentProject = pe.project
			}
			commitDate := pe.event.CommitDate.Format("2006-01-02")
			if pe.event.GithubUsername != "" && pe.event.GithubUsername != pe.event.Name {
				fmt.Fprintf(w, "- **%s** (%s) - %dth commit on %s (total: %d)\n",
					pe.event.GithubUsername, pe.event.Name, number, commitDate, pe.event.TotalCommits)
			} else {
				fmt.Fprintf(w, "- **%s** - %dth commit on %s (total: %d)\n",
					pe.event.Name, number, commitDate, pe.event.TotalCommits)
			}
		}
		fmt.Fprintf(w, "\n")
	}
}

func (r *Report) writeSummary(w io.Writer) {
	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "Top 10 projects by new contributors:\n\n")

	top := r.projectsByContributorCount()
	if len(top) > 10 {
		top = top[:10]
	}
	if len(top) == 0 {
		fmt.Fprintf(w, "No projects with new contributors found.\n\n")
		return
	}

	maxCount := len(r.Projects[top[0]].NewContributors)
	fmt.Fprintf(w, "```\n")
	for _, name := range top {
		count := len(r.Projects[name].NewContributors)
		barLength := count * barChartWidth / maxCount
		if barLength < 1 {
			barLength = 1
		}
		fmt.Fprintf(w, "%-20s │%s %d\n", name, strings.Repeat("█", barLength), count)
	}
	fmt.Fprintf(w, "```\n\n")
}

// projectsByContributorCount returns the names of projects that have new
// contributors, most first, ties broken by name.
func (r *Report) projectsByContributorCount() []string {
	var names []string
	for name, p := range r.Projects {
		if len(p.NewContributors) > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ci := len(r.Projects[names[i]].NewContributors)
		cj := len(r.Projects[names[j]].NewContributors)
		if ci == cj {
			return names[i] < names[j]
		}
		return ci > cj
	})
	return names
}

func (r *Report) sortedProjectNames() []string {
	names := make([]string, 0, len(r.Projects))
	for name := range r.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

type jsonReport struct {
	ReportDate            string                             `json:"report_date"`
	CutoffDate            time.Time                          `json:"cutoff_date"`
	AnalysisPeriodDays    int                                `json:"analysis_period_days"`
	TotalNewContributors  int                                `json:"total_new_contributors"`
	TotalMilestoneCommits int                                `json:"total_milestone_commits"`
	TargetProject         string                             `json:"target_project,omitempty"`
	Projects              map[string]*insights.ProjectReport `json:"projects"`
}

// WriteJSON renders the machine-readable version of the report.
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{
		ReportDate:            r.Date.Format("2006-01-02"),
		CutoffDate:            r.Window.Cutoff,
		AnalysisPeriodDays:    r.Days,
		TotalNewContributors:  r.TotalNewContributors(),
		TotalMilestoneCommits: r.TotalMilestones(),
		TargetProject:         r.Project,
		Projects:              r.Projects,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
