package database

import (
	"database/sql"
	"time"

	"github.com/rbowen/asf-highlights/pkg/insights"
)

// RecordReport persists one batch run's findings, creating projects and
// contributors as needed with a get-or-insert on sql.ErrNoRows.
func (h HighlightsDbHandler) RecordReport(runDate time.Time, projects map[string]*insights.ProjectReport) error {
	for name, report := range projects {
		projectID, err := h.GetProjectID(name)
		if err != nil {
			if err != sql.ErrNoRows {
				return err
			}
			projectID, err = h.InsertProject(name)
			if err != nil {
				return err
			}
		}

		for _, contrib := range report.NewContributors {
			contributorID, err := h.getOrInsertContributor(contrib.Email, contrib.Name)
			if err != nil {
				return err
			}
			if err := h.InsertNewContributorEvent(projectID, contributorID, runDate, contrib.FirstCommitDate, contrib.FirstCommitHash); err != nil {
				return err
			}
		}

		for _, events := range report.Milestones {
			for _, event := range events {
				contributorID, err := h.getOrInsertContributor(event.Email, event.Name)
				if err != nil {
					return err
				}
				if err := h.InsertMilestoneEvent(projectID, contributorID, event.CommitNumber, runDate, event.CommitDate, event.CommitHash, event.TotalCommits); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (h HighlightsDbHandler) getOrInsertContributor(email, name string) (int, error) {
	id, err := h.GetContributorID(email)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	return h.InsertContributor(email, name)
}
