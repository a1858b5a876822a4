// package database provides a wrapper around a sql database connection
// pool and the public methods used to record analysis findings across runs
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	// the injected postgres interface implementations for Go SQL
	_ "github.com/lib/pq"
)

// HighlightsDbHandler is a wrapper around *sql.DB. It provides a single
// point where internal methods and queries can access the highlights
// database connection pool.
type HighlightsDbHandler struct {
	db *sql.DB
}

// NewHighlightsDbHandler builds a HighlightsDbHandler based on the provided
// database connection parameters
func NewHighlightsDbHandler(host, port, user, pwd, dbName string) *HighlightsDbHandler {
	connectString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require", host, port, user, pwd, dbName)

	// Acquire the *sql.DB instance
	dbPool, err := sql.Open("postgres", connectString)
	if err != nil {
		log.Fatalf("Could not open database connection: %s", err)
	}

	// ping once to ensure the database values and connection are valid and working
	err = dbPool.Ping()
	if err != nil {
		log.Fatalf("Could not ping database: %s", err)
	}

	return &HighlightsDbHandler{
		db: dbPool,
	}
}

// GetProjectID queries the id of a project by name
func (h HighlightsDbHandler) GetProjectID(name string) (int, error) {
	var id int
	err := h.db.QueryRow("SELECT id FROM public.projects WHERE name=$1", name).Scan(&id)
	return id, err
}

// InsertProject inserts a project by name
func (h HighlightsDbHandler) InsertProject(name string) (int, error) {
	var id int
	err := h.db.QueryRow("INSERT INTO public.projects(name) VALUES($1) RETURNING id", name).Scan(&id)
	return id, err
}

// GetContributorID queries the id of a contributor by their email
func (h HighlightsDbHandler) GetContributorID(email string) (int, error) {
	var id int
	err := h.db.QueryRow("SELECT id FROM public.contributors WHERE email=$1", email).Scan(&id)
	return id, err
}

// InsertContributor inserts a contributor by their email and display name
func (h HighlightsDbHandler) InsertContributor(email, name string) (int, error) {
	var id int
	err := h.db.QueryRow("INSERT INTO public.contributors(email, name) VALUES($1, $2) RETURNING id", email, name).Scan(&id)
	return id, err
}

// InsertNewContributorEvent records one first-commit finding for a run date
func (h HighlightsDbHandler) InsertNewContributorEvent(projectID, contributorID int, runDate time.Time, firstCommitDate time.Time, firstCommitHash string) error {
	_, err := h.db.Exec(
		"INSERT INTO public.new_contributor_events(project_id, contributor_id, run_date, first_commit_date, first_commit_hash) VALUES($1, $2, $3, $4, $5)",
		projectID, contributorID, runDate, firstCommitDate, firstCommitHash)
	return err
}

// InsertMilestoneEvent records one milestone finding for a run date
func (h HighlightsDbHandler) InsertMilestoneEvent(projectID, contributorID, commitNumber int, runDate time.Time, commitDate time.Time, commitHash string, totalCommits int) error {
	_, err := h.db.Exec(
		"INSERT INTO public.milestone_events(project_id, contributor_id, commit_number, run_date, commit_date, commit_hash, total_commits) VALUES($1, $2, $3, $4, $5, $6, $7)",
		projectID, contributorID, commitNumber, runDate, commitDate, commitHash, totalCommits)
	return err
}
