// package discovery locates mirrored git repositories on disk and groups
// them by project for reporting.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// RepositoriesDirName is the subdirectory of the base directory holding
// every mirrored repository, one project per top-level entry.
const RepositoriesDirName = "REPOSITORIES"

// maxDepth bounds the recursive search below a project directory.
const maxDepth = 3

// Repo is one discovered git repository and the project it belongs to.
type Repo struct {
	Path    string
	Project string
}

// Finder discovers git repositories under a base directory.
type Finder struct {
	logger          *zap.SugaredLogger
	repositoriesDir string
}

// NewFinder returns a Finder rooted at baseDir's REPOSITORIES directory.
func NewFinder(baseDir string, logger *zap.SugaredLogger) *Finder {
	return &Finder{
		logger:          logger,
		repositoriesDir: filepath.Join(baseDir, RepositoriesDirName),
	}
}

// FindAll returns every git repository below the repositories directory.
// Dot-directories and the backups directory are skipped. A missing
// repositories directory is a configuration error.
func (f *Finder) FindAll() ([]Repo, error) {
	entries, err := os.ReadDir(f.repositoriesDir)
	if err != nil {
		return nil, fmt.Errorf("could not read repositories directory %s: %s", f.repositoriesDir, err.Error())
	}

	var repos []Repo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || entry.Name() == "backups" {
			continue
		}
		dir := filepath.Join(f.repositoriesDir, entry.Name())
		repos = append(repos, f.collect(dir, 0)...)
	}
	return repos, nil
}

// FindProject returns the repositories of one project, falling back to the
// incubator tree when the project is not found at the top level. A project
// that exists in neither place is a configuration error.
func (f *Finder) FindProject(project string) ([]Repo, error) {
	dir := filepath.Join(f.repositoriesDir, project)
	if _, err := os.Stat(dir); err != nil {
		incubatorDir := filepath.Join(f.repositoriesDir, "incubator", project)
		if _, err := os.Stat(incubatorDir); err != nil {
			return nil, fmt.Errorf("project directory not found: %s", dir)
		}
		dir = incubatorDir
	}
	return f.collect(dir, 0), nil
}

// collect gathers git repositories at dir, recursing up to maxDepth levels
// when dir itself is not a repository. Unreadable directories are skipped.
func (f *Finder) collect(dir string, depth int) []Repo {
	if hasGitDir(dir) {
		return []Repo{{Path: dir, Project: f.projectName(dir)}}
	}
	if depth >= maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		f.logger.Debugf("skipping unreadable directory %s: %s", dir, err.Error())
		return nil
	}

	var repos []Repo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		repos = append(repos, f.collect(filepath.Join(dir, entry.Name()), depth+1)...)
	}
	return repos
}

// projectName derives the owning project from a repository path relative to
// the repositories directory. Incubator repositories are named by their
// nested project rather than "incubator".
func (f *Finder) projectName(repoPath string) string {
	rel, err := filepath.Rel(f.repositoriesDir, repoPath)
	if err != nil {
		return filepath.Base(repoPath)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if parts[0] == "incubator" && len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}

func hasGitDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
