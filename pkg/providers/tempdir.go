package providers

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// TempDirGitRepoProvider clones each requested repository into a throwaway
// temporary directory, removed again on Done. It keeps nothing between
// requests and implements the GitRepoProvider interface.
type TempDirGitRepoProvider struct {
	Logger *zap.SugaredLogger
}

// NewTempDirGitRepoProvider returns a provider using a configured logger.
func NewTempDirGitRepoProvider(logger *zap.SugaredLogger) GitRepoProvider {
	return &TempDirGitRepoProvider{
		Logger: logger,
	}
}

// FetchRepo clones the repository into a fresh temporary directory.
func (tp *TempDirGitRepoProvider) FetchRepo(url string) (GitRepo, error) {
	dir, err := os.MkdirTemp("", "highlights-repo-*")
	if err != nil {
		return nil, fmt.Errorf("could not create temporary clone directory: %s", err.Error())
	}

	repo, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL: url,
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("could not clone repo using temp dir git repo provider: %s", err.Error())
	}

	return &TempDirGitRepo{
		url:  url,
		dir:  dir,
		repo: repo,
	}, nil
}

// TempDirGitRepo satisfies and implements the GitRepo interface.
type TempDirGitRepo struct {
	url  string
	dir  string
	repo *git.Repository
}

// Dir returns the temporary working directory of the clone.
func (tr *TempDirGitRepo) Dir() string {
	return tr.dir
}

// Repo returns the opened go-git repository.
func (tr *TempDirGitRepo) Repo() *git.Repository {
	return tr.repo
}

// Done removes the temporary clone from disk.
func (tr *TempDirGitRepo) Done() {
	os.RemoveAll(tr.dir)
}
