package cache

import (
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// Mirror is one repository clone held by the MirrorCache: the clone URL it
// was fetched from and its path on disk, guarded by a per-mirror mutex so a
// mirror is never evicted or refetched while being analyzed.
//
// When processing completes, ALWAYS call Done to release the mirror for
// other goroutines.
type Mirror struct {
	// lock is taken by the cache before handing the mirror out and
	// released by Done.
	lock sync.Mutex

	// url is the clone URL the mirror tracks; it is also the cache key.
	url string

	// project is the owning project, derived from the URL. Mirrors of
	// pinned projects survive eviction.
	project string

	// path is the on-disk location of the clone.
	path string
}

// Path returns the mirror's working directory on disk, suitable for
// history walks.
func (m *Mirror) Path() string {
	return m.path
}

// OpenAndFetch opens the mirror on disk and fetches every remote head and
// tag. The already-up-to-date case is not an error. The worktree is left
// alone: analysis reads refs, it never needs a merge.
func (m *Mirror) OpenAndFetch() (*git.Repository, error) {
	repo, err := git.PlainOpen(m.path)
	if err != nil {
		return nil, err
	}

	err = repo.Fetch(&git.FetchOptions{
		RefSpecs: []gitconfig.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Tags:     git.AllTags,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return nil, err
	}

	return repo, nil
}

// Done releases the mirror's mutex. This must ALWAYS be called when
// processing of the mirror has completed, or later cache operations on it
// will deadlock.
func (m *Mirror) Done() {
	m.lock.Unlock()
}

// RepoNameFromURL returns the bare repository name for a clone URL, with
// any .git suffix removed.
func RepoNameFromURL(repoURL string) string {
	return strings.TrimSuffix(path.Base(repoURL), ".git")
}

// ProjectFromURL derives the project directory for a repository clone URL,
// mirroring the on-disk discovery layout: "spark-website" belongs to
// "spark", and "incubator-foo-site" nests under "incubator/foo".
func ProjectFromURL(repoURL string) string {
	name := RepoNameFromURL(repoURL)
	if strings.HasPrefix(name, "incubator-") {
		rest := strings.TrimPrefix(name, "incubator-")
		return filepath.Join("incubator", strings.SplitN(rest, "-", 2)[0])
	}
	return strings.SplitN(name, "-", 2)[0]
}
