package providers

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/rbowen/asf-highlights/pkg/cache"
)

// PinnedProjects holds the projects whose mirrors must never be evicted
// from the mirror cache, keyed by project name.
type PinnedProjects map[string]bool

// MirrorGitRepoProvider serves repositories out of the on-disk mirror
// cache, cloning on a miss and refreshing on a hit. It implements the
// GitRepoProvider interface.
type MirrorGitRepoProvider struct {
	logger *zap.SugaredLogger
	cache  *cache.MirrorCache
}

// NewMirrorGitRepoProvider returns a provider backed by a MirrorCache in
// the configured directory with the given minimum free disk.
func NewMirrorGitRepoProvider(cacheDir string, minFreeDisk uint64, l *zap.SugaredLogger, pinned PinnedProjects) (GitRepoProvider, error) {
	mirrorCache, err := cache.NewMirrorCache(cacheDir, minFreeDisk, pinned)
	if err != nil {
		return nil, fmt.Errorf("could not initialize a new mirror cache: %s", err.Error())
	}

	return &MirrorGitRepoProvider{
		logger: l,
		cache:  mirrorCache,
	}, nil
}

// FetchRepo returns a MirroredGitRepo for the URL, cloning it into the
// cache on a miss and fetching the latest refs either way. The returned
// repo holds its mirror's lock until Done is called.
func (mp *MirrorGitRepoProvider) FetchRepo(url string) (GitRepo, error) {
	mp.logger.Debugf("getting mirror from cache: %s", url)

	mirror := mp.cache.Get(url)
	if mirror == nil {
		mp.logger.Debugf("cache miss, cloning mirror: %s", url)
		var err error
		mirror, err = mp.cache.Put(url)
		if err != nil {
			return nil, fmt.Errorf("could not put to the mirror cache: %s", err.Error())
		}
	}

	mp.logger.Debugf("opening and fetching mirror: %s", url)
	repo, err := mirror.OpenAndFetch()
	if err != nil {
		mirror.Done()
		return nil, fmt.Errorf("could not open and fetch mirror: %s", err.Error())
	}

	return &MirroredGitRepo{
		url:    url,
		mirror: mirror,
		repo:   repo,
	}, nil
}

// MirroredGitRepo implements the GitRepo interface over a cache mirror.
type MirroredGitRepo struct {
	url    string
	mirror *cache.Mirror
	repo   *git.Repository
}

// Dir returns the mirror's on-disk working directory.
func (mr *MirroredGitRepo) Dir() string {
	return mr.mirror.Path()
}

// Repo returns the opened go-git repository.
func (mr *MirroredGitRepo) Repo() *git.Repository {
	return mr.repo
}

// Done releases the mirror for other goroutines. It is critical that Done
// is called when operations are completed so the mirror's lock is released.
func (mr *MirroredGitRepo) Done() {
	mr.mirror.Done()
}
