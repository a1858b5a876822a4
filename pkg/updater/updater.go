// package updater fetches the latest refs for mirrored repositories ahead
// of analysis.
package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"go.uber.org/zap"

	"github.com/rbowen/asf-highlights/pkg/discovery"
)

// progressInterval and progressEvery bound how often a batch progress line
// is emitted: every progressEvery repositories or every progressInterval,
// whichever comes first.
const (
	progressEvery    = 10
	progressInterval = 30 * time.Second
)

// Progress accumulates batch state for periodic ETA logging. It is threaded
// explicitly through the update loop instead of living as ambient state, so
// the pipeline stays free of hidden mutation.
type Progress struct {
	Total   int
	Updated int
	Failed  int

	start   time.Time
	lastLog time.Time
}

// NewProgress returns a Progress for a batch of total repositories.
func NewProgress(total int) *Progress {
	now := time.Now()
	return &Progress{Total: total, start: now, lastLog: now}
}

// Completed returns the number of repositories processed so far.
func (p *Progress) Completed() int {
	return p.Updated + p.Failed
}

// eta estimates the remaining batch duration from the average time per
// completed repository.
func (p *Progress) eta() time.Duration {
	done := p.Completed()
	if done == 0 {
		return 0
	}
	avg := time.Since(p.start) / time.Duration(done)
	return avg * time.Duration(p.Total-done)
}

// shouldLog reports whether a progress line is due.
func (p *Progress) shouldLog() bool {
	done := p.Completed()
	if done == 0 || done >= p.Total {
		return false
	}
	return done%progressEvery == 0 || time.Since(p.lastLog) >= progressInterval
}

func (p *Progress) maybeLog(logger *zap.SugaredLogger) {
	if !p.shouldLog() {
		return
	}
	done := p.Completed()
	logger.Infof("progress: %d/%d repositories processed (%d updated, %d failed), %d remaining (eta %s)",
		done, p.Total, p.Updated, p.Failed, p.Total-done, p.eta().Round(time.Second))
	p.lastLog = time.Now()
}

// Updater synchronizes mirrored repositories with their remotes.
type Updater struct {
	logger *zap.SugaredLogger
}

// New returns an Updater using the provided logger.
func New(logger *zap.SugaredLogger) *Updater {
	return &Updater{logger: logger}
}

// UpdateAll fetches all refs for each repository in turn. Failures are
// logged and counted, never fatal: a repository that cannot be updated is
// still analyzed with whatever history it has. Cancellation is honored
// between repositories, not mid-fetch.
func (u *Updater) UpdateAll(ctx context.Context, repos []discovery.Repo) *Progress {
	progress := NewProgress(len(repos))
	u.logger.Infof("starting repository updates for %d repositories", progress.Total)

	for _, repo := range repos {
		if ctx.Err() != nil {
			u.logger.Warnf("update interrupted after %d/%d repositories", progress.Completed(), progress.Total)
			return progress
		}

		if err := u.update(repo.Path); err != nil {
			u.logger.Warnf("could not update %s: %s", repo.Path, err.Error())
			progress.Failed++
		} else {
			progress.Updated++
		}
		progress.maybeLog(u.logger)
	}

	u.logger.Infof("repository updates complete: %d updated, %d failed in %s",
		progress.Updated, progress.Failed, time.Since(progress.start).Round(time.Second))
	return progress
}

// update opens the repository and fetches every remote head and tag,
// tolerating the already-up-to-date case. No worktree is touched: the
// analysis walks remote tracking refs, so a merge is never needed.
func (u *Updater) update(path string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("could not open repository: %s", err.Error())
	}

	err = repo.Fetch(&git.FetchOptions{
		RefSpecs: []gitconfig.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Tags:     git.AllTags,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("could not fetch: %s", err.Error())
	}
	return nil
}
