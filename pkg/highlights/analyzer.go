// package highlights orchestrates the per-repository analysis pipeline and
// merges the results into per-project report data.
package highlights

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rbowen/asf-highlights/pkg/bots"
	"github.com/rbowen/asf-highlights/pkg/discovery"
	"github.com/rbowen/asf-highlights/pkg/gitlog"
	"github.com/rbowen/asf-highlights/pkg/identity"
	"github.com/rbowen/asf-highlights/pkg/insights"
	"github.com/rbowen/asf-highlights/pkg/updater"
)

// DefaultWorkers bounds parallel repository analysis when the caller does
// not choose a worker count.
const DefaultWorkers = 4

// Config carries the settings for one batch run.
type Config struct {
	// BaseDir is the directory containing the REPOSITORIES tree.
	BaseDir string

	// Project optionally restricts the run to a single project.
	Project string

	// Window is the analysis window for new-contributor and milestone
	// classification.
	Window insights.Window

	// Workers bounds how many repositories are analyzed in parallel.
	Workers int

	// Update controls whether mirrors are fetched before analysis.
	Update bool
}

// Analyzer runs the full pipeline: discovery, optional mirror update, and
// per-repository analysis with per-project merging.
type Analyzer struct {
	logger     *zap.SugaredLogger
	config     Config
	extractor  *gitlog.Extractor
	classifier *bots.Classifier
	finder     *discovery.Finder
	updater    *updater.Updater
}

// NewAnalyzer returns an Analyzer wired with the default extractor, bot
// classifier, finder and updater.
func NewAnalyzer(config Config, logger *zap.SugaredLogger) *Analyzer {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	return &Analyzer{
		logger:     logger,
		config:     config,
		extractor:  gitlog.NewExtractor(logger),
		classifier: bots.New(),
		finder:     discovery.NewFinder(config.BaseDir, logger),
		updater:    updater.New(logger),
	}
}

// AnalyzeRepository runs the analysis pipeline for a single repository:
// extraction, bot-filtered aggregation, identity resolution, and the two
// window queries. The result shares no state with any other repository.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, repoPath string) ([]insights.NewContributor, map[int][]insights.MilestoneEvent, error) {
	records, err := a.extractor.Extract(ctx, repoPath)
	if err != nil {
		return nil, nil, err
	}

	parse := func(raw string) time.Time {
		return gitlog.ParseDate(a.logger, raw)
	}

	aggregates := insights.BuildContributors(records, a.classifier.IsAutomated, parse)
	resolved := identity.Resolve(aggregates, a.logger)

	fresh := insights.NewContributors(resolved, a.config.Window, identity.GitHubLogin)
	milestones := insights.Milestones(resolved, a.config.Window, identity.GitHubLogin)
	return fresh, milestones, nil
}

// Run discovers repositories, optionally updates their mirrors, analyzes
// them with bounded parallelism and merges the results per project.
// Transient per-repository failures are logged and skipped; configuration
// failures abort the run since retrying will not help.
func (a *Analyzer) Run(ctx context.Context) (map[string]*insights.ProjectReport, error) {
	var (
		repos []discovery.Repo
		err   error
	)
	if a.config.Project != "" {
		a.logger.Infof("starting repository analysis for project: %s", a.config.Project)
		repos, err = a.finder.FindProject(a.config.Project)
	} else {
		a.logger.Infof("starting repository analysis")
		repos, err = a.finder.FindAll()
	}
	if err != nil {
		return nil, err
	}

	if a.config.Update {
		a.updater.UpdateAll(ctx, repos)
	}

	type repoResult struct {
		project    string
		fresh      []insights.NewContributor
		milestones map[int][]insights.MilestoneEvent
	}

	var (
		mu      sync.Mutex
		results []repoResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)

	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			// Cancellation is checked between repositories; a repository
			// already being parsed finishes or is discarded whole.
			if gctx.Err() != nil {
				return gctx.Err()
			}

			fresh, milestones, err := a.AnalyzeRepository(gctx, repo.Path)
			if err != nil {
				if errors.Is(err, gitlog.ErrNotARepository) {
					return err
				}
				a.logger.Warnf("skipping repository %s: %s", repo.Path, err.Error())
				return nil
			}

			mu.Lock()
			results = append(results, repoResult{project: repo.Project, fresh: fresh, milestones: milestones})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projects := make(map[string]*insights.ProjectReport)
	for _, res := range results {
		report, ok := projects[res.project]
		if !ok {
			report = &insights.ProjectReport{Milestones: insights.EmptyMilestones()}
			projects[res.project] = report
		}
		report.NewContributors = append(report.NewContributors, res.fresh...)
		for n, events := range res.milestones {
			report.Milestones[n] = append(report.Milestones[n], events...)
		}
	}

	for name, report := range projects {
		report.NewContributors = dedupeByEmail(report.NewContributors)
		if len(report.NewContributors) == 0 && !hasMilestones(report.Milestones) {
			delete(projects, name)
		}
	}

	a.logger.Infof("repository analysis complete: %d projects with findings", len(projects))
	return projects, nil
}

// dedupeByEmail collapses new-contributor records that share an email
// across a project's repositories, keeping the earliest first commit, and
// returns them sorted ascending by first commit date.
func dedupeByEmail(contributors []insights.NewContributor) []insights.NewContributor {
	byEmail := make(map[string]insights.NewContributor, len(contributors))
	for _, c := range contributors {
		existing, ok := byEmail[c.Email]
		if !ok || c.FirstCommitDate.Before(existing.FirstCommitDate) {
			byEmail[c.Email] = c
		}
	}

	unique := make([]insights.NewContributor, 0, len(byEmail))
	for _, c := range byEmail {
		unique = append(unique, c)
	}
	sortNewContributors(unique)
	return unique
}

func sortNewContributors(contributors []insights.NewContributor) {
	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].FirstCommitDate.Before(contributors[j].FirstCommitDate)
	})
}

func hasMilestones(milestones map[int][]insights.MilestoneEvent) bool {
	for _, events := range milestones {
		if len(events) > 0 {
			return true
		}
	}
	return false
}
