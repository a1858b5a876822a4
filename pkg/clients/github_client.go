// package clients wraps the GitHub API access used to seed the mirror set
// for an organization.
package clients

import (
	"context"
	"net/http"

	"github.com/google/go-github/v54/github"
)

type GithubApiClient struct {
	client *github.Client
}

func NewGithubTokenClient(ctx context.Context, token string) *GithubApiClient {
	s := &GithubApiClient{
		client: github.NewTokenClient(ctx, token),
	}
	return s
}

func NewGithubClient(httpClient *http.Client) *GithubApiClient {
	s := &GithubApiClient{
		client: github.NewClient(httpClient),
	}
	return s
}

// ListReposByOrg returns every repository of the organization, walking all
// pages of results.
func (s *GithubApiClient) ListReposByOrg(ctx context.Context, org string) ([]*github.Repository, error) {
	opt := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var allRepos []*github.Repository
	for {
		repos, resp, err := s.client.Repositories.ListByOrg(ctx, org, opt)
		if err != nil {
			return allRepos, err
		}
		allRepos = append(allRepos, repos...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return allRepos, nil
}

// FilterGithubArchivedRepos drops archived repositories; their history no
// longer moves, so they never produce window findings.
func FilterGithubArchivedRepos(repos []*github.Repository) []*github.Repository {
	var filteredRepos []*github.Repository
	for _, repo := range repos {
		if !repo.GetArchived() {
			filteredRepos = append(filteredRepos, repo)
		}
	}
	return filteredRepos
}

// GetGithubRepoCloneUrls returns the clone URL of each repository that has
// one, suitable for seeding the mirror cache.
func GetGithubRepoCloneUrls(repos []*github.Repository) []string {
	var urls []string
	for _, repo := range repos {
		cloneURL := repo.GetCloneURL()
		if cloneURL != "" {
			urls = append(urls, cloneURL)
		}
	}
	return urls
}
