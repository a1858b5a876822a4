package providers

import "github.com/go-git/go-git/v5"

// GitRepoProvider is a single API for acquiring an analyzable git
// repository from a clone URL. Implementations decide where the working
// copy lives and how long it survives.
type GitRepoProvider interface {
	// FetchRepo acquires a GitRepo for the provided clone URL, cloning or
	// refreshing as needed.
	FetchRepo(url string) (GitRepo, error)
}

// GitRepo wraps one acquired repository. The history walk needs a real
// working directory on disk, so every implementation exposes one.
type GitRepo interface {
	// Dir returns the repository's working directory on disk.
	Dir() string

	// Repo returns the opened go-git repository.
	Repo() *git.Repository

	// Done indicates that processing has completed and any resources held
	// by this GitRepo may be released or reaped.
	Done()
}
