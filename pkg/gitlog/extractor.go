// package gitlog extracts the raw authorship history of a repository by
// invoking the git tool directly, covering every branch and all history.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/rbowen/asf-highlights/pkg/insights"
)

// DefaultTimeout bounds one full-history walk so a hung or oversized
// repository cannot stall the whole batch.
const DefaultTimeout = 30 * time.Second

// logFormat yields one pipe-delimited line per commit:
// author name, author email, author date, hash.
const logFormat = "%an|%ae|%ad|%H"

// ErrNotARepository marks a path that cannot be analyzed because it is not
// a valid git repository. This is a configuration problem rather than a
// transient one; callers should surface it instead of retrying.
var ErrNotARepository = errors.New("not a git repository")

// Extractor walks the full commit history of repositories on disk.
type Extractor struct {
	logger  *zap.SugaredLogger
	timeout time.Duration
}

// NewExtractor returns an Extractor using the default history-walk timeout.
func NewExtractor(logger *zap.SugaredLogger) *Extractor {
	return &Extractor{logger: logger, timeout: DefaultTimeout}
}

// Extract returns every commit across all refs of the repository at
// repoPath, most recent first, as raw authorship records. Malformed log
// lines are skipped and logged, never fatal. A timeout or a non-zero git
// exit comes back as a plain error so the caller can skip the repository
// for this run; a path that is not a git repository comes back wrapped in
// ErrNotARepository.
func (e *Extractor) Extract(ctx context.Context, repoPath string) ([]insights.RawCommit, error) {
	if _, err := git.PlainOpen(repoPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNotARepository, repoPath, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log", "--all", "--pretty=format:"+logFormat, "--date=iso")
	cmd.Dir = repoPath

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("git log timed out after %s in %s", e.timeout, repoPath)
		}
		return nil, fmt.Errorf("git log failed in %s: %s", repoPath, err.Error())
	}

	return e.parseLog(string(output)), nil
}

// parseLog splits raw git log output into authorship records, skipping any
// line that does not carry exactly four fields.
func (e *Extractor) parseLog(out string) []insights.RawCommit {
	var records []insights.RawCommit
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			e.logger.Warnf("skipping malformed log line: %q", line)
			continue
		}
		records = append(records, insights.RawCommit{
			AuthorName:  parts[0],
			AuthorEmail: parts[1],
			RawDate:     parts[2],
			Hash:        parts[3],
		})
	}
	return records
}
