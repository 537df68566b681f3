package driven

import (
	"context"

	"github.com/edugrid/labgrader/internal/domain/model"
)

// RepositoryAccess defines the driven port for reading student submission
// repositories on the hosting service. All methods are synchronous,
// independent, retryable network operations; callers bound them with a
// per-call context timeout.
type RepositoryAccess interface {
	// FileExists reports whether path exists in the repository. A directory
	// path (e.g., ".github/workflows") counts as existing.
	FileExists(ctx context.Context, org, repo, path string) (bool, error)

	// FetchLatestCommit returns the most recent commit on the default branch
	// together with the files it touched. Returns nil, nil when the
	// repository has no commits.
	FetchLatestCommit(ctx context.Context, org, repo string) (*model.Commit, error)

	// FetchCheckRuns returns all check runs for the given commit SHA.
	FetchCheckRuns(ctx context.Context, org, repo, sha string) ([]model.CheckRun, error)

	// FetchJobLog returns the full log text of a workflow job.
	FetchJobLog(ctx context.Context, org, repo string, jobID int64) (string, error)
}
