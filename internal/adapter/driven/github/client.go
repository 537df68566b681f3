// Package github implements the RepositoryAccess port using the go-github library.
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/edugrid/labgrader/internal/domain/model"
	"github.com/edugrid/labgrader/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryAccess = (*Client)(nil)

// maxLogRedirects bounds the redirect chain go-github follows when resolving
// the short-lived job log download URL.
const maxLogRedirects = 4

// Client implements the driven.RepositoryAccess port using the go-github library.
type Client struct {
	gh         *gh.Client
	httpClient *http.Client // Used to download job logs from the signed URL GitHub redirects to.
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:         client,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:         client,
		httpClient: httpClient,
	}, nil
}

// FileExists reports whether path exists in the repository. Directory paths
// count as existing. A 404 from the contents API is a definitive "no", not
// an error.
func (c *Client) FileExists(ctx context.Context, org, repo, path string) (bool, error) {
	_, _, resp, err := c.gh.Repositories.GetContents(ctx, org, repo, path, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("checking contents of %s/%s %s: %w", org, repo, path, err)
	}

	logRateLimit(resp, org+"/"+repo+"/contents", 0, 1)

	return true, nil
}

// FetchLatestCommit returns the most recent commit on the default branch with
// the files it touched. Returns nil, nil for repositories with no commits
// (GitHub answers 409 for an empty repository).
func (c *Client) FetchLatestCommit(ctx context.Context, org, repo string) (*model.Commit, error) {
	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	}

	commits, resp, err := c.gh.Repositories.ListCommits(ctx, org, repo, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil, nil
		}
		return nil, fmt.Errorf("listing commits for %s/%s: %w", org, repo, err)
	}

	logRateLimit(resp, org+"/"+repo+"/commits", 0, len(commits))

	if len(commits) == 0 {
		return nil, nil
	}

	sha := commits[0].GetSHA()

	// The list endpoint omits per-file changes; fetch the commit detail.
	detail, resp, err := c.gh.Repositories.GetCommit(ctx, org, repo, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching commit %s/%s@%s: %w", org, repo, sha, err)
	}

	logRateLimit(resp, org+"/"+repo+"/commit", 0, len(detail.Files))

	files := make([]model.CommitFile, 0, len(detail.Files))
	for _, f := range detail.Files {
		files = append(files, model.CommitFile{
			Path:   f.GetFilename(),
			Status: f.GetStatus(),
		})
	}

	return &model.Commit{SHA: sha, Files: files}, nil
}

// FetchCheckRuns retrieves all check runs for the given commit SHA.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) FetchCheckRuns(ctx context.Context, org, repo, sha string) ([]model.CheckRun, error) {
	opts := &gh.ListCheckRunsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allRuns []model.CheckRun

	for {
		result, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, org, repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("listing check runs for %s/%s@%s (page %d): %w", org, repo, sha, opts.Page, err)
		}

		logRateLimit(resp, org+"/"+repo+"/check-runs", opts.Page, len(result.CheckRuns))

		for _, cr := range result.CheckRuns {
			allRuns = append(allRuns, mapCheckRun(cr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

// FetchJobLog returns the full log text of a workflow job. GitHub serves the
// log from a short-lived signed URL; go-github resolves the redirect and the
// download happens with the plain http client (the signed URL rejects
// Authorization headers).
func (c *Client) FetchJobLog(ctx context.Context, org, repo string, jobID int64) (string, error) {
	logURL, resp, err := c.gh.Actions.GetWorkflowJobLogs(ctx, org, repo, jobID, maxLogRedirects)
	if err != nil {
		return "", fmt.Errorf("resolving log URL for %s/%s job %d: %w", org, repo, jobID, err)
	}

	logRateLimit(resp, org+"/"+repo+"/job-logs", 0, 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building log download request: %w", err)
	}

	dlResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading log for %s/%s job %d: %w", org, repo, jobID, err)
	}
	defer func() { _ = dlResp.Body.Close() }()

	if dlResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading log for %s/%s job %d: unexpected status %d", org, repo, jobID, dlResp.StatusCode)
	}

	body, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading log for %s/%s job %d: %w", org, repo, jobID, err)
	}

	return string(body), nil
}

// mapCheckRun converts a go-github CheckRun to a domain model CheckRun.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapCheckRun(cr *gh.CheckRun) model.CheckRun {
	var completedAt time.Time
	if cr.CompletedAt != nil {
		completedAt = cr.GetCompletedAt().Time
	}

	return model.CheckRun{
		ID:          cr.GetID(),
		Name:        cr.GetName(),
		Conclusion:  cr.GetConclusion(),
		DetailsURL:  cr.GetHTMLURL(),
		CompletedAt: completedAt,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
