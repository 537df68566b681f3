package model

import "time"

// CheckRun represents an individual CI check run from the GitHub Checks API.
// Fetched fresh for every grading attempt; never persisted.
type CheckRun struct {
	ID          int64     // GitHub check run ID, also the job ID for log retrieval.
	Name        string    // Check run name (e.g., "build", "run-autograding-tests").
	Conclusion  string    // success, failure; empty while queued or in progress.
	DetailsURL  string    // URL to the check run details page.
	CompletedAt time.Time // When the check run completed (zero if not yet completed).
}

// Concluded reports whether the run has reached a terminal conclusion.
// An empty conclusion means the run is still queued or in progress.
func (cr CheckRun) Concluded() bool {
	return cr.Conclusion != ""
}

// CIResult is the aggregate of the relevant check runs for one commit.
// Derived on every grading attempt -- CI state can change between polls.
type CIResult struct {
	Passed        bool      // All relevant runs concluded successfully.
	PassedCount   int       // Number of successful runs.
	TotalCount    int       // Number of relevant runs.
	HasPending    bool      // At least one relevant run has not concluded.
	Summary       []string  // One display line per run, in input order.
	LatestSuccess time.Time // Latest CompletedAt among successful runs (zero if none).
}

// Commit carries the head commit SHA and the files it touched.
type Commit struct {
	SHA   string
	Files []CommitFile
}

// CommitFile is a single file change within a commit.
type CommitFile struct {
	Path   string
	Status string // added, modified, removed, renamed.
}
