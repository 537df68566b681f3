package grading

import (
	"fmt"

	"github.com/edugrid/labgrader/internal/domain/model"
)

// defaultJobNames are the check-run names counted toward the grade when a lab
// does not configure an explicit job list. They cover the common autograding
// workflow names used in classroom templates.
var defaultJobNames = []string{
	"run-autograding-tests",
	"test",
	"build",
	"Autograding",
	"autograding",
}

// FilterRelevantRuns reduces raw check runs to the set that counts toward
// the grade. With an explicit configured list only those names are kept;
// otherwise the default job-name set applies. Runs with unknown names are
// dropped and never count toward pass or fail. Input order is preserved and
// duplicates are not collapsed.
func FilterRelevantRuns(runs []model.CheckRun, configuredNames []string) []model.CheckRun {
	names := configuredNames
	if len(names) == 0 {
		names = defaultJobNames
	}

	relevant := make(map[string]bool, len(names))
	for _, n := range names {
		relevant[n] = true
	}

	var filtered []model.CheckRun
	for _, run := range runs {
		if relevant[run.Name] {
			filtered = append(filtered, run)
		}
	}
	return filtered
}

// EvaluateRuns aggregates already-filtered check runs into a CIResult.
// An empty set is never a pass: it means nothing relevant has run yet.
// A run that has not concluded is pending and counts toward neither side;
// a concluded run with any conclusion but success (failure, cancelled,
// timed_out) fails the set, since it will never turn into a pass.
// Summary lines keep input order and carry a status marker plus the run's
// detail URL for human display.
func EvaluateRuns(runs []model.CheckRun) model.CIResult {
	if len(runs) == 0 {
		return model.CIResult{HasPending: true}
	}

	result := model.CIResult{TotalCount: len(runs)}

	for _, run := range runs {
		var marker string
		switch {
		case !run.Concluded():
			marker = "⏳"
			result.HasPending = true
		case run.Conclusion == "success":
			marker = "✅"
			result.PassedCount++
			if run.CompletedAt.After(result.LatestSuccess) {
				result.LatestSuccess = run.CompletedAt
			}
		default:
			marker = "❌"
		}
		result.Summary = append(result.Summary, fmt.Sprintf("%s %s — %s", marker, run.Name, run.DetailsURL))
	}

	result.Passed = result.PassedCount == result.TotalCount && !result.HasPending
	return result
}

// FormatPassedSummary renders the "3/4 checks passed" line shown to students.
func FormatPassedSummary(passedCount, totalCount int) string {
	return fmt.Sprintf("%d/%d checks passed", passedCount, totalCount)
}
