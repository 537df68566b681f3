// Package grading implements the grading decision engine: the rules that
// turn raw CI and repository signals into a single gradebook cell value.
// The leaf functions (variant, penalty, CI evaluation, score extraction,
// cell state) are pure; Grader sequences them against the injected
// repository and gradebook ports.
package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edugrid/labgrader/internal/course"
	"github.com/edugrid/labgrader/internal/domain/model"
	"github.com/edugrid/labgrader/internal/domain/port/driven"
)

// Grader orchestrates one grading attempt end to end. It holds no
// cross-request state: every call works on freshly fetched snapshots.
type Grader struct {
	repos  driven.RepositoryAccess
	book   driven.GradebookAccess
	logger *slog.Logger
	now    func() time.Time
}

// NewGrader creates a Grader over the given ports.
func NewGrader(repos driven.RepositoryAccess, book driven.GradebookAccess, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{
		repos:  repos,
		book:   book,
		logger: logger,
		now:    time.Now,
	}
}

// cellRef locates one student's cell for one lab, plus the roster position
// used for variant derivation.
type cellRef struct {
	sheet string
	row   int
	col   int
	order int
}

// GradeLab performs a full grading attempt for one student and one lab.
// Every outcome is a tagged GradeResult; the gradebook cell is modified in
// at most one place, after all checks pass the overwrite gate. External
// fetch failures abort the attempt with status error and leave the cell
// untouched, so the request is safe to retry.
func (g *Grader) GradeLab(ctx context.Context, crs *course.Course, lab course.LabConfig, student model.StudentIdentity) model.GradeResult {
	org := crs.GitHub.Organization
	repo := lab.RepoName(student.Login)

	log := g.logger.With("org", org, "repo", repo, "lab", lab.ShortName, "login", student.Login)

	// Cheapest checks first: repository shape before any CI evaluation.
	if res := g.validateRepository(ctx, org, repo, lab); res != nil {
		return *res
	}

	commit, err := g.repos.FetchLatestCommit(ctx, org, repo)
	if err != nil {
		return externalError("fetching latest commit", err)
	}
	if commit == nil {
		return model.GradeResult{
			Status:    model.GradeStatusError,
			Message:   "repository has no commits",
			ErrorCode: model.ErrCodeNoCommits,
		}
	}

	patterns := protectedPatterns(lab.Files, lab.Protected)
	if violations := forbiddenModifications(commit.Files, patterns); len(violations) > 0 {
		return model.GradeResult{
			Status:    model.GradeStatusRejected,
			Message:   "forbidden files modified: " + strings.Join(violations, ", "),
			ErrorCode: model.ErrCodeForbiddenChange,
		}
	}

	runs, err := g.repos.FetchCheckRuns(ctx, org, repo, commit.SHA)
	if err != nil {
		return externalError("fetching check runs", err)
	}

	relevant := FilterRelevantRuns(runs, lab.CI.Jobs)
	ci := EvaluateRuns(relevant)

	// Pending short-circuits before any cell-state inspection: the current
	// cell stays untouched and the caller retries later.
	if ci.HasPending {
		msg := "no relevant CI checks have started yet"
		var passed string
		if ci.TotalCount > 0 {
			msg = "CI checks are still running"
			passed = FormatPassedSummary(ci.PassedCount, ci.TotalCount)
		}
		return model.GradeResult{
			Status:  model.GradeStatusPending,
			Message: msg,
			Passed:  passed,
			Checks:  ci.Summary,
		}
	}

	cell, res := g.locateCell(ctx, crs, lab, student)
	if res != nil {
		return *res
	}

	current, err := g.book.ReadCell(ctx, cell.sheet, cell.row, cell.col)
	if err != nil {
		return externalError("reading gradebook cell", err)
	}

	var jobLog string
	needLog := ci.Passed && (lab.Variant.Enabled() || len(lab.ScorePatterns) > 0)
	if needLog {
		run := latestSuccessfulRun(relevant)
		jobLog, err = g.repos.FetchJobLog(ctx, org, repo, run.ID)
		if err != nil {
			return externalError("fetching job log", err)
		}
	}

	if ci.Passed && lab.Variant.Enabled() {
		if res := g.checkVariant(ctx, jobLog, lab, cell, current, ci); res != nil {
			return *res
		}
	}

	var score string
	if ci.Passed && len(lab.ScorePatterns) > 0 {
		score, err = ExtractScore(jobLog, lab.ScorePatterns)
		if err != nil {
			return model.GradeResult{
				Status:    model.GradeStatusError,
				Message:   err.Error(),
				Passed:    FormatPassedSummary(ci.PassedCount, ci.TotalCount),
				Checks:    ci.Summary,
				ErrorCode: model.ErrCodeScoreNotFound,
			}
		}
	}

	var penalty int
	if ci.Passed {
		deadline, err := g.book.ReadDeadline(ctx, cell.sheet, cell.col)
		if err != nil {
			return externalError("reading lab deadline", err)
		}
		if !deadline.IsZero() {
			completedAt := ci.LatestSuccess
			if completedAt.IsZero() {
				completedAt = g.now()
			}
			penalty = CalculatePenalty(completedAt, deadline, lab.Penalty.Max, lab.Penalty.Strategy)
		}
	}

	value := RenderCell(ci.Passed, score, penalty, crs.Google.DecimalSeparator)

	if !MayOverwrite(current) {
		return model.GradeResult{
			Status:       model.GradeStatusRejected,
			Message:      fmt.Sprintf("cell already contains grade %q", current),
			Passed:       FormatPassedSummary(ci.PassedCount, ci.TotalCount),
			Checks:       ci.Summary,
			CurrentGrade: current,
			ErrorCode:    model.ErrCodeCellProtected,
		}
	}

	if err := g.book.WriteCell(ctx, cell.sheet, cell.row, cell.col, value); err != nil {
		return externalError("writing gradebook cell", err)
	}

	msg := "checks failed"
	if ci.Passed {
		msg = "all checks passed"
	}
	log.Info("grade written", "value", value, "penalty", penalty, "score", score)

	return model.GradeResult{
		Status:  model.GradeStatusUpdated,
		Result:  value,
		Message: msg,
		Passed:  FormatPassedSummary(ci.PassedCount, ci.TotalCount),
		Checks:  ci.Summary,
	}
}

// validateRepository fails fast on repository shape: required files present
// and a workflows directory configured. Returns nil when the repository is
// fit for CI evaluation.
func (g *Grader) validateRepository(ctx context.Context, org, repo string, lab course.LabConfig) *model.GradeResult {
	var missing []string
	for _, path := range lab.Files {
		exists, err := g.repos.FileExists(ctx, org, repo, path)
		if err != nil {
			res := externalError("checking required file "+path, err)
			return &res
		}
		if !exists {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return &model.GradeResult{
			Status:    model.GradeStatusRejected,
			Message:   "required files missing: " + strings.Join(missing, ", "),
			ErrorCode: model.ErrCodeMissingFiles,
		}
	}

	hasWorkflows, err := g.repos.FileExists(ctx, org, repo, ".github/workflows")
	if err != nil {
		res := externalError("checking workflows directory", err)
		return &res
	}
	if !hasWorkflows {
		return &model.GradeResult{
			Status:    model.GradeStatusRejected,
			Message:   "CI is not configured: .github/workflows is missing",
			ErrorCode: model.ErrCodeNoWorkflows,
		}
	}

	return nil
}

// locateCell resolves the student's row, roster position, and the lab
// column. When the header lookup misses, the column falls back to offset
// math using the trailing number in the lab's short name.
func (g *Grader) locateCell(ctx context.Context, crs *course.Course, lab course.LabConfig, student model.StudentIdentity) (cellRef, *model.GradeResult) {
	row, order, err := g.book.FindStudentRow(ctx, student.Group, student.Login)
	if err != nil {
		res := externalError("finding student row", err)
		return cellRef{}, &res
	}
	if row == 0 {
		return cellRef{}, &model.GradeResult{
			Status:    model.GradeStatusRejected,
			Message:   fmt.Sprintf("login %q is not registered in the gradebook", student.Login),
			ErrorCode: model.ErrCodeStudentNotFound,
		}
	}

	col, err := g.book.FindLabColumn(ctx, student.Group, lab.ShortName)
	if err != nil {
		res := externalError("finding lab column", err)
		return cellRef{}, &res
	}
	if col == 0 {
		if n, ok := labNumber(lab.ShortName); ok && crs.Google.LabColumnOffset > 0 {
			col = crs.Google.LabColumnOffset + n
		} else {
			return cellRef{}, &model.GradeResult{
				Status:    model.GradeStatusError,
				Message:   fmt.Sprintf("lab column %q not found in the gradebook", lab.ShortName),
				ErrorCode: model.ErrCodeConfiguration,
			}
		}
	}

	return cellRef{sheet: student.Group, row: row, col: col, order: order}, nil
}

// checkVariant verifies the declared variant against the roster-derived
// expectation. A mismatch writes the re-checkable "?!" marker, but only when
// the existing cell value is itself overwritable.
func (g *Grader) checkVariant(ctx context.Context, jobLog string, lab course.LabConfig, cell cellRef, current string, ci model.CIResult) *model.GradeResult {
	outcome := ExtractDeclaredVariant(jobLog)
	if outcome.Err != "" {
		return &model.GradeResult{
			Status:    model.GradeStatusError,
			Message:   outcome.Err,
			Passed:    FormatPassedSummary(ci.PassedCount, ci.TotalCount),
			Checks:    ci.Summary,
			ErrorCode: model.ErrCodeVariantMismatch,
		}
	}

	expected := ExpectedVariant(cell.order, lab.Variant.Shift, lab.Variant.Max)
	if *outcome.Found == expected {
		return nil
	}

	marker := VariantMismatchMarker(*outcome.Found, expected)
	written := ""
	if MayOverwrite(current) {
		if err := g.book.WriteCell(ctx, cell.sheet, cell.row, cell.col, marker); err != nil {
			res := externalError("writing variant marker", err)
			return &res
		}
		written = marker
	}

	return &model.GradeResult{
		Status:    model.GradeStatusError,
		Result:    written,
		Message:   fmt.Sprintf("wrong variant: found %d, expected %d", *outcome.Found, expected),
		Passed:    FormatPassedSummary(ci.PassedCount, ci.TotalCount),
		Checks:    ci.Summary,
		ErrorCode: model.ErrCodeVariantMismatch,
	}
}

// latestSuccessfulRun picks the relevant run whose log carries the grading
// output: the most recently completed successful one. Falls back to the
// first run when none succeeded (callers only reach this on a passed set).
func latestSuccessfulRun(runs []model.CheckRun) model.CheckRun {
	best := runs[0]
	var bestAt time.Time
	for _, r := range runs {
		if r.Conclusion == "success" && r.CompletedAt.After(bestAt) {
			best = r
			bestAt = r.CompletedAt
		}
	}
	return best
}

// labNumber extracts the trailing number from a lab short name like "lab3".
func labNumber(shortName string) (int, bool) {
	i := len(shortName)
	for i > 0 && shortName[i-1] >= '0' && shortName[i-1] <= '9' {
		i--
	}
	if i == len(shortName) {
		return 0, false
	}
	n := 0
	for _, c := range shortName[i:] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// externalError wraps a failed hosting or gradebook call into a retryable
// error result. The cell is never modified on this path.
func externalError(op string, err error) model.GradeResult {
	return model.GradeResult{
		Status:    model.GradeStatusError,
		Message:   fmt.Sprintf("%s: %v", op, err),
		ErrorCode: model.ErrCodeExternalService,
	}
}
