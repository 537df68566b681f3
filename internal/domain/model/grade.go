package model

// GradeStatus represents the terminal outcome of a grading attempt.
type GradeStatus string

const (
	GradeStatusUpdated  GradeStatus = "updated"  // Grade written to the gradebook cell.
	GradeStatusRejected GradeStatus = "rejected" // Cell protected or submission invalid, nothing written.
	GradeStatusPending  GradeStatus = "pending"  // CI not concluded yet, retry later.
	GradeStatusError    GradeStatus = "error"    // External failure or deterministic grading error.
)

// Error codes attached to GradeResult for programmatic handling.
// Only ErrCodeExternalService marks a transient, retryable failure; every
// other code is a deterministic outcome of the current input state.
const (
	ErrCodeConfiguration    = "CONFIGURATION_ERROR"
	ErrCodeMissingFiles     = "MISSING_FILES"
	ErrCodeNoWorkflows      = "NO_WORKFLOWS"
	ErrCodeNoCommits        = "NO_COMMITS"
	ErrCodeForbiddenChange  = "FORBIDDEN_MODIFICATION"
	ErrCodeVariantMismatch  = "VARIANT_MISMATCH"
	ErrCodeScoreNotFound    = "SCORE_NOT_FOUND"
	ErrCodeCellProtected    = "CELL_PROTECTED"
	ErrCodeStudentNotFound  = "STUDENT_NOT_FOUND"
	ErrCodeExternalService  = "EXTERNAL_SERVICE_ERROR"
)

// GradeResult is the orchestrator's sole output. It carries no side channel:
// everything a caller needs to render or log the outcome is here.
type GradeResult struct {
	Status       GradeStatus
	Result       string   // Written cell value ("v", "v-2", "v@8.5", "x", "?!..."); empty if nothing written.
	Message      string   // Human-readable outcome description.
	Passed       string   // "3/4 checks passed" style summary; empty if CI never evaluated.
	Checks       []string // Per-run summary lines from CIResult.
	CurrentGrade string   // Existing cell value when Status is rejected due to protection.
	ErrorCode    string   // One of the ErrCode* constants; empty on success.
}

// Retryable reports whether the caller may retry the same grading request
// without any input changing. True for transient external failures and for
// CI that has not concluded yet.
func (r GradeResult) Retryable() bool {
	return r.Status == GradeStatusPending || r.ErrorCode == ErrCodeExternalService
}

// VariantOutcome is the result of scanning a job log for the declared
// assignment variant. At most one of Found and Err is set: an ambiguous log
// (multiple declarations) is an error outcome, never a guess.
type VariantOutcome struct {
	Found *int   // The declared variant number, nil if absent or ambiguous.
	Err   string // Why extraction failed; empty on success.
}

// StudentIdentity identifies one student within one course group.
type StudentIdentity struct {
	Login string // GitHub login, as registered in the gradebook.
	Group string // Worksheet (group) name within the course spreadsheet.
}
