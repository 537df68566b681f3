package driven

import (
	"context"
	"time"
)

// GradebookAccess defines the driven port for the external spreadsheet
// gradebook. The gradebook cell is the only shared mutable state in the
// system: grading reads it once and conditionally writes it once per
// attempt. No application-level lock exists; concurrent attempts for the
// same cell resolve last-write-wins in the external store.
type GradebookAccess interface {
	// FindStudentRow locates a student by login (case-insensitive) on the
	// given worksheet. It returns the 1-based sheet row and the student's
	// 1-based roster position (row minus header rows), used for variant
	// derivation. Returns 0, 0, nil when the login is not registered.
	FindStudentRow(ctx context.Context, sheet, login string) (row, order int, err error)

	// FindLabColumn locates the lab column by its short name in the header
	// row. Returns 0, nil when no header matches.
	FindLabColumn(ctx context.Context, sheet, shortName string) (int, error)

	// ReadDeadline returns the submission deadline recorded for the lab
	// column. A zero time means no deadline is set (no penalty applies).
	ReadDeadline(ctx context.Context, sheet string, col int) (time.Time, error)

	// ReadCell returns the current value of a single cell, empty string for
	// a blank cell.
	ReadCell(ctx context.Context, sheet string, row, col int) (string, error)

	// WriteCell overwrites a single cell with the given value.
	WriteCell(ctx context.Context, sheet string, row, col int, value string) error
}
