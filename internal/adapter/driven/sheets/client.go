// Package sheets implements the GradebookAccess port against the Google
// Sheets API using a service-account credential.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/edugrid/labgrader/internal/course"
	"github.com/edugrid/labgrader/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GradebookAccess = (*Gradebook)(nil)

// deadlineFormats are the cell formats accepted for deadlines, tried in
// order. Courses fill deadline cells by hand, so both the spreadsheet's
// day-first convention and ISO timestamps are accepted.
var deadlineFormats = []string{
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02 15:04",
	time.RFC3339,
}

// NewService builds an authenticated Sheets API service from a
// service-account JSON key file. The key is parsed up front so a bad
// credentials file fails at startup, not on the first gradebook call.
func NewService(ctx context.Context, credentialsFile string) (*sheetsapi.Service, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service-account credentials: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return svc, nil
}

// Gradebook binds the Sheets service to one course spreadsheet and its
// layout. Worksheet (group) names arrive per call through the port.
type Gradebook struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	layout        course.GoogleConfig
}

// NewGradebook creates a Gradebook for the given spreadsheet and layout.
func NewGradebook(svc *sheetsapi.Service, spreadsheetID string, layout course.GoogleConfig) *Gradebook {
	return &Gradebook{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		layout:        layout,
	}
}

// FindStudentRow locates a student by login in the configured login column.
// It returns the 1-based sheet row and the student's 1-based roster
// position, or 0, 0 when the login is not registered.
func (g *Gradebook) FindStudentRow(ctx context.Context, sheet, login string) (int, int, error) {
	loginCol, err := g.findHeader(ctx, sheet, g.layout.GitHubColumn)
	if err != nil {
		return 0, 0, err
	}
	if loginCol == 0 {
		return 0, 0, fmt.Errorf("login column %q not found on sheet %s", g.layout.GitHubColumn, sheet)
	}

	rng := fmt.Sprintf("'%s'!%s%d:%s", sheet, colLetter(loginCol), g.layout.StartRow, colLetter(loginCol))
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, 0, fmt.Errorf("reading login column on sheet %s: %w", sheet, err)
	}

	for i, rowValues := range resp.Values {
		if len(rowValues) == 0 {
			continue
		}
		if strings.EqualFold(cellString(rowValues[0]), login) {
			return g.layout.StartRow + i, i + 1, nil
		}
	}

	return 0, 0, nil
}

// FindLabColumn locates the lab column by short name in the first header
// row. Returns 0, nil when no header matches.
func (g *Gradebook) FindLabColumn(ctx context.Context, sheet, shortName string) (int, error) {
	col, err := g.findHeader(ctx, sheet, shortName)
	if err != nil {
		return 0, err
	}
	return col, nil
}

// ReadDeadline returns the deadline recorded in the configured deadline row
// of the lab column. An empty cell means no deadline; an unparseable value
// is a configuration problem worth surfacing.
func (g *Gradebook) ReadDeadline(ctx context.Context, sheet string, col int) (time.Time, error) {
	raw, err := g.ReadCell(ctx, sheet, g.layout.DeadlineRow, col)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Time{}, nil
	}

	deadline, err := parseDeadline(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("deadline cell on sheet %s column %d: %w", sheet, col, err)
	}
	return deadline, nil
}

// ReadCell returns the value of a single cell, empty string for a blank cell.
func (g *Gradebook) ReadCell(ctx context.Context, sheet string, row, col int) (string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, a1(sheet, row, col)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("reading cell %s: %w", a1(sheet, row, col), err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return cellString(resp.Values[0][0]), nil
}

// WriteCell overwrites a single cell with the given value. RAW input keeps
// grade markers like "v-2" from being reinterpreted as formulas or numbers.
func (g *Gradebook) WriteCell(ctx context.Context, sheet string, row, col int, value string) error {
	vr := &sheetsapi.ValueRange{Values: [][]any{{value}}}

	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, a1(sheet, row, col), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing cell %s: %w", a1(sheet, row, col), err)
	}
	return nil
}

// findHeader scans the first two rows for an exact header match and returns
// its 1-based column, 0 when absent.
func (g *Gradebook) findHeader(ctx context.Context, sheet, header string) (int, error) {
	rng := fmt.Sprintf("'%s'!1:2", sheet)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("reading header rows on sheet %s: %w", sheet, err)
	}

	for _, rowValues := range resp.Values {
		for i, v := range rowValues {
			if cellString(v) == header {
				return i + 1, nil
			}
		}
	}
	return 0, nil
}

// parseDeadline tries the accepted deadline formats in order.
func parseDeadline(raw string) (time.Time, error) {
	for _, layout := range deadlineFormats {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(raw), time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized deadline format %q", raw)
}

// a1 renders a (row, col) pair as a quoted A1-notation range.
func a1(sheet string, row, col int) string {
	return fmt.Sprintf("'%s'!%s%d", sheet, colLetter(col), row)
}

// colLetter converts a 1-based column index to its A1 letter form.
func colLetter(col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters)
}

// cellString normalizes an API cell value to a trimmed string.
func cellString(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}
