package grading

import (
	"strconv"
	"strings"
)

// Cell values that grading wrote for a non-pass and may overwrite later.
const (
	cellFailed       = "x"
	cellPassed       = "v"
	cellMarkerPrefix = "?"
)

// MayOverwrite decides whether an existing gradebook cell value may be
// replaced by a new grading attempt. Empty cells, the failure marker, and
// "?"-prefixed error markers are fair game; anything else -- a recorded
// pass, a manual override, a numeric grade -- is protected and requires a
// human to change it.
func MayOverwrite(current string) bool {
	v := strings.TrimSpace(current)
	if v == "" || v == cellFailed {
		return true
	}
	return strings.HasPrefix(v, cellMarkerPrefix)
}

// RenderCell composes the cell value for a grading outcome:
// "x" for a failed run, then "v" with optional "@score" and "-penalty"
// suffixes. score is the canonical dot-separated form (empty when the lab
// does not extract scores); separator is the gradebook's decimal convention.
func RenderCell(passed bool, score string, penalty int, separator string) string {
	if !passed {
		return cellFailed
	}

	var b strings.Builder
	b.WriteString(cellPassed)
	if score != "" {
		b.WriteString("@")
		b.WriteString(FormatScore(score, separator))
	}
	if penalty > 0 {
		b.WriteString("-")
		b.WriteString(strconv.Itoa(penalty))
	}
	return b.String()
}

// VariantMismatchMarker renders the re-checkable error marker written when
// the declared variant does not match the expected one. The "?" prefix keeps
// the cell overwritable by the next grading attempt.
func VariantMismatchMarker(found, expected int) string {
	return "?! wrong variant: found " + strconv.Itoa(found) + ", expected " + strconv.Itoa(expected)
}
