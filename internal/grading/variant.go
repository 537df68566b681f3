package grading

import (
	"regexp"
	"strconv"

	"github.com/edugrid/labgrader/internal/domain/model"
)

// variantLine matches a variant declaration at the start of a log line:
// an ISO timestamp (GitHub Actions prefixes every line with one) followed by
// the literal marker and the declared number. Occurrences embedded inside
// unrelated text do not match.
var variantLine = regexp.MustCompile(`(?m)^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?\s+TASKID is (\d+)\b`)

// ExtractDeclaredVariant scans job log text for the variant number the
// student's code declares. Exactly one declaration is required: zero is a
// "not found" outcome and more than one is ambiguous -- the checker never
// guesses which line is authoritative.
func ExtractDeclaredVariant(logText string) model.VariantOutcome {
	if logText == "" {
		return model.VariantOutcome{Err: "job log is empty"}
	}

	matches := variantLine.FindAllStringSubmatch(logText, -1)
	switch len(matches) {
	case 0:
		return model.VariantOutcome{Err: "variant declaration not found in job log"}
	case 1:
		n, err := strconv.Atoi(matches[0][1])
		if err != nil {
			return model.VariantOutcome{Err: "variant declaration is not a valid number"}
		}
		return model.VariantOutcome{Found: &n}
	default:
		return model.VariantOutcome{Err: "ambiguous job log: multiple variant declarations found"}
	}
}

// ExpectedVariant derives the variant a student must solve from their 1-based
// roster position. The result is always in [1, max]: (order+shift) mod max,
// with a zero remainder mapping to max. Callers validate max >= 1 before
// invocation; this is enforced at config load time.
func ExpectedVariant(order, shift, max int) int {
	result := (order + shift) % max
	if result < 0 {
		result += max
	}
	if result == 0 {
		return max
	}
	return result
}
