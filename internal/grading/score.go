package grading

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ExtractScore pulls the numeric score from job log text using the lab's
// ordered pattern list. The first pattern that matches wins; later patterns
// are never consulted. The first capture group of the winning pattern is the
// value; both "." and "," are accepted as the decimal separator and the
// returned canonical form always uses ".". When patterns are configured but
// none match, that is an error -- a required score must never silently
// become a blank cell.
func ExtractScore(logText string, patterns []string) (string, error) {
	if len(patterns) == 0 {
		return "", fmt.Errorf("no score patterns configured")
	}
	if logText == "" {
		return "", fmt.Errorf("job log is empty")
	}

	for _, pattern := range patterns {
		re, err := regexp.Compile("(?mi)" + pattern)
		if err != nil {
			return "", fmt.Errorf("invalid score pattern %q: %w", pattern, err)
		}

		matches := re.FindAllStringSubmatch(logText, -1)
		if len(matches) == 0 {
			continue
		}

		// Config validation rejects group-less patterns, but a pattern can
		// still arrive here unvalidated. Fail as an error, never a panic.
		if len(matches[0]) < 2 {
			return "", fmt.Errorf("score pattern %q has no capture group", pattern)
		}

		score, err := canonicalScore(matches[0][1])
		if err != nil {
			return "", err
		}

		// The winning pattern may match several times (the grader report is
		// often echoed). All occurrences must agree on the value.
		for _, m := range matches[1:] {
			other, err := canonicalScore(m[1])
			if err != nil {
				return "", err
			}
			if !scoresEqual(score, other) {
				return "", fmt.Errorf("conflicting score values in job log: %s and %s", score, other)
			}
		}

		return score, nil
	}

	return "", fmt.Errorf("score not found in job log")
}

// canonicalScore normalizes a captured score string to use "." as the
// decimal separator and verifies it parses as a number.
func canonicalScore(raw string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("captured score %q is not a number", raw)
	}
	return s, nil
}

// scoresEqual compares two canonical score strings numerically, so "10"
// and "10.0" are the same value.
func scoresEqual(a, b string) bool {
	av, errA := strconv.ParseFloat(a, 64)
	bv, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return a == b
	}
	return av == bv
}

// FormatScore renders a canonical score with the gradebook's configured
// decimal separator.
func FormatScore(score, separator string) string {
	if separator == "," {
		return strings.ReplaceAll(score, ".", ",")
	}
	return score
}
