package grading

import (
	"time"

	"github.com/edugrid/labgrader/internal/course"
)

// CalculatePenalty converts lateness into penalty points under the lab's
// configured strategy. Submissions at or before the deadline cost nothing
// under every strategy. A started day or week counts as a whole one. The
// result is always in [0, max].
func CalculatePenalty(completedAt, deadline time.Time, max int, strategy course.PenaltyStrategy) int {
	if !completedAt.After(deadline) {
		return 0
	}
	if max <= 0 || strategy == course.PenaltyNone {
		return 0
	}
	if strategy == course.PenaltyImmediate {
		return max
	}

	bucket := 7 * 24 * time.Hour
	if strategy == course.PenaltyDaily {
		bucket = 24 * time.Hour
	}

	elapsed := completedAt.Sub(deadline)
	points := int((elapsed + bucket - 1) / bucket)
	if points > max {
		return max
	}
	return points
}
