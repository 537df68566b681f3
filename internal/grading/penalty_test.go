package grading_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edugrid/labgrader/internal/course"
	"github.com/edugrid/labgrader/internal/grading"
)

var deadline = time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)

func TestCalculatePenalty(t *testing.T) {
	tests := []struct {
		name        string
		completedAt time.Time
		max         int
		strategy    course.PenaltyStrategy
		want        int
	}{
		{
			name:        "before deadline",
			completedAt: deadline.Add(-4 * time.Hour),
			max:         10,
			strategy:    course.PenaltyWeekly,
			want:        0,
		},
		{
			name:        "exactly at deadline",
			completedAt: deadline,
			max:         10,
			strategy:    course.PenaltyWeekly,
			want:        0,
		},
		{
			name:        "one minute late weekly",
			completedAt: deadline.Add(time.Minute),
			max:         10,
			strategy:    course.PenaltyWeekly,
			want:        1,
		},
		{
			name:        "six days late is one week",
			completedAt: deadline.Add(6 * 24 * time.Hour),
			max:         10,
			strategy:    course.PenaltyWeekly,
			want:        1,
		},
		{
			name:        "exactly one week late",
			completedAt: deadline.Add(7 * 24 * time.Hour),
			max:         10,
			strategy:    course.PenaltyWeekly,
			want:        1,
		},
		{
			name:        "eight days late is two weeks",
			completedAt: deadline.Add(8 * 24 * time.Hour),
			max:         10,
			strategy:    course.PenaltyWeekly,
			want:        2,
		},
		{
			name:        "weekly capped at max",
			completedAt: deadline.Add(52 * 7 * 24 * time.Hour),
			max:         5,
			strategy:    course.PenaltyWeekly,
			want:        5,
		},
		{
			name:        "one hour late daily",
			completedAt: deadline.Add(time.Hour),
			max:         10,
			strategy:    course.PenaltyDaily,
			want:        1,
		},
		{
			name:        "partial second day counts as two days",
			completedAt: deadline.Add(25 * time.Hour),
			max:         10,
			strategy:    course.PenaltyDaily,
			want:        2,
		},
		{
			name:        "daily capped at max",
			completedAt: deadline.Add(30 * 24 * time.Hour),
			max:         7,
			strategy:    course.PenaltyDaily,
			want:        7,
		},
		{
			name:        "immediate max right after deadline",
			completedAt: deadline.Add(time.Second),
			max:         10,
			strategy:    course.PenaltyImmediate,
			want:        10,
		},
		{
			name:        "immediate strategy still free before deadline",
			completedAt: deadline.Add(-time.Second),
			max:         10,
			strategy:    course.PenaltyImmediate,
			want:        0,
		},
		{
			name:        "none strategy never penalizes",
			completedAt: deadline.Add(100 * 24 * time.Hour),
			max:         10,
			strategy:    course.PenaltyNone,
			want:        0,
		},
		{
			name:        "zero max yields zero",
			completedAt: deadline.Add(24 * time.Hour),
			max:         0,
			strategy:    course.PenaltyWeekly,
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grading.CalculatePenalty(tt.completedAt, deadline, tt.max, tt.strategy)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Penalty must grow monotonically with lateness and never exceed max,
// under every strategy.
func TestCalculatePenalty_MonotonicAndBounded(t *testing.T) {
	strategies := []course.PenaltyStrategy{
		course.PenaltyWeekly,
		course.PenaltyDaily,
		course.PenaltyImmediate,
		course.PenaltyNone,
	}
	const max = 6

	for _, strategy := range strategies {
		prev := 0
		for hours := 0; hours <= 24*60; hours += 7 {
			got := grading.CalculatePenalty(deadline.Add(time.Duration(hours)*time.Hour), deadline, max, strategy)
			assert.GreaterOrEqual(t, got, prev, "strategy=%s hours=%d", strategy, hours)
			assert.LessOrEqual(t, got, max, "strategy=%s hours=%d", strategy, hours)
			prev = got
		}
	}
}
