package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edugrid/labgrader/internal/grading"
)

func TestMayOverwrite(t *testing.T) {
	tests := []struct {
		current string
		want    bool
	}{
		{current: "", want: true},
		{current: "  ", want: true},
		{current: "x", want: true},
		{current: " x ", want: true},
		{current: "?bad", want: true},
		{current: "?! wrong variant: found 5, expected 7", want: true},
		{current: "v", want: false},
		{current: "v-3", want: false},
		{current: "v@9", want: false},
		{current: "v@8,5-2", want: false},
		{current: "10", want: false},
		{current: "zachet", want: false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, grading.MayOverwrite(tt.current))
		})
	}
}

func TestRenderCell(t *testing.T) {
	tests := []struct {
		name      string
		passed    bool
		score     string
		penalty   int
		separator string
		want      string
	}{
		{name: "failed", passed: false, score: "8.5", penalty: 3, separator: ".", want: "x"},
		{name: "plain pass", passed: true, separator: ".", want: "v"},
		{name: "pass with penalty", passed: true, penalty: 2, separator: ".", want: "v-2"},
		{name: "pass with score", passed: true, score: "8.5", separator: ".", want: "v@8.5"},
		{name: "pass with score and penalty", passed: true, score: "8.5", penalty: 3, separator: ".", want: "v@8.5-3"},
		{name: "comma separator convention", passed: true, score: "8.5", penalty: 1, separator: ",", want: "v@8,5-1"},
		{name: "integer score untouched by separator", passed: true, score: "10", separator: ",", want: "v@10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grading.RenderCell(tt.passed, tt.score, tt.penalty, tt.separator)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVariantMismatchMarker(t *testing.T) {
	marker := grading.VariantMismatchMarker(5, 7)

	assert.Equal(t, "?! wrong variant: found 5, expected 7", marker)
	assert.True(t, grading.MayOverwrite(marker), "marker must stay re-checkable")
}
