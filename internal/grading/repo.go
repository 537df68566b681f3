package grading

import (
	"strings"

	"github.com/edugrid/labgrader/internal/domain/model"
)

// protectedPatterns combines the lab's explicit protected paths with the
// defaults derived from its required files: when the grading test file is
// required, the test file and the tests directory must not be touched.
func protectedPatterns(requiredFiles, explicit []string) []string {
	patterns := append([]string(nil), explicit...)

	for _, f := range requiredFiles {
		if f == "test_main.py" {
			patterns = append(patterns, "test_main.py", "tests/")
		}
	}

	return patterns
}

// forbiddenModifications returns the files in the commit that were modified
// or removed and match a protected pattern (exact path, or prefix for
// directory patterns). Added files never violate: protection guards the
// grader's own files, not the student's new ones.
func forbiddenModifications(files []model.CommitFile, patterns []string) []string {
	var violations []string

	for _, f := range files {
		if f.Status != "modified" && f.Status != "removed" {
			continue
		}
		for _, p := range patterns {
			if f.Path == p || strings.HasPrefix(f.Path, p) {
				violations = append(violations, f.Path)
				break
			}
		}
	}

	return violations
}
