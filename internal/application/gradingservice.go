// Package application wires loaded course configuration to the grading
// engine and the driven ports. It owns request-scoped concerns the engine
// stays free of: course/lab resolution, per-attempt timeouts, and gradebook
// binding per spreadsheet.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/edugrid/labgrader/internal/course"
	"github.com/edugrid/labgrader/internal/domain/model"
	"github.com/edugrid/labgrader/internal/domain/port/driven"
	"github.com/edugrid/labgrader/internal/grading"
)

// Resolution failures the HTTP layer maps to 404 responses.
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLabNotFound    = errors.New("lab not found")
)

// GradebookFactory builds a GradebookAccess bound to one course's
// spreadsheet and layout. Injected so service tests run on in-memory fakes.
type GradebookFactory func(spreadsheetID string, layout course.GoogleConfig) driven.GradebookAccess

// GradingService exposes course listing and the single grading entry point.
type GradingService struct {
	courses []*course.Course
	repos   driven.RepositoryAccess
	books   GradebookFactory
	timeout time.Duration
	logger  *slog.Logger
}

// NewGradingService creates a GradingService over the loaded courses.
func NewGradingService(
	courses []*course.Course,
	repos driven.RepositoryAccess,
	books GradebookFactory,
	timeout time.Duration,
	logger *slog.Logger,
) *GradingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GradingService{
		courses: courses,
		repos:   repos,
		books:   books,
		timeout: timeout,
		logger:  logger,
	}
}

// Courses returns the loaded courses in their stable load order.
func (s *GradingService) Courses() []*course.Course {
	return s.courses
}

// Course returns the course with the given 1-based ID.
func (s *GradingService) Course(id int) (*course.Course, error) {
	if id < 1 || id > len(s.courses) {
		return nil, ErrCourseNotFound
	}
	return s.courses[id-1], nil
}

// GradeLab runs one grading attempt for the given course, group, lab, and
// GitHub login. The whole attempt shares one timeout budget; a deadline hit
// surfaces as a retryable external error in the result.
func (s *GradingService) GradeLab(ctx context.Context, courseID int, group, labID, login string) (model.GradeResult, error) {
	crs, err := s.Course(courseID)
	if err != nil {
		return model.GradeResult{}, err
	}

	lab, ok := resolveLab(crs, labID)
	if !ok {
		return model.GradeResult{}, ErrLabNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	book := s.books(crs.Google.Spreadsheet, crs.Google)
	grader := grading.NewGrader(s.repos, book, s.logger)

	student := model.StudentIdentity{Login: login, Group: group}
	result := grader.GradeLab(ctx, crs, lab, student)

	s.logger.Info("grading attempt finished",
		"course", crs.Name,
		"group", group,
		"lab", lab.ShortName,
		"login", login,
		"status", result.Status,
		"result", result.Result,
		"error_code", result.ErrorCode,
	)

	return result, nil
}

// resolveLab looks the lab up by exact short name, falling back to matching
// a bare lab number ("3" finds the lab whose short name ends in 3).
func resolveLab(crs *course.Course, labID string) (course.LabConfig, bool) {
	if lab, ok := crs.Lab(labID); ok {
		return lab, true
	}

	if isDigits(labID) {
		for name, lab := range crs.Labs {
			if strings.TrimLeftFunc(name, isLetter) == labID {
				return lab, true
			}
		}
	}

	return course.LabConfig{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return r < '0' || r > '9'
}
