package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edugrid/labgrader/internal/application"
	"github.com/edugrid/labgrader/internal/course"
	"github.com/edugrid/labgrader/internal/domain/model"
	"github.com/edugrid/labgrader/internal/domain/port/driven"
)

type stubRepoAccess struct {
	files map[string]bool
}

func (s *stubRepoAccess) FileExists(_ context.Context, _, _, path string) (bool, error) {
	return s.files[path], nil
}

func (s *stubRepoAccess) FetchLatestCommit(context.Context, string, string) (*model.Commit, error) {
	return nil, nil
}

func (s *stubRepoAccess) FetchCheckRuns(context.Context, string, string, string) ([]model.CheckRun, error) {
	return nil, nil
}

func (s *stubRepoAccess) FetchJobLog(context.Context, string, string, int64) (string, error) {
	return "", nil
}

type stubGradebook struct{}

func (stubGradebook) FindStudentRow(context.Context, string, string) (int, int, error) {
	return 0, 0, nil
}
func (stubGradebook) FindLabColumn(context.Context, string, string) (int, error) { return 0, nil }
func (stubGradebook) ReadDeadline(context.Context, string, int) (time.Time, error) {
	return time.Time{}, nil
}
func (stubGradebook) ReadCell(context.Context, string, int, int) (string, error) { return "", nil }
func (stubGradebook) WriteCell(context.Context, string, int, int, string) error  { return nil }

func testCourse(t *testing.T) *course.Course {
	t.Helper()
	c := &course.Course{
		Name:   "Programming 101",
		GitHub: course.GitHubConfig{Organization: "prog-101"},
		Google: course.GoogleConfig{Spreadsheet: "sheet-id"},
		Labs: map[string]course.LabConfig{
			"lab3": {
				ShortName:    "lab3",
				GitHubPrefix: "os-task3",
				Files:        []string{"main.py"},
			},
		},
	}
	return c
}

func newService(t *testing.T, courses ...*course.Course) (*application.GradingService, *int) {
	t.Helper()
	factoryCalls := 0
	factory := func(spreadsheetID string, _ course.GoogleConfig) driven.GradebookAccess {
		factoryCalls++
		assert.Equal(t, "sheet-id", spreadsheetID)
		return stubGradebook{}
	}
	svc := application.NewGradingService(courses, &stubRepoAccess{}, factory, time.Second, nil)
	return svc, &factoryCalls
}

func TestCourseLookup(t *testing.T) {
	svc, _ := newService(t, testCourse(t))

	crs, err := svc.Course(1)
	require.NoError(t, err)
	assert.Equal(t, "Programming 101", crs.Name)

	_, err = svc.Course(0)
	assert.ErrorIs(t, err, application.ErrCourseNotFound)

	_, err = svc.Course(2)
	assert.ErrorIs(t, err, application.ErrCourseNotFound)
}

func TestGradeLabUnknownCourse(t *testing.T) {
	svc, _ := newService(t, testCourse(t))

	_, err := svc.GradeLab(context.Background(), 5, "ИУ8-31", "lab3", "alice")
	assert.ErrorIs(t, err, application.ErrCourseNotFound)
}

func TestGradeLabUnknownLab(t *testing.T) {
	svc, _ := newService(t, testCourse(t))

	_, err := svc.GradeLab(context.Background(), 1, "ИУ8-31", "lab9", "alice")
	assert.ErrorIs(t, err, application.ErrLabNotFound)
}

func TestGradeLabResolvesLabByNumber(t *testing.T) {
	svc, _ := newService(t, testCourse(t))

	// "3" should find the lab registered as "lab3". The stub repository has
	// no files, so the attempt is rejected for missing files rather than
	// failing lab resolution.
	result, err := svc.GradeLab(context.Background(), 1, "ИУ8-31", "3", "alice")
	require.NoError(t, err)
	assert.Equal(t, model.GradeStatusRejected, result.Status)
	assert.Equal(t, model.ErrCodeMissingFiles, result.ErrorCode)
}

func TestGradeLabBindsGradebookToCourseSpreadsheet(t *testing.T) {
	svc, calls := newService(t, testCourse(t))

	_, err := svc.GradeLab(context.Background(), 1, "ИУ8-31", "lab3", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
}

func TestGradeLabReturnsDomainResult(t *testing.T) {
	svc, _ := newService(t, testCourse(t))

	result, err := svc.GradeLab(context.Background(), 1, "ИУ8-31", "lab3", "alice")
	require.NoError(t, err)
	assert.Equal(t, model.GradeStatusRejected, result.Status)
	assert.Equal(t, model.ErrCodeMissingFiles, result.ErrorCode)
	assert.False(t, result.Retryable())
}
