// Package httphandler is the HTTP driving adapter serving the grading REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/edugrid/labgrader/internal/application"
)

// Handler serves the REST API over the grading service.
type Handler struct {
	grading *application.GradingService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(grading *application.GradingService, logger *slog.Logger) *Handler {
	return &Handler{grading: grading, logger: logger}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/courses", h.ListCourses)
	mux.HandleFunc("GET /api/v1/courses/{course}/labs", h.ListLabs)
	mux.HandleFunc("POST /api/v1/courses/{course}/groups/{group}/labs/{lab}/grade", h.GradeLab)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCourses returns all loaded courses.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses := h.grading.Courses()

	resp := make([]CourseResponse, 0, len(courses))
	for i, c := range courses {
		resp = append(resp, CourseResponse{
			ID:           i + 1,
			Name:         c.Name,
			Organization: c.GitHub.Organization,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListLabs returns the labs configured for one course, sorted by short name.
func (h *Handler) ListLabs(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}

	crs, err := h.grading.Course(courseID)
	if err != nil {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}

	resp := make([]LabResponse, 0, len(crs.Labs))
	for _, lab := range crs.Labs {
		resp = append(resp, LabResponse{
			ShortName:    lab.ShortName,
			GitHubPrefix: lab.GitHubPrefix,
		})
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i].ShortName < resp[j].ShortName })

	writeJSON(w, http.StatusOK, resp)
}

// GradeLab runs one grading attempt and returns its outcome. Domain outcomes,
// including rejections and grading errors, are 200 responses: the HTTP status
// reflects whether the attempt ran, not whether it succeeded.
func (h *Handler) GradeLab(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	group := r.PathValue("group")
	labID := r.PathValue("lab")

	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	login := strings.TrimSpace(req.GitHub)
	if login == "" {
		writeError(w, http.StatusBadRequest, "github login is required")
		return
	}

	result, err := h.grading.GradeLab(r.Context(), courseID, group, labID, login)
	switch {
	case errors.Is(err, application.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "course not found")
		return
	case errors.Is(err, application.ErrLabNotFound):
		writeError(w, http.StatusNotFound, "lab not found")
		return
	case err != nil:
		h.logger.Error("grading attempt failed", "course", courseID, "lab", labID, "login", login, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toGradeResponse(result))
}

// courseID parses the {course} path segment; writes a 400 on failure.
func (h *Handler) courseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("course"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return 0, false
	}
	return id, true
}
