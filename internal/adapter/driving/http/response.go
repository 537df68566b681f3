package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/edugrid/labgrader/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CourseResponse is the JSON representation of a loaded course.
type CourseResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
}

// LabResponse is the JSON representation of a configured lab.
type LabResponse struct {
	ShortName    string `json:"short_name"`
	GitHubPrefix string `json:"github_prefix"`
}

// GradeRequest is the JSON body for the grade endpoint.
type GradeRequest struct {
	GitHub string `json:"github"`
}

// GradeResponse is the JSON representation of one grading attempt's outcome.
type GradeResponse struct {
	Status       string   `json:"status"`
	Result       string   `json:"result,omitempty"`
	Message      string   `json:"message,omitempty"`
	Passed       string   `json:"passed,omitempty"`
	Checks       []string `json:"checks"`
	CurrentGrade string   `json:"current_grade,omitempty"`
	ErrorCode    string   `json:"error_code,omitempty"`
	Retryable    bool     `json:"retryable"`
}

// toGradeResponse converts a domain GradeResult to its JSON representation.
func toGradeResponse(r model.GradeResult) GradeResponse {
	checks := r.Checks
	if checks == nil {
		checks = []string{}
	}

	return GradeResponse{
		Status:       string(r.Status),
		Result:       r.Result,
		Message:      r.Message,
		Passed:       r.Passed,
		Checks:       checks,
		CurrentGrade: r.CurrentGrade,
		ErrorCode:    r.ErrorCode,
		Retryable:    r.Retryable(),
	}
}
