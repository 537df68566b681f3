// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken       string
	GoogleCredentials string // Path to the service-account JSON key file.
	CoursesDir        string
	ListenAddr        string
	APITimeout        time.Duration // Per-call budget for hosting and gradebook requests.
}

// Load reads configuration from environment variables and returns a validated
// Config. LABGRADER_GITHUB_TOKEN and LABGRADER_GOOGLE_CREDENTIALS are
// required: grading cannot run without API access to both external systems.
// Optional variables with defaults: LABGRADER_COURSES_DIR (courses),
// LABGRADER_LISTEN_ADDR (127.0.0.1:8080), LABGRADER_API_TIMEOUT (30s).
func Load() (*Config, error) {
	token := os.Getenv("LABGRADER_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("LABGRADER_GITHUB_TOKEN is required")
	}

	credentials := os.Getenv("LABGRADER_GOOGLE_CREDENTIALS")
	if credentials == "" {
		return nil, fmt.Errorf("LABGRADER_GOOGLE_CREDENTIALS is required")
	}

	coursesDir := "courses"
	if v, ok := os.LookupEnv("LABGRADER_COURSES_DIR"); ok {
		coursesDir = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("LABGRADER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	apiTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("LABGRADER_API_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LABGRADER_API_TIMEOUT has invalid duration %q: %w", v, err)
		}
		apiTimeout = parsed
	}

	return &Config{
		GitHubToken:       token,
		GoogleCredentials: credentials,
		CoursesDir:        coursesDir,
		ListenAddr:        listenAddr,
		APITimeout:        apiTimeout,
	}, nil
}
