package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every LABGRADER_ env var that Load() reads.
var allConfigKeys = []string{
	"LABGRADER_GITHUB_TOKEN",
	"LABGRADER_GOOGLE_CREDENTIALS",
	"LABGRADER_COURSES_DIR",
	"LABGRADER_LISTEN_ADDR",
	"LABGRADER_API_TIMEOUT",
}

// isolateConfigEnv saves and unsets all LABGRADER_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("LABGRADER_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("LABGRADER_GOOGLE_CREDENTIALS", "/etc/labgrader/sa.json")
	t.Setenv("LABGRADER_COURSES_DIR", "/etc/labgrader/courses")
	t.Setenv("LABGRADER_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("LABGRADER_API_TIMEOUT", "15s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.Equal(t, "/etc/labgrader/sa.json", cfg.GoogleCredentials)
	assert.Equal(t, "/etc/labgrader/courses", cfg.CoursesDir)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("LABGRADER_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("LABGRADER_GOOGLE_CREDENTIALS", "sa.json")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "courses", cfg.CoursesDir)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
}

func TestLoad_MissingGitHubToken(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("LABGRADER_GOOGLE_CREDENTIALS", "sa.json")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LABGRADER_GITHUB_TOKEN")
}

func TestLoad_MissingGoogleCredentials(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("LABGRADER_GITHUB_TOKEN", "ghp_test123")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LABGRADER_GOOGLE_CREDENTIALS")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("LABGRADER_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("LABGRADER_GOOGLE_CREDENTIALS", "sa.json")
	t.Setenv("LABGRADER_API_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LABGRADER_API_TIMEOUT")
}
