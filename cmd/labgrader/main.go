package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/edugrid/labgrader/internal/adapter/driven/github"
	sheetsadapter "github.com/edugrid/labgrader/internal/adapter/driven/sheets"
	httphandler "github.com/edugrid/labgrader/internal/adapter/driving/http"
	"github.com/edugrid/labgrader/internal/application"
	"github.com/edugrid/labgrader/internal/config"
	"github.com/edugrid/labgrader/internal/course"
	"github.com/edugrid/labgrader/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"courses_dir", cfg.CoursesDir,
		"api_timeout", cfg.APITimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load and validate course definitions. Malformed config is fatal here
	// rather than mid-grading.
	courses, err := course.LoadDir(cfg.CoursesDir)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		return errors.New("no course files found in " + cfg.CoursesDir)
	}
	for i, c := range courses {
		slog.Info("course loaded", "id", i+1, "name", c.Name, "organization", c.GitHub.Organization, "labs", len(c.Labs))
	}

	// 4. Wire driven adapters.
	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	sheetsSvc, err := sheetsadapter.NewService(ctx, cfg.GoogleCredentials)
	if err != nil {
		return err
	}
	books := func(spreadsheetID string, layout course.GoogleConfig) driven.GradebookAccess {
		return sheetsadapter.NewGradebook(sheetsSvc, spreadsheetID, layout)
	}

	// 5. Application service.
	gradingSvc := application.NewGradingService(courses, ghClient, books, cfg.APITimeout, slog.Default())

	// 6. HTTP handler with logging and recovery middleware.
	apiHandler := httphandler.NewHandler(gradingSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("labgrader started", "listen_addr", cfg.ListenAddr, "courses", len(courses))

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 8. Graceful shutdown with a drain timeout for in-flight grading requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
