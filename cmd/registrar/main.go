// Registrar Core - Academic Records Platform
//
// This is the main entry point for the Registrar Core application.
// Registrar Core is the records system of a small institution:
//   - Session-token authentication with revocable sessions
//   - Role-based authorization (admin, faculty, student)
//   - Courses, rosters, assignments, grades, and GPA reporting
//   - Append-only audit trail of every state change
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/campusworks/registrar-core/migrations"

	"github.com/campusworks/registrar-core/internal/api"
	"github.com/campusworks/registrar-core/internal/audit"
	"github.com/campusworks/registrar-core/internal/auth"
	"github.com/campusworks/registrar-core/internal/infrastructure/config"
	"github.com/campusworks/registrar-core/internal/infrastructure/database"
	"github.com/campusworks/registrar-core/internal/infrastructure/logging"
	"github.com/campusworks/registrar-core/internal/registry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Registrar Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build repositories
	users := auth.NewUserRepository(db.DB)
	sessionRepo := auth.NewSessionRepository(db.DB)
	courses := registry.NewCourseRepository(db.DB)
	enrollments := registry.NewEnrollmentRepository(db.DB)
	assignments := registry.NewAssignmentRepository(db.DB)
	grades := registry.NewGradeRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Wire authentication
	sessions := auth.NewSessionStore(sessionRepo, cfg.Security.JWT.Secret, cfg.SessionTTL())
	authenticator := auth.NewAuthenticator(users, sessions)
	policy := auth.NewPolicyEngine()

	// Seed the first-boot administrator account if no users exist.
	// The generated password appears once in the logs and must be changed.
	if _, seedErr := auth.SeedAdmin(ctx, users, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Clean up expired sessions from previous runs
	if removed, cleanErr := sessionRepo.DeleteExpired(ctx, time.Now().UTC()); cleanErr != nil {
		log.Warn("failed to clean expired sessions", "error", cleanErr)
	} else if removed > 0 {
		log.Info("expired sessions removed", "count", removed)
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Security:      cfg.Security,
		Logger:        log.With("component", "api"),
		Users:         users,
		Sessions:      sessions,
		Authenticator: authenticator,
		Policy:        policy,
		Courses:       courses,
		Enrollments:   enrollments,
		Assignments:   assignments,
		Grades:        grades,
		AuditRepo:     auditRepo,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify everything came up healthy
	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal",
		"institution", cfg.Institution.Name,
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests and the audit queue)
	// 2. Database

	log.Info("Registrar Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses REGISTRAR_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("REGISTRAR_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure is healthy after startup.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
